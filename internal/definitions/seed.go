package definitions

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultSkinsTOML = `version = 1

[skin]
`

const defaultGroupsTOML = `version = 1

[group.admin]
permission = "rostertab.group.admin"
weight = 100
tag = "&c[Admin] "

[group.admin.tab]
animations = ["&c{name}"]

[group.default]
weight = 0
tag = "&7"
`

const defaultDisplayTOML = `version = 1
name = "default"
weight = 0

[columns]
display_titles = true
width = 50

[columns.list]
1 = "online"
2 = "info"

[[header.text]]
animations = ["&b&lRoster", "&3&lRoster"]
interval = 20

[[footer.text]]
animations = ["&7{online} online"]
`

const defaultInfoColumnTOML = `version = 1
name = "info"

[page]
elements = 20
interval = 100

[title]
animations = ["&6&lInfo"]
center = true

[[text]]
animations = ["&7Name: &f{name}"]

[[text]]
animations = ["&7Group: &f{group}"]

[[text]]
animations = ["&7World: &f{world}"]
`

const defaultOnlineListTOML = `version = 1
name = "online"
type = "ONLINE_PLAYERS"
sorter = "WEIGHT"

[page]
enabled = true
elements = 20
interval = 100
max = 5

[page.text]
animations = ["&7{current_page}&8/&7{max_page}"]
center = true

[title]
animations = ["&a&lOnline"]
center = true

[text]
animations = ["{group_tag}{name}"]
`

// Seed creates dir with a default bundle. Existing files are never touched,
// and the sample display, column and list are only written when the
// displays directory does not exist yet.
func Seed(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create definitions dir: %w", err)
	}
	if _, ok := findFile(dir, "skins"); !ok {
		if err := ensureFile(filepath.Join(dir, "skins.toml"), defaultSkinsTOML); err != nil {
			return err
		}
	}
	if _, ok := findFile(dir, "groups"); !ok {
		if err := ensureFile(filepath.Join(dir, "groups.toml"), defaultGroupsTOML); err != nil {
			return err
		}
	}

	displays := filepath.Join(dir, "displays")
	_, err := os.Stat(displays)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", displays, err)
	}
	for sub, files := range map[string]map[string]string{
		"displays": {"default.toml": defaultDisplayTOML},
		"columns":  {"info.toml": defaultInfoColumnTOML},
		"lists":    {"online.toml": defaultOnlineListTOML},
	} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", sub, err)
		}
		for name, content := range files {
			if err := ensureFile(filepath.Join(dir, sub, name), content); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureFile(path, defaults string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaults), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
