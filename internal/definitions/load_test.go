package definitions

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/rostertab/internal/roster"
	"github.com/jask/rostertab/internal/scheduler"
	"github.com/jask/rostertab/internal/text"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func viewer(name string, perms ...string) *roster.Member {
	return &roster.Member{
		UUID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		Username:    name,
		Permissions: perms,
	}
}

func problemText(res *Result) string {
	var b strings.Builder
	for _, p := range res.Problems {
		b.WriteString(p.Error())
		b.WriteByte('\n')
	}
	return b.String()
}

func TestLoadSeedsDefaultBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "defs")

	res, err := Load(dir, Options{Clock: &scheduler.ManualClock{}})
	require.NoError(t, err)
	require.Empty(t, res.Problems, problemText(res))
	require.NoError(t, res.Err())

	for _, rel := range []string{"skins.toml", "groups.toml", "displays/default.toml", "columns/info.toml", "lists/online.toml"} {
		require.FileExists(t, filepath.Join(dir, rel))
	}

	reg := res.Registry
	d := reg.Displays["default"]
	require.NotNil(t, d)
	require.Equal(t, []int{1, 2}, d.Slots())
	require.True(t, d.ShowTitles)
	require.Equal(t, 50, d.ElementWidth)
	require.Len(t, d.Header, 1)
	require.Equal(t, "&b&lRoster", d.Header[0].Current())

	online := reg.Columns["online"]
	require.Same(t, online, d.Columns[1])
	src, ok := online.Source.(*roster.PopulationSource)
	require.True(t, ok)
	require.Equal(t, roster.SortWeight, src.Sort)
	require.True(t, online.Paging)
	require.Equal(t, 5, online.MaxPages)
	require.NotNil(t, online.PageItem)

	info := reg.Columns["info"]
	require.Equal(t, 20, info.Capacity)
	require.Equal(t, int64(100), info.PageInterval)
	require.Equal(t, "&6&lInfo", info.Title.Text.Current())
	require.True(t, info.Title.Center)
	items, err := info.Source.Produce(2, viewer("v"), true)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "admin", reg.Groups.Resolve(viewer("a", "rostertab.group.admin")).ID)
	require.Equal(t, "default", reg.Groups.Resolve(viewer("b")).ID)
}

func TestLoadKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "groups.yml"), "version: 1\ngroup:\n  vip:\n    permission: rank.vip\n    weight: 10\n")
	writeFile(t, filepath.Join(dir, "displays", "only.toml"), "version = 1\n")

	res, err := Load(dir, Options{})
	require.NoError(t, err)
	require.Empty(t, res.Problems, problemText(res))

	require.NoFileExists(t, filepath.Join(dir, "groups.toml"))
	require.NoFileExists(t, filepath.Join(dir, "columns", "info.toml"))
	require.Len(t, res.Registry.Displays, 1)
	require.Empty(t, res.Registry.Displays["only"].Columns)
	require.Len(t, res.Registry.Groups.All(), 1)
}

func TestLoadYAMLDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "columns", "motd.yml"), `version: 1
name: motd
page:
  elements: 5
  enabled: false
title:
  animations: ["&eNews"]
text:
  - animations: ["one", "two"]
    interval: 10
    ping: THREE
  - animations: ["&7staff only"]
    permission: rostertab.staff
`)
	writeFile(t, filepath.Join(dir, "displays", "news.yaml"), `version: 1
name: news
permission: rostertab.news
weight: 5
columns:
  display_titles: false
  width: 30
  list:
    3: motd
header:
  text:
    - animations: ["hi"]
`)
	clock := &scheduler.ManualClock{}
	res, err := Load(dir, Options{Clock: clock})
	require.NoError(t, err)
	require.Empty(t, res.Problems, problemText(res))

	d := res.Registry.Displays["news"]
	require.NotNil(t, d)
	require.Equal(t, 5, d.Weight)
	require.False(t, d.ShowTitles)
	require.Equal(t, 30, d.ElementWidth)
	require.False(t, d.Eligible(viewer("v")))
	require.True(t, d.Eligible(viewer("v", "rostertab.news")))

	col := d.Columns[3]
	require.Equal(t, "motd", col.ID)
	require.Equal(t, 5, col.Capacity)
	require.False(t, col.Paging)

	items, err := col.Source.Produce(3, viewer("v"), false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, roster.PingThree, items[0].Ping)
	require.Equal(t, "one", items[0].Text.Current())
	clock.Advance(10)
	require.Equal(t, "two", items[0].Text.Advance())

	require.False(t, items[1].VisibleTo(viewer("v")))
	require.True(t, items[1].VisibleTo(viewer("s", "rostertab.staff")))
}

func TestLoadSkipsInvalidDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "columns", "huge.toml"), "version = 1\n[page]\nelements = 150\n")
	writeFile(t, filepath.Join(dir, "columns", "future.toml"), "version = 2\n")
	writeFile(t, filepath.Join(dir, "columns", "silent.toml"), "version = 1\n[[text]]\nanimations = []\n")
	writeFile(t, filepath.Join(dir, "columns", "broken.toml"), "version = \n")
	writeFile(t, filepath.Join(dir, "lists", "online.toml"), "version = 1\nsorter = \"WEIGHT\"\n")
	writeFile(t, filepath.Join(dir, "lists", "ranked.toml"), "version = 1\nsorter = \"NUMBER_VARIABLE\"\n")
	writeFile(t, filepath.Join(dir, "displays", "main.toml"), `version = 1

[columns.list]
1 = "online"
2 = "onlin"
x = "online"
`)

	res, err := Load(dir, Options{})
	require.NoError(t, err)
	require.Len(t, res.Problems, 7, problemText(res))

	joined := res.Err()
	require.Error(t, joined)
	require.ErrorIs(t, joined, ErrUnsupportedVersion)
	require.ErrorIs(t, joined, text.ErrNoFrames)

	msg := problemText(res)
	require.Contains(t, msg, "huge")
	require.Contains(t, msg, "broken.toml")
	require.Contains(t, msg, "sort_variable is required")
	require.Contains(t, msg, `unknown column "onlin" (did you mean "online"?)`)
	require.Contains(t, msg, "main/x")

	reg := res.Registry
	require.NotContains(t, reg.Columns, "huge")
	require.NotContains(t, reg.Columns, "future")
	require.NotContains(t, reg.Columns, "ranked")
	require.Contains(t, reg.Columns, "online")
	require.Equal(t, []int{1}, reg.Displays["main"].Slots())
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "columns", "a.toml"), "version = 1\nname = \"shared\"\n")
	writeFile(t, filepath.Join(dir, "lists", "b.toml"), "version = 1\nname = \"shared\"\n")
	writeFile(t, filepath.Join(dir, "displays", "d.toml"), "version = 1\n")

	res, err := Load(dir, Options{})
	require.NoError(t, err)
	require.Len(t, res.Problems, 1)
	require.Contains(t, res.Problems[0].Error(), "already used by a column")
	_, static := res.Registry.Columns["shared"].Source.(*roster.StaticSource)
	require.True(t, static)
}

func TestLoadResolvesSkins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "skins.toml"), `version = 1

[skin.steve]
value = "dmFsdWU="
signature = "c2ln"

[skin.bad]
value = "only value"
`)
	writeFile(t, filepath.Join(dir, "columns", "heads.toml"), `version = 1

[[text]]
animations = ["steve"]
skin = { name = "steve" }

[[text]]
animations = ["alex"]
skin = { name = "alex" }

[[text]]
animations = ["inline"]
skin = { value = "aW5saW5l", signature = "c2ln" }
`)
	writeFile(t, filepath.Join(dir, "columns", "typo.toml"), `version = 1

[[text]]
animations = ["x"]
skin = { name = "stevee" }
`)
	writeFile(t, filepath.Join(dir, "displays", "d.toml"), "version = 1\n")

	res, err := Load(dir, Options{Skins: []roster.Avatar{{Name: "alex", Value: "YQ==", Signature: "cw=="}}})
	require.NoError(t, err)
	require.Len(t, res.Problems, 2, problemText(res))
	msg := problemText(res)
	require.Contains(t, msg, "bad: value and signature are required")
	require.Contains(t, msg, `unknown skin "stevee" (did you mean "steve"?)`)

	items, err := res.Registry.Columns["heads"].Source.Produce(1, viewer("v"), false)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "steve", items[0].AvatarKey())
	require.Equal(t, "alex", items[1].AvatarKey())
	require.True(t, strings.HasPrefix(items[2].AvatarKey(), "inline-"))
	require.Contains(t, res.Registry.Avatars, "steve")
	require.Contains(t, res.Registry.Avatars, "alex")
}

func TestListPermissionFiltersMembers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lists", "staff.toml"), `version = 1
permission = "rostertab.staff"

[text]
animations = ["&c{name}"]
`)
	writeFile(t, filepath.Join(dir, "displays", "d.toml"), "version = 1\n")

	pop := roster.NewMemberSet()
	pop.Put(viewer("alice", "rostertab.staff"))
	pop.Put(viewer("bob"))

	res, err := Load(dir, Options{Population: pop})
	require.NoError(t, err)
	require.Empty(t, res.Problems, problemText(res))

	items, err := res.Registry.Columns["staff"].Source.Produce(1, viewer("v"), false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "alice", items[0].Subject.Name())
	require.Equal(t, "&c{name}", items[0].Text.Current())
}

func TestSuggest(t *testing.T) {
	known := []string{"online", "info", "staff"}
	require.Equal(t, "online", suggest("onlin", known))
	require.Equal(t, "info", suggest("INFO", known))
	require.Equal(t, "", suggest("completely-different", known))
	require.Equal(t, "", suggest("x", nil))

	err := unknownRef("column", "staf", known)
	require.True(t, strings.Contains(err.Error(), `did you mean "staff"`))
	require.False(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestReadSkins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.yml")
	writeFile(t, path, `version: 1
skin:
  notch:
    value: bm90Y2g=
    signature: c2ln
  jeb:
    value: amVi
`)
	skins, err := ReadSkins(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), `skin "jeb"`)
	require.Len(t, skins, 1)
	require.Equal(t, "notch", skins[0].Name)
}
