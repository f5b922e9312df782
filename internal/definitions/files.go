// Package definitions loads display, column, list, group and skin files into
// an immutable roster.Registry.
package definitions

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedVersion is returned for a definition file whose version is not 1.
var ErrUnsupportedVersion = errors.New("unsupported version")

type TextDef struct {
	Animations []string `toml:"animations" yaml:"animations"`
	Interval   *int64   `toml:"interval" yaml:"interval"`
}

type SkinDef struct {
	Name      string `toml:"name" yaml:"name"`
	Value     string `toml:"value" yaml:"value"`
	Signature string `toml:"signature" yaml:"signature"`
}

type ItemDef struct {
	Animations []string `toml:"animations" yaml:"animations"`
	Interval   *int64   `toml:"interval" yaml:"interval"`
	Ping       string   `toml:"ping" yaml:"ping"`
	Center     bool     `toml:"center" yaml:"center"`
	Skin       *SkinDef `toml:"skin" yaml:"skin"`
	Permission string   `toml:"permission" yaml:"permission"`
}

type PageDef struct {
	Enabled  *bool    `toml:"enabled" yaml:"enabled"`
	Elements int      `toml:"elements" yaml:"elements"`
	Interval *int64   `toml:"interval" yaml:"interval"`
	Max      *int     `toml:"max" yaml:"max"`
	Text     *ItemDef `toml:"text" yaml:"text"`
}

type ColumnFile struct {
	Version int       `toml:"version" yaml:"version"`
	Name    string    `toml:"name" yaml:"name"`
	Page    PageDef   `toml:"page" yaml:"page"`
	Title   *ItemDef  `toml:"title" yaml:"title"`
	Text    []ItemDef `toml:"text" yaml:"text"`
}

type ListFile struct {
	Version      int      `toml:"version" yaml:"version"`
	Name         string   `toml:"name" yaml:"name"`
	Type         string   `toml:"type" yaml:"type"`
	Page         PageDef  `toml:"page" yaml:"page"`
	Title        *ItemDef `toml:"title" yaml:"title"`
	Sorter       string   `toml:"sorter" yaml:"sorter"`
	SortVariable string   `toml:"sort_variable" yaml:"sort_variable"`
	Text         *ItemDef `toml:"text" yaml:"text"`
	// Permission lists only members that hold it.
	Permission string `toml:"permission" yaml:"permission"`
}

type ColumnsDef struct {
	DisplayTitles *bool             `toml:"display_titles" yaml:"display_titles"`
	Width         int               `toml:"width" yaml:"width"`
	List          map[string]string `toml:"list" yaml:"list"`
}

type LinesDef struct {
	Text []TextDef `toml:"text" yaml:"text"`
}

type DisplayFile struct {
	Version    int        `toml:"version" yaml:"version"`
	Name       string     `toml:"name" yaml:"name"`
	Permission string     `toml:"permission" yaml:"permission"`
	Weight     *int       `toml:"weight" yaml:"weight"`
	Columns    ColumnsDef `toml:"columns" yaml:"columns"`
	Header     LinesDef   `toml:"header" yaml:"header"`
	Footer     LinesDef   `toml:"footer" yaml:"footer"`
}

type GroupDef struct {
	Permission string   `toml:"permission" yaml:"permission"`
	Weight     int      `toml:"weight" yaml:"weight"`
	Tab        *ItemDef `toml:"tab" yaml:"tab"`
	Tag        string   `toml:"tag" yaml:"tag"`
}

type GroupsFile struct {
	Version int                 `toml:"version" yaml:"version"`
	Group   map[string]GroupDef `toml:"group" yaml:"group"`
}

type SkinsFile struct {
	Version int                `toml:"version" yaml:"version"`
	Skin    map[string]SkinDef `toml:"skin" yaml:"skin"`
}

func isDefinitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml", ".yml", ".yaml":
		return true
	}
	return false
}

// decodeFile decodes path by extension: TOML for .toml, YAML for .yml/.yaml.
func decodeFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("parse %s: unknown extension", path)
	}
	return nil
}

func checkVersion(version *int) error {
	if *version == 0 {
		*version = 1
	}
	if *version != 1 {
		return fmt.Errorf("%w %d", ErrUnsupportedVersion, *version)
	}
	return nil
}

// definitionName is the declared name, or the file name without extension.
func definitionName(declared, path string) string {
	if n := strings.TrimSpace(declared); n != "" {
		return n
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
