// Package catalog parses the versioned recipe catalog that maps file
// fingerprints of known builds to the byte edits that patch them.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

//go:embed default.json
var defaultDocument []byte

// Catalog is an immutable, parsed recipe document.
type Catalog struct {
	LatestVersion string                 `json:"LatestVersion" yaml:"LatestVersion"`
	Apps          map[string]*AppRecipes `json:"Apps" yaml:"Apps"`
}

// AppRecipes holds the known builds of one application.
type AppRecipes struct {
	Versions     []string           `json:"Versions" yaml:"Versions"`
	Fingerprints map[string]EditSet `json:"FileSHA1" yaml:"FileSHA1"`
}

// EditSet is the ordered list of substitutions for one known build of one file.
type EditSet []ByteEdit

// ByteEdit replaces Original with New at an absolute file offset.
type ByteEdit struct {
	Offset   int64 `json:"Offset" yaml:"Offset"`
	Original Bytes `json:"Original" yaml:"Original"`
	New      Bytes `json:"New" yaml:"New"`
}

// End returns the offset just past the edited range.
func (e ByteEdit) End() int64 {
	return e.Offset + int64(len(e.Original))
}

// Load parses a JSON or YAML catalog document and validates it.
func Load(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return nil, &CatalogFormatError{Field: "document", Reason: "内容为空"}
	}

	var c Catalog
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return nil, &CatalogFormatError{Field: "document", Reason: "JSON解析失败", Err: err}
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &c); err != nil {
			return nil, &CatalogFormatError{Field: "document", Reason: "YAML解析失败", Err: err}
		}
	}

	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Load(defaultDocument)
}

// App returns the recipes for an application identifier.
func (c *Catalog) App(id string) (*AppRecipes, bool) {
	if c == nil {
		return nil, false
	}
	app, ok := c.Apps[strings.ToLower(id)]
	return app, ok
}

// AppIDs returns the supported identifiers in sorted order.
func (c *Catalog) AppIDs() []string {
	ids := make([]string, 0, len(c.Apps))
	for id := range c.Apps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewerThan reports whether LatestVersion is greater than current.
func (c *Catalog) NewerThan(current string) (bool, error) {
	latest, err := version.NewVersion(c.LatestVersion)
	if err != nil {
		return false, fmt.Errorf("解析最新版本失败: %w", err)
	}
	cur, err := version.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("解析当前版本失败: %w", err)
	}
	return latest.GreaterThan(cur), nil
}

// Lookup returns the edit set registered for a fingerprint.
func (a *AppRecipes) Lookup(fingerprint string) (EditSet, bool) {
	edits, ok := a.Fingerprints[strings.ToLower(fingerprint)]
	return edits, ok
}

// VersionsString joins the supported version labels for display.
func (a *AppRecipes) VersionsString() string {
	if len(a.Versions) == 0 {
		return "无"
	}
	return strings.Join(a.Versions, ", ")
}

func (c *Catalog) normalize() error {
	if strings.TrimSpace(c.LatestVersion) == "" {
		return &CatalogFormatError{Field: "LatestVersion", Reason: "缺少字段"}
	}
	if len(c.Apps) == 0 {
		return &CatalogFormatError{Field: "Apps", Reason: "缺少字段"}
	}

	apps := make(map[string]*AppRecipes, len(c.Apps))
	for id, app := range c.Apps {
		key := strings.ToLower(strings.TrimSpace(id))
		field := "Apps." + id
		if key == "" {
			return &CatalogFormatError{Field: field, Reason: "应用标识为空"}
		}
		if _, dup := apps[key]; dup {
			return &CatalogFormatError{Field: field, Reason: "应用标识重复"}
		}
		if app == nil || app.Fingerprints == nil {
			return &CatalogFormatError{Field: field + ".FileSHA1", Reason: "缺少字段"}
		}
		if err := app.normalize(field); err != nil {
			return err
		}
		apps[key] = app
	}
	c.Apps = apps
	return nil
}

func (a *AppRecipes) normalize(field string) error {
	fingerprints := make(map[string]EditSet, len(a.Fingerprints))
	for digest, edits := range a.Fingerprints {
		key := strings.ToLower(strings.TrimSpace(digest))
		digestField := field + ".FileSHA1." + digest
		if _, err := hex.DecodeString(key); err != nil || key == "" {
			return &CatalogFormatError{Field: digestField, Reason: "指纹不是十六进制字符串"}
		}
		if _, dup := fingerprints[key]; dup {
			return &CatalogFormatError{Field: digestField, Reason: "指纹重复"}
		}
		if err := edits.validate(digestField); err != nil {
			return err
		}
		fingerprints[key] = edits
	}
	a.Fingerprints = fingerprints
	return nil
}

func (s EditSet) validate(field string) error {
	if len(s) == 0 {
		return &CatalogFormatError{Field: field, Reason: "修改列表为空"}
	}
	for i, e := range s {
		editField := fmt.Sprintf("%s[%d]", field, i)
		if e.Offset < 0 {
			return &CatalogFormatError{Field: editField, Reason: "偏移为负数"}
		}
		if len(e.Original) == 0 {
			return &CatalogFormatError{Field: editField, Reason: "原始字节为空"}
		}
		if len(e.New) != len(e.Original) {
			return &CatalogFormatError{
				Field:  editField,
				Reason: fmt.Sprintf("新旧字节长度不一致 (%d != %d)", len(e.New), len(e.Original)),
			}
		}
	}

	ordered := make(EditSet, len(s))
	copy(ordered, s)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Offset < ordered[j].Offset })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Offset < ordered[i-1].End() {
			return &CatalogFormatError{
				Field:  field,
				Reason: fmt.Sprintf("修改区域重叠 (0x%X 与 0x%X)", ordered[i-1].Offset, ordered[i].Offset),
			}
		}
	}
	return nil
}
