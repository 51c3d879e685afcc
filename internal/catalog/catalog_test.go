package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleJSON = `{
  "LatestVersion": "0.6",
  "Apps": {
    "WeChat": {
      "Versions": ["2.6.8.52", "2.6.8.65"],
      "FileSHA1": {
        "0A1B2C3D4E5F60718293A4B5C6D7E8F901234567": [
          {"Offset": 10, "Original": [1], "New": [0]},
          {"Offset": 20, "Original": [116, 5], "New": [235, 5]}
        ]
      }
    }
  }
}`

const sampleYAML = `
LatestVersion: "0.6"
Apps:
  qq:
    Versions: ["9.1.7"]
    FileSHA1:
      aabbccddeeff00112233445566778899aabbccdd:
        - Offset: 4096
          Original: "75 0e"
          New: "eb 0e"
`

func TestLoadJSON(t *testing.T) {
	c, err := Load([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	app, ok := c.App("wechat")
	if !ok {
		t.Fatal("App(wechat) not found, keys should be lowercased")
	}
	edits, ok := app.Lookup("0a1b2c3d4e5f60718293a4b5c6d7e8f901234567")
	if !ok {
		t.Fatal("Lookup() missed a digest that differs only in case")
	}

	want := EditSet{
		{Offset: 10, Original: Bytes{0x01}, New: Bytes{0x00}},
		{Offset: 20, Original: Bytes{0x74, 0x05}, New: Bytes{0xEB, 0x05}},
	}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
	if got := app.VersionsString(); got != "2.6.8.52, 2.6.8.65" {
		t.Errorf("VersionsString() = %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	c, err := Load([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	app, ok := c.App("QQ")
	if !ok {
		t.Fatal("App(QQ) not found")
	}
	edits, ok := app.Lookup("AABBCCDDEEFF00112233445566778899AABBCCDD")
	if !ok {
		t.Fatal("Lookup() miss")
	}
	want := EditSet{{Offset: 4096, Original: Bytes{0x75, 0x0E}, New: Bytes{0xEB, 0x0E}}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "Empty document",
			doc:   "  ",
			field: "document",
		},
		{
			name:  "Missing LatestVersion",
			doc:   `{"Apps": {"qq": {"FileSHA1": {}}}}`,
			field: "LatestVersion",
		},
		{
			name:  "Missing Apps",
			doc:   `{"LatestVersion": "0.5"}`,
			field: "Apps",
		},
		{
			name:  "Missing FileSHA1",
			doc:   `{"LatestVersion": "0.5", "Apps": {"qq": {"Versions": []}}}`,
			field: "Apps.qq.FileSHA1",
		},
		{
			name:  "Duplicate app key",
			doc:   `{"LatestVersion": "0.5", "Apps": {"QQ": {"FileSHA1": {}}, "qq": {"FileSHA1": {}}}}`,
			field: "",
		},
		{
			name:  "Non-hex digest",
			doc:   `{"LatestVersion": "0.5", "Apps": {"qq": {"FileSHA1": {"xyz": [{"Offset": 0, "Original": [1], "New": [0]}]}}}}`,
			field: "Apps.qq.FileSHA1.xyz",
		},
		{
			name:  "Size mismatch",
			doc:   `{"LatestVersion": "0.5", "Apps": {"qq": {"FileSHA1": {"ab": [{"Offset": 0, "Original": [1, 2], "New": [0]}]}}}}`,
			field: "Apps.qq.FileSHA1.ab[0]",
		},
		{
			name:  "Empty original",
			doc:   `{"LatestVersion": "0.5", "Apps": {"qq": {"FileSHA1": {"ab": [{"Offset": 0, "Original": [], "New": []}]}}}}`,
			field: "Apps.qq.FileSHA1.ab[0]",
		},
		{
			name:  "Negative offset",
			doc:   `{"LatestVersion": "0.5", "Apps": {"qq": {"FileSHA1": {"ab": [{"Offset": -1, "Original": [1], "New": [0]}]}}}}`,
			field: "Apps.qq.FileSHA1.ab[0]",
		},
		{
			name:  "Overlapping edits",
			doc:   `{"LatestVersion": "0.5", "Apps": {"qq": {"FileSHA1": {"ab": [{"Offset": 4, "Original": [1, 2], "New": [0, 0]}, {"Offset": 5, "Original": [2], "New": [0]}]}}}}`,
			field: "Apps.qq.FileSHA1.ab",
		},
		{
			name:  "Byte out of range",
			doc:   `{"LatestVersion": "0.5", "Apps": {"qq": {"FileSHA1": {"ab": [{"Offset": 0, "Original": [256], "New": [0]}]}}}}`,
			field: "document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			var formatErr *CatalogFormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Load() error = %v, want CatalogFormatError", err)
			}
			if tt.field != "" && formatErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", formatErr.Field, tt.field)
			}
		})
	}
}

func TestUnknownAppAndDigest(t *testing.T) {
	c, err := Load([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.App("tim"); ok {
		t.Error("App(tim) should be unsupported")
	}
	app, _ := c.App("wechat")
	if _, ok := app.Lookup("ffffffffffffffffffffffffffffffffffffffff"); ok {
		t.Error("Lookup() of unknown digest should miss")
	}
}

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if diff := cmp.Diff([]string{"qq", "tim", "wechat"}, c.AppIDs()); diff != "" {
		t.Errorf("AppIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewerThan(t *testing.T) {
	tests := []struct {
		latest  string
		current string
		want    bool
		wantErr bool
	}{
		{latest: "0.6", current: "0.5", want: true},
		{latest: "0.5", current: "0.5", want: false},
		{latest: "0.10", current: "0.9", want: true},
		{latest: "0.5", current: "dev", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.latest+"_"+tt.current, func(t *testing.T) {
			c := &Catalog{LatestVersion: tt.latest}
			got, err := c.NewerThan(tt.current)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewerThan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NewerThan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBytesString(t *testing.T) {
	if got := (Bytes{0x0F, 0xA0}).String(); got != "0F A0" {
		t.Errorf("String() = %q", got)
	}
}
