package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupProfile(t *testing.T) {
	tests := []struct {
		id       string
		wantOK   bool
		wantFile string
	}{
		{id: "wechat", wantOK: true, wantFile: "WeChatWin.dll"},
		{id: "QQ", wantOK: true, wantFile: "Bin/IM.dll"},
		{id: " tim ", wantOK: true, wantFile: "Bin/IM.dll"},
		{id: "dingtalk", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := LookupProfile(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("LookupProfile(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if ok && p.RequiredFiles[0] != tt.wantFile {
				t.Errorf("RequiredFiles[0] = %q, want %q", p.RequiredFiles[0], tt.wantFile)
			}
		})
	}
}

func TestWithInstallPath(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Bin", "IM.dll"), []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	p := TIM.WithInstallPath(root)
	if got := p.Locator.Locate(); got != root {
		t.Errorf("Locate() = %q, want %q", got, root)
	}
	if TIM.WithInstallPath("").Locator == nil {
		t.Error("WithInstallPath(\"\") dropped the default locator")
	}
}

func TestProfileVersionWithoutRoot(t *testing.T) {
	if got := WeChat.version(""); got != "" {
		t.Errorf("version(\"\") = %q, want empty", got)
	}
	if got := QQ.version(t.TempDir()); got != "" {
		t.Errorf("version() = %q for a root without QQ.exe", got)
	}
}
