package locator

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestChain(t *testing.T) {
	tests := []struct {
		name  string
		chain Chain
		want  string
	}{
		{name: "Empty", chain: nil, want: ""},
		{name: "First hit wins", chain: Chain{Static(""), nil, Static("/a"), Static("/b")}, want: "/a"},
		{name: "Func", chain: Chain{Func(func() string { return "/c" })}, want: "/c"},
		{name: "Nothing found", chain: Chain{Static(""), Func(func() string { return "" })}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chain.Locate(); got != tt.want {
				t.Errorf("Locate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDirs(t *testing.T) {
	base := t.TempDir()
	empty := filepath.Join(base, "empty")
	qq := filepath.Join(base, "QQ")
	for _, dir := range []string{empty, filepath.Join(qq, "Bin")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(qq, "Bin", "IM.dll"), []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	d := Dirs{
		Candidates: []string{"", filepath.Join(base, "missing"), empty, qq, qq},
		Markers:    []string{"Bin/IM.dll"},
	}
	if got := d.Locate(); got != qq {
		t.Errorf("Locate() = %q, want %q", got, qq)
	}

	d.Candidates = []string{empty}
	if got := d.Locate(); got != "" {
		t.Errorf("Locate() = %q, want empty", got)
	}
}

func TestProgramDirs(t *testing.T) {
	t.Setenv("ProgramFiles(x86)", filepath.Join("X", "PF86"))

	dirs := ProgramDirs("Tencent/WeChat")
	if len(dirs) == 0 {
		t.Fatal("ProgramDirs() returned nothing")
	}
	if want := filepath.Join("X", "PF86", "Tencent", "WeChat"); dirs[0] != want {
		t.Errorf("ProgramDirs()[0] = %q, want %q", dirs[0], want)
	}
}

func TestRegistryMissingKey(t *testing.T) {
	r := Registry{Root: CurrentUser, Path: `Software\RevokePatch\DoesNotExist`, Value: "InstallPath"}
	if got := r.Locate(); got != "" {
		t.Errorf("Locate() = %q, want empty on %s", got, runtime.GOOS)
	}
}
