package cli

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ZacharyZcR/RevokePatch/internal/engine"
	"github.com/ZacharyZcR/RevokePatch/internal/patcher"
)

func init() {
	color.NoColor = true
}

type cliFixture struct {
	root    string
	dll     string
	config  string
	catalog string
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func catalogFor(digest string) string {
	return fmt.Sprintf(`
LatestVersion: "0.5"
Apps:
  wechat:
    Versions: ["3.9.2.23"]
    FileSHA1:
      %s:
        - Offset: 4
          Original: "01"
          New: "00"
`, digest)
}

func newCLIFixture(t *testing.T, digest string) *cliFixture {
	t.Helper()
	dir := t.TempDir()
	f := &cliFixture{
		root:    filepath.Join(dir, "WeChat"),
		config:  filepath.Join(dir, "revokepatch.yaml"),
		catalog: filepath.Join(dir, "patch.yaml"),
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		t.Fatal(err)
	}
	f.dll = filepath.Join(f.root, "WeChatWin.dll")
	writeFile(t, f.dll, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0x01, 0xAA})
	writeFile(t, f.config, []byte("log_level: error\n"))

	if digest == "" {
		var err error
		if digest, err = patcher.Fingerprint(f.dll); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, f.catalog, []byte(catalogFor(digest)))
	return f
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	args = append(args, "--config", f.config, "--catalog", f.catalog)
	return runCLI(args...)
}

func runCLI(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPatchStatusRestoreCommands(t *testing.T) {
	f := newCLIFixture(t, "")

	out, err := f.run(t, "patch", "wechat", "--path", f.root)
	if err != nil {
		t.Fatalf("patch error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "补丁应用成功") || !strings.Contains(out, "WeChatWin.dll") {
		t.Errorf("patch output = %q", out)
	}
	data, _ := os.ReadFile(f.dll)
	if data[4] != 0x00 {
		t.Errorf("byte 4 = %#x, want 0x00", data[4])
	}

	out, err = f.run(t, "status", "wechat", "--path", f.root)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "已打补丁") || !strings.Contains(out, "已备份") {
		t.Errorf("status output = %q", out)
	}

	out, err = f.run(t, "restore", "WeChat", "-p", f.root)
	if err != nil {
		t.Fatalf("restore error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "还原成功") {
		t.Errorf("restore output = %q", out)
	}
	data, _ = os.ReadFile(f.dll)
	if data[4] != 0x01 {
		t.Errorf("byte 4 after restore = %#x, want 0x01", data[4])
	}
}

func TestPatchUnsupportedVersion(t *testing.T) {
	f := newCLIFixture(t, strings.Repeat("ab", 20))

	_, err := f.run(t, "patch", "wechat", "--path", f.root)
	var unsupported *engine.UnsupportedVersionError
	if !errors.As(err, &unsupported) {
		t.Fatalf("patch error = %v, want UnsupportedVersionError", err)
	}

	out, err := f.run(t, "status", "wechat", "--path", f.root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "不支持此版本") {
		t.Errorf("status output = %q", out)
	}
}

func TestRestoreWithoutBackupFails(t *testing.T) {
	f := newCLIFixture(t, "")

	out, err := f.run(t, "restore", "wechat", "--path", f.root)
	var missing *patcher.BackupMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("restore error = %v, want BackupMissingError", err)
	}
	if !strings.Contains(out, "失败") {
		t.Errorf("restore output = %q", out)
	}
}

func TestUnknownApp(t *testing.T) {
	f := newCLIFixture(t, "")
	if _, err := f.run(t, "patch", "dingtalk"); err == nil || !strings.Contains(err.Error(), "未知应用") {
		t.Errorf("patch dingtalk error = %v", err)
	}
}

func TestAppsCommand(t *testing.T) {
	f := newCLIFixture(t, "")

	out, err := f.run(t, "apps")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"wechat", "3.9.2.23", "qq", "不支持"} {
		if !strings.Contains(out, want) {
			t.Errorf("apps output missing %q:\n%s", want, out)
		}
	}
}

func TestCatalogUpdate(t *testing.T) {
	f := newCLIFixture(t, "")
	doc := catalogFor(strings.Repeat("cd", 20))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	cfg := fmt.Sprintf("log_level: error\ncatalog:\n  mirrors:\n    - %s/missing\n    - %s\n  cache_ttl: 0s\n", srv.URL, srv.URL)
	writeFile(t, f.config, []byte(cfg))
	saved := filepath.Join(t.TempDir(), "latest.yaml")

	out, err := f.run(t, "catalog", "update", "-o", saved)
	if err != nil {
		t.Fatalf("catalog update error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "补丁配置已更新") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != doc {
		t.Error("saved document differs from the mirror's")
	}
}
