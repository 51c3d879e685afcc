package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"github.com/ZacharyZcR/RevokePatch/internal/catalog"
	"github.com/ZacharyZcR/RevokePatch/internal/engine"
	"github.com/ZacharyZcR/RevokePatch/internal/logx"
)

func TestPathEntrySubmitBindsEngine(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, ok := engine.LookupProfile("wechat")
	if !ok {
		t.Fatal("wechat profile missing")
	}
	root := t.TempDir()
	for _, name := range p.RequiredFiles {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte{0x00}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	store := catalog.NewStore(cat)
	e := engine.New(p, store)

	ui := newWindow(a.NewWindow("test"), map[string]*engine.Engine{p.Name: e}, logx.Discard(), store)
	ui.current = e

	test.Type(ui.pathEntry, root)
	ui.pathEntry.TypedKey(&fyne.KeyEvent{Name: fyne.KeyReturn})

	deadline := time.Now().Add(5 * time.Second)
	for e.State() != engine.FilesPresent {
		if time.Now().After(deadline) {
			t.Fatalf("State() = %v after submitting %s, want FilesPresent", e.State(), root)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := e.Target().Root; got != root {
		t.Errorf("Target().Root = %q, want %q", got, root)
	}
}

func TestSupportedVersionsListsEveryProfile(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	text := supportedVersions(cat)
	for _, p := range engine.Profiles() {
		if !strings.Contains(text, p.Name) {
			t.Errorf("supportedVersions() missing %s:\n%s", p.Name, text)
		}
	}
}
