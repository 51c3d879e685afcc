package engine

import (
	"path/filepath"
	"strings"

	"github.com/ZacharyZcR/RevokePatch/internal/locator"
	"github.com/ZacharyZcR/RevokePatch/internal/pe"
)

// Profile is the per-application data the generic Engine is parameterized by.
type Profile struct {
	ID   string
	Name string
	// RequiredFiles are slash-separated paths relative to the install root.
	RequiredFiles []string
	// VersionFile is the binary whose VERSIONINFO is shown to the user.
	VersionFile   string
	Locator       locator.Locator
	VersionReader func(root string) string
}

var (
	WeChat = Profile{
		ID:            "wechat",
		Name:          "微信",
		RequiredFiles: []string{"WeChatWin.dll"},
		VersionFile:   "WeChatWin.dll",
		Locator: locator.Chain{
			locator.Registry{Root: locator.CurrentUser, Path: `Software\Tencent\WeChat`, Value: "InstallPath"},
			locator.Dirs{Candidates: locator.ProgramDirs("Tencent/WeChat"), Markers: []string{"WeChatWin.dll"}},
		},
	}

	QQ = Profile{
		ID:            "qq",
		Name:          "QQ",
		RequiredFiles: []string{"Bin/IM.dll"},
		VersionFile:   "Bin/QQ.exe",
		Locator: locator.Chain{
			locator.Registry{Root: locator.LocalMachine, Path: `SOFTWARE\WOW6432Node\Tencent\QQ2009`, Value: "Install"},
			locator.Registry{Root: locator.LocalMachine, Path: `SOFTWARE\Tencent\QQ2009`, Value: "Install"},
			locator.Dirs{Candidates: locator.ProgramDirs("Tencent/QQ"), Markers: []string{"Bin/IM.dll"}},
		},
	}

	TIM = Profile{
		ID:            "tim",
		Name:          "TIM",
		RequiredFiles: []string{"Bin/IM.dll"},
		VersionFile:   "Bin/TIM.exe",
		Locator: locator.Chain{
			locator.Registry{Root: locator.LocalMachine, Path: `SOFTWARE\WOW6432Node\Tencent\TIM`, Value: "Install"},
			locator.Registry{Root: locator.LocalMachine, Path: `SOFTWARE\Tencent\TIM`, Value: "Install"},
			locator.Dirs{Candidates: locator.ProgramDirs("Tencent/TIM"), Markers: []string{"Bin/IM.dll"}},
		},
	}
)

// Profiles returns the built-in application profiles.
func Profiles() []Profile {
	return []Profile{WeChat, QQ, TIM}
}

// LookupProfile finds a built-in profile by identifier.
func LookupProfile(id string) (Profile, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range Profiles() {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// WithInstallPath returns a copy of p that tries path before its own locator.
func (p Profile) WithInstallPath(path string) Profile {
	if path == "" {
		return p
	}
	p.Locator = locator.Chain{locator.Dirs{Candidates: []string{path}, Markers: p.RequiredFiles}, p.Locator}
	return p
}

func (p Profile) version(root string) string {
	if root == "" {
		return ""
	}
	if p.VersionReader != nil {
		return p.VersionReader(root)
	}
	if p.VersionFile == "" {
		return ""
	}
	return pe.FileVersion(filepath.Join(root, filepath.FromSlash(p.VersionFile)))
}
