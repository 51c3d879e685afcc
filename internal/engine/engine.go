// Package engine drives one application's patch lifecycle: locate the
// installation, fingerprint its binaries, resolve a recipe from the catalog,
// apply the byte edits and manage backups.
package engine

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ZacharyZcR/RevokePatch/internal/catalog"
	"github.com/ZacharyZcR/RevokePatch/internal/patcher"
)

// TargetFile is one required file of an installation.
type TargetFile struct {
	Name string
	Path string
}

// Resolution is the recipe matched for one file.
type Resolution struct {
	Fingerprint    string
	Edits          catalog.EditSet
	AlreadyPatched bool
}

// Target is an installation bound to an Engine.
type Target struct {
	Root     string
	Files    []TargetFile
	Resolved map[string]Resolution
}

// Engine is the orchestrator for one application.
type Engine struct {
	profile Profile
	store   *catalog.Store
	backups *patcher.BackupStore
	logger  logrus.FieldLogger

	mu     sync.Mutex
	busy   bool
	state  State
	target *Target
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostics logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithBackupStore overrides the default ".h.bak" backup store.
func WithBackupStore(b *patcher.BackupStore) Option {
	return func(e *Engine) { e.backups = b }
}

// New creates an Engine for profile reading recipes from store.
func New(profile Profile, store *catalog.Store, opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		profile: profile,
		store:   store,
		backups: patcher.NewBackupStore(patcher.DefaultBackupSuffix),
		logger:  discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithField("app", profile.ID)
	return e
}

// Profile returns the application profile.
func (e *Engine) Profile() Profile {
	return e.profile
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Target returns a copy of the bound target, or nil.
func (e *Engine) Target() *Target {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.target == nil {
		return nil
	}
	t := *e.target
	t.Files = append([]TargetFile(nil), e.target.Files...)
	t.Resolved = make(map[string]Resolution, len(e.target.Resolved))
	for k, v := range e.target.Resolved {
		t.Resolved[k] = v
	}
	return &t
}

// FindInstallPath asks the profile locator for an installation root that
// contains every required file.
func (e *Engine) FindInstallPath() string {
	if e.profile.Locator == nil {
		return ""
	}
	path := e.profile.Locator.Locate()
	if path == "" || !e.IsAllFilesExist(path) {
		return ""
	}
	return path
}

// GetVersion reads the application version from the bound root, or from the
// located root when no target is bound.
func (e *Engine) GetVersion() string {
	e.mu.Lock()
	root := ""
	if e.target != nil {
		root = e.target.Root
	}
	e.mu.Unlock()

	if root == "" {
		root = e.FindInstallPath()
	}
	return e.profile.version(root)
}

// IsAllFilesExist reports whether every required file exists under path.
func (e *Engine) IsAllFilesExist(path string) bool {
	return len(e.missingFiles(path)) == 0
}

func (e *Engine) missingFiles(root string) []string {
	if root == "" {
		return e.profile.RequiredFiles
	}
	var missing []string
	for _, name := range e.profile.RequiredFiles {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil || info.IsDir() {
			missing = append(missing, name)
		}
	}
	return missing
}

// InitEditors binds a fresh target to path, discarding any resolved recipe.
func (e *Engine) InitEditors(path string) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	target := &Target{Root: path, Resolved: map[string]Resolution{}}
	for _, name := range e.profile.RequiredFiles {
		target.Files = append(target.Files, TargetFile{
			Name: name,
			Path: filepath.Join(path, filepath.FromSlash(name)),
		})
	}

	e.setState(target, PathSet)

	if missing := e.missingFiles(path); len(missing) > 0 {
		e.setState(target, PathInvalid)
		e.logger.WithField("root", path).WithField("missing", missing).Warn("安装目录缺少文件")
		return &MissingFilesError{Root: path, Missing: missing}
	}
	e.setState(target, FilesPresent)
	e.logger.WithField("root", path).Debug("已绑定安装目录")
	return nil
}

// Bind initializes the engine on path, or on the located installation when
// path is empty, and returns the root it bound to.
func (e *Engine) Bind(path string) (string, error) {
	if path == "" {
		path = e.FindInstallPath()
	}
	if path == "" {
		return "", &MissingFilesError{Missing: e.profile.RequiredFiles}
	}
	return path, e.InitEditors(path)
}

// ValidateAndFindModifyInfo fingerprints every required file and resolves
// its edit set from one catalog snapshot. Nothing is recorded unless every
// file resolves.
func (e *Engine) ValidateAndFindModifyInfo() error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	target, state := e.snapshot()
	if target == nil || state < FilesPresent {
		return ErrInvalidState
	}

	cat := e.store.Current()
	app, ok := cat.App(e.profile.ID)
	if !ok {
		return &UnsupportedVersionError{App: e.profile.ID, Version: e.profile.version(target.Root)}
	}

	resolved := make(map[string]Resolution, len(target.Files))
	for _, f := range target.Files {
		res, err := e.resolve(app, f)
		if err != nil {
			return err
		}
		if res == nil {
			return &UnsupportedVersionError{
				App:         e.profile.ID,
				File:        f.Name,
				Fingerprint: e.fingerprintOrEmpty(f.Path),
				Version:     e.profile.version(target.Root),
				Supported:   app.VersionsString(),
			}
		}
		resolved[f.Name] = *res
	}

	next := *target
	next.Resolved = resolved
	e.setState(&next, RecipeResolved)
	e.logger.WithField("root", target.Root).Info("已匹配补丁")
	return nil
}

// resolve looks up the file's fingerprint. When the file itself is unknown
// but its backup is a known original and every edit is already in place,
// the file is resolved as patched.
func (e *Engine) resolve(app *catalog.AppRecipes, f TargetFile) (*Resolution, error) {
	fingerprint, err := patcher.Fingerprint(f.Path)
	if err != nil {
		return nil, err
	}
	if edits, ok := app.Lookup(fingerprint); ok {
		return &Resolution{Fingerprint: fingerprint, Edits: edits}, nil
	}

	if !e.backups.Exists(f.Path) {
		return nil, nil
	}
	original, err := patcher.Fingerprint(e.backups.BackupPath(f.Path))
	if err != nil {
		return nil, err
	}
	edits, ok := app.Lookup(original)
	if !ok {
		return nil, nil
	}

	patched := true
	err = patcher.Inspect(f.Path, func(ed *patcher.Editor) error {
		for _, edit := range edits {
			match, err := ed.VerifyRegion(edit.Offset, edit.New)
			if err != nil {
				return err
			}
			if !match {
				patched = false
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !patched {
		return nil, nil
	}
	return &Resolution{Fingerprint: original, Edits: edits, AlreadyPatched: true}, nil
}

func (e *Engine) fingerprintOrEmpty(path string) string {
	fp, err := patcher.Fingerprint(path)
	if err != nil {
		return ""
	}
	return fp
}

// Patch applies the resolved edits to every file in parallel. Failures in
// one file do not roll back the others; the report lists each outcome and
// the returned error joins every per-file error.
func (e *Engine) Patch() (*Report, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	target, state := e.snapshot()
	if target == nil || (state != RecipeResolved && state != Patched) {
		return nil, ErrInvalidState
	}

	report := &Report{App: e.profile.ID}
	report.Files = forEachFile(target.Files, func(f TargetFile) FileResult {
		return e.patchFile(f, target.Resolved[f.Name])
	})

	err := report.Err()
	if err == nil {
		e.setState(target, Patched)
		e.logger.WithField("root", target.Root).Info("补丁已应用")
	} else {
		e.logger.WithError(err).Warn("补丁应用失败")
	}
	return report, err
}

func (e *Engine) patchFile(f TargetFile, res Resolution) FileResult {
	result := FileResult{File: f.Name}
	log := e.logger.WithField("file", f.Name)

	fail := func(err error) FileResult {
		result.Status = StatusFailed
		result.Err = err
		log.WithError(err).Error("处理文件失败")
		return result
	}

	err := patcher.Edit(f.Path, func(ed *patcher.Editor) error {
		var planned catalog.EditSet
		for _, edit := range res.Edits {
			current, err := ed.ReadAt(edit.Offset, len(edit.Original))
			if err != nil {
				return err
			}
			switch {
			case bytes.Equal(current, edit.New):
				result.Skipped++
			case bytes.Equal(current, edit.Original):
				planned = append(planned, edit)
			default:
				return &CorruptedTargetError{
					File:     f.Name,
					Offset:   edit.Offset,
					Found:    current,
					Original: edit.Original,
					New:      edit.New,
				}
			}
		}

		if len(planned) == 0 {
			return nil
		}
		if err := e.ensureBackup(f, res, &result); err != nil {
			return err
		}
		for _, edit := range planned {
			if err := ed.WriteAt(edit.Offset, edit.New); err != nil {
				return err
			}
		}
		result.Applied = len(planned)
		return ed.Sync()
	})
	if err != nil {
		return fail(err)
	}

	if result.Applied > 0 {
		result.Status = StatusPatched
	} else {
		result.Status = StatusAlreadyPatched
	}
	log.WithField("applied", result.Applied).WithField("skipped", result.Skipped).Debug("文件处理完成")
	return result
}

// ensureBackup saves the original before the first write. When the file on
// disk is a verified original that differs from the stored backup, the
// backup is refreshed.
func (e *Engine) ensureBackup(f TargetFile, res Resolution, result *FileResult) error {
	if !e.backups.Exists(f.Path) {
		created, err := e.backups.Save(f.Path)
		result.BackupCreated = created
		return err
	}
	if res.AlreadyPatched {
		return nil
	}

	current, err := patcher.Fingerprint(f.Path)
	if err != nil {
		return err
	}
	if current != res.Fingerprint {
		return nil
	}
	stored, err := patcher.Fingerprint(e.backups.BackupPath(f.Path))
	if err != nil {
		return err
	}
	if stored == current {
		return nil
	}
	if err := e.backups.Replace(f.Path); err != nil {
		return err
	}
	result.BackupUpdated = true
	e.logger.WithField("file", f.Name).Info("检测到新版本，已更新备份")
	return nil
}

// BackupExists reports whether every required file has a backup.
func (e *Engine) BackupExists() bool {
	target, _ := e.snapshot()
	if target == nil || len(target.Files) == 0 {
		return false
	}
	for _, f := range target.Files {
		if !e.backups.Exists(f.Path) {
			return false
		}
	}
	return true
}

// Restore copies every backup back over its original. If any file has no
// backup nothing is touched.
func (e *Engine) Restore() (*Report, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	target, state := e.snapshot()
	if target == nil || state < FilesPresent {
		return nil, ErrInvalidState
	}

	report := &Report{App: e.profile.ID}
	missing := false
	for _, f := range target.Files {
		result := FileResult{File: f.Name}
		if !e.backups.Exists(f.Path) {
			result.Status = StatusFailed
			result.Err = &patcher.BackupMissingError{Path: e.backups.BackupPath(f.Path)}
			missing = true
		}
		report.Files = append(report.Files, result)
	}
	if missing {
		err := report.Err()
		e.logger.WithError(err).Warn("备份缺失，未还原任何文件")
		return report, err
	}

	report.Files = forEachFile(target.Files, func(f TargetFile) FileResult {
		if err := e.backups.Restore(f.Path); err != nil {
			e.logger.WithField("file", f.Name).WithError(err).Error("还原文件失败")
			return FileResult{File: f.Name, Status: StatusFailed, Err: err}
		}
		return FileResult{File: f.Name, Status: StatusRestored}
	})

	next := *target
	next.Resolved = map[string]Resolution{}
	e.setState(&next, FilesPresent)

	err := report.Err()
	if err == nil {
		e.logger.WithField("root", target.Root).Info("已还原")
	}
	return report, err
}

func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return ErrBusy
	}
	e.busy = true
	return nil
}

func (e *Engine) end() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

func (e *Engine) snapshot() (*Target, State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target, e.state
}

func (e *Engine) setState(t *Target, s State) {
	e.mu.Lock()
	e.target = t
	e.state = s
	e.mu.Unlock()
}

// forEachFile runs fn for every file concurrently and keeps results in file
// order.
func forEachFile(files []TargetFile, fn func(TargetFile) FileResult) []FileResult {
	results := make([]FileResult, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fn(f)
		}()
	}
	wg.Wait()
	return results
}
