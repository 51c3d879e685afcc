package patcher

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// DefaultBackupSuffix is appended to the original file name.
const DefaultBackupSuffix = ".h.bak"

// BackupStore keeps a byte-exact copy of each original file next to it.
type BackupStore struct {
	suffix string
}

// NewBackupStore creates a store using suffix, or DefaultBackupSuffix when empty.
func NewBackupStore(suffix string) *BackupStore {
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	return &BackupStore{suffix: suffix}
}

// BackupPath returns where the backup of original lives.
func (s *BackupStore) BackupPath(original string) string {
	return original + s.suffix
}

// Exists reports whether a backup of original is present.
func (s *BackupStore) Exists(original string) bool {
	info, err := os.Stat(s.BackupPath(original))
	return err == nil && info.Mode().IsRegular()
}

// Save copies original aside unless a backup already exists, so an already
// patched file never replaces the true original.
func (s *BackupStore) Save(original string) (bool, error) {
	if s.Exists(original) {
		return false, nil
	}
	if err := copyFile(original, s.BackupPath(original)); err != nil {
		return false, ioErr("创建备份", original, err)
	}
	return true, nil
}

// Replace overwrites any existing backup with the current content of original.
func (s *BackupStore) Replace(original string) error {
	if err := copyFile(original, s.BackupPath(original)); err != nil {
		return ioErr("更新备份", original, err)
	}
	return nil
}

// Restore copies the backup back over original.
func (s *BackupStore) Restore(original string) error {
	if !s.Exists(original) {
		return &BackupMissingError{Path: s.BackupPath(original)}
	}
	if err := copyFile(s.BackupPath(original), original); err != nil {
		return ioErr("还原文件", original, err)
	}
	return nil
}

// copyFile writes src to a temp file beside dst and renames it into place.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		if !errors.Is(err, os.ErrExist) {
			return err
		}
		if err = os.Remove(dst); err != nil {
			return err
		}
		return os.Rename(tmpPath, dst)
	}
	return nil
}
