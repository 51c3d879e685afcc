package patcher

import (
	"crypto/sha1" //nolint:gosec // catalog digests are SHA-1
	"encoding/hex"
	"io"
	"os"
)

// Fingerprint returns the lowercase hex SHA-1 of the whole file.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ioErr("打开文件", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha1.New() //nolint:gosec
	if _, err := io.Copy(h, f); err != nil {
		return "", ioErr("读取文件", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
