package patcher

import "fmt"

// IOError reports a file that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s失败 (%s): %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// RangeError reports an access outside the file bounds. It usually means the
// recipe was written for a different build.
type RangeError struct {
	Path   string
	Offset int64
	Length int
	Size   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("偏移越界 (%s): 0x%X + %d 字节超出文件大小 %d", e.Path, e.Offset, e.Length, e.Size)
}

// BackupMissingError is returned when a restore is requested but no backup
// was ever taken for the file.
type BackupMissingError struct {
	Path string
}

func (e *BackupMissingError) Error() string {
	return fmt.Sprintf("未找到备份文件: %s", e.Path)
}

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
