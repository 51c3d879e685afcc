// Package patcher provides the file-level primitives used to patch installed
// binaries: bounded editing, fingerprinting and backups.
package patcher

import (
	"bytes"
	"os"
)

// Editor holds an open read/write handle on a target binary.
type Editor struct {
	path     string
	file     *os.File
	filesize int64
}

// Open opens the file for exclusive read/write editing.
func Open(path string) (*Editor, error) {
	return openFile(path, os.O_RDWR)
}

// OpenReadOnly opens the file for inspection. Writes through the returned
// editor fail with an IOError.
func OpenReadOnly(path string) (*Editor, error) {
	return openFile(path, os.O_RDONLY)
}

func openFile(path string, flag int) (*Editor, error) {
	file, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, ioErr("打开文件", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, ioErr("获取文件信息", path, err)
	}

	return &Editor{
		path:     path,
		file:     file,
		filesize: stat.Size(),
	}, nil
}

// Edit opens path for writing, runs fn and closes the handle on every exit path.
func Edit(path string, fn func(e *Editor) error) error {
	return with(Open, path, fn)
}

// Inspect is Edit with a read-only handle.
func Inspect(path string, fn func(e *Editor) error) error {
	return with(OpenReadOnly, path, fn)
}

func with(open func(string) (*Editor, error), path string, fn func(e *Editor) error) (err error) {
	e, err := open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(e)
}

// Close releases the handle.
func (e *Editor) Close() error {
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	if err != nil {
		return ioErr("关闭文件", e.path, err)
	}
	return nil
}

// Path returns the file path.
func (e *Editor) Path() string {
	return e.path
}

// Size returns the file size in bytes.
func (e *Editor) Size() int64 {
	return e.filesize
}

// ReadAt reads length bytes at offset.
func (e *Editor) ReadAt(offset int64, length int) ([]byte, error) {
	if err := e.checkRange(offset, length); err != nil {
		return nil, err
	}

	data := make([]byte, length)
	if _, err := e.file.ReadAt(data, offset); err != nil {
		return nil, ioErr("读取文件", e.path, err)
	}
	return data, nil
}

// WriteAt overwrites len(data) bytes at offset. The file never grows.
func (e *Editor) WriteAt(offset int64, data []byte) error {
	if err := e.checkRange(offset, len(data)); err != nil {
		return err
	}

	if _, err := e.file.WriteAt(data, offset); err != nil {
		return ioErr("写入文件", e.path, err)
	}
	return nil
}

// VerifyRegion reports whether the bytes at offset equal expected.
func (e *Editor) VerifyRegion(offset int64, expected []byte) (bool, error) {
	current, err := e.ReadAt(offset, len(expected))
	if err != nil {
		return false, err
	}
	return bytes.Equal(current, expected), nil
}

// Sync flushes written bytes to disk.
func (e *Editor) Sync() error {
	if err := e.file.Sync(); err != nil {
		return ioErr("同步文件", e.path, err)
	}
	return nil
}

func (e *Editor) checkRange(offset int64, length int) error {
	if offset < 0 || length < 0 || offset+int64(length) > e.filesize {
		return &RangeError{Path: e.path, Offset: offset, Length: length, Size: e.filesize}
	}
	return nil
}
