package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZacharyZcR/RevokePatch/internal/catalog"
)

var (
	// ErrBusy is returned when another operation is already running on the engine.
	ErrBusy = errors.New("正在执行其他操作，请稍后再试")
	// ErrInvalidState is returned when an operation is called out of order.
	ErrInvalidState = errors.New("当前状态不允许此操作")
)

// UnsupportedVersionError reports a file whose fingerprint is not in the
// catalog, or an application the catalog does not cover at all.
type UnsupportedVersionError struct {
	App         string
	File        string
	Fingerprint string
	Version     string
	Supported   string
}

func (e *UnsupportedVersionError) Error() string {
	var b strings.Builder
	b.WriteString("不支持此版本")
	if e.Version != "" {
		fmt.Fprintf(&b, ": %s", e.Version)
	}
	if e.File != "" {
		fmt.Fprintf(&b, " (%s SHA1: %s)", e.File, e.Fingerprint)
	} else {
		fmt.Fprintf(&b, " (补丁配置中没有 %s)", e.App)
	}
	if e.Supported != "" {
		fmt.Fprintf(&b, "，当前支持的版本为: %s", e.Supported)
	}
	return b.String()
}

// CorruptedTargetError reports bytes that match neither side of an edit.
type CorruptedTargetError struct {
	File     string
	Offset   int64
	Found    []byte
	Original []byte
	New      []byte
}

func (e *CorruptedTargetError) Error() string {
	return fmt.Sprintf("文件内容异常 (%s @ 0x%X): 实际 %s，期望 %s 或 %s",
		e.File, e.Offset, catalog.Bytes(e.Found), catalog.Bytes(e.Original), catalog.Bytes(e.New))
}

// MissingFilesError lists required files absent from an installation root.
type MissingFilesError struct {
	Root    string
	Missing []string
}

func (e *MissingFilesError) Error() string {
	if e.Root == "" {
		return "未指定安装路径"
	}
	return fmt.Sprintf("安装目录 %s 中缺少文件: %s", e.Root, strings.Join(e.Missing, ", "))
}
