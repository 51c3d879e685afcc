// Package pe reads the version metadata of the PE binaries shipped by the
// supported chat clients.
package pe

import (
	"debug/pe"
	"fmt"
	"os"
)

// Reader wraps debug/pe.File with the handle it was parsed from.
type Reader struct {
	file     *pe.File
	raw      *os.File
	filesize int64
}

// Open opens a PE file for reading.
func Open(filepath string) (*Reader, error) {
	raw, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("打开PE文件失败: %w", err)
	}

	stat, err := raw.Stat()
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("获取文件信息失败: %w", err)
	}

	f, err := pe.NewFile(raw)
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("解析PE文件失败: %w", err)
	}

	return &Reader{
		file:     f,
		raw:      raw,
		filesize: stat.Size(),
	}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	_ = r.file.Close()
	return r.raw.Close()
}

// rvaToOffset converts a relative virtual address to a file offset.
func (r *Reader) rvaToOffset(rva uint32) (int64, error) {
	for _, section := range r.file.Sections {
		size := section.VirtualSize
		if size == 0 {
			size = section.Size
		}
		if rva >= section.VirtualAddress && rva < section.VirtualAddress+size {
			return int64(rva - section.VirtualAddress + section.Offset), nil
		}
	}
	return 0, fmt.Errorf("RVA 0x%X 不在任何节区内", rva)
}

func (r *Reader) dataDirectory(index int) (rva, size uint32) {
	switch oh := r.file.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if len(oh.DataDirectory) > index {
			return oh.DataDirectory[index].VirtualAddress, oh.DataDirectory[index].Size
		}
	case *pe.OptionalHeader64:
		if len(oh.DataDirectory) > index {
			return oh.DataDirectory[index].VirtualAddress, oh.DataDirectory[index].Size
		}
	}
	return 0, 0
}
