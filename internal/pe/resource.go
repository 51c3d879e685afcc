package pe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Resource types.
const (
	RT_VERSION = 16
)

const resourceDirectoryIndex = 2

// ErrNoVersionResource is returned when the binary has no RT_VERSION entry.
var ErrNoVersionResource = errors.New("未找到版本资源")

// IMAGE_RESOURCE_DIRECTORY structure.
type resourceDirectory struct {
	Characteristics      uint32
	TimeDateStamp        uint32
	MajorVersion         uint16
	MinorVersion         uint16
	NumberOfNamedEntries uint16
	NumberOfIdEntries    uint16
}

// IMAGE_RESOURCE_DIRECTORY_ENTRY structure.
type resourceDirectoryEntry struct {
	NameOrID                uint32
	OffsetToDataOrDirectory uint32
}

// IMAGE_RESOURCE_DATA_ENTRY structure.
type resourceDataEntry struct {
	OffsetToData uint32
	Size         uint32
	CodePage     uint32
	Reserved     uint32
}

// versionResource returns the raw VS_VERSIONINFO block of the file.
func (r *Reader) versionResource() ([]byte, error) {
	rva, size := r.dataDirectory(resourceDirectoryIndex)
	if rva == 0 || size == 0 {
		return nil, ErrNoVersionResource
	}

	base, err := r.rvaToOffset(rva)
	if err != nil {
		return nil, err
	}
	return findVersionResource(r.raw, r.filesize, base, r.rvaToOffset)
}

// findVersionResource walks type -> name -> language and reads the first
// RT_VERSION data entry. The entry must lie within the first size bytes of r.
func findVersionResource(r io.ReaderAt, size, base int64, resolve func(uint32) (int64, error)) ([]byte, error) {
	entry, ok, err := findEntry(r, base, func(e resourceDirectoryEntry) bool {
		return e.NameOrID == RT_VERSION
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoVersionResource
	}

	offset := base + int64(entry.OffsetToDataOrDirectory&0x7FFFFFFF)
	for depth := 0; depth < 2 && entry.OffsetToDataOrDirectory&0x80000000 != 0; depth++ {
		entry, ok, err = findEntry(r, offset, func(resourceDirectoryEntry) bool { return true })
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoVersionResource
		}
		offset = base + int64(entry.OffsetToDataOrDirectory&0x7FFFFFFF)
	}
	if entry.OffsetToDataOrDirectory&0x80000000 != 0 {
		return nil, fmt.Errorf("版本资源目录层级异常")
	}

	var data resourceDataEntry
	if err := binary.Read(io.NewSectionReader(r, offset, 16), binary.LittleEndian, &data); err != nil {
		return nil, fmt.Errorf("读取资源数据项失败: %w", err)
	}

	dataOffset, err := resolve(data.OffsetToData)
	if err != nil {
		return nil, err
	}

	if dataOffset < 0 || dataOffset+int64(data.Size) > size {
		return nil, fmt.Errorf("版本资源超出文件范围: 0x%X + %d", dataOffset, data.Size)
	}

	buf := make([]byte, data.Size)
	if _, err := r.ReadAt(buf, dataOffset); err != nil {
		return nil, fmt.Errorf("读取版本资源失败: %w", err)
	}
	return buf, nil
}

func findEntry(r io.ReaderAt, dirOffset int64, match func(resourceDirectoryEntry) bool) (resourceDirectoryEntry, bool, error) {
	var dir resourceDirectory
	if err := binary.Read(io.NewSectionReader(r, dirOffset, 16), binary.LittleEndian, &dir); err != nil {
		return resourceDirectoryEntry{}, false, fmt.Errorf("读取资源目录失败: %w", err)
	}

	total := int(dir.NumberOfNamedEntries) + int(dir.NumberOfIdEntries)
	for i := 0; i < total; i++ {
		var entry resourceDirectoryEntry
		entryOffset := dirOffset + 16 + int64(i*8)
		if err := binary.Read(io.NewSectionReader(r, entryOffset, 8), binary.LittleEndian, &entry); err != nil {
			return resourceDirectoryEntry{}, false, fmt.Errorf("读取资源目录项失败: %w", err)
		}
		if match(entry) {
			return entry, true, nil
		}
	}
	return resourceDirectoryEntry{}, false, nil
}
