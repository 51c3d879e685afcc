package pe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const fixedFileInfoSignature = 0xFEEF04BD

var errTruncated = errors.New("版本资源数据不完整")

// VersionInfo contains the fields of a VS_VERSIONINFO resource.
type VersionInfo struct {
	FixedFileVersion    string
	FixedProductVersion string
	Strings             map[string]string
}

// Version returns the file version, preferring the numeric fixed info.
func (v *VersionInfo) Version() string {
	if v.FixedFileVersion != "" {
		return v.FixedFileVersion
	}
	s := strings.TrimSpace(v.Strings["FileVersion"])
	return strings.ReplaceAll(strings.ReplaceAll(s, ", ", "."), ",", ".")
}

// ReadVersionInfo parses the version resource of a PE file.
func ReadVersionInfo(path string) (*VersionInfo, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := r.versionResource()
	if err != nil {
		return nil, err
	}
	return parseVersionInfo(data)
}

// FileVersion returns the version of a PE file, or "" when it cannot be read.
func FileVersion(path string) string {
	info, err := ReadVersionInfo(path)
	if err != nil {
		return ""
	}
	return info.Version()
}

type versionNode struct {
	key      string
	typ      uint16
	value    []byte
	children []*versionNode
}

func parseVersionInfo(data []byte) (*VersionInfo, error) {
	root, _, err := parseVersionNode(data)
	if err != nil {
		return nil, err
	}
	if root.key != "VS_VERSION_INFO" {
		return nil, fmt.Errorf("版本资源标识错误: %q", root.key)
	}

	info := &VersionInfo{Strings: map[string]string{}}
	if len(root.value) >= 24 && binary.LittleEndian.Uint32(root.value) == fixedFileInfoSignature {
		info.FixedFileVersion = formatVersion(
			binary.LittleEndian.Uint32(root.value[8:]),
			binary.LittleEndian.Uint32(root.value[12:]))
		info.FixedProductVersion = formatVersion(
			binary.LittleEndian.Uint32(root.value[16:]),
			binary.LittleEndian.Uint32(root.value[20:]))
	}

	for _, child := range root.children {
		if child.key != "StringFileInfo" {
			continue
		}
		for _, table := range child.children {
			for _, entry := range table.children {
				if _, seen := info.Strings[entry.key]; seen {
					continue
				}
				info.Strings[entry.key] = decodeUTF16(entry.value)
			}
		}
	}
	return info, nil
}

// parseVersionNode decodes one length-prefixed node and its children.
func parseVersionNode(data []byte) (*versionNode, int, error) {
	if len(data) < 6 {
		return nil, 0, errTruncated
	}
	length := int(binary.LittleEndian.Uint16(data))
	if length < 6 || length > len(data) {
		return nil, 0, errTruncated
	}
	data = data[:length]
	valueLen := int(binary.LittleEndian.Uint16(data[2:]))
	node := &versionNode{typ: binary.LittleEndian.Uint16(data[4:])}

	keyEnd := 6
	for keyEnd+1 < len(data) && (data[keyEnd] != 0 || data[keyEnd+1] != 0) {
		keyEnd += 2
	}
	if keyEnd+1 >= len(data) {
		return nil, 0, errTruncated
	}
	node.key = decodeUTF16(data[6:keyEnd])

	// Text values are measured in UTF-16 words.
	if node.typ == 1 {
		valueLen *= 2
	}
	off := min(align4(keyEnd+2), len(data))
	end := min(off+valueLen, len(data))
	node.value = data[off:end]

	for off = align4(end); off+6 <= len(data); {
		child, size, err := parseVersionNode(data[off:])
		if err != nil {
			return nil, 0, err
		}
		node.children = append(node.children, child)
		off = align4(off + size)
	}
	return node, length, nil
}

func decodeUTF16(data []byte) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\x00")
}

func formatVersion(ms, ls uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", ms>>16, ms&0xFFFF, ls>>16, ls&0xFFFF)
}

func align4(n int) int {
	return (n + 3) &^ 3
}
