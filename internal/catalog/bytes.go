package catalog

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bytes decodes either an integer array ([1, 0, 255]) or a hex string
// ("01 00 ff"). Published catalogs use the array form.
type Bytes []byte

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err == nil {
		return b.fromInts(ints)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("字节数组格式错误: %s", data)
	}
	return b.fromHex(s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Bytes) UnmarshalYAML(n *yaml.Node) error {
	var ints []int
	if err := n.Decode(&ints); err == nil {
		return b.fromInts(ints)
	}

	var s string
	if err := n.Decode(&s); err != nil {
		return fmt.Errorf("line %d: 字节数组格式错误", n.Line)
	}
	if err := b.fromHex(s); err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	return nil
}

// MarshalJSON writes the integer array form.
func (b Bytes) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// String renders the bytes as spaced hex.
func (b Bytes) String() string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}

func (b *Bytes) fromInts(ints []int) error {
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 0xFF {
			return fmt.Errorf("第 %d 个字节超出范围: %d", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

func (b *Bytes) fromHex(s string) error {
	s = strings.NewReplacer(" ", "", "0x", "", "0X", "", ",", "").Replace(s)
	out, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("十六进制字节格式错误 %q: %w", s, err)
	}
	*b = out
	return nil
}
