package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// BytesToHex renders data as hex byte pairs joined by sep, e.g.
// BytesToHex([]byte{0xFF, 0x00}, " ", true) == "FF 00".
func BytesToHex(data []byte, sep string, upper bool) string {
	format := "%02x"
	if upper {
		format = "%02X"
	}
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf(format, b)
	}
	return strings.Join(parts, sep)
}

// ParseHex decodes a hex string such as "FF FF 50 03 53", "ff:ff:50" or
// "ffff5003". Spaces, colons and dashes between pairs are ignored, as is a
// leading "0x".
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '-', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)

	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("cannot represent %q as hexadecimal bytes: %w", s, err)
	}
	return data, nil
}

// Obfuscate masks all but the tail of a secret with '*'. Longer strings
// keep more characters visible: over 8 keep 4, over 5 keep 3, over 3 keep
// 2, over 2 keep 1, anything shorter is fully masked.
func Obfuscate(s string) string {
	return ObfuscateWith(s, '*')
}

// ObfuscateWith is Obfuscate with a custom mask character
func ObfuscateWith(s string, mask rune) string {
	runes := []rune(s)
	var keep int
	switch n := len(runes); {
	case n > 8:
		keep = 4
	case n > 5:
		keep = 3
	case n > 3:
		keep = 2
	case n > 2:
		keep = 1
	}
	return strings.Repeat(string(mask), len(runes)-keep) + string(runes[len(runes)-keep:])
}
