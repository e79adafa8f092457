package protocol

import (
	"encoding/binary"
	"fmt"
)

// Frame layout constants
const (
	HeaderByte = 0xFF // Both header bytes are 0xFF

	HeaderSize   = 2   // 0xFF 0xFF
	CodeOffset   = 2   // Command code follows the header
	SizeOffset   = 3   // Size field follows the command code
	MaxShortSize = 255 // Largest size a one byte size field can carry

	// minResponseSize is header + code + one byte size + checksum
	minResponseSize = HeaderSize + 1 + 1 + 1
)

// Header is the two byte frame preamble
var Header = []byte{HeaderByte, HeaderByte}

// BuildFrame constructs a request frame for the named command
//
// Frame structure:
//
//	[0-1]   0xFF 0xFF      Header
//	[2]     code           Command code
//	[3]     size           len(payload) + 3 (code, size and checksum bytes)
//	[4+]    payload        Command payload bytes
//	[N]     checksum       Sum of bytes 2..N-1 mod 256
//
// Returns ErrUnknownCommand if name is not in the catalog.
func BuildFrame(name string, payload []byte) ([]byte, error) {
	code, err := LookupCommand(name)
	if err != nil {
		return nil, err
	}
	return BuildFrameCode(code, payload)
}

// BuildFrameCode constructs a request frame for a command code
func BuildFrameCode(code CommandCode, payload []byte) ([]byte, error) {
	size := len(payload) + 3
	if size > MaxShortSize {
		return nil, fmt.Errorf("payload too large for %s: %d bytes (max %d)",
			code, len(payload), MaxShortSize-3)
	}

	frame := make([]byte, 0, HeaderSize+size)
	frame = append(frame, Header...)
	frame = append(frame, byte(code), byte(size))
	frame = append(frame, payload...)
	frame = append(frame, CalcChecksum(frame[CodeOffset:]))

	return frame, nil
}

// CalcChecksum returns the sum of data mod 256. Callers pass the bytes
// between the header and the checksum byte.
func CalcChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// ValidateResponse checks that resp answers the command code and that its
// checksum is intact. It does not modify resp.
//
// Returns ErrInvalidAPIResponse if the frame is too short or carries a
// different command code, and ErrInvalidChecksum if the trailing byte does
// not match the sum of the bytes between header and checksum.
func ValidateResponse(resp []byte, code CommandCode) error {
	if len(resp) < minResponseSize {
		return newInvalidResponse(code,
			fmt.Sprintf("response too short: %d bytes (minimum %d)", len(resp), minResponseSize))
	}

	if got := CommandCode(resp[CodeOffset]); got != code {
		return newInvalidResponse(code, fmt.Sprintf("response is for command 0x%02X", byte(got)))
	}

	want := CalcChecksum(resp[CodeOffset : len(resp)-1])
	if got := resp[len(resp)-1]; got != want {
		return newInvalidChecksum(code, got, want)
	}

	return nil
}

// ExtractPayload strips header, command code, size field and checksum from
// a response frame. sizeWidth is the width of the size field (1 or 2) and
// depends on the command sent; see CommandCode.SizeWidth.
//
// Returns nil if the frame is too short to hold the framing bytes or the
// width is not 1 or 2.
func ExtractPayload(resp []byte, sizeWidth int) []byte {
	if sizeWidth != 1 && sizeWidth != 2 {
		return nil
	}
	start := SizeOffset + sizeWidth
	if len(resp) < start+1 {
		return nil
	}
	return resp[start : len(resp)-1]
}

// DeclaredSize reads the size field of a frame. The size counts every byte
// after the header, so a complete frame is DeclaredSize()+HeaderSize long.
func DeclaredSize(frame []byte, sizeWidth int) (int, bool) {
	switch sizeWidth {
	case 1:
		if len(frame) < SizeOffset+1 {
			return 0, false
		}
		return int(frame[SizeOffset]), true
	case 2:
		if len(frame) < SizeOffset+2 {
			return 0, false
		}
		return int(binary.BigEndian.Uint16(frame[SizeOffset : SizeOffset+2])), true
	default:
		return 0, false
	}
}
