// Package protocol implements the GW1000 gateway binary API.
//
// This package handles construction of command frames, validation of
// response frames and decoding of response payloads into typed values. The
// gateway speaks a request/response protocol over TCP; every exchange is a
// single frame in each direction.
//
// # Frame Format
//
// Request and response frames share one layout:
//   - Header: 2 bytes (0xFF 0xFF)
//   - Command code: 1 byte
//   - Size: 1 byte, or 2 bytes big-endian for a few responses
//   - Payload: variable length
//   - Checksum: 1 byte, sum of command code, size and payload mod 256
//
// The size counts every byte after the header, checksum included. Whether a
// response carries a one or two byte size field is a property of the command
// that was sent, so ExtractPayload takes the width from the caller.
//
// # Live Data
//
// The live data payload (CMD_GW1000_LIVEDATA) is a sequence of fields, each
// a one byte field code followed by a fixed number of data bytes. The field
// table maps every code to a decoder, a width and one or more observation
// names. Field widths are not self describing, so an unknown field code
// aborts the decode with ErrMalformedPayload.
//
// # Usage Example - Request
//
//	frame, err := protocol.BuildFrame("CMD_READ_FIRMWARE_VERSION", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// frame = FF FF 50 03 53
//
// # Usage Example - Response
//
//	if err := protocol.ValidateResponse(resp, protocol.CmdReadFirmwareVersion); err != nil {
//	    return err
//	}
//	payload := protocol.ExtractPayload(resp, protocol.CmdReadFirmwareVersion.SizeWidth())
//	version := protocol.ParseFirmwareVersion(payload)
//
// # Lenient Decoding
//
// Field decoders and response parsers do not fail on a length mismatch.
// A scalar decoder reports absent (ok == false), a composite decoder returns
// an empty result and a response parser leaves the fields it could not read
// at their zero value. Firmware revisions add and widen fields over time and
// partial results keep older and newer gateways usable.
//
// # Error Handling
//
// Errors returned by this package are *ProtocolError values and match the
// sentinels ErrUnknownCommand, ErrInvalidAPIResponse, ErrInvalidChecksum and
// ErrMalformedPayload with errors.Is.
//
// # Thread Safety
//
// The package holds only read-only tables. All functions are safe for
// concurrent use.
package protocol
