package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupField(t *testing.T) {
	tests := []struct {
		code    byte
		decoder Decoder
		size    int
		name    string
	}{
		{0x01, DecodeTempKind, 2, "intemp"},
		{0x06, DecodeHumidKind, 1, "inhumid"},
		{0x0A, DecodeDirKind, 2, "winddir"},
		{0x12, DecodeBigRainKind, 4, "rainmonth"},
		{0x18, DecodeDatetimeKind, 6, "datetime"},
		{0x2B, DecodeTempKind, 2, "soiltemp1"},
		{0x4A, DecodeMoistKind, 1, "soilmoist16"},
		{0x4C, DecodeBattKind, 16, "lowbatt"},
		{0x53, DecodePM25Kind, 2, "pm254"},
		{0x5B, DecodeLeakKind, 1, "leak4"},
		{0x60, DecodeDistanceKind, 1, "lightningdist"},
		{0x61, DecodeUTCKind, 4, "lightningdettime"},
		{0x62, DecodeCountKind, 4, "lightningcount"},
		{0x6A, DecodeWH34Kind, 3, "temp16"},
		{0x70, DecodeWH45Kind, 16, "temp17"},
		{0x71, DecodeNoneKind, 0, ""},
		{0x79, DecodeWetKind, 1, "leafwet8"},
	}

	for _, tt := range tests {
		t.Run(tt.decoder.String(), func(t *testing.T) {
			def, ok := LookupField(tt.code)
			require.True(t, ok, "code 0x%02X", tt.code)
			assert.Equal(t, tt.decoder, def.Decoder)
			assert.Equal(t, tt.size, def.Size)
			assert.Equal(t, tt.name, def.Name())
		})
	}

	for _, code := range []byte{0x00, 0x4B, 0x54, 0x5C, 0x6B, 0x7A, 0xFF} {
		_, ok := LookupField(code)
		assert.False(t, ok, "code 0x%02X", code)
	}
}

func TestFieldTable_Consistency(t *testing.T) {
	seen := make(map[string]byte)
	for _, code := range FieldCodes() {
		def, _ := LookupField(code)
		for _, name := range def.Names {
			prev, dup := seen[name]
			assert.False(t, dup, "name %q used by 0x%02X and 0x%02X", name, prev, code)
			seen[name] = code
		}
	}

	wh45, _ := LookupField(0x70)
	assert.Len(t, wh45.Names, 8)

	for _, code := range append(append([]byte(nil), RainFieldCodes...), WindFieldCodes...) {
		_, ok := LookupField(code)
		assert.True(t, ok, "code 0x%02X", code)
	}
}

func TestFieldSpec_Decode(t *testing.T) {
	temp, _ := LookupField(0x02)
	assert.Equal(t, Observations{"outtemp": 23.4}, temp.Decode([]byte{0x00, 0xEA}))
	assert.Equal(t, Observations{"outtemp": nil}, temp.Decode([]byte{0x00}))

	batt, _ := LookupField(0x4C)
	assert.Empty(t, batt.Decode(make([]byte, 16)))

	placeholder, _ := LookupField(0x71)
	assert.Empty(t, placeholder.Decode(nil))

	dt, _ := LookupField(0x18)
	assert.Equal(t, Observations{"datetime": 1599021263}, dt.Decode([]byte{20, 9, 2, 4, 34, 23}))

	wh34, _ := LookupField(0x63)
	assert.Equal(t, Observations{"temp9": 23.4}, wh34.Decode([]byte{0x00, 0xEA, 0x4D}))
}

func TestDecoder_String(t *testing.T) {
	assert.Equal(t, "big_rain", DecodeBigRainKind.String())
	assert.Equal(t, "Decoder(200)", Decoder(200).String())
}
