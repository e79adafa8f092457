package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatDecoders(t *testing.T) {
	tests := []struct {
		name   string
		decode func([]byte) (float64, bool)
		data   []byte
		want   float64
	}{
		{"temp", DecodeTemp, []byte{0x00, 0xEA}, 23.4},
		{"temp negative", DecodeTemp, []byte{0xFF, 0x9C}, -10.0},
		{"press", DecodePress, []byte{0x27, 0x4C}, 1006.0},
		{"speed", DecodeSpeed, []byte{0x00, 0x70}, 11.2},
		{"rain", DecodeRain, []byte{0x01, 0x70}, 36.8},
		{"rainrate", DecodeRainRate, []byte{0x00, 0x34}, 5.2},
		{"big rain", DecodeBigRain, []byte{0x01, 0x70, 0x37, 0x21}, 2413136.1},
		{"light", DecodeLight, []byte{0x02, 0x40, 0x72, 0x51}, 3777800.1},
		{"uv", DecodeUV, []byte{0x32, 0x70}, 1291.2},
		{"pm25", DecodePM25, []byte{0x00, 0x39}, 5.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.decode(tt.data)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)

			_, ok = tt.decode(tt.data[:len(tt.data)-1])
			assert.False(t, ok, "short input")
			_, ok = tt.decode(append(append([]byte(nil), tt.data...), 0x00))
			assert.False(t, ok, "long input")
		})
	}
}

func TestIntDecoders(t *testing.T) {
	tests := []struct {
		name   string
		decode func([]byte) (int, bool)
		data   []byte
		want   int
	}{
		{"humid", DecodeHumid, []byte{0x48}, 72},
		{"dir", DecodeDir, []byte{0x00, 0x70}, 112},
		{"uvi", DecodeUVI, []byte{0x0C}, 12},
		{"moist", DecodeMoist, []byte{0x3A}, 58},
		{"wet", DecodeWet, []byte{0x3A}, 58},
		{"leak", DecodeLeak, []byte{0x3A}, 58},
		{"distance", DecodeDistance, []byte{0x1A}, 26},
		{"count", DecodeCount, []byte{0x00, 0x40, 0x72, 0x51}, 4223569},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.decode(tt.data)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)

			_, ok = tt.decode(tt.data[:len(tt.data)-1])
			assert.False(t, ok, "short input")
			_, ok = tt.decode(append(append([]byte(nil), tt.data...), 0x00))
			assert.False(t, ok, "long input")
		})
	}
}

func TestDecodeTemp_WrongLength(t *testing.T) {
	_, ok := DecodeTemp([]byte{0x00})
	assert.False(t, ok)
	_, ok = DecodeTemp([]byte{0x00, 0xEA, 0x00})
	assert.False(t, ok)
}

func TestDecodeUTC(t *testing.T) {
	got, ok := DecodeUTC([]byte{0x5F, 0x40, 0x72, 0x51})
	assert.True(t, ok)
	assert.Equal(t, int64(1598059089), got)

	_, ok = DecodeUTC([]byte{0x5F, 0x40, 0x72})
	assert.False(t, ok)
}

func TestDecodeDatetime(t *testing.T) {
	dt, ok := DecodeDatetime([]byte{0x0C, 0xAB, 0x23, 0x41, 0x56, 0x37})
	assert.True(t, ok)
	assert.Equal(t, Datetime{12, 171, 35, 65, 86, 55}, dt)

	// Raw bytes are out of range for a calendar date
	_, ok = DatetimeToEpoch(dt)
	assert.False(t, ok)

	_, ok = DecodeDatetime([]byte{0x0C, 0xAB, 0x23, 0x41, 0x56})
	assert.False(t, ok)
}

func TestDatetimeToEpoch(t *testing.T) {
	epoch, ok := DatetimeToEpoch(Datetime{20, 9, 2, 4, 34, 23})
	assert.True(t, ok)
	assert.Equal(t, int64(1599021263), epoch)
}

func TestDecodeBatt(t *testing.T) {
	v, ok := DecodeBatt(make([]byte, 16))
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestDecodeWH34(t *testing.T) {
	assert.Equal(t, Observations{"t": 23.4}, DecodeWH34([]byte{0x00, 0xEA, 0x4D}, "t"))
	assert.Equal(t, Observations{}, DecodeWH34([]byte{0x00, 0xEA}, "t"))
	assert.Equal(t, Observations{}, DecodeWH34([]byte{0x00, 0xEA, 0x4D, 0x00}, "t"))
}

func TestDecodeWH45(t *testing.T) {
	data := []byte{
		0x00, 0xEA, 0x4D, 0x35, 0x6D, 0x28, 0x78, 0x34,
		0x3D, 0x62, 0x7E, 0x8D, 0x2A, 0x39, 0x9F, 0x04,
	}
	names := []string{"t", "h", "p10", "p10_24", "p25", "p25_24", "c", "c_24"}

	want := Observations{
		"t":      23.4,
		"h":      77,
		"p10":    1367.7,
		"p10_24": 1036.0,
		"p25":    1337.3,
		"p25_24": 2521.4,
		"c":      36138,
		"c_24":   14751,
	}
	assert.Equal(t, want, DecodeWH45(data, names))

	assert.Equal(t, Observations{}, DecodeWH45(data[:15], names))
	assert.Equal(t, Observations{}, DecodeWH45(append(append([]byte(nil), data...), 0), names))
	assert.Equal(t, Observations{}, DecodeWH45(data, names[:7]))
}
