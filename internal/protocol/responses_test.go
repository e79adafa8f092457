package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lstr(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestParseBroadcast(t *testing.T) {
	payload := concat(
		[]byte{0xDC, 0x4F, 0x22, 0x58, 0xA2, 0x0B},
		[]byte{192, 168, 2, 20},
		[]byte{0xAF, 0xC8},
		lstr("GW1000-WIFIA20B"),
	)

	want := BroadcastInfo{
		MAC:  "DC:4F:22:58:A2:0B",
		IP:   "192.168.2.20",
		Port: 45000,
		SSID: "GW1000-WIFIA20B",
	}
	assert.Equal(t, want, ParseBroadcast(payload))

	// Short payloads keep what could be read
	assert.Equal(t, BroadcastInfo{MAC: "DC:4F:22:58:A2:0B", IP: "192.168.2.20"},
		ParseBroadcast(payload[:11]))
	assert.Equal(t, BroadcastInfo{}, ParseBroadcast(nil))
}

func TestParseFirmwareVersion(t *testing.T) {
	assert.Equal(t, "GW1000_V1.6.1", ParseFirmwareVersion(ExtractPayload(firmwareFrame, 1)))
	assert.Equal(t, "", ParseFirmwareVersion(nil))
	// Length byte overruns the payload
	assert.Equal(t, "GW", ParseFirmwareVersion([]byte{0x0D, 'G', 'W'}))
}

func TestParseStationMAC(t *testing.T) {
	assert.Equal(t, "DC:4F:22:58:A2:0B", ParseStationMAC([]byte{0xDC, 0x4F, 0x22, 0x58, 0xA2, 0x0B}))
	assert.Equal(t, "", ParseStationMAC([]byte{0xDC, 0x4F}))
}

func TestParseServiceConfigs(t *testing.T) {
	assert.Equal(t, EcowittConfig{Interval: 5}, ParseEcowitt([]byte{0x05}))
	assert.Equal(t, EcowittConfig{}, ParseEcowitt(nil))

	assert.Equal(t,
		WundergroundConfig{ID: "IBRISB123", Password: "secretkey", Fixed: 1},
		ParseWunderground(concat(lstr("IBRISB123"), lstr("secretkey"), []byte{0x01})))

	assert.Equal(t,
		WOWConfig{ID: "wowid", Password: "pw", StationNum: "0102030405060708", Fixed: 1},
		ParseWOW(concat(lstr("wowid"), lstr("pw"),
			[]byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{0x01})))

	assert.Equal(t,
		WeathercloudConfig{ID: "cloud", Key: "key123"},
		ParseWeathercloud(concat(lstr("cloud"), lstr("key123"), []byte{0x00})))

	assert.Equal(t,
		CustomizedConfig{
			ID: "id", Password: "pw", Server: "weather.local",
			Port: 8080, Interval: 60, Type: 1, Active: 1,
		},
		ParseCustomized(concat(lstr("id"), lstr("pw"), lstr("weather.local"),
			[]byte{0x1F, 0x90, 60, 1, 1})))

	assert.Equal(t,
		UserPath{Ecowitt: "/data/report/", Wunderground: "/weatherstation/updateweatherstation.php?"},
		ParseUserPath(concat(lstr("/data/report/"), lstr("/weatherstation/updateweatherstation.php?"))))
}

func TestParseCustomized_Truncated(t *testing.T) {
	got := ParseCustomized(concat(lstr("id"), lstr("pw"), lstr("srv"), []byte{0x1F}))
	assert.Equal(t, CustomizedConfig{ID: "id", Password: "pw", Server: "srv"}, got)
}

func TestParseMulchOffsets(t *testing.T) {
	payload := []byte{
		0x00, 0x02, 0xFB, // ch1: +2%, -0.5
		0x01, 0xFE, 0x0A, // ch2: -2%, +1.0
		0x02, // partial record
	}
	want := []MulchOffset{
		{Channel: 0, Humidity: 2, Temp: -0.5},
		{Channel: 1, Humidity: -2, Temp: 1.0},
	}
	assert.Equal(t, want, ParseMulchOffsets(payload))
	assert.Empty(t, ParseMulchOffsets(nil))
}

func TestParsePM25Offsets(t *testing.T) {
	payload := []byte{
		0x00, 0x00, 0x0F,
		0x01, 0xFF, 0xF6,
	}
	want := []PM25Offset{
		{Channel: 0, Offset: 1.5},
		{Channel: 1, Offset: -1.0},
	}
	assert.Equal(t, want, ParsePM25Offsets(payload))
}

func TestParseCO2Offset(t *testing.T) {
	assert.Equal(t,
		CO2Offset{CO2: 400, PM25: -1.5, PM10: 2.0},
		ParseCO2Offset([]byte{0x01, 0x90, 0xFF, 0xF1, 0x00, 0x14}))
	assert.Equal(t, CO2Offset{CO2: 400}, ParseCO2Offset([]byte{0x01, 0x90}))
}

func TestParseSystemParams(t *testing.T) {
	got := ParseSystemParams([]byte{0x01, 0x00, 0x5F, 0x40, 0x72, 0x51, 0x27, 0x01})
	assert.Equal(t, SystemParams{
		Frequency:     1,
		SensorType:    0,
		UTC:           1598059089,
		TimezoneIndex: 39,
		DSTStatus:     true,
	}, got)
	assert.Equal(t, "868MHz", got.FrequencyName())
	assert.Equal(t, "unknown(9)", SystemParams{Frequency: 9}.FrequencyName())
}

func TestParseRainData(t *testing.T) {
	payload := []byte{
		0x00, 0x00, 0x00, 0x34,
		0x00, 0x00, 0x01, 0x70,
		0x00, 0x00, 0x02, 0x00,
		0x00, 0x00, 0x10, 0x00,
		0x01, 0x70, 0x37, 0x21,
	}
	assert.Equal(t, RainData{
		RainRate:  5.2,
		RainDay:   36.8,
		RainWeek:  51.2,
		RainMonth: 409.6,
		RainYear:  2413136.1,
	}, ParseRainData(payload))
}

func TestParseCalibration(t *testing.T) {
	payload := []byte{
		0xFF, 0xF6, // intemp -1.0
		0x03,                   // inhum +3
		0x00, 0x00, 0x00, 0x64, // abs +10.0
		0xFF, 0xFF, 0xFF, 0x9C, // rel -10.0
		0x00, 0x05, // outtemp +0.5
		0xFE,       // outhum -2
		0xFF, 0xD3, // winddir -45
	}
	assert.Equal(t, Calibration{
		InTempOffset:  -1.0,
		InHumOffset:   3,
		AbsOffset:     10.0,
		RelOffset:     -10.0,
		OutTempOffset: 0.5,
		OutHumOffset:  -2,
		WindDirOffset: -45,
	}, ParseCalibration(payload))
}

func TestParseGain(t *testing.T) {
	payload := []byte{
		0x00, 0x00,
		0x00, 0x64,
		0x00, 0x96,
		0x00, 0xC8,
		0x00, 0x32,
	}
	assert.Equal(t, Gain{UV: 1.0, Solar: 1.5, Wind: 2.0, Rain: 0.5}, ParseGain(payload))
}

func TestParseSoilCalibration(t *testing.T) {
	payload := []byte{
		0x00, 0x27, 0x00, 0xC8, 0x00, 0x46, 0x01, 0xF4,
		0x01, 0x14, 0x01, 0x00, 0x01, 0x50, 0x01, 0x90,
		0x02, 0x00, // partial
	}
	assert.Equal(t, []SoilCalibration{
		{Channel: 0, Humidity: 39, AD: 200, Custom: false, MinAD: 70, MaxAD: 500},
		{Channel: 1, Humidity: 20, AD: 256, Custom: true, MinAD: 80, MaxAD: 400},
	}, ParseSoilCalibration(payload))
}
