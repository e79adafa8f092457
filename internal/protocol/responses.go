package protocol

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
)

// Response parsers take an extracted payload (see ExtractPayload) and return
// a typed result. They are lenient: a short payload leaves the remaining
// fields at their zero value instead of failing, so firmware that trims or
// extends a layout still yields whatever could be read.

// BroadcastInfo is the answer to CMD_BROADCAST
type BroadcastInfo struct {
	MAC  string `json:"mac" yaml:"mac"`
	IP   string `json:"ip" yaml:"ip"`
	Port int    `json:"port" yaml:"port"`
	SSID string `json:"ssid" yaml:"ssid"`
}

// ParseBroadcast decodes MAC (6 bytes), IPv4 address (4 bytes), port
// (uint16) and a length-prefixed SSID.
func ParseBroadcast(payload []byte) BroadcastInfo {
	r := newPayloadReader(payload)
	var info BroadcastInfo
	if mac, ok := r.bytes(6); ok {
		info.MAC = FormatMAC(mac)
	}
	if ip, ok := r.bytes(4); ok {
		info.IP = net.IP(ip).String()
	}
	info.Port = int(r.uint16())
	info.SSID = r.lstring()
	return info
}

// ParseFirmwareVersion decodes the length-prefixed firmware string
func ParseFirmwareVersion(payload []byte) string {
	return newPayloadReader(payload).lstring()
}

// ParseStationMAC decodes the six byte station MAC address
func ParseStationMAC(payload []byte) string {
	mac, ok := newPayloadReader(payload).bytes(6)
	if !ok {
		return ""
	}
	return FormatMAC(mac)
}

// FormatMAC renders bytes as colon separated uppercase hex
func FormatMAC(b []byte) string {
	return BytesToHex(b, ":", true)
}

// EcowittConfig is the answer to CMD_READ_ECOWITT
type EcowittConfig struct {
	Interval int `json:"interval" yaml:"interval"` // Upload interval in minutes
}

// ParseEcowitt decodes the one byte upload interval
func ParseEcowitt(payload []byte) EcowittConfig {
	return EcowittConfig{Interval: int(newPayloadReader(payload).uint8())}
}

// WundergroundConfig is the answer to CMD_READ_WUNDERGROUND
type WundergroundConfig struct {
	ID       string `json:"id" yaml:"id"`
	Password string `json:"password" yaml:"password"`
	Fixed    int    `json:"fixed" yaml:"fixed"`
}

// ParseWunderground decodes station id, password and the fixed flag byte
func ParseWunderground(payload []byte) WundergroundConfig {
	r := newPayloadReader(payload)
	return WundergroundConfig{
		ID:       r.lstring(),
		Password: r.lstring(),
		Fixed:    int(r.uint8()),
	}
}

// WOWConfig is the answer to CMD_READ_WOW
type WOWConfig struct {
	ID         string `json:"id" yaml:"id"`
	Password   string `json:"password" yaml:"password"`
	StationNum string `json:"station_num" yaml:"station_num"` // Eight raw bytes, hex encoded
	Fixed      int    `json:"fixed" yaml:"fixed"`
}

// ParseWOW decodes id, password, the eight byte station number and the
// fixed flag byte.
func ParseWOW(payload []byte) WOWConfig {
	r := newPayloadReader(payload)
	cfg := WOWConfig{
		ID:       r.lstring(),
		Password: r.lstring(),
	}
	if num, ok := r.bytes(8); ok {
		cfg.StationNum = BytesToHex(num, "", false)
	}
	cfg.Fixed = int(r.uint8())
	return cfg
}

// WeathercloudConfig is the answer to CMD_READ_WEATHERCLOUD
type WeathercloudConfig struct {
	ID    string `json:"id" yaml:"id"`
	Key   string `json:"key" yaml:"key"`
	Fixed int    `json:"fixed" yaml:"fixed"`
}

// ParseWeathercloud decodes id, key and the fixed flag byte
func ParseWeathercloud(payload []byte) WeathercloudConfig {
	r := newPayloadReader(payload)
	return WeathercloudConfig{
		ID:    r.lstring(),
		Key:   r.lstring(),
		Fixed: int(r.uint8()),
	}
}

// CustomizedConfig is the answer to CMD_READ_CUSTOMIZED
type CustomizedConfig struct {
	ID       string `json:"id" yaml:"id"`
	Password string `json:"password" yaml:"password"`
	Server   string `json:"server" yaml:"server"`
	Port     int    `json:"port" yaml:"port"`
	Interval int    `json:"interval" yaml:"interval"`
	Type     int    `json:"type" yaml:"type"`     // 0 = Ecowitt protocol, 1 = Wunderground protocol
	Active   int    `json:"active" yaml:"active"` // 0 = disabled, 1 = enabled
}

// ParseCustomized decodes the custom upload server settings
func ParseCustomized(payload []byte) CustomizedConfig {
	r := newPayloadReader(payload)
	return CustomizedConfig{
		ID:       r.lstring(),
		Password: r.lstring(),
		Server:   r.lstring(),
		Port:     int(r.uint16()),
		Interval: int(r.uint8()),
		Type:     int(r.uint8()),
		Active:   int(r.uint8()),
	}
}

// UserPath is the answer to CMD_READ_USR_PATH
type UserPath struct {
	Ecowitt      string `json:"ecowitt_path" yaml:"ecowitt_path"`
	Wunderground string `json:"wu_path" yaml:"wu_path"`
}

// ParseUserPath decodes the two length-prefixed custom upload paths
func ParseUserPath(payload []byte) UserPath {
	r := newPayloadReader(payload)
	return UserPath{
		Ecowitt:      r.lstring(),
		Wunderground: r.lstring(),
	}
}

// MulchOffset is one WH31 channel calibration record
type MulchOffset struct {
	Channel  int     `json:"channel" yaml:"channel"`
	Humidity int     `json:"humidity" yaml:"humidity"`
	Temp     float64 `json:"temp" yaml:"temp"`
}

// MulchOffsetRecordSize is the width of one multi-channel offset record
const MulchOffsetRecordSize = 3

// ParseMulchOffsets decodes repeating records of channel, signed humidity
// offset and signed temperature offset in tenths. A trailing partial record
// is ignored.
func ParseMulchOffsets(payload []byte) []MulchOffset {
	out := make([]MulchOffset, 0, len(payload)/MulchOffsetRecordSize)
	for i := 0; i+MulchOffsetRecordSize <= len(payload); i += MulchOffsetRecordSize {
		out = append(out, MulchOffset{
			Channel:  int(payload[i]),
			Humidity: int(int8(payload[i+1])),
			Temp:     float64(int8(payload[i+2])) / 10,
		})
	}
	return out
}

// PM25Offset is one PM2.5 channel calibration record
type PM25Offset struct {
	Channel int     `json:"channel" yaml:"channel"`
	Offset  float64 `json:"offset" yaml:"offset"`
}

// PM25OffsetRecordSize is the width of one PM2.5 offset record
const PM25OffsetRecordSize = 3

// ParsePM25Offsets decodes repeating records of channel and signed int16
// offset in tenths. A trailing partial record is ignored.
func ParsePM25Offsets(payload []byte) []PM25Offset {
	out := make([]PM25Offset, 0, len(payload)/PM25OffsetRecordSize)
	for i := 0; i+PM25OffsetRecordSize <= len(payload); i += PM25OffsetRecordSize {
		out = append(out, PM25Offset{
			Channel: int(payload[i]),
			Offset:  float64(int16(binary.BigEndian.Uint16(payload[i+1:i+3]))) / 10,
		})
	}
	return out
}

// CO2Offset is the answer to CMD_GET_CO2_OFFSET
type CO2Offset struct {
	CO2  int     `json:"co2" yaml:"co2"`
	PM25 float64 `json:"pm25" yaml:"pm25"`
	PM10 float64 `json:"pm10" yaml:"pm10"`
}

// ParseCO2Offset decodes the WH45 offsets: uint16 CO2 then signed tenths
// for PM2.5 and PM10.
func ParseCO2Offset(payload []byte) CO2Offset {
	r := newPayloadReader(payload)
	return CO2Offset{
		CO2:  int(r.uint16()),
		PM25: float64(r.int16()) / 10,
		PM10: float64(r.int16()) / 10,
	}
}

// SystemParams is the answer to CMD_READ_SSSS
type SystemParams struct {
	Frequency     int  `json:"frequency" yaml:"frequency"` // 0=433, 1=868, 2=915, 3=920 MHz
	SensorType    int  `json:"sensor_type" yaml:"sensor_type"`
	UTC           int  `json:"utc" yaml:"utc"`
	TimezoneIndex int  `json:"timezone_index" yaml:"timezone_index"`
	DSTStatus     bool `json:"dst_status" yaml:"dst_status"`
}

var frequencies = []string{"433MHz", "868MHz", "915MHz", "920MHz"}

// FrequencyName returns the radio band, e.g. "868MHz"
func (p SystemParams) FrequencyName() string {
	if p.Frequency >= 0 && p.Frequency < len(frequencies) {
		return frequencies[p.Frequency]
	}
	return fmt.Sprintf("unknown(%d)", p.Frequency)
}

// ParseSystemParams decodes frequency, sensor type, gateway UTC time,
// timezone index and the DST flag.
func ParseSystemParams(payload []byte) SystemParams {
	r := newPayloadReader(payload)
	return SystemParams{
		Frequency:     int(r.uint8()),
		SensorType:    int(r.uint8()),
		UTC:           int(r.uint32()),
		TimezoneIndex: int(r.uint8()),
		DSTStatus:     r.uint8()&0x01 == 1,
	}
}

// RainData is the answer to CMD_READ_RAINDATA, all values in mm
type RainData struct {
	RainRate  float64 `json:"rain_rate" yaml:"rain_rate"`
	RainDay   float64 `json:"rain_day" yaml:"rain_day"`
	RainWeek  float64 `json:"rain_week" yaml:"rain_week"`
	RainMonth float64 `json:"rain_month" yaml:"rain_month"`
	RainYear  float64 `json:"rain_year" yaml:"rain_year"`
}

// ParseRainData decodes five uint32 rain values in tenths of a mm
func ParseRainData(payload []byte) RainData {
	r := newPayloadReader(payload)
	return RainData{
		RainRate:  float64(r.uint32()) / 10,
		RainDay:   float64(r.uint32()) / 10,
		RainWeek:  float64(r.uint32()) / 10,
		RainMonth: float64(r.uint32()) / 10,
		RainYear:  float64(r.uint32()) / 10,
	}
}

// Calibration is the answer to CMD_READ_CALIBRATION
type Calibration struct {
	InTempOffset  float64 `json:"intemp" yaml:"intemp"`
	InHumOffset   int     `json:"inhum" yaml:"inhum"`
	AbsOffset     float64 `json:"abs" yaml:"abs"`
	RelOffset     float64 `json:"rel" yaml:"rel"`
	OutTempOffset float64 `json:"outtemp" yaml:"outtemp"`
	OutHumOffset  int     `json:"outhum" yaml:"outhum"`
	WindDirOffset int     `json:"winddir" yaml:"winddir"`
}

// ParseCalibration decodes the signed sensor offsets
func ParseCalibration(payload []byte) Calibration {
	r := newPayloadReader(payload)
	return Calibration{
		InTempOffset:  float64(r.int16()) / 10,
		InHumOffset:   int(r.int8()),
		AbsOffset:     float64(r.int32()) / 10,
		RelOffset:     float64(r.int32()) / 10,
		OutTempOffset: float64(r.int16()) / 10,
		OutHumOffset:  int(r.int8()),
		WindDirOffset: int(r.int16()),
	}
}

// Gain is the answer to CMD_READ_GAIN
type Gain struct {
	Fixed int     `json:"fixed" yaml:"fixed"`
	UV    float64 `json:"uv" yaml:"uv"`
	Solar float64 `json:"solar" yaml:"solar"`
	Wind  float64 `json:"wind" yaml:"wind"`
	Rain  float64 `json:"rain" yaml:"rain"`
}

// ParseGain decodes the reserved word followed by four gains in hundredths
func ParseGain(payload []byte) Gain {
	r := newPayloadReader(payload)
	return Gain{
		Fixed: int(r.uint16()),
		UV:    float64(r.uint16()) / 100,
		Solar: float64(r.uint16()) / 100,
		Wind:  float64(r.uint16()) / 100,
		Rain:  float64(r.uint16()) / 100,
	}
}

// SoilCalibration is one soil moisture channel record from
// CMD_GET_SOILHUMIAD
type SoilCalibration struct {
	Channel  int  `json:"channel" yaml:"channel"`
	Humidity int  `json:"humidity" yaml:"humidity"`
	AD       int  `json:"ad" yaml:"ad"`
	Custom   bool `json:"custom" yaml:"custom"` // Custom min/max in use
	MinAD    int  `json:"min_ad" yaml:"min_ad"`
	MaxAD    int  `json:"max_ad" yaml:"max_ad"`
}

// SoilCalibrationRecordSize is the width of one soil calibration record
const SoilCalibrationRecordSize = 8

// ParseSoilCalibration decodes repeating soil calibration records. A
// trailing partial record is ignored.
func ParseSoilCalibration(payload []byte) []SoilCalibration {
	out := make([]SoilCalibration, 0, len(payload)/SoilCalibrationRecordSize)
	for i := 0; i+SoilCalibrationRecordSize <= len(payload); i += SoilCalibrationRecordSize {
		rec := payload[i : i+SoilCalibrationRecordSize]
		out = append(out, SoilCalibration{
			Channel:  int(rec[0]),
			Humidity: int(rec[1]),
			AD:       int(binary.BigEndian.Uint16(rec[2:4])),
			Custom:   rec[4] != 0,
			MinAD:    int(rec[5]),
			MaxAD:    int(binary.BigEndian.Uint16(rec[6:8])),
		})
	}
	return out
}

// payloadReader is a forward-only cursor over a payload. Reads past the
// end return zero values and leave the cursor at the end.
type payloadReader struct {
	data []byte
	pos  int
}

func newPayloadReader(data []byte) *payloadReader {
	return &payloadReader{data: data}
}

func (r *payloadReader) bytes(n int) ([]byte, bool) {
	if n < 0 || r.pos+n > len(r.data) {
		r.pos = len(r.data)
		return nil, false
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

func (r *payloadReader) uint8() uint8 {
	b, ok := r.bytes(1)
	if !ok {
		return 0
	}
	return b[0]
}

func (r *payloadReader) int8() int8 {
	return int8(r.uint8())
}

func (r *payloadReader) uint16() uint16 {
	b, ok := r.bytes(2)
	if !ok {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *payloadReader) int16() int16 {
	return int16(r.uint16())
}

func (r *payloadReader) uint32() uint32 {
	b, ok := r.bytes(4)
	if !ok {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *payloadReader) int32() int32 {
	return int32(r.uint32())
}

// lstring reads a one byte length followed by that many bytes. A length
// running past the end yields whatever bytes remain.
func (r *payloadReader) lstring() string {
	n := int(r.uint8())
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	b, _ := r.bytes(n)
	return strings.TrimRight(string(b), "\x00")
}
