package protocol

import (
	"encoding/binary"
	"time"
)

// Primitive field decoders. Each decoder requires an exact byte count and
// reports ok == false when data is shorter or longer; that is the gateway's
// "no usable value" convention, not an error. Sentinel values are not
// interpreted here.

// DecodeTemp decodes a signed big-endian int16 in tenths of a degree
func DecodeTemp(data []byte) (float64, bool) {
	if len(data) != 2 {
		return 0, false
	}
	return float64(int16(binary.BigEndian.Uint16(data))) / 10, true
}

// DecodeHumid decodes a one byte relative humidity percentage
func DecodeHumid(data []byte) (int, bool) {
	return decodeByte(data)
}

// DecodePress decodes an unsigned big-endian uint16 in tenths of a hPa
func DecodePress(data []byte) (float64, bool) {
	return decodeTenths16(data)
}

// DecodeDir decodes a wind direction in whole degrees
func DecodeDir(data []byte) (int, bool) {
	if len(data) != 2 {
		return 0, false
	}
	return int(binary.BigEndian.Uint16(data)), true
}

// DecodeSpeed decodes a wind speed in tenths of m/s
func DecodeSpeed(data []byte) (float64, bool) {
	return decodeTenths16(data)
}

// DecodeRain decodes a two byte rain accumulation in tenths of a mm
func DecodeRain(data []byte) (float64, bool) {
	return decodeTenths16(data)
}

// DecodeRainRate decodes a rain rate in tenths of a mm/h
func DecodeRainRate(data []byte) (float64, bool) {
	return decodeTenths16(data)
}

// DecodeBigRain decodes a four byte rain accumulation in tenths of a mm
func DecodeBigRain(data []byte) (float64, bool) {
	return decodeTenths32(data)
}

// DecodeLight decodes illuminance in tenths of a lux
func DecodeLight(data []byte) (float64, bool) {
	return decodeTenths32(data)
}

// DecodeUV decodes UV irradiance in tenths of a µW/cm²
func DecodeUV(data []byte) (float64, bool) {
	return decodeTenths16(data)
}

// DecodeUVI decodes the UV index
func DecodeUVI(data []byte) (int, bool) {
	return decodeByte(data)
}

// Datetime is the six raw bytes of a gateway date-time field:
// years since 2000, month, day, hour, minute, second.
type Datetime [6]byte

// DecodeDatetime returns the raw date-time bytes without interpretation
func DecodeDatetime(data []byte) (Datetime, bool) {
	var dt Datetime
	if len(data) != len(dt) {
		return dt, false
	}
	copy(dt[:], data)
	return dt, true
}

// DatetimeToEpoch interprets dt as a UTC date-time and returns Unix seconds.
// ok is false if any component is out of range.
func DatetimeToEpoch(dt Datetime) (int64, bool) {
	month, day, hour, minute, second := dt[1], dt[2], dt[3], dt[4], dt[5]
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return 0, false
	}
	t := time.Date(2000+int(dt[0]), time.Month(month), int(day),
		int(hour), int(minute), int(second), 0, time.UTC)
	return t.Unix(), true
}

// DecodePM25 decodes a particulate concentration in tenths of a µg/m³
func DecodePM25(data []byte) (float64, bool) {
	return decodeTenths16(data)
}

// DecodeMoist decodes a soil moisture percentage
func DecodeMoist(data []byte) (int, bool) {
	return decodeByte(data)
}

// DecodeWet decodes a leaf wetness percentage
func DecodeWet(data []byte) (int, bool) {
	return decodeByte(data)
}

// DecodeLeak decodes a leak sensor state
func DecodeLeak(data []byte) (int, bool) {
	return decodeByte(data)
}

// DecodeDistance decodes a lightning distance in km
func DecodeDistance(data []byte) (int, bool) {
	return decodeByte(data)
}

// DecodeUTC decodes a big-endian uint32 Unix timestamp
func DecodeUTC(data []byte) (int64, bool) {
	if len(data) != 4 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint32(data)), true
}

// DecodeCount decodes a big-endian uint32 counter
func DecodeCount(data []byte) (int, bool) {
	if len(data) != 4 {
		return 0, false
	}
	return int(binary.BigEndian.Uint32(data)), true
}

// DecodeBatt always reports absent. The 16 byte legacy battery block is
// kept in the field table only so its bytes are skipped; battery states
// come from the sensor ID payload.
func DecodeBatt(data []byte) (any, bool) {
	return nil, false
}

// DecodeWH34 decodes a WH34 temperature probe field: a signed tenths
// temperature followed by a battery byte that is ignored here. Returns an
// empty result if data is not 3 bytes long.
func DecodeWH34(data []byte, name string) Observations {
	if len(data) != 3 {
		return Observations{}
	}
	temp, _ := DecodeTemp(data[0:2])
	return Observations{name: temp}
}

// WH45Size is the width of the WH45 air quality bundle
const WH45Size = 16

// DecodeWH45 decodes the WH45 bundle into eight names, in order:
// temperature, humidity, PM10, PM10 24h average, PM2.5, PM2.5 24h average,
// CO2 and CO2 24h average. The 16th byte is the battery and is ignored.
// Returns an empty result if data is not 16 bytes long or names does not
// hold eight entries.
func DecodeWH45(data []byte, names []string) Observations {
	if len(data) != WH45Size || len(names) != 8 {
		return Observations{}
	}

	temp, _ := DecodeTemp(data[0:2])
	humid, _ := DecodeHumid(data[2:3])
	pm10, _ := decodeTenths16(data[3:5])
	pm10Avg, _ := decodeTenths16(data[5:7])
	pm25, _ := decodeTenths16(data[7:9])
	pm25Avg, _ := decodeTenths16(data[9:11])
	co2 := int(binary.BigEndian.Uint16(data[11:13]))
	co2Avg := int(binary.BigEndian.Uint16(data[13:15]))

	return Observations{
		names[0]: temp,
		names[1]: humid,
		names[2]: pm10,
		names[3]: pm10Avg,
		names[4]: pm25,
		names[5]: pm25Avg,
		names[6]: co2,
		names[7]: co2Avg,
	}
}

func decodeByte(data []byte) (int, bool) {
	if len(data) != 1 {
		return 0, false
	}
	return int(data[0]), true
}

func decodeTenths16(data []byte) (float64, bool) {
	if len(data) != 2 {
		return 0, false
	}
	return float64(binary.BigEndian.Uint16(data)) / 10, true
}

func decodeTenths32(data []byte) (float64, bool) {
	if len(data) != 4 {
		return 0, false
	}
	return float64(binary.BigEndian.Uint32(data)) / 10, true
}
