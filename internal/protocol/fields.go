package protocol

import "fmt"

// Decoder identifies how a live data field is decoded
type Decoder uint8

const (
	DecodeNoneKind Decoder = iota // Placeholder field, bytes skipped
	DecodeTempKind
	DecodeHumidKind
	DecodePressKind
	DecodeDirKind
	DecodeSpeedKind
	DecodeRainKind
	DecodeRainRateKind
	DecodeBigRainKind
	DecodeLightKind
	DecodeUVKind
	DecodeUVIKind
	DecodeDatetimeKind
	DecodePM25Kind
	DecodeMoistKind
	DecodeWetKind
	DecodeLeakKind
	DecodeDistanceKind
	DecodeUTCKind
	DecodeCountKind
	DecodeBattKind
	DecodeWH34Kind
	DecodeWH45Kind
)

var decoderNames = [...]string{
	DecodeNoneKind:     "none",
	DecodeTempKind:     "temp",
	DecodeHumidKind:    "humid",
	DecodePressKind:    "press",
	DecodeDirKind:      "dir",
	DecodeSpeedKind:    "speed",
	DecodeRainKind:     "rain",
	DecodeRainRateKind: "rainrate",
	DecodeBigRainKind:  "big_rain",
	DecodeLightKind:    "light",
	DecodeUVKind:       "uv",
	DecodeUVIKind:      "uvi",
	DecodeDatetimeKind: "datetime",
	DecodePM25Kind:     "pm25",
	DecodeMoistKind:    "moist",
	DecodeWetKind:      "wet",
	DecodeLeakKind:     "leak",
	DecodeDistanceKind: "distance",
	DecodeUTCKind:      "utc",
	DecodeCountKind:    "count",
	DecodeBattKind:     "batt",
	DecodeWH34Kind:     "wh34",
	DecodeWH45Kind:     "wh45",
}

func (d Decoder) String() string {
	if int(d) < len(decoderNames) {
		return decoderNames[d]
	}
	return fmt.Sprintf("Decoder(%d)", d)
}

// FieldSpec describes one live data field: its decoder, the number of data
// bytes following the field code and the observation name(s) it produces.
type FieldSpec struct {
	Decoder Decoder
	Size    int
	Names   []string
}

// Name returns the first observation name, or "" for a placeholder
func (f FieldSpec) Name() string {
	if len(f.Names) == 0 {
		return ""
	}
	return f.Names[0]
}

// Decode applies the field's decoder to data. A single-value decoder
// produces {name: value}, with a nil value when the width does not match.
// The legacy battery block and placeholders produce nothing.
func (f FieldSpec) Decode(data []byte) Observations {
	switch f.Decoder {
	case DecodeNoneKind, DecodeBattKind:
		return nil
	case DecodeWH34Kind:
		return DecodeWH34(data, f.Name())
	case DecodeWH45Kind:
		return DecodeWH45(data, f.Names)
	}

	var (
		value any
		ok    bool
	)
	switch f.Decoder {
	case DecodeTempKind:
		value, ok = DecodeTemp(data)
	case DecodeHumidKind:
		value, ok = DecodeHumid(data)
	case DecodePressKind:
		value, ok = DecodePress(data)
	case DecodeDirKind:
		value, ok = DecodeDir(data)
	case DecodeSpeedKind:
		value, ok = DecodeSpeed(data)
	case DecodeRainKind:
		value, ok = DecodeRain(data)
	case DecodeRainRateKind:
		value, ok = DecodeRainRate(data)
	case DecodeBigRainKind:
		value, ok = DecodeBigRain(data)
	case DecodeLightKind:
		value, ok = DecodeLight(data)
	case DecodeUVKind:
		value, ok = DecodeUV(data)
	case DecodeUVIKind:
		value, ok = DecodeUVI(data)
	case DecodeDatetimeKind:
		var dt Datetime
		if dt, ok = DecodeDatetime(data); ok {
			var epoch int64
			epoch, ok = DatetimeToEpoch(dt)
			value = int(epoch)
		}
	case DecodePM25Kind:
		value, ok = DecodePM25(data)
	case DecodeMoistKind:
		value, ok = DecodeMoist(data)
	case DecodeWetKind:
		value, ok = DecodeWet(data)
	case DecodeLeakKind:
		value, ok = DecodeLeak(data)
	case DecodeDistanceKind:
		value, ok = DecodeDistance(data)
	case DecodeUTCKind:
		var ts int64
		ts, ok = DecodeUTC(data)
		value = int(ts)
	case DecodeCountKind:
		value, ok = DecodeCount(data)
	default:
		return nil
	}

	if !ok {
		value = nil
	}
	return Observations{f.Name(): value}
}

func field(d Decoder, size int, names ...string) FieldSpec {
	return FieldSpec{Decoder: d, Size: size, Names: names}
}

// fieldTable maps live data field codes to their layout
var fieldTable = map[byte]FieldSpec{
	0x01: field(DecodeTempKind, 2, "intemp"),
	0x02: field(DecodeTempKind, 2, "outtemp"),
	0x03: field(DecodeTempKind, 2, "dewpoint"),
	0x04: field(DecodeTempKind, 2, "windchill"),
	0x05: field(DecodeTempKind, 2, "heatindex"),
	0x06: field(DecodeHumidKind, 1, "inhumid"),
	0x07: field(DecodeHumidKind, 1, "outhumid"),
	0x08: field(DecodePressKind, 2, "absbarometer"),
	0x09: field(DecodePressKind, 2, "relbarometer"),
	0x0A: field(DecodeDirKind, 2, "winddir"),
	0x0B: field(DecodeSpeedKind, 2, "windspeed"),
	0x0C: field(DecodeSpeedKind, 2, "gustspeed"),
	0x0D: field(DecodeRainKind, 2, "rainevent"),
	0x0E: field(DecodeRainRateKind, 2, "rainrate"),
	0x0F: field(DecodeRainKind, 2, "rainhour"),
	0x10: field(DecodeRainKind, 2, "rainday"),
	0x11: field(DecodeRainKind, 2, "rainweek"),
	0x12: field(DecodeBigRainKind, 4, "rainmonth"),
	0x13: field(DecodeBigRainKind, 4, "rainyear"),
	0x14: field(DecodeBigRainKind, 4, "raintotals"),
	0x15: field(DecodeLightKind, 4, "light"),
	0x16: field(DecodeUVKind, 2, "uv"),
	0x17: field(DecodeUVIKind, 1, "uvi"),
	0x18: field(DecodeDatetimeKind, 6, "datetime"),
	0x19: field(DecodeSpeedKind, 2, "daymaxwind"),
	0x1A: field(DecodeTempKind, 2, "temp1"),
	0x1B: field(DecodeTempKind, 2, "temp2"),
	0x1C: field(DecodeTempKind, 2, "temp3"),
	0x1D: field(DecodeTempKind, 2, "temp4"),
	0x1E: field(DecodeTempKind, 2, "temp5"),
	0x1F: field(DecodeTempKind, 2, "temp6"),
	0x20: field(DecodeTempKind, 2, "temp7"),
	0x21: field(DecodeTempKind, 2, "temp8"),
	0x22: field(DecodeHumidKind, 1, "humid1"),
	0x23: field(DecodeHumidKind, 1, "humid2"),
	0x24: field(DecodeHumidKind, 1, "humid3"),
	0x25: field(DecodeHumidKind, 1, "humid4"),
	0x26: field(DecodeHumidKind, 1, "humid5"),
	0x27: field(DecodeHumidKind, 1, "humid6"),
	0x28: field(DecodeHumidKind, 1, "humid7"),
	0x29: field(DecodeHumidKind, 1, "humid8"),
	0x2A: field(DecodePM25Kind, 2, "pm251"),
	0x2B: field(DecodeTempKind, 2, "soiltemp1"),
	0x2C: field(DecodeMoistKind, 1, "soilmoist1"),
	0x2D: field(DecodeTempKind, 2, "soiltemp2"),
	0x2E: field(DecodeMoistKind, 1, "soilmoist2"),
	0x2F: field(DecodeTempKind, 2, "soiltemp3"),
	0x30: field(DecodeMoistKind, 1, "soilmoist3"),
	0x31: field(DecodeTempKind, 2, "soiltemp4"),
	0x32: field(DecodeMoistKind, 1, "soilmoist4"),
	0x33: field(DecodeTempKind, 2, "soiltemp5"),
	0x34: field(DecodeMoistKind, 1, "soilmoist5"),
	0x35: field(DecodeTempKind, 2, "soiltemp6"),
	0x36: field(DecodeMoistKind, 1, "soilmoist6"),
	0x37: field(DecodeTempKind, 2, "soiltemp7"),
	0x38: field(DecodeMoistKind, 1, "soilmoist7"),
	0x39: field(DecodeTempKind, 2, "soiltemp8"),
	0x3A: field(DecodeMoistKind, 1, "soilmoist8"),
	0x3B: field(DecodeTempKind, 2, "soiltemp9"),
	0x3C: field(DecodeMoistKind, 1, "soilmoist9"),
	0x3D: field(DecodeTempKind, 2, "soiltemp10"),
	0x3E: field(DecodeMoistKind, 1, "soilmoist10"),
	0x3F: field(DecodeTempKind, 2, "soiltemp11"),
	0x40: field(DecodeMoistKind, 1, "soilmoist11"),
	0x41: field(DecodeTempKind, 2, "soiltemp12"),
	0x42: field(DecodeMoistKind, 1, "soilmoist12"),
	0x43: field(DecodeTempKind, 2, "soiltemp13"),
	0x44: field(DecodeMoistKind, 1, "soilmoist13"),
	0x45: field(DecodeTempKind, 2, "soiltemp14"),
	0x46: field(DecodeMoistKind, 1, "soilmoist14"),
	0x47: field(DecodeTempKind, 2, "soiltemp15"),
	0x48: field(DecodeMoistKind, 1, "soilmoist15"),
	0x49: field(DecodeTempKind, 2, "soiltemp16"),
	0x4A: field(DecodeMoistKind, 1, "soilmoist16"),
	0x4C: field(DecodeBattKind, 16, "lowbatt"),
	0x4D: field(DecodePM25Kind, 2, "pm251_24h_avg"),
	0x4E: field(DecodePM25Kind, 2, "pm252_24h_avg"),
	0x4F: field(DecodePM25Kind, 2, "pm253_24h_avg"),
	0x50: field(DecodePM25Kind, 2, "pm254_24h_avg"),
	0x51: field(DecodePM25Kind, 2, "pm252"),
	0x52: field(DecodePM25Kind, 2, "pm253"),
	0x53: field(DecodePM25Kind, 2, "pm254"),
	0x58: field(DecodeLeakKind, 1, "leak1"),
	0x59: field(DecodeLeakKind, 1, "leak2"),
	0x5A: field(DecodeLeakKind, 1, "leak3"),
	0x5B: field(DecodeLeakKind, 1, "leak4"),
	0x60: field(DecodeDistanceKind, 1, "lightningdist"),
	0x61: field(DecodeUTCKind, 4, "lightningdettime"),
	0x62: field(DecodeCountKind, 4, "lightningcount"),
	// WH34 battery comes from the sensor ID payload, not from here
	0x63: field(DecodeWH34Kind, 3, "temp9"),
	0x64: field(DecodeWH34Kind, 3, "temp10"),
	0x65: field(DecodeWH34Kind, 3, "temp11"),
	0x66: field(DecodeWH34Kind, 3, "temp12"),
	0x67: field(DecodeWH34Kind, 3, "temp13"),
	0x68: field(DecodeWH34Kind, 3, "temp14"),
	0x69: field(DecodeWH34Kind, 3, "temp15"),
	0x6A: field(DecodeWH34Kind, 3, "temp16"),
	0x70: field(DecodeWH45Kind, WH45Size, "temp17", "humid17", "pm10",
		"pm10_24h_avg", "pm255", "pm255_24h_avg", "co2", "co2_24h_avg"),
	0x71: field(DecodeNoneKind, 0),
	0x72: field(DecodeWetKind, 1, "leafwet1"),
	0x73: field(DecodeWetKind, 1, "leafwet2"),
	0x74: field(DecodeWetKind, 1, "leafwet3"),
	0x75: field(DecodeWetKind, 1, "leafwet4"),
	0x76: field(DecodeWetKind, 1, "leafwet5"),
	0x77: field(DecodeWetKind, 1, "leafwet6"),
	0x78: field(DecodeWetKind, 1, "leafwet7"),
	0x79: field(DecodeWetKind, 1, "leafwet8"),
}

// Field codes whose decoded values carry no sentinel handling. The gateway
// reports "no data" for these as large raw values which pass through as is.
var (
	RainFieldCodes = []byte{0x0D, 0x0E, 0x0F, 0x10, 0x11, 0x12, 0x13, 0x14}
	WindFieldCodes = []byte{0x0A, 0x0B, 0x0C, 0x19}
)

// LookupField returns the layout for a live data field code
func LookupField(code byte) (FieldSpec, bool) {
	def, ok := fieldTable[code]
	return def, ok
}

// FieldCodes returns every known field code in ascending order
func FieldCodes() []byte {
	codes := make([]byte, 0, len(fieldTable))
	for c := 0; c < 256; c++ {
		if _, ok := fieldTable[byte(c)]; ok {
			codes = append(codes, byte(c))
		}
	}
	return codes
}
