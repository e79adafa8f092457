package sensors

import "github.com/muurk/gw1000/internal/protocol"

// Battery descriptions
const (
	BatteryOK      = "OK"
	BatteryLow     = "low"
	BatteryDC      = "DC"
	BatteryUnknown = "Unknown"
)

// LowVoltage is the cell voltage below which a volt-reporting sensor is low
const LowVoltage = 1.4

// BattBinary returns 1 (failed) for a raw value of 255 and 0 for anything else
func BattBinary(raw byte) int {
	if raw == 0xFF {
		return 1
	}
	return 0
}

// BattInt returns the raw battery level unchanged
func BattInt(raw byte) int {
	return int(raw)
}

// BattVolt converts a raw battery byte to volts, two decimals
func BattVolt(raw byte) float64 {
	return float64(raw) * 2 / 100
}

// DecodeBattery interprets raw according to kind. The result is an int for
// binary and int kinds and a float64 for volt kinds.
func DecodeBattery(kind BatteryKind, raw byte) any {
	switch kind {
	case BatteryBinary:
		return BattBinary(raw)
	case BatteryInt:
		return BattInt(raw)
	case BatteryVolt:
		return BattVolt(raw)
	default:
		return nil
	}
}

// BatteryDesc describes a decoded battery value for the sensor at address.
// A nil value, an unknown address or an unexpected value gives "Unknown".
func BatteryDesc(address byte, value any) string {
	sensor, ok := Lookup(address)
	if !ok || value == nil {
		return BatteryUnknown
	}
	return describe(sensor.Battery, value)
}

func describe(kind BatteryKind, value any) string {
	switch kind {
	case BatteryBinary:
		switch toInt(value) {
		case 0:
			return BatteryOK
		case 1:
			return BatteryLow
		}
	case BatteryInt:
		switch level := toInt(value); {
		case level == 0 || level == 1:
			return BatteryLow
		case level >= 2 && level <= 5:
			return BatteryOK
		case level == 6:
			return BatteryDC
		}
	case BatteryVolt:
		if v, ok := protocol.ToFloat(value); ok {
			if v < LowVoltage {
				return BatteryLow
			}
			return BatteryOK
		}
	}
	return BatteryUnknown
}

// toInt returns -1 for anything that is not a whole number
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return -1
}
