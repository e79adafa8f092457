package sensors

import (
	"fmt"
	"strings"
)

// BatteryKind is how a sensor encodes its battery byte
type BatteryKind int

const (
	// BatteryBinary sensors only report failed (255) or not failed
	BatteryBinary BatteryKind = iota
	// BatteryInt sensors report a level from 0 to 6, where 6 means DC powered
	BatteryInt
	// BatteryVolt sensors report the cell voltage in 20 mV steps
	BatteryVolt
)

// String returns the kind name
func (k BatteryKind) String() string {
	switch k {
	case BatteryBinary:
		return "binary"
	case BatteryInt:
		return "int"
	case BatteryVolt:
		return "volt"
	default:
		return fmt.Sprintf("BatteryKind(%d)", k)
	}
}

// Sensor describes one slot of the gateway's sensor table
type Sensor struct {
	Address  byte
	Name     string // Short name used in observation keys, e.g. "wh31_ch1"
	LongName string // Display name, e.g. "WH31 ch1"
	Battery  BatteryKind
}

// table is indexed by sensor address
var table = buildTable()

func buildTable() []Sensor {
	var t []Sensor
	add := func(model string, kind BatteryKind) {
		t = append(t, Sensor{
			Address:  byte(len(t)),
			Name:     model,
			LongName: strings.ToUpper(model),
			Battery:  kind,
		})
	}
	channels := func(model string, n int, kind BatteryKind) {
		for ch := 1; ch <= n; ch++ {
			t = append(t, Sensor{
				Address:  byte(len(t)),
				Name:     fmt.Sprintf("%s_ch%d", model, ch),
				LongName: fmt.Sprintf("%s ch%d", strings.ToUpper(model), ch),
				Battery:  kind,
			})
		}
	}

	add("wh65", BatteryBinary)         // 0x00
	add("wh68", BatteryVolt)           // 0x01
	add("ws80", BatteryVolt)           // 0x02
	add("wh40", BatteryBinary)         // 0x03
	add("wh25", BatteryBinary)         // 0x04
	add("wh26", BatteryBinary)         // 0x05
	channels("wh31", 8, BatteryBinary) // 0x06-0x0D
	channels("wh51", 8, BatteryBinary) // 0x0E-0x15
	channels("wh41", 4, BatteryInt)    // 0x16-0x19
	add("wh57", BatteryInt)            // 0x1A
	channels("wh55", 4, BatteryInt)    // 0x1B-0x1E
	channels("wh34", 8, BatteryVolt)   // 0x1F-0x26
	add("wh45", BatteryInt)            // 0x27
	channels("wh35", 8, BatteryVolt)   // 0x28-0x2F

	return t
}

// Lookup returns the sensor registered at address
func Lookup(address byte) (Sensor, bool) {
	if int(address) >= len(table) {
		return Sensor{}, false
	}
	return table[address], true
}

// All returns the whole sensor table ordered by address
func All() []Sensor {
	return append([]Sensor(nil), table...)
}
