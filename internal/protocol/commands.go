package protocol

import (
	"fmt"
	"sort"
)

// CommandCode is the one byte opcode of a gateway API command
type CommandCode byte

// Command codes. Names follow the gateway API documentation and must not
// change; the device only understands these exact byte values.
const (
	CmdWriteSSID           CommandCode = 0x11
	CmdBroadcast           CommandCode = 0x12
	CmdReadEcowitt         CommandCode = 0x1E
	CmdWriteEcowitt        CommandCode = 0x1F
	CmdReadWunderground    CommandCode = 0x20
	CmdWriteWunderground   CommandCode = 0x21
	CmdReadWOW             CommandCode = 0x22
	CmdWriteWOW            CommandCode = 0x23
	CmdReadWeathercloud    CommandCode = 0x24
	CmdWriteWeathercloud   CommandCode = 0x25
	CmdReadStationMAC      CommandCode = 0x26
	CmdLiveData            CommandCode = 0x27
	CmdGetSoilHumiAD       CommandCode = 0x28
	CmdSetSoilHumiAD       CommandCode = 0x29
	CmdReadCustomized      CommandCode = 0x2A
	CmdWriteCustomized     CommandCode = 0x2B
	CmdGetMulchOffset      CommandCode = 0x2C
	CmdSetMulchOffset      CommandCode = 0x2D
	CmdGetPM25Offset       CommandCode = 0x2E
	CmdSetPM25Offset       CommandCode = 0x2F
	CmdReadSSSS            CommandCode = 0x30
	CmdWriteSSSS           CommandCode = 0x31
	CmdReadRainData        CommandCode = 0x34
	CmdWriteRainData       CommandCode = 0x35
	CmdReadGain            CommandCode = 0x36
	CmdWriteGain           CommandCode = 0x37
	CmdReadCalibration     CommandCode = 0x38
	CmdWriteCalibration    CommandCode = 0x39
	CmdReadSensorID        CommandCode = 0x3A
	CmdWriteSensorID       CommandCode = 0x3B
	CmdReadSensorIDNew     CommandCode = 0x3C
	CmdWriteReboot         CommandCode = 0x40
	CmdWriteReset          CommandCode = 0x41
	CmdWriteUpdate         CommandCode = 0x43
	CmdReadFirmwareVersion CommandCode = 0x50
	CmdReadUserPath        CommandCode = 0x51
	CmdWriteUserPath       CommandCode = 0x52
	CmdGetCO2Offset        CommandCode = 0x53
	CmdSetCO2Offset        CommandCode = 0x54
)

// commandNames maps the API names to their codes
var commandNames = map[string]CommandCode{
	"CMD_WRITE_SSID":            CmdWriteSSID,
	"CMD_BROADCAST":             CmdBroadcast,
	"CMD_READ_ECOWITT":          CmdReadEcowitt,
	"CMD_WRITE_ECOWITT":         CmdWriteEcowitt,
	"CMD_READ_WUNDERGROUND":     CmdReadWunderground,
	"CMD_WRITE_WUNDERGROUND":    CmdWriteWunderground,
	"CMD_READ_WOW":              CmdReadWOW,
	"CMD_WRITE_WOW":             CmdWriteWOW,
	"CMD_READ_WEATHERCLOUD":     CmdReadWeathercloud,
	"CMD_WRITE_WEATHERCLOUD":    CmdWriteWeathercloud,
	"CMD_READ_SATION_MAC":       CmdReadStationMAC,
	"CMD_GW1000_LIVEDATA":       CmdLiveData,
	"CMD_GET_SOILHUMIAD":        CmdGetSoilHumiAD,
	"CMD_SET_SOILHUMIAD":        CmdSetSoilHumiAD,
	"CMD_READ_CUSTOMIZED":       CmdReadCustomized,
	"CMD_WRITE_CUSTOMIZED":      CmdWriteCustomized,
	"CMD_GET_MulCH_OFFSET":      CmdGetMulchOffset,
	"CMD_SET_MulCH_OFFSET":      CmdSetMulchOffset,
	"CMD_GET_PM25_OFFSET":       CmdGetPM25Offset,
	"CMD_SET_PM25_OFFSET":       CmdSetPM25Offset,
	"CMD_READ_SSSS":             CmdReadSSSS,
	"CMD_WRITE_SSSS":            CmdWriteSSSS,
	"CMD_READ_RAINDATA":         CmdReadRainData,
	"CMD_WRITE_RAINDATA":        CmdWriteRainData,
	"CMD_READ_GAIN":             CmdReadGain,
	"CMD_WRITE_GAIN":            CmdWriteGain,
	"CMD_READ_CALIBRATION":      CmdReadCalibration,
	"CMD_WRITE_CALIBRATION":     CmdWriteCalibration,
	"CMD_READ_SENSOR_ID":        CmdReadSensorID,
	"CMD_WRITE_SENSOR_ID":       CmdWriteSensorID,
	"CMD_READ_SENSOR_ID_NEW":    CmdReadSensorIDNew,
	"CMD_WRITE_REBOOT":          CmdWriteReboot,
	"CMD_WRITE_RESET":           CmdWriteReset,
	"CMD_WRITE_UPDATE":          CmdWriteUpdate,
	"CMD_READ_FIRMWARE_VERSION": CmdReadFirmwareVersion,
	"CMD_READ_USR_PATH":         CmdReadUserPath,
	"CMD_WRITE_USR_PATH":        CmdWriteUserPath,
	"CMD_GET_CO2_OFFSET":        CmdGetCO2Offset,
	"CMD_SET_CO2_OFFSET":        CmdSetCO2Offset,
}

// codeNames is the reverse of commandNames, built once at init
var codeNames = func() map[CommandCode]string {
	m := make(map[CommandCode]string, len(commandNames))
	for name, code := range commandNames {
		m[code] = name
	}
	return m
}()

// LookupCommand returns the code for an API command name
func LookupCommand(name string) (CommandCode, error) {
	code, ok := commandNames[name]
	if !ok {
		return 0, newUnknownCommand(name)
	}
	return code, nil
}

// Name returns the API name of the command, or "" if the code is not in the catalog
func (c CommandCode) Name() string {
	return codeNames[c]
}

// Known reports whether the code is in the catalog
func (c CommandCode) Known() bool {
	_, ok := codeNames[c]
	return ok
}

// String returns the API name and code, e.g. "CMD_GW1000_LIVEDATA(0x27)"
func (c CommandCode) String() string {
	if name, ok := codeNames[c]; ok {
		return fmt.Sprintf("%s(0x%02X)", name, byte(c))
	}
	return fmt.Sprintf("Unknown(0x%02X)", byte(c))
}

// SizeWidth returns the width in bytes of the size field in this
// command's response frame.
func (c CommandCode) SizeWidth() int {
	switch c {
	case CmdBroadcast, CmdLiveData, CmdReadSensorIDNew:
		return 2
	default:
		return 1
	}
}

// Command pairs an API name with its code
type Command struct {
	Name string
	Code CommandCode
}

// Commands returns the whole catalog ordered by code
func Commands() []Command {
	out := make([]Command, 0, len(commandNames))
	for name, code := range commandNames {
		out = append(out, Command{Name: name, Code: code})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
