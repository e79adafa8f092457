package collector

import (
	"errors"
	"fmt"
	"time"

	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
)

// ErrNoObservations is returned by Decode for commands whose answer is
// settings rather than observations.
var ErrNoObservations = errors.New("response carries no observations")

// ErrNoDecoder is returned by DecodeResponse for commands with nothing to
// decode, such as write commands that only acknowledge.
var ErrNoDecoder = errors.New("no decoder for command")

// Decode validates a response frame received for code and turns it into
// observations. Live data frames are stamped with at.
//
// Only CMD_GW1000_LIVEDATA and CMD_READ_SENSOR_ID_NEW carry observations;
// other commands return ErrNoObservations.
func Decode(code protocol.CommandCode, frame []byte, at time.Time) (protocol.Observations, error) {
	if err := protocol.ValidateResponse(frame, code); err != nil {
		return nil, err
	}
	payload := protocol.ExtractPayload(frame, code.SizeWidth())

	switch code {
	case protocol.CmdLiveData:
		return protocol.ParseLiveData(payload, at)
	case protocol.CmdReadSensorIDNew:
		return sensors.StateObservations(payload), nil
	default:
		return nil, fmt.Errorf("%s: %w", code, ErrNoObservations)
	}
}

// DecodeNamed is Decode for a command given by its API name
func DecodeNamed(name string, frame []byte, at time.Time) (protocol.Observations, error) {
	code, err := protocol.LookupCommand(name)
	if err != nil {
		return nil, err
	}
	return Decode(code, frame, at)
}

// Firmware wraps the firmware version for structured output
type Firmware struct {
	Version string `json:"firmware" yaml:"firmware"`
}

// StationMAC wraps the station MAC for structured output
type StationMAC struct {
	MAC string `json:"mac" yaml:"mac"`
}

// DecodeResponse validates a response frame and decodes it with the parser
// for code. The result is protocol.Observations for observation commands,
// []sensors.State for CMD_READ_SENSOR_ID_NEW and a typed settings value
// otherwise.
func DecodeResponse(code protocol.CommandCode, frame []byte, at time.Time) (any, error) {
	if err := protocol.ValidateResponse(frame, code); err != nil {
		return nil, err
	}
	payload := protocol.ExtractPayload(frame, code.SizeWidth())

	switch code {
	case protocol.CmdLiveData:
		obs, err := protocol.ParseLiveData(payload, at)
		if err != nil {
			return nil, err
		}
		return obs, nil
	case protocol.CmdReadSensorIDNew:
		return sensors.ParseSensorIDs(payload), nil
	case protocol.CmdBroadcast:
		return protocol.ParseBroadcast(payload), nil
	case protocol.CmdReadFirmwareVersion:
		return Firmware{Version: protocol.ParseFirmwareVersion(payload)}, nil
	case protocol.CmdReadStationMAC:
		return StationMAC{MAC: protocol.ParseStationMAC(payload)}, nil
	case protocol.CmdReadEcowitt:
		return protocol.ParseEcowitt(payload), nil
	case protocol.CmdReadWunderground:
		return protocol.ParseWunderground(payload), nil
	case protocol.CmdReadWOW:
		return protocol.ParseWOW(payload), nil
	case protocol.CmdReadWeathercloud:
		return protocol.ParseWeathercloud(payload), nil
	case protocol.CmdReadCustomized:
		return protocol.ParseCustomized(payload), nil
	case protocol.CmdReadUserPath:
		return protocol.ParseUserPath(payload), nil
	case protocol.CmdGetMulchOffset:
		return protocol.ParseMulchOffsets(payload), nil
	case protocol.CmdGetPM25Offset:
		return protocol.ParsePM25Offsets(payload), nil
	case protocol.CmdGetCO2Offset:
		return protocol.ParseCO2Offset(payload), nil
	case protocol.CmdReadSSSS:
		return protocol.ParseSystemParams(payload), nil
	case protocol.CmdReadRainData:
		return protocol.ParseRainData(payload), nil
	case protocol.CmdReadCalibration:
		return protocol.ParseCalibration(payload), nil
	case protocol.CmdReadGain:
		return protocol.ParseGain(payload), nil
	case protocol.CmdGetSoilHumiAD:
		return protocol.ParseSoilCalibration(payload), nil
	default:
		return nil, fmt.Errorf("%s: %w", code, ErrNoDecoder)
	}
}
