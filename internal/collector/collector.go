package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
)

// Transport sends one request frame and returns the raw response frame
type Transport interface {
	Exchange(ctx context.Context, request []byte) ([]byte, error)
}

// Collector issues API commands to a gateway and decodes the answers.
// It is safe for concurrent use if the Transport is.
type Collector struct {
	transport Transport
	registry  *sensors.Registry
	now       func() time.Time
}

// Option configures a Collector
type Option func(*Collector)

// WithRegistry shares a sensor registry with the collector
func WithRegistry(reg *sensors.Registry) Option {
	return func(c *Collector) { c.registry = reg }
}

// WithClock overrides the time source used to stamp live data
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// New creates a collector on top of transport
func New(transport Transport, opts ...Option) *Collector {
	c := &Collector{
		transport: transport,
		registry:  sensors.NewRegistry(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the sensor registry updated by LiveData and SensorStates
func (c *Collector) Registry() *sensors.Registry {
	return c.registry
}

// Send issues a command and returns the validated response payload
func (c *Collector) Send(ctx context.Context, code protocol.CommandCode, payload []byte) ([]byte, error) {
	request, err := protocol.BuildFrameCode(code, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Exchange(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", code.Name(), err)
	}

	if err := protocol.ValidateResponse(resp, code); err != nil {
		logging.LogRawBytes("Rejected response", resp)
		return nil, err
	}

	return protocol.ExtractPayload(resp, code.SizeWidth()), nil
}

// SendNamed is Send for a command given by its API name
func (c *Collector) SendNamed(ctx context.Context, name string, payload []byte) ([]byte, error) {
	code, err := protocol.LookupCommand(name)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, code, payload)
}

// LiveData polls current observations merged with battery and signal
// states of the paired sensors. A failed sensor ID request is logged and
// the live observations are returned on their own.
func (c *Collector) LiveData(ctx context.Context) (protocol.Observations, error) {
	payload, err := c.Send(ctx, protocol.CmdLiveData, nil)
	if err != nil {
		return nil, err
	}

	obs, err := protocol.ParseLiveData(payload, c.now())
	if err != nil {
		return nil, err
	}

	if _, err := c.SensorStates(ctx); err != nil {
		logging.Warn("Sensor states unavailable", zap.Error(err))
	} else {
		obs.Merge(c.registry.Observations())
	}

	logging.LogObservations("live", obs)
	return obs, nil
}

// SensorStates reads the sensor ID table and updates the registry
func (c *Collector) SensorStates(ctx context.Context) ([]sensors.State, error) {
	payload, err := c.Send(ctx, protocol.CmdReadSensorIDNew, nil)
	if err != nil {
		return nil, err
	}
	return c.registry.Update(payload, c.now()), nil
}

// Firmware returns the gateway firmware version string
func (c *Collector) Firmware(ctx context.Context) (string, error) {
	payload, err := c.Send(ctx, protocol.CmdReadFirmwareVersion, nil)
	if err != nil {
		return "", err
	}
	return protocol.ParseFirmwareVersion(payload), nil
}

// StationMAC returns the gateway MAC address
func (c *Collector) StationMAC(ctx context.Context) (string, error) {
	payload, err := c.Send(ctx, protocol.CmdReadStationMAC, nil)
	if err != nil {
		return "", err
	}
	return protocol.ParseStationMAC(payload), nil
}

// Broadcast returns the gateway's network identity
func (c *Collector) Broadcast(ctx context.Context) (protocol.BroadcastInfo, error) {
	return read(ctx, c, protocol.CmdBroadcast, protocol.ParseBroadcast)
}

// SystemParams returns radio frequency, sensor type and clock settings
func (c *Collector) SystemParams(ctx context.Context) (protocol.SystemParams, error) {
	return read(ctx, c, protocol.CmdReadSSSS, protocol.ParseSystemParams)
}

// RainData returns the gateway's rain counters
func (c *Collector) RainData(ctx context.Context) (protocol.RainData, error) {
	return read(ctx, c, protocol.CmdReadRainData, protocol.ParseRainData)
}

// Calibration returns the sensor offsets
func (c *Collector) Calibration(ctx context.Context) (protocol.Calibration, error) {
	return read(ctx, c, protocol.CmdReadCalibration, protocol.ParseCalibration)
}

// Gain returns the sensor gains
func (c *Collector) Gain(ctx context.Context) (protocol.Gain, error) {
	return read(ctx, c, protocol.CmdReadGain, protocol.ParseGain)
}

// MulchOffsets returns the multi-channel temperature and humidity offsets
func (c *Collector) MulchOffsets(ctx context.Context) ([]protocol.MulchOffset, error) {
	return read(ctx, c, protocol.CmdGetMulchOffset, protocol.ParseMulchOffsets)
}

// PM25Offsets returns the PM2.5 sensor offsets
func (c *Collector) PM25Offsets(ctx context.Context) ([]protocol.PM25Offset, error) {
	return read(ctx, c, protocol.CmdGetPM25Offset, protocol.ParsePM25Offsets)
}

// CO2Offset returns the WH45 offsets
func (c *Collector) CO2Offset(ctx context.Context) (protocol.CO2Offset, error) {
	return read(ctx, c, protocol.CmdGetCO2Offset, protocol.ParseCO2Offset)
}

// SoilCalibration returns the soil moisture calibration records
func (c *Collector) SoilCalibration(ctx context.Context) ([]protocol.SoilCalibration, error) {
	return read(ctx, c, protocol.CmdGetSoilHumiAD, protocol.ParseSoilCalibration)
}

// Ecowitt returns the Ecowitt.net upload settings
func (c *Collector) Ecowitt(ctx context.Context) (protocol.EcowittConfig, error) {
	return read(ctx, c, protocol.CmdReadEcowitt, protocol.ParseEcowitt)
}

// Wunderground returns the Weather Underground upload settings
func (c *Collector) Wunderground(ctx context.Context) (protocol.WundergroundConfig, error) {
	return read(ctx, c, protocol.CmdReadWunderground, protocol.ParseWunderground)
}

// WOW returns the Weather Observations Website upload settings
func (c *Collector) WOW(ctx context.Context) (protocol.WOWConfig, error) {
	return read(ctx, c, protocol.CmdReadWOW, protocol.ParseWOW)
}

// Weathercloud returns the Weathercloud upload settings
func (c *Collector) Weathercloud(ctx context.Context) (protocol.WeathercloudConfig, error) {
	return read(ctx, c, protocol.CmdReadWeathercloud, protocol.ParseWeathercloud)
}

// Customized returns the custom upload server settings
func (c *Collector) Customized(ctx context.Context) (protocol.CustomizedConfig, error) {
	return read(ctx, c, protocol.CmdReadCustomized, protocol.ParseCustomized)
}

// UserPath returns the custom upload paths
func (c *Collector) UserPath(ctx context.Context) (protocol.UserPath, error) {
	return read(ctx, c, protocol.CmdReadUserPath, protocol.ParseUserPath)
}

func read[T any](ctx context.Context, c *Collector, code protocol.CommandCode, parse func([]byte) T) (T, error) {
	payload, err := c.Send(ctx, code, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(payload), nil
}
