package collector

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
)

// responseFrame builds a gateway response for code carrying payload
func responseFrame(code protocol.CommandCode, payload []byte) []byte {
	width := code.SizeWidth()
	size := 1 + width + len(payload) + 1

	frame := []byte{0xFF, 0xFF, byte(code)}
	if width == 2 {
		frame = binary.BigEndian.AppendUint16(frame, uint16(size))
	} else {
		frame = append(frame, byte(size))
	}
	frame = append(frame, payload...)
	return append(frame, protocol.CalcChecksum(frame[protocol.CodeOffset:]))
}

type fakeTransport struct {
	mu        sync.Mutex
	responses map[protocol.CommandCode][]byte
	errs      map[protocol.CommandCode]error
	requests  [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		responses: make(map[protocol.CommandCode][]byte),
		errs:      make(map[protocol.CommandCode]error),
	}
}

func (f *fakeTransport) reply(code protocol.CommandCode, payload []byte) {
	f.responses[code] = responseFrame(code, payload)
}

func (f *fakeTransport) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)

	code := protocol.CommandCode(request[protocol.CodeOffset])
	if err := f.errs[code]; err != nil {
		return nil, err
	}
	resp, ok := f.responses[code]
	if !ok {
		return nil, errors.New("no response configured")
	}
	return resp, nil
}

var (
	livePayload = []byte{
		0x01, 0x00, 0xEA, // intemp 23.4
		0x06, 0x26, // inhumid 38
		0x60, 0xFF, // lightningdist, no strike
	}
	sensorPayload = []byte{
		0x00, 0x00, 0x00, 0x00, 0xC4, 0x00, 0x04, // wh65
		0x06, 0xFF, 0xFF, 0xFF, 0xFE, 0x00, 0x04, // wh31 ch1 searching
	}
	pollTime = time.Unix(1599021263, 0)
)

func TestSend(t *testing.T) {
	ft := newFakeTransport()
	ft.reply(protocol.CmdReadFirmwareVersion, append([]byte{0x0D}, "GW1000_V1.6.1"...))
	c := New(ft)

	payload, err := c.Send(context.Background(), protocol.CmdReadFirmwareVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x0D}, "GW1000_V1.6.1"...), payload)

	require.Len(t, ft.requests, 1)
	assert.Equal(t, []byte{0xFF, 0xFF, 0x50, 0x03, 0x53}, ft.requests[0])
}

func TestSend_Errors(t *testing.T) {
	ft := newFakeTransport()
	c := New(ft)

	// Checksum corrupted in transit
	frame := responseFrame(protocol.CmdReadFirmwareVersion, []byte{0x01, 'x'})
	frame[len(frame)-1]++
	ft.responses[protocol.CmdReadFirmwareVersion] = frame
	_, err := c.Send(context.Background(), protocol.CmdReadFirmwareVersion, nil)
	assert.True(t, errors.Is(err, protocol.ErrInvalidChecksum))
	assert.True(t, protocol.IsRetryable(err))

	// Answer to a different command
	ft.responses[protocol.CmdReadStationMAC] = responseFrame(protocol.CmdReadFirmwareVersion, nil)
	_, err = c.Send(context.Background(), protocol.CmdReadStationMAC, nil)
	assert.True(t, errors.Is(err, protocol.ErrInvalidAPIResponse))

	// Transport failure keeps its cause
	ft.errs[protocol.CmdReadGain] = context.DeadlineExceeded
	_, err = c.Send(context.Background(), protocol.CmdReadGain, nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "CMD_READ_GAIN")

	_, err = c.SendNamed(context.Background(), "CMD_NOPE", nil)
	assert.True(t, errors.Is(err, protocol.ErrUnknownCommand))
}

func TestLiveData(t *testing.T) {
	ft := newFakeTransport()
	ft.reply(protocol.CmdLiveData, livePayload)
	ft.reply(protocol.CmdReadSensorIDNew, sensorPayload)

	reg := sensors.NewRegistry()
	c := New(ft, WithRegistry(reg), WithClock(func() time.Time { return pollTime }))

	obs, err := c.LiveData(context.Background())
	require.NoError(t, err)

	want := protocol.Observations{
		"intemp":        23.4,
		"inhumid":       38,
		"lightningdist": nil,
		"datetime":      1599021263,
		"wh65_batt":     0,
		"wh65_sig":      4,
		"wh31_ch1_batt": nil,
		"wh31_ch1_sig":  0,
	}
	assert.Equal(t, want, obs)
	assert.Same(t, reg, c.Registry())
	assert.Len(t, reg.Registered(), 1)
	assert.Equal(t, pollTime, reg.Updated())
}

func TestLiveData_SensorStatesUnavailable(t *testing.T) {
	ft := newFakeTransport()
	ft.reply(protocol.CmdLiveData, livePayload)
	ft.errs[protocol.CmdReadSensorIDNew] = errors.New("connection reset")

	c := New(ft, WithClock(func() time.Time { return pollTime }))
	obs, err := c.LiveData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 23.4, obs["intemp"])
	assert.NotContains(t, obs, "wh65_batt")
}

func TestLiveData_Malformed(t *testing.T) {
	ft := newFakeTransport()
	ft.reply(protocol.CmdLiveData, []byte{0x01, 0x00, 0xEA, 0xFE, 0x00})

	_, err := New(ft).LiveData(context.Background())
	assert.True(t, errors.Is(err, protocol.ErrMalformedPayload))
	assert.False(t, protocol.IsRetryable(err))
}

func TestSettingsReads(t *testing.T) {
	ft := newFakeTransport()
	ft.reply(protocol.CmdReadFirmwareVersion, append([]byte{0x0D}, "GW1000_V1.6.1"...))
	ft.reply(protocol.CmdReadStationMAC, []byte{0xDC, 0x4F, 0x22, 0x58, 0xA2, 0x0B})
	ft.reply(protocol.CmdBroadcast, []byte{
		0xDC, 0x4F, 0x22, 0x58, 0xA2, 0x0B, 192, 168, 2, 20, 0xAF, 0xC8, 0x02, 'g', 'w',
	})
	ft.reply(protocol.CmdReadEcowitt, []byte{0x05})
	ft.reply(protocol.CmdReadRainData, make([]byte, 20))
	ft.reply(protocol.CmdGetCO2Offset, []byte{0x01, 0x90, 0x00, 0x00, 0x00, 0x00})
	ft.reply(protocol.CmdGetMulchOffset, []byte{0x00, 0x01, 0x02})
	ft.reply(protocol.CmdReadSSSS, []byte{0x01, 0x00, 0x5F, 0x40, 0x72, 0x51, 0x27, 0x00})

	ctx := context.Background()
	c := New(ft)

	fw, err := c.Firmware(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GW1000_V1.6.1", fw)

	mac, err := c.StationMAC(ctx)
	require.NoError(t, err)
	assert.Equal(t, "DC:4F:22:58:A2:0B", mac)

	info, err := c.Broadcast(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.BroadcastInfo{MAC: "DC:4F:22:58:A2:0B", IP: "192.168.2.20", Port: 45000, SSID: "gw"}, info)

	eco, err := c.Ecowitt(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, eco.Interval)

	rain, err := c.RainData(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.RainData{}, rain)

	co2, err := c.CO2Offset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 400, co2.CO2)

	mulch, err := c.MulchOffsets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []protocol.MulchOffset{{Channel: 0, Humidity: 1, Temp: 0.2}}, mulch)

	params, err := c.SystemParams(ctx)
	require.NoError(t, err)
	assert.Equal(t, "868MHz", params.FrequencyName())

	_, err = c.Gain(ctx)
	assert.Error(t, err)
}
