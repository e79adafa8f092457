package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/gw1000/internal/config"
	"github.com/muurk/gw1000/internal/protocol"
)

const firmwareHex = "FF FF 50 11 0D 47 57 31 30 30 30 5F 56 31 2E 36 2E 31 76"

// run executes the root command with a throwaway config file
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	return runWithConfig(t, cfg, stdin, args...)
}

func runWithConfig(t *testing.T, cfg, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

// fakeGateway answers each request with the frame replies returns for its
// command code
func fakeGateway(t *testing.T, replies map[protocol.CommandCode][]byte) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 256)
				n, err := c.Read(buf)
				if err != nil || n <= protocol.CodeOffset {
					return
				}
				if frame, ok := replies[protocol.CommandCode(buf[protocol.CodeOffset])]; ok {
					_, _ = c.Write(frame)
				}
				_, _ = io.Copy(io.Discard, c)
			}(conn)
		}
	}()
	return ln.Addr().String()
}

// response builds the gateway's reply to code, with a two byte size field
// for the commands that use one
func response(t *testing.T, code protocol.CommandCode, payload []byte) []byte {
	t.Helper()
	if code.SizeWidth() == 1 {
		frame, err := protocol.BuildFrameCode(code, payload)
		require.NoError(t, err)
		return frame
	}
	frame := binary.BigEndian.AppendUint16([]byte{0xFF, 0xFF, byte(code)}, uint16(len(payload)+4))
	frame = append(frame, payload...)
	return append(frame, protocol.CalcChecksum(frame[protocol.CodeOffset:]))
}

func TestDecode(t *testing.T) {
	out, err := run(t, "", "decode", "-c", "CMD_READ_FIRMWARE_VERSION", firmwareHex)
	require.NoError(t, err)
	assert.Equal(t, "firmware: GW1000_V1.6.1\n", out)

	out, err = run(t, firmwareHex+"\n", "decode", "-c", "CMD_READ_FIRMWARE_VERSION", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"firmware":"GW1000_V1.6.1"}`, out)
}

func TestDecode_Errors(t *testing.T) {
	badChecksum := strings.TrimSuffix(firmwareHex, "76") + "77"
	_, err := run(t, "", "decode", "-c", "CMD_READ_FIRMWARE_VERSION", badChecksum)
	assert.ErrorIs(t, err, protocol.ErrInvalidChecksum)

	_, err = run(t, "", "decode", "-c", "CMD_READ_SATION_MAC", firmwareHex)
	assert.ErrorIs(t, err, protocol.ErrInvalidAPIResponse)

	_, err = run(t, "", "decode", "-c", "CMD_NOPE", firmwareHex)
	assert.ErrorIs(t, err, protocol.ErrUnknownCommand)

	_, err = run(t, "", "decode", "zz")
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	out, err := run(t, "", "build", "CMD_READ_FIRMWARE_VERSION")
	require.NoError(t, err)
	assert.Equal(t, "FF FF 50 03 53\n", out)

	out, err = run(t, "", "build", "CMD_WRITE_REBOOT", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"CMD_WRITE_REBOOT","code":"0x40","frame":"FF FF 40 03 43"}`, out)

	_, err = run(t, "", "build", "CMD_NOPE")
	assert.ErrorIs(t, err, protocol.ErrUnknownCommand)
}

func TestListings(t *testing.T) {
	out, err := run(t, "", "commands", "-o", "json")
	require.NoError(t, err)
	var commands []commandRow
	require.NoError(t, json.Unmarshal([]byte(out), &commands))
	assert.Contains(t, commands, commandRow{Code: "0x27", Name: "CMD_GW1000_LIVEDATA", SizeWidth: 2})
	assert.Contains(t, commands, commandRow{Code: "0x50", Name: "CMD_READ_FIRMWARE_VERSION", SizeWidth: 1})

	out, err = run(t, "", "fields")
	require.NoError(t, err)
	assert.Contains(t, out, "0x01")
	assert.Contains(t, out, "intemp")

	out, err = run(t, "", "sensors", "--table")
	require.NoError(t, err)
	assert.Contains(t, out, "wh65")
}

func TestUnknownFormat(t *testing.T) {
	_, err := run(t, "", "commands", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestIsWriteCommand(t *testing.T) {
	for name, want := range map[string]bool{
		"CMD_WRITE_SSSS":            true,
		"CMD_WRITE_REBOOT":          true,
		"CMD_SET_PM25_OFFSET":       true,
		"CMD_READ_SSSS":             false,
		"CMD_GET_MulCH_OFFSET":      false,
		"CMD_READ_FIRMWARE_VERSION": false,
	} {
		assert.Equal(t, want, isWriteCommand(name), name)
	}
}

func TestSend_NoGateway(t *testing.T) {
	_, err := run(t, "", "send", "CMD_READ_RAINDATA")
	assert.ErrorIs(t, err, config.ErrNoGateway)
}

func TestSend_WriteDeclined(t *testing.T) {
	// Declining never reaches the gateway lookup, so no gateway is needed
	out, err := run(t, "no\n", "send", "CMD_WRITE_REBOOT")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSend(t *testing.T) {
	addr := fakeGateway(t, map[protocol.CommandCode][]byte{
		protocol.CmdReadFirmwareVersion: response(t, protocol.CmdReadFirmwareVersion, append([]byte{13}, "GW1000_V1.6.1"...)),
	})

	out, err := run(t, "", "send", "-g", addr, "CMD_READ_FIRMWARE_VERSION")
	require.NoError(t, err)
	assert.Equal(t, "0D 47 57 31 30 30 30 5F 56 31 2E 36 2E 31\n", out)

	out, err = run(t, "", "send", "-g", addr, "CMD_READ_FIRMWARE_VERSION", "-o", "json")
	require.NoError(t, err)
	var sent struct {
		Command string            `json:"command"`
		Decoded map[string]string `json:"decoded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sent))
	assert.Equal(t, "CMD_READ_FIRMWARE_VERSION", sent.Command)
	assert.Equal(t, "GW1000_V1.6.1", sent.Decoded["firmware"])
}

func TestPoll(t *testing.T) {
	live := response(t, protocol.CmdLiveData, []byte{0x01, 0x00, 0xEA, 0x06, 0x26})
	addr := fakeGateway(t, map[protocol.CommandCode][]byte{
		protocol.CmdLiveData:        live,
		protocol.CmdReadSensorIDNew: response(t, protocol.CmdReadSensorIDNew, []byte{0x00, 0x00, 0x00, 0xC3, 0xAA, 0x00, 0x04}),
	})
	// Live data replies carry a two byte size: 0x00 0x09
	require.Equal(t, []byte{0x00, 0x09}, live[3:5])
	archivePath := filepath.Join(t.TempDir(), "archive.db")

	out, err := run(t, "", "poll", "-g", addr, "-o", "json", "--archive", archivePath)
	require.NoError(t, err)

	var obs map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obs))
	assert.Equal(t, 23.4, obs["intemp"])
	assert.Equal(t, float64(38), obs["inhumid"])
	assert.Equal(t, float64(4), obs["wh65_sig"])
	assert.Contains(t, obs, "datetime")
	assert.FileExists(t, archivePath)

	out, err = run(t, "", "history", "intemp", "--archive", archivePath, "-o", "json")
	require.NoError(t, err)
	var points []struct {
		Value *float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	require.Len(t, points, 1)
	require.NotNil(t, points[0].Value)
	assert.Equal(t, 23.4, *points[0].Value)
}

func TestPoll_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = run(t, "", "poll", "-g", addr, "--timeout", "200ms")
	assert.ErrorIs(t, err, errReported)

	_, err = run(t, "", "poll", "-g", addr, "--timeout", "200ms", "-o", "json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errReported)
}

func TestInfo_RemembersGateway(t *testing.T) {
	ssss := []byte{0x01, 0x01, 0x5F, 0x4E, 0x2A, 0x1B, 0x00, 0x01}
	addr := fakeGateway(t, map[protocol.CommandCode][]byte{
		protocol.CmdReadFirmwareVersion: response(t, protocol.CmdReadFirmwareVersion, append([]byte{13}, "GW1000_V1.6.1"...)),
		protocol.CmdReadStationMAC:      response(t, protocol.CmdReadStationMAC, []byte{0xDC, 0x4F, 0x22, 0x58, 0xA2, 0x0B}),
		protocol.CmdReadSSSS:            response(t, protocol.CmdReadSSSS, ssss),
	})
	cfg := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runWithConfig(t, cfg, "", "info", "-g", addr, "-o", "json")
	require.NoError(t, err)

	var info gatewayInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "GW1000_V1.6.1", info.Firmware)
	assert.Equal(t, "DC:4F:22:58:A2:0B", info.MAC)
	assert.Equal(t, "868MHz", info.System.FrequencyName())
	assert.True(t, info.System.DSTStatus)
	assert.Nil(t, info.Settings)

	reg, err := config.LoadRegistryFrom(cfg)
	require.NoError(t, err)
	gw := reg.GetGateway("DC:4F:22:58:A2:0B")
	require.NotNil(t, gw)
	assert.Equal(t, "127.0.0.1", gw.IP)
	assert.Equal(t, "GW1000_V1.6.1", gw.Firmware)
}

func TestConfigCommands(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "gw1000", "config.yaml")

	out, err := runWithConfig(t, cfg, "", "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+cfg+"\n", out)

	out, err = runWithConfig(t, cfg, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfg+"\n", out)

	_, err = runWithConfig(t, cfg, "", "config", "set-default", "shed")
	assert.ErrorContains(t, err, "unknown gateway")

	_, err = runWithConfig(t, cfg, "", "config", "name", "DC:4F:22:58:A2:0B", "orchard")
	require.NoError(t, err)
	_, err = runWithConfig(t, cfg, "", "config", "set-default", "orchard")
	require.NoError(t, err)

	out, err = runWithConfig(t, cfg, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "nickname: orchard")
	assert.Contains(t, out, "default_gateway: orchard")
}
