package station

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/gw1000/internal/protocol"
)

var firmwareFrame = []byte{
	0xFF, 0xFF, 0x50, 0x11, 0x0D,
	0x47, 0x57, 0x31, 0x30, 0x30, 0x30, 0x5F, 0x56, 0x31, 0x2E, 0x36, 0x2E, 0x31,
	0x76,
}

func liveFrame() []byte {
	f := []byte{0xFF, 0xFF, 0x27, 0x00, 0x09, 0x01, 0x00, 0xEA, 0x06, 0x26, 0x00}
	f[len(f)-1] = protocol.CalcChecksum(f[protocol.CodeOffset : len(f)-1])
	return f
}

// fakeGateway answers every request on a local listener with reply(request)
func fakeGateway(t *testing.T, reply func(req []byte) []byte) string {
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
				if err != nil {
					return
				}
				if out := reply(buf[:n]); out != nil {
					_, _ = c.Write(out)
				}
				// Hold the connection open so the client sees the deadline
				_, _ = io.Copy(io.Discard, c)
			}(conn)
		}
	}()

	return ln.Addr().String()
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		width   int
		want    []byte
		wantErr bool
	}{
		{name: "one byte size", data: firmwareFrame, width: 1, want: firmwareFrame},
		{name: "two byte size", data: liveFrame(), width: 2, want: liveFrame()},
		{
			name:  "stops at declared size",
			data:  append(append([]byte(nil), firmwareFrame...), 0xFF, 0xFF),
			width: 1,
			want:  firmwareFrame,
		},
		{name: "bad header", data: []byte{0xFE, 0xFF, 0x50, 0x03, 0x53}, width: 1, wantErr: true},
		{name: "truncated", data: firmwareFrame[:10], width: 1, wantErr: true},
		{name: "size too small", data: []byte{0xFF, 0xFF, 0x50, 0x01}, width: 1, wantErr: true},
		{name: "empty", data: nil, width: 1, wantErr: true},
		{name: "bad width", data: firmwareFrame, width: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFrame(bytes.NewReader(tt.data), tt.width)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFrame_BadHeaderSentinel(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x00, 0x00, 0x50, 0x03}), 1)
	assert.True(t, errors.Is(err, ErrBadHeader))
}

func TestClientExchange(t *testing.T) {
	addr := fakeGateway(t, func(req []byte) []byte {
		switch protocol.CommandCode(req[protocol.CodeOffset]) {
		case protocol.CmdReadFirmwareVersion:
			return firmwareFrame
		case protocol.CmdLiveData:
			return liveFrame()
		}
		return nil
	})

	client := NewClient(addr, time.Second)

	req, err := protocol.BuildFrame("CMD_READ_FIRMWARE_VERSION", nil)
	require.NoError(t, err)
	resp, err := client.Exchange(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, firmwareFrame, resp)

	req, err = protocol.BuildFrame("CMD_GW1000_LIVEDATA", nil)
	require.NoError(t, err)
	resp, err = client.Exchange(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, liveFrame(), resp)
	assert.NoError(t, protocol.ValidateResponse(resp, protocol.CmdLiveData))
}

func TestClientExchange_Timeout(t *testing.T) {
	addr := fakeGateway(t, func([]byte) []byte { return nil })
	client := NewClient(addr, 100*time.Millisecond)

	req, err := protocol.BuildFrame("CMD_READ_SATION_MAC", nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Exchange(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClientExchange_Cancelled(t *testing.T) {
	addr := fakeGateway(t, func([]byte) []byte { return nil })
	client := NewClient(addr, 5*time.Second)

	req, err := protocol.BuildFrame("CMD_READ_SATION_MAC", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err = client.Exchange(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestClientExchange_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewClient(addr, 200*time.Millisecond).Exchange(context.Background(), []byte{0xFF, 0xFF, 0x50, 0x03, 0x53})
	assert.ErrorContains(t, err, "failed to connect")
}

func TestClientExchange_ShortRequest(t *testing.T) {
	_, err := NewClient("127.0.0.1:1", time.Second).Exchange(context.Background(), []byte{0xFF})
	assert.Error(t, err)
}
