package station

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/protocol"
)

// DefaultTimeout bounds a whole exchange when the context has no deadline
const DefaultTimeout = 2 * time.Second

// ErrBadHeader is returned when a response does not start with 0xFF 0xFF
var ErrBadHeader = errors.New("response does not start with frame header")

// Client exchanges frames with a gateway over its TCP API port.
// One connection is opened per exchange; the gateway closes idle
// connections quickly and handles one request at a time.
type Client struct {
	Addr    string        // host:port, port is usually 45000
	Timeout time.Duration // Per-exchange timeout, DefaultTimeout if zero

	dialer net.Dialer
}

// NewClient creates a client for the gateway at addr
func NewClient(addr string, timeout time.Duration) *Client {
	return &Client{Addr: addr, Timeout: timeout}
}

// Exchange sends a request frame and reads one complete response frame.
// The width of the response size field is taken from the command code in
// the request. Validation of the response is left to the caller.
func (c *Client) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	if len(request) <= protocol.CodeOffset {
		return nil, fmt.Errorf("request too short: %d bytes", len(request))
	}
	cmd := protocol.CommandCode(request[protocol.CodeOffset])

	resp, err := c.exchange(ctx, cmd, request)
	logging.LogExchange(c.Addr, cmd.String(), len(request), len(resp), err)
	return resp, err
}

func (c *Client) exchange(ctx context.Context, cmd protocol.CommandCode, request []byte) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gateway %s: %w", c.Addr, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	// Unblock reads if the caller cancels before the deadline
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	logging.LogFrame("sent", cmd.String(), request)
	if _, err := conn.Write(request); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", cmd, err)
	}

	resp, err := ReadFrame(conn, cmd.SizeWidth())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("no response to %s: %w", cmd, ctxErr)
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, fmt.Errorf("no response to %s: %w", cmd, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("failed to read response to %s: %w", cmd, err)
	}
	logging.LogFrame("received", cmd.String(), resp)

	return resp, nil
}

// ReadFrame reads one frame from r. sizeWidth is the width of the size
// field, which the reader has to know in advance.
//
// Frame structure:
//
//	[0-1]         0xFF 0xFF    Header
//	[2]           code         Command code
//	[3..3+w)      size         Big-endian, counts every byte after the header
//	[3+w..N-1)    payload
//	[N-1]         checksum
func ReadFrame(r io.Reader, sizeWidth int) ([]byte, error) {
	if sizeWidth != 1 && sizeWidth != 2 {
		return nil, fmt.Errorf("invalid size field width %d", sizeWidth)
	}

	head := make([]byte, protocol.SizeOffset+sizeWidth)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}
	if head[0] != protocol.HeaderByte || head[1] != protocol.HeaderByte {
		return nil, fmt.Errorf("%w: % X", ErrBadHeader, head[:protocol.HeaderSize])
	}

	size, _ := protocol.DeclaredSize(head, sizeWidth)
	total := size + protocol.HeaderSize
	if total < len(head)+1 {
		return nil, fmt.Errorf("declared size %d too small for a frame", size)
	}

	frame := make([]byte, total)
	copy(frame, head)
	if _, err := io.ReadFull(r, frame[len(head):]); err != nil {
		return nil, fmt.Errorf("truncated frame, expected %d bytes: %w", total, err)
	}

	return frame, nil
}
