// Package collector issues gateway API commands over a Transport and
// decodes the responses.
//
// A Collector builds the request frame, hands it to the Transport, checks
// that the response answers the command and that its checksum holds, strips
// the framing using the command's size field width and runs the matching
// parser. Errors from the protocol package are returned unchanged so callers
// can use protocol.IsRetryable to decide whether to skip a poll cycle.
//
//	c := collector.New(station.NewClient(addr, 2*time.Second))
//	obs, err := c.LiveData(ctx)
//
// Decode and DecodeResponse do the same for frames captured elsewhere,
// without a Transport.
package collector
