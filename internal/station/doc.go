// Package station talks to a GW1000 gateway over its TCP API.
//
// Each Exchange opens a connection, writes one request frame and reads one
// response frame. The response is returned unvalidated; the collector
// checks the command code and checksum.
//
//	client := station.NewClient("192.168.2.20:45000", 2*time.Second)
//	resp, err := client.Exchange(ctx, request)
package station
