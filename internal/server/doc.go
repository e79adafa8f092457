// Package server relays GW1000 observations to browsers and other consumers.
//
// The server polls the gateway on a fixed interval and keeps the most recent
// successful result as a snapshot. Every new snapshot is pushed to all
// connected websocket clients and optionally handed to an MQTT publisher and
// a SQLite archive. A failed poll keeps the previous snapshot and marks the
// server degraded until the next success.
//
// # Endpoints
//
//	GET /ws           websocket stream of snapshots, latest first on connect
//	GET /api/latest   latest snapshot as JSON, 503 before the first poll
//	GET /api/sensors  paired sensors with signal and battery state
//	GET /healthz      poll status, 503 when the last poll failed
//
// Snapshot documents look like:
//
//	{"time": "2020-09-02T04:34:23Z", "observations": {"intemp": 23.4, ...}}
//
// # Usage Example
//
//	coll := collector.New(station.NewClient("192.168.2.20:45000", 2*time.Second))
//	srv, err := server.New(&server.Config{
//	    ListenAddr:   ":8080",
//	    PollInterval: 20 * time.Second,
//	    Poller:       coll,
//	    Sensors:      coll.Registry(),
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start() // blocks until SIGINT or SIGTERM
//
// # Connection Lifecycle
//
// Clients that fall more than a few snapshots behind are dropped. Pings are
// sent every 54 seconds and a client that does not answer within 60 seconds
// is disconnected.
package server
