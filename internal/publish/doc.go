// Package publish sends decoded observations to an MQTT broker.
//
// Every poll is published as one JSON document on <topic>/loop. With
// PerField enabled each numeric observation is also published, retained, on
// <topic>/<name> so dashboards can subscribe to single values. Observations
// the gateway reported as absent (nil) are skipped in per-field mode and
// encoded as null in the loop document.
//
// # Usage Example
//
//	pub, err := publish.Connect(publish.Config{
//	    Broker: "tcp://localhost:1883",
//	    Topic:  "weather/gw1000",
//	})
//	if err != nil {
//	    return err
//	}
//	defer pub.Close()
//
//	err = pub.Publish(ctx, obs)
package publish
