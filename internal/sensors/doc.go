// Package sensors maps the gateway's fixed sensor slot table to battery and
// signal observations.
//
// The gateway answers CMD_READ_SENSOR_ID_NEW with one seven byte record per
// slot. Each slot address has a fixed sensor model and a fixed way of
// encoding its battery byte:
//
//	binary  WH65, WH40, WH25, WH26, WH31, WH51    255 = failed, else OK
//	int     WH41, WH57, WH55, WH45                level 0-5, 6 = DC powered
//	volt    WH68, WS80, WH34, WH35                20 mV steps
//
// Usage:
//
//	obs := sensors.StateObservations(payload)
//	// obs["wh31_ch1_batt"] == 0, obs["wh31_ch1_sig"] == 4
//
//	reg := sensors.NewRegistry()
//	reg.Update(payload, time.Now())
//	for _, st := range reg.Connected() {
//	    fmt.Println(st.ID, sensors.BatteryDesc(st.Address, st.Battery))
//	}
package sensors
