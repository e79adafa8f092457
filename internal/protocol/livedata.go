package protocol

import (
	"fmt"
	"time"
)

// Lightning sentinels. The gateway reports "no strike yet" as an out of
// range distance and an all-ones timestamp.
const (
	MaxLightningDistance = 40
	NoLightningTime      = 0xFFFFFFFF
)

// Observation names the live data walk treats specially
const (
	FieldDatetime         = "datetime"
	FieldLightningDist    = "lightningdist"
	FieldLightningDetTime = "lightningdettime"
)

// ParseLiveData walks a CMD_GW1000_LIVEDATA payload (the bytes between the
// two byte size field and the checksum) and decodes every field it finds.
//
// The payload is a sequence of (field code, data) pairs; the data width is
// fixed per field code. The result always carries "datetime" set to at, in
// whole Unix seconds, replacing any date-time field the gateway sent.
//
// Returns ErrMalformedPayload if a field code is not in the field table or
// if the last field is cut short. Nothing is returned alongside the error.
func ParseLiveData(payload []byte, at time.Time) (Observations, error) {
	obs := make(Observations)

	for i := 0; i < len(payload); {
		code := payload[i]
		def, ok := LookupField(code)
		if !ok {
			return nil, newMalformedPayload(
				fmt.Sprintf("unknown field code 0x%02X at offset %d", code, i))
		}

		start := i + 1
		end := start + def.Size
		if end > len(payload) {
			return nil, newMalformedPayload(
				fmt.Sprintf("field 0x%02X at offset %d needs %d bytes, %d left",
					code, i, def.Size, len(payload)-start))
		}

		obs.Merge(def.Decode(payload[start:end]))
		i = end
	}

	applyLightningSentinels(obs)
	obs[FieldDatetime] = int(at.Round(time.Second).Unix())

	return obs, nil
}

// applyLightningSentinels replaces the gateway's "no strike" values with nil.
// Rain and wind fields have no sentinel handling.
func applyLightningSentinels(obs Observations) {
	if v, ok := obs[FieldLightningDist].(int); ok && v > MaxLightningDistance {
		obs[FieldLightningDist] = nil
	}
	if v, ok := obs[FieldLightningDetTime].(int); ok && int64(v) == NoLightningTime {
		obs[FieldLightningDetTime] = nil
	}
}
