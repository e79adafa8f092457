package sensors

import (
	"sort"
	"sync"
	"time"

	"github.com/muurk/gw1000/internal/protocol"
)

// RecordSize is the width of one sensor ID record
const RecordSize = 7

// Device IDs the gateway uses for slots without a paired sensor.
// "fffffffe" is a slot still searching, "ffffffff" a disabled slot.
const (
	IDSearching = "fffffffe"
	IDDisabled  = "ffffffff"
)

// State is one slot of a sensor ID response
type State struct {
	Address byte   `json:"address" yaml:"address"`
	ID      string `json:"id" yaml:"id"`           // Lowercase hex device id
	Battery any    `json:"battery" yaml:"battery"` // Decoded per BatteryKind, nil if not registered
	Signal  int    `json:"signal" yaml:"signal"`   // 0 to 4
	RawBatt byte   `json:"raw_battery" yaml:"raw_battery"`
}

// Registered reports whether a sensor is paired with the slot
func (s State) Registered() bool {
	return s.ID != IDSearching && s.ID != IDDisabled
}

// Sensor returns the table entry for the slot's address
func (s State) Sensor() (Sensor, bool) {
	return Lookup(s.Address)
}

// ParseSensorIDs decodes a CMD_READ_SENSOR_ID_NEW payload into one State per
// seven byte record: address, four byte device id, battery and signal.
// Slots without a paired sensor get a nil battery and zero signal whatever
// the gateway sent. Addresses missing from the sensor table keep their raw
// battery byte as an int. A trailing partial record is ignored.
func ParseSensorIDs(payload []byte) []State {
	states := make([]State, 0, len(payload)/RecordSize)
	for i := 0; i+RecordSize <= len(payload); i += RecordSize {
		rec := payload[i : i+RecordSize]
		st := State{
			Address: rec[0],
			ID:      protocol.BytesToHex(rec[1:5], "", false),
			RawBatt: rec[5],
			Signal:  int(rec[6]),
		}

		switch sensor, known := Lookup(st.Address); {
		case !st.Registered():
			st.Battery = nil
			st.Signal = 0
		case known:
			st.Battery = DecodeBattery(sensor.Battery, st.RawBatt)
		default:
			st.Battery = int(st.RawBatt)
		}

		states = append(states, st)
	}
	return states
}

// StateObservations turns a sensor ID payload into "<name>_batt" and
// "<name>_sig" observations for every slot found in the sensor table.
// Slots absent from the payload are absent from the result.
func StateObservations(payload []byte) protocol.Observations {
	return observationsFor(ParseSensorIDs(payload))
}

func observationsFor(states []State) protocol.Observations {
	obs := make(protocol.Observations, 2*len(states))
	for _, st := range states {
		sensor, ok := st.Sensor()
		if !ok {
			continue
		}
		obs[sensor.Name+"_batt"] = st.Battery
		obs[sensor.Name+"_sig"] = st.Signal
	}
	return obs
}

// Registry holds the sensor states from the most recent sensor ID poll.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	states  map[byte]State
	updated time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{states: make(map[byte]State)}
}

// Update replaces the registry contents with the states in payload
func (r *Registry) Update(payload []byte, at time.Time) []State {
	states := ParseSensorIDs(payload)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states = make(map[byte]State, len(states))
	for _, st := range states {
		r.states[st.Address] = st
	}
	r.updated = at

	return states
}

// Updated returns the time of the last Update, zero if never updated
func (r *Registry) Updated() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updated
}

// Get returns the state for address
func (r *Registry) Get(address byte) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[address]
	return st, ok
}

// States returns every known slot ordered by address
func (r *Registry) States() []State {
	return r.filter(func(State) bool { return true })
}

// Registered returns slots that have a paired sensor
func (r *Registry) Registered() []State {
	return r.filter(State.Registered)
}

// Connected returns paired slots the gateway currently receives
func (r *Registry) Connected() []State {
	return r.filter(func(st State) bool { return st.Registered() && st.Signal > 0 })
}

// Observations returns battery and signal observations for every slot
func (r *Registry) Observations() protocol.Observations {
	return observationsFor(r.States())
}

func (r *Registry) filter(keep func(State) bool) []State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]State, 0, len(r.states))
	for _, st := range r.states {
		if keep(st) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}
