// Coil configuration table
package mac

import (
	"fmt"
	"strings"
)

// ProfileID names one of the three magneto-inductive coil configurations.
type ProfileID string

const (
	// Sequential coils never overlap phases: long wake-up burst at low current.
	Sequential ProfileID = "sequential"
	// Simultaneous coils overlap phases: short wake-up burst at high current.
	Simultaneous ProfileID = "simultaneous"
	// Hybrid mixes the long wake-up of Sequential with high drive current.
	Hybrid ProfileID = "hybrid"
)

// Profiles returns the configuration identities in canonical order.
func Profiles() []ProfileID {
	return []ProfileID{Sequential, Simultaneous, Hybrid}
}

var profileAliases = map[string]ProfileID{
	"sequential":   Sequential,
	"config1":      Sequential,
	"simultaneous": Simultaneous,
	"config2":      Simultaneous,
	"hybrid":       Hybrid,
	"config3":      Hybrid,
}

// ParseProfileID resolves a user supplied profile name. The legacy names
// config1..config3 are accepted.
func ParseProfileID(s string) (ProfileID, error) {
	id, ok := profileAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown profile %q", ErrInvalidParams, s)
	}
	return id, nil
}

// Phase tags a transmission with its place in the exchange.
type Phase string

const (
	PhaseWakeUp Phase = "wake_up"
	PhaseAck    Phase = "ack"
	PhaseData   Phase = "data"
)

// PhaseSpec is the drive of one transmit phase. Duration is in simulation
// time units, Current in amperes.
type PhaseSpec struct {
	Duration float64 `json:"duration"`
	Current  float64 `json:"current"`
}

// Profile holds the per-phase transmit parameters of one coil configuration.
type Profile struct {
	ID     ProfileID `json:"id"`
	WakeUp PhaseSpec `json:"wake_up"`
	Ack    PhaseSpec `json:"ack"`
	Data   PhaseSpec `json:"data"`
}

// Spec returns the transmit parameters for phase p.
func (p Profile) Spec(ph Phase) PhaseSpec {
	switch ph {
	case PhaseWakeUp:
		return p.WakeUp
	case PhaseAck:
		return p.Ack
	case PhaseData:
		return p.Data
	}
	panic(fmt.Sprintf("mac: unknown phase %q", ph))
}

// Table maps every configuration identity to its profile.
type Table map[ProfileID]Profile

// Lookup returns the profile for id. Asking for an identity that is not in
// the table is a programming error.
func (t Table) Lookup(id ProfileID) Profile {
	p, ok := t[id]
	if !ok {
		panic(fmt.Sprintf("mac: no profile for %q", id))
	}
	return p
}

// Base transmit durations (ms) and drive currents (A) the default table is built from.
const (
	baseWakeUpMS = 1.0
	baseAckMS    = 0.7
	baseDataMS   = 3.0

	txLowA  = 220e-3
	txHighA = 528e-3

	// sequentialStretch is how much longer sequential coils transmit wake-up and data.
	sequentialStretch = 3.0
)

// DefaultTable returns the reference coil configurations.
func DefaultTable() Table {
	return Table{
		Sequential: {
			ID:     Sequential,
			WakeUp: PhaseSpec{Duration: baseWakeUpMS * sequentialStretch, Current: txLowA},
			Ack:    PhaseSpec{Duration: baseAckMS, Current: txLowA},
			Data:   PhaseSpec{Duration: baseDataMS * sequentialStretch, Current: txLowA},
		},
		Simultaneous: {
			ID:     Simultaneous,
			WakeUp: PhaseSpec{Duration: baseWakeUpMS, Current: txHighA},
			Ack:    PhaseSpec{Duration: baseAckMS, Current: txHighA},
			Data:   PhaseSpec{Duration: baseDataMS, Current: txHighA},
		},
		Hybrid: {
			ID:     Hybrid,
			WakeUp: PhaseSpec{Duration: baseWakeUpMS * sequentialStretch, Current: txHighA},
			Ack:    PhaseSpec{Duration: baseAckMS, Current: txLowA},
			Data:   PhaseSpec{Duration: baseDataMS, Current: txLowA},
		},
	}
}

