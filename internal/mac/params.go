package mac

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams marks configuration errors. They are always reported
// before a run starts.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Electrical holds the supply voltage and the non-transmit currents.
// Units: volts and amperes.
type Electrical struct {
	SupplyVoltage  float64 `json:"supply_voltage"`
	IdleCurrent    float64 `json:"idle_current"`
	SenseCurrent   float64 `json:"sense_current"`
	ReceiveCurrent float64 `json:"receive_current"`
}

// Timing holds the fixed, profile independent durations of the exchange.
type Timing struct {
	Sense        float64 `json:"sense"`
	NoAckTimeout float64 `json:"no_ack_timeout"`
	AckGap       float64 `json:"ack_gap"`
	DataGap      float64 `json:"data_gap"`
}

// PacketSizes are the frame sizes in bytes.
type PacketSizes struct {
	WakeUp int `json:"wake_up"`
	Ack    int `json:"ack"`
	Data   int `json:"data"`
}

// Exchange is the number of bytes a completed attempt puts on the air.
func (s PacketSizes) Exchange() int {
	return s.WakeUp + s.Ack + s.Data
}

// Params is the full input of one run.
type Params struct {
	Nodes   int     `json:"nodes"`
	Horizon float64 `json:"horizon"`
	Rate    float64 `json:"rate"`
	// TimeUnitSeconds converts simulation time to seconds for energy.
	TimeUnitSeconds float64     `json:"time_unit_seconds"`
	Electrical      Electrical  `json:"electrical"`
	Timing          Timing      `json:"timing"`
	Packets         PacketSizes `json:"packets"`
	Table           Table       `json:"profiles"`
}

// DefaultParams returns the reference scenario: 10 nodes, 200 ms, 0.02
// attempts per ms per node on a 3.3 V supply.
func DefaultParams() Params {
	return Params{
		Nodes:           10,
		Horizon:         200,
		Rate:            0.02,
		TimeUnitSeconds: 1e-3,
		Electrical: Electrical{
			SupplyVoltage:  3.3,
			IdleCurrent:    60e-6,
			SenseCurrent:   0.74e-3,
			ReceiveCurrent: 0.49e-3,
		},
		Timing: Timing{
			Sense:        0.5,
			NoAckTimeout: baseWakeUpMS + baseAckMS + 0.3,
			AckGap:       0.1,
			DataGap:      0.05,
		},
		Packets: PacketSizes{WakeUp: 13, Ack: 9, Data: 24},
		Table:   DefaultTable(),
	}
}

// Validate reports the first configuration error in p.
func (p Params) Validate() error {
	switch {
	case p.Nodes < 2:
		return fmt.Errorf("%w: nodes must be >= 2, got %d", ErrInvalidParams, p.Nodes)
	case !positive(p.Horizon):
		return fmt.Errorf("%w: horizon must be positive and finite, got %g", ErrInvalidParams, p.Horizon)
	case !positive(p.Rate):
		return fmt.Errorf("%w: rate must be positive and finite, got %g", ErrInvalidParams, p.Rate)
	case !positive(p.TimeUnitSeconds):
		return fmt.Errorf("%w: time unit must be positive and finite, got %g", ErrInvalidParams, p.TimeUnitSeconds)
	case !positive(p.Electrical.SupplyVoltage):
		return fmt.Errorf("%w: supply voltage must be positive and finite, got %g", ErrInvalidParams, p.Electrical.SupplyVoltage)
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"idle current", p.Electrical.IdleCurrent},
		{"sense current", p.Electrical.SenseCurrent},
		{"receive current", p.Electrical.ReceiveCurrent},
		{"sense", p.Timing.Sense},
		{"no-ack timeout", p.Timing.NoAckTimeout},
		{"ack gap", p.Timing.AckGap},
		{"data gap", p.Timing.DataGap},
	}
	for _, f := range fields {
		if !nonNegative(f.v) {
			return fmt.Errorf("%w: %s must be finite and not negative, got %g", ErrInvalidParams, f.name, f.v)
		}
	}
	if p.Packets.WakeUp < 0 || p.Packets.Ack < 0 || p.Packets.Data < 0 {
		return fmt.Errorf("%w: packet sizes must not be negative", ErrInvalidParams)
	}
	for _, id := range Profiles() {
		prof, ok := p.Table[id]
		if !ok {
			return fmt.Errorf("%w: profile %q missing from table", ErrInvalidParams, id)
		}
		for _, ph := range []Phase{PhaseWakeUp, PhaseAck, PhaseData} {
			spec := prof.Spec(ph)
			if !positive(spec.Duration) {
				return fmt.Errorf("%w: %s %s duration must be positive and finite", ErrInvalidParams, id, ph)
			}
			if !nonNegative(spec.Current) {
				return fmt.Errorf("%w: %s %s current must be finite and not negative", ErrInvalidParams, id, ph)
			}
		}
	}
	return nil
}

// positive is false for NaN and ±Inf.
func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }

// joules converts a current drawn for a duration into energy.
func (p Params) joules(current, duration float64) float64 {
	return current * p.Electrical.SupplyVoltage * duration * p.TimeUnitSeconds
}

// IdleBaseline is the energy every node burns idling for the whole horizon.
func (p Params) IdleBaseline() float64 {
	return p.joules(p.Electrical.IdleCurrent, p.Horizon)
}
