package mac

// Transmission is one frame on the air over [Start, End).
type Transmission struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Sender int     `json:"sender"`
	Target int     `json:"target"`
	Phase  Phase   `json:"phase"`
}

// Overlaps reports whether the half-open intervals of t and o intersect.
func (t Transmission) Overlaps(o Transmission) bool {
	return !(o.End <= t.Start || o.Start >= t.End)
}

// Ledger is the append-only record of every transmission in a run.
type Ledger struct {
	entries []Transmission
	wakeUps map[int][]int // target -> ledger indices of wake-ups addressed to it
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{wakeUps: make(map[int][]int)}
}

// Append records tx and returns its index.
func (l *Ledger) Append(tx Transmission) int {
	idx := len(l.entries)
	l.entries = append(l.entries, tx)
	if tx.Phase == PhaseWakeUp {
		l.wakeUps[tx.Target] = append(l.wakeUps[tx.Target], idx)
	}
	return idx
}

// Len returns the number of recorded transmissions.
func (l *Ledger) Len() int { return len(l.entries) }

// At returns the transmission at index i.
func (l *Ledger) At(i int) Transmission { return l.entries[i] }

// All returns a copy of the recorded transmissions in append order.
func (l *Ledger) All() []Transmission {
	out := make([]Transmission, len(l.entries))
	copy(out, l.entries)
	return out
}

// WakeUpsTo returns the indices of wake-ups addressed to target, in append
// order. The slice must not be modified.
func (l *Ledger) WakeUpsTo(target int) []int {
	return l.wakeUps[target]
}
