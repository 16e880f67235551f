package mac

import "fmt"

// NodeTotals are the running sums of one node.
type NodeTotals struct {
	Node           int     `json:"node"`
	EnergyJ        float64 `json:"energy_j"`
	BytesSent      int     `json:"bytes_sent"`
	BytesDelivered int     `json:"bytes_delivered"`
}

// Accumulator keeps per-node totals. Amounts only ever grow.
type Accumulator struct {
	nodes []NodeTotals
}

// NewAccumulator returns zeroed totals for n nodes.
func NewAccumulator(n int) *Accumulator {
	nodes := make([]NodeTotals, n)
	for i := range nodes {
		nodes[i].Node = i
	}
	return &Accumulator{nodes: nodes}
}

func (a *Accumulator) chargeEnergy(node int, joules float64) {
	if joules < 0 {
		panic(fmt.Sprintf("mac: negative energy charge %g for node %d", joules, node))
	}
	a.nodes[node].EnergyJ += joules
}

func (a *Accumulator) addSent(node, n int) {
	if n < 0 {
		panic(fmt.Sprintf("mac: negative byte count %d for node %d", n, node))
	}
	a.nodes[node].BytesSent += n
}

func (a *Accumulator) addDelivered(node, n int) {
	if n < 0 {
		panic(fmt.Sprintf("mac: negative byte count %d for node %d", n, node))
	}
	a.nodes[node].BytesDelivered += n
}

// Node returns the current totals of node i.
func (a *Accumulator) Node(i int) NodeTotals { return a.nodes[i] }

// Snapshot returns a copy of all totals.
func (a *Accumulator) Snapshot() []NodeTotals {
	out := make([]NodeTotals, len(a.nodes))
	copy(out, a.nodes)
	return out
}
