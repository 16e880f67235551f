package mac

// Outcome records how one attempt ended.
type Outcome struct {
	Attempt  Attempt      `json:"attempt"`
	Collided bool         `json:"collided"`
	WakeUp   Transmission `json:"wake_up"`
}

// Run is the state of one simulation for one coil configuration. It owns
// the ledger and the accumulator; attempts must be walked in time order so
// every wake-up sees all earlier ones.
type Run struct {
	params   Params
	profile  Profile
	detector Detector
	ledger   *Ledger
	acc      *Accumulator
	outcomes []Outcome

	processed int
	collided  int
	completed int
	finished  bool
}

// NewRun validates params and prepares an empty run for profile id. A nil
// detector defaults to ScanDetector.
func NewRun(params Params, id ProfileID, detector Detector) (*Run, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	id, err := ParseProfileID(string(id))
	if err != nil {
		return nil, err
	}
	if detector == nil {
		detector = ScanDetector{}
	}
	return &Run{
		params:   params,
		profile:  params.Table.Lookup(id),
		detector: detector,
		ledger:   NewLedger(),
		acc:      NewAccumulator(params.Nodes),
	}, nil
}

// Ledger exposes the transmission record for inspection.
func (r *Run) Ledger() *Ledger { return r.ledger }

// Totals returns a copy of the running per-node totals.
func (r *Run) Totals() []NodeTotals { return r.acc.Snapshot() }

func (r *Run) charge(node int, current, duration float64) {
	r.acc.chargeEnergy(node, r.params.joules(current, duration))
}

// Walk plays one attempt through sense, wake-up, collision check,
// acknowledgment and data.
func (r *Run) Walk(a Attempt) Outcome {
	el := r.params.Electrical
	tm := r.params.Timing
	sender, target := a.Node, a.Target

	// Sense. The addressed node listens for half the window.
	t := a.Time
	r.charge(sender, el.SenseCurrent, tm.Sense)
	r.charge(target, el.ReceiveCurrent, tm.Sense/2)
	t += tm.Sense

	// The wake-up is on the air before we know whether it collided.
	w := r.profile.WakeUp
	wake := Transmission{Start: t, End: t + w.Duration, Sender: sender, Target: target, Phase: PhaseWakeUp}
	idx := r.ledger.Append(wake)
	r.charge(sender, w.Current, w.Duration)
	t = wake.End

	r.processed++
	if r.detector.Collides(r.ledger, idx) {
		r.charge(sender, el.IdleCurrent, tm.NoAckTimeout)
		r.acc.addSent(sender, r.params.Packets.WakeUp)
		r.collided++
		return r.record(Outcome{Attempt: a, Collided: true, WakeUp: wake})
	}
	r.charge(target, el.ReceiveCurrent, w.Duration)

	ack := r.profile.Ack
	ackTx := Transmission{Start: t + tm.AckGap, Sender: target, Target: sender, Phase: PhaseAck}
	ackTx.End = ackTx.Start + ack.Duration
	r.ledger.Append(ackTx)
	r.charge(target, ack.Current, ack.Duration)
	r.charge(sender, el.ReceiveCurrent, ack.Duration)
	t = ackTx.End

	data := r.profile.Data
	dataTx := Transmission{Start: t + tm.DataGap, Sender: sender, Target: target, Phase: PhaseData}
	dataTx.End = dataTx.Start + data.Duration
	r.ledger.Append(dataTx)
	r.charge(sender, data.Current, data.Duration)
	r.charge(target, el.ReceiveCurrent, data.Duration)

	// Delivered bytes are credited to the sender.
	r.acc.addSent(sender, r.params.Packets.Exchange())
	r.acc.addDelivered(sender, r.params.Packets.Data)
	r.completed++
	return r.record(Outcome{Attempt: a, WakeUp: wake})
}

func (r *Run) record(o Outcome) Outcome {
	r.outcomes = append(r.outcomes, o)
	return o
}

// Finish charges the idle baseline to every node and freezes the run.
// Calling Finish twice panics.
func (r *Run) Finish(generated int) Result {
	if r.finished {
		panic("mac: run already finished")
	}
	r.finished = true
	baseline := r.params.IdleBaseline()
	for i := 0; i < r.params.Nodes; i++ {
		r.acc.chargeEnergy(i, baseline)
	}

	nodes := r.acc.Snapshot()
	res := Result{
		Profile:           r.profile.ID,
		Nodes:             nodes,
		NodeCount:         r.params.Nodes,
		Horizon:           r.params.Horizon,
		Rate:              r.params.Rate,
		AttemptsGenerated: generated,
		AttemptsProcessed: r.processed,
		Collided:          r.collided,
		Completed:         r.completed,
		Outcomes:          r.outcomes,
	}
	for _, n := range nodes {
		res.BytesSent += n.BytesSent
		res.BytesDelivered += n.BytesDelivered
		res.EnergyJ += n.EnergyJ
	}
	return res
}
