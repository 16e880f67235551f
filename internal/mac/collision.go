package mac

// Detector decides whether the wake-up recorded at ledger index idx collides
// with another wake-up addressed to the same target. Only wake-up frames take
// part; ack and data frames are protected once a wake-up got through.
type Detector interface {
	Collides(l *Ledger, idx int) bool
}

// ScanDetector walks the whole ledger for every candidate.
type ScanDetector struct{}

func (ScanDetector) Collides(l *Ledger, idx int) bool {
	cand := l.At(idx)
	for i := 0; i < l.Len(); i++ {
		if i == idx {
			continue
		}
		tx := l.At(i)
		if tx.Phase == PhaseWakeUp && tx.Target == cand.Target && tx.Overlaps(cand) {
			return true
		}
	}
	return false
}

// IndexDetector only visits the wake-ups already filed under the candidate's
// target. It returns the same answer as ScanDetector.
type IndexDetector struct{}

func (IndexDetector) Collides(l *Ledger, idx int) bool {
	cand := l.At(idx)
	for _, i := range l.WakeUpsTo(cand.Target) {
		if i != idx && l.At(i).Overlaps(cand) {
			return true
		}
	}
	return false
}

// DetectorByName resolves the --detector flag value.
func DetectorByName(name string) (Detector, bool) {
	switch name {
	case "", "scan":
		return ScanDetector{}, true
	case "index":
		return IndexDetector{}, true
	}
	return nil, false
}
