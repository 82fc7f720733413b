package gc

import (
	"fmt"
	"time"

	"github.com/mabhi256/mjvm/utils"
)

// ledgerCapacity bounds the ring buffer: long-running programs don't
// grow the ledger unbounded, they just lose their oldest entries.
const ledgerCapacity = 256

// Record is one collection's before/after snapshot.
type Record struct {
	Index            int
	ObjectsBefore    int
	ObjectsAfter     int
	Collected        int
	TriggerThreshold int
	Duration         time.Duration
	Timestamp        time.Time
}

// String renders a ledger line as shown by --gc-stats.
func (r Record) String() string {
	return fmt.Sprintf("#%d: %d -> %d (%d collected, %s)",
		r.Index, r.ObjectsBefore, r.ObjectsAfter, r.Collected, utils.FormatDuration(r.Duration))
}

// ReclaimedFraction is the share of live objects this collection
// freed, in [0, 1].
func (r Record) ReclaimedFraction() float64 {
	if r.ObjectsBefore == 0 {
		return 0
	}
	return float64(r.Collected) / float64(r.ObjectsBefore)
}

// Ledger is a fixed-capacity ring buffer of collection records, used
// to recognize patterns across a run (a threshold set too low,
// bursty allocation) rather than judging any one collection alone.
type Ledger struct {
	records []Record
	next    int
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends rec to the ledger, assigning it the next sequence
// index and evicting the oldest entry once at capacity.
func (l *Ledger) Record(rec Record) {
	rec.Index = l.next
	l.next++
	if len(l.records) < ledgerCapacity {
		l.records = append(l.records, rec)
		return
	}
	l.records = append(l.records[1:], rec)
}

// All returns every retained record, oldest first.
func (l *Ledger) All() []Record {
	return l.records
}

// Recommend inspects the trailing window of collections and offers a
// plain-English suggestion, or "" if nothing stands out. Four patterns
// are checked, in order, and the first match wins: a run of five
// consecutive low-yield collections (each reclaiming at most 5%)
// suggests the threshold is too low for this program's live-set
// size; a latest collection reclaiming over 90% notes a burst of
// short-lived allocation; a rising post-collection object count
// (positive slope, correlation over 0.8) flags a growing live set;
// and highly irregular pause durations flag bursty allocation.
func (l *Ledger) Recommend() string {
	if len(l.records) == 0 {
		return ""
	}

	const lowYield = 0.05
	const highYield = 0.90
	const windowSize = 5

	window := l.records
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}

	allLow := true
	for _, r := range window {
		if r.ReclaimedFraction() > lowYield {
			allLow = false
			break
		}
	}
	if allLow && len(window) == windowSize {
		return fmt.Sprintf("the last %d collections each reclaimed under %.0f%% of live objects; consider raising the collection threshold above %d", windowSize, lowYield*100, Threshold)
	}

	last := l.records[len(l.records)-1]
	if last.ReclaimedFraction() > highYield {
		return fmt.Sprintf("collection #%d reclaimed %.0f%% of live objects, consistent with a short burst of temporary allocation", last.Index, last.ReclaimedFraction()*100)
	}

	if slope, corr := l.occupancyTrend(); len(l.records) >= windowSize && slope > 0 && corr > 0.8 {
		return fmt.Sprintf("post-collection object count is trending upward (slope %.1f objects/collection, correlation %.2f); the live set may be growing faster than this run can reclaim", slope, corr)
	}

	if variance := l.pauseJitter(); variance > 1.0 {
		return "collection pause durations are highly irregular; check for allocation bursts rather than a steady rate"
	}

	return ""
}

// occupancyTrend regresses ObjectsAfter against collection index to
// detect a heap that never shrinks back down between collections.
func (l *Ledger) occupancyTrend() (slope, correlation float64) {
	window := l.records
	if len(window) > ledgerCapacity {
		window = window[len(window)-ledgerCapacity:]
	}
	x := make([]float64, len(window))
	y := make([]float64, len(window))
	for i, r := range window {
		x[i] = float64(i)
		y[i] = float64(r.ObjectsAfter)
	}
	return utils.LinearRegression(x, y)
}

// pauseJitter reports the normalized variance of collection pause
// durations, flagging runs whose pause times swing wildly rather than
// settling into a steady pattern.
func (l *Ledger) pauseJitter() float64 {
	if len(l.records) < 2 {
		return 0
	}
	durations := make([]time.Duration, len(l.records))
	var total time.Duration
	for i, r := range l.records {
		durations[i] = r.Duration
		total += r.Duration
	}
	avg := total / time.Duration(len(durations))
	return utils.CalculateDurationVariance(durations, avg)
}
