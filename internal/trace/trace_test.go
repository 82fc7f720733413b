package trace

import (
	"testing"

	"github.com/mabhi256/mjvm/internal/gc"
	"github.com/mabhi256/mjvm/internal/runtime"
)

func TestPrinterCountsObservations(t *testing.T) {
	p := NewPrinter()
	p.Observe(runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "div-by-zero", Message: "division by zero"})
	p.Observe(runtime.Diagnostic{Severity: runtime.SeverityInfo, Code: "note", Message: "just a note"})

	if p.Count() != 2 {
		t.Fatalf("expected 2 observed diagnostics, got %d", p.Count())
	}
}

func TestPrintGCStatsHandlesEmptyLedger(t *testing.T) {
	ledger := gc.NewLedger()
	PrintGCStats(ledger) // must not panic on an empty ledger
}

func TestPrintGCStatsRendersPlotOnceEnoughRecords(t *testing.T) {
	ledger := gc.NewLedger()
	for i := 0; i < 4; i++ {
		ledger.Record(gc.Record{
			ObjectsBefore:    128 + i,
			ObjectsAfter:     10,
			Collected:        118 + i,
			TriggerThreshold: 128,
		})
	}
	PrintGCStats(ledger) // must take the multi-point plot branch without panicking
}
