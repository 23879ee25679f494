package seed

import (
	"context"
	"testing"
	"time"

	"tmfstock/internal/core"
	"tmfstock/pkg/domain"
	"tmfstock/pkg/stockview"
)

func TestSnapshotIsFreshEachCall(t *testing.T) {
	a := Snapshot()
	a.Products[0].Name = "changed"
	*a.ToolLoans[0].Notes = "changed"
	b := Snapshot()
	if b.Products[0].Name == "changed" || *b.ToolLoans[0].Notes == "changed" {
		t.Fatalf("seed data must not be shared between calls")
	}
}

func TestSeedOverview(t *testing.T) {
	counters := stockview.Overview(Snapshot())
	if counters.Products != 3 || counters.Technicians != 3 {
		t.Fatalf("unexpected counters %+v", counters)
	}
	if counters.LoanedTools != 2 || counters.StockAlerts != 0 {
		t.Fatalf("unexpected loan counters %+v", counters)
	}
}

func TestSeedRunsThroughCoreRules(t *testing.T) {
	ctx := context.Background()
	svc := core.NewInMemoryService(nil,
		core.WithInitialState(Snapshot()),
		core.WithClock(core.ClockFunc(func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) })),
	)
	if _, _, err := svc.Restock(ctx, core.RestockInput{ProductID: ProductEthernet, Quantity: 50}); err != nil {
		t.Fatalf("restock seeded product: %v", err)
	}
	if _, _, err := svc.AssignTool(ctx, core.AssignInput{LoanID: LoanLaptop, TechnicianID: TechnicianLina}); err != nil {
		t.Fatalf("assign seeded loan: %v", err)
	}
	if _, _, err := svc.ReturnTool(ctx, LoanSplicer); err != nil {
		t.Fatalf("return seeded loan: %v", err)
	}
	snap := svc.Snapshot()
	for _, l := range snap.ToolLoans {
		if l.ID == LoanSplicer && l.Status != domain.LoanAvailable {
			t.Fatalf("splicer should be back in store: %+v", l)
		}
	}
	if got := stockview.AvailableStock(snap.Products[0], snap.Movements); got != 230 {
		t.Fatalf("expected 230 cables, got %d", got)
	}
}
