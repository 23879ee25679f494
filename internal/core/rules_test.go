package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"tmfstock/internal/infra/persistence/memory"
	"tmfstock/pkg/domain"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	tech := "tech-ines"
	store := memory.NewStore(domain.NewRulesEngine())
	store.ImportState(domain.Snapshot{
		Products: []domain.Product{
			{ID: "prod-ethernet", Name: "Câble RJ45 Cat6 - 3m", InitialQuantity: 180, Threshold: 40},
			{ID: "prod-fibre", Name: "Kit raccord fibre FTTH", InitialQuantity: 10, Threshold: 15, AlertMessage: "Commander des kits"},
		},
		Technicians: []domain.Technician{{ID: tech, Name: "Inès Diallo", Email: "ines.diallo@tmf.local"}},
		Movements: []domain.Movement{
			{ID: "m1", ProductID: "prod-ethernet", TechnicianID: &tech, Quantity: 200, Type: domain.MovementOut},
		},
	})
	return store
}

func evaluate(t *testing.T, rule domain.Rule, changes ...domain.Change) domain.Result {
	t.Helper()
	ctx := context.Background()
	var res domain.Result
	err := seededStore(t).View(ctx, func(v domain.TransactionView) error {
		var err error
		res, err = rule.Evaluate(ctx, v, changes)
		return err
	})
	if err != nil {
		t.Fatalf("evaluate %s: %v", rule.Name(), err)
	}
	return res
}

func TestStockAvailableRule(t *testing.T) {
	tech := "tech-ines"
	out := domain.Movement{ID: "m1", ProductID: "prod-ethernet", TechnicianID: &tech, Quantity: 200, Type: domain.MovementOut}
	res := evaluate(t, NewStockAvailableRule(), domain.Change{Entity: domain.EntityMovement, Action: domain.ActionCreate, After: out})
	if !res.HasBlocking() || res.Violations[0].EntityID != "prod-ethernet" {
		t.Fatalf("expected blocking violation for negative stock, got %+v", res)
	}

	in := domain.Movement{ID: "m2", ProductID: "prod-ethernet", Quantity: 5, Type: domain.MovementIn}
	if res := evaluate(t, NewStockAvailableRule(), domain.Change{Entity: domain.EntityMovement, Action: domain.ActionCreate, After: in}); len(res.Violations) != 0 {
		t.Fatalf("ENTREE must not be checked, got %+v", res.Violations)
	}
	if res := evaluate(t, NewStockAvailableRule(), domain.Change{Entity: domain.EntityMovement, Action: domain.ActionDelete, Before: out}); len(res.Violations) != 0 {
		t.Fatalf("deletes must not be checked, got %+v", res.Violations)
	}
}

func TestLoanCustodyRule(t *testing.T) {
	tech := "tech-ines"
	cases := []struct {
		name  string
		loan  domain.ToolLoan
		block bool
	}{
		{"available without technician", domain.ToolLoan{ID: "l", ToolName: "PC", Status: domain.LoanAvailable}, false},
		{"in progress with technician", domain.ToolLoan{ID: "l", ToolName: "PC", Status: domain.LoanInProgress, TechnicianID: &tech}, false},
		{"overdue with technician", domain.ToolLoan{ID: "l", ToolName: "PC", Status: domain.LoanOverdue, TechnicianID: &tech}, false},
		{"available but held", domain.ToolLoan{ID: "l", ToolName: "PC", Status: domain.LoanAvailable, TechnicianID: &tech}, true},
		{"in progress unheld", domain.ToolLoan{ID: "l", ToolName: "PC", Status: domain.LoanInProgress}, true},
		{"overdue unheld", domain.ToolLoan{ID: "l", ToolName: "PC", Status: domain.LoanOverdue}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := evaluate(t, NewLoanCustodyRule(), domain.Change{Entity: domain.EntityToolLoan, Action: domain.ActionUpdate, After: tc.loan})
			if res.HasBlocking() != tc.block {
				t.Fatalf("expected block=%v, got %+v", tc.block, res.Violations)
			}
		})
	}
}

func TestTechnicianReferenceRule(t *testing.T) {
	ghost := "tech-ghost"
	known := "tech-ines"
	res := evaluate(t, NewTechnicianReferenceRule(),
		domain.Change{Entity: domain.EntityMovement, Action: domain.ActionCreate, After: domain.Movement{ID: "m9", TechnicianID: &ghost, Type: domain.MovementOut}},
		domain.Change{Entity: domain.EntityMovement, Action: domain.ActionCreate, After: domain.Movement{ID: "m10", TechnicianID: &known, Type: domain.MovementOut}},
	)
	if len(res.Violations) != 1 || res.Violations[0].EntityID != "m9" {
		t.Fatalf("expected one violation for the unknown technician, got %+v", res.Violations)
	}

	dangling := domain.ToolLoan{ID: "l1", Status: domain.LoanInProgress, TechnicianID: &ghost}
	res = evaluate(t, NewTechnicianReferenceRule(), domain.Change{
		Entity: domain.EntityToolLoan, Action: domain.ActionUpdate,
		Before: dangling, After: dangling,
	})
	if len(res.Violations) != 0 {
		t.Fatalf("unchanged dangling reference must be tolerated, got %+v", res.Violations)
	}

	res = evaluate(t, NewTechnicianReferenceRule(), domain.Change{
		Entity: domain.EntityToolLoan, Action: domain.ActionUpdate,
		Before: domain.ToolLoan{ID: "l1", Status: domain.LoanAvailable}, After: dangling,
	})
	if !res.HasBlocking() {
		t.Fatalf("assigning an unknown technician must be blocked")
	}
}

func TestStockThresholdRule(t *testing.T) {
	res := evaluate(t, NewStockThresholdRule(),
		domain.Change{Entity: domain.EntityProduct, Action: domain.ActionUpdate, After: domain.Product{ID: "prod-fibre"}},
		domain.Change{Entity: domain.EntityMovement, Action: domain.ActionCreate, After: domain.Movement{ProductID: "prod-fibre"}},
		domain.Change{Entity: domain.EntityMovement, Action: domain.ActionCreate, After: domain.Movement{ProductID: "prod-ethernet"}},
	)
	if len(res.Violations) != 2 {
		t.Fatalf("expected one warning per touched product, got %+v", res.Violations)
	}
	if res.HasBlocking() {
		t.Fatalf("threshold rule must only warn")
	}
	if got := res.Violations[0].Message; !strings.HasPrefix(got, "Commander des kits") || !strings.Contains(got, "disponible: 10, seuil: 15") {
		t.Fatalf("unexpected custom message %q", got)
	}
	if got := res.Violations[1].Message; !strings.HasPrefix(got, "Stock bas pour Câble RJ45 Cat6 - 3m") || !strings.Contains(got, "disponible: -20") {
		t.Fatalf("unexpected default message %q", got)
	}

	if res := evaluate(t, NewStockThresholdRule(), domain.Change{Entity: domain.EntityTechnician, Action: domain.ActionCreate, After: domain.Technician{ID: "x"}}); len(res.Violations) != 0 {
		t.Fatalf("technician changes must be ignored, got %+v", res.Violations)
	}
}

func TestDefaultRulesEngineRegistersBuiltins(t *testing.T) {
	engine := NewDefaultRulesEngine()
	names := map[string]bool{}
	for _, r := range engine.Rules() {
		names[r] = true
	}
	for _, want := range []string{RuleStockAvailable, RuleLoanCustody, RuleTechnicianReference, RuleStockThreshold} {
		if !names[want] {
			t.Fatalf("missing rule %s", want)
		}
	}
}

func TestStockAvailableRuleGuardsStoreWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(NewDefaultRulesEngine(), memory.WithClock(func() time.Time { return testNow }))
	store.ImportState(domain.Snapshot{
		Products:    []domain.Product{{ID: "p", Name: "Pince", InitialQuantity: 2}},
		Technicians: []domain.Technician{{ID: "t", Name: "Lina", Email: "lina@tmf.local"}},
	})
	tech := "t"
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AppendMovement(domain.Movement{ProductID: "p", TechnicianID: &tech, Quantity: 3, Type: domain.MovementOut})
		return err
	})
	if _, ok := err.(domain.RuleViolationError); !ok {
		t.Fatalf("expected rule violation writing past available stock, got %v", err)
	}
	if n := len(store.Snapshot().Movements); n != 0 {
		t.Fatalf("blocked write must roll back, got %d movements", n)
	}
}
