package stockview

import (
	"testing"
	"time"

	"tmfstock/pkg/domain"
)

func loans() []domain.ToolLoan {
	due := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	return []domain.ToolLoan{
		{ID: "loan-fiber-meter", ToolName: "Réflectomètre optique", Category: "Mesure", SerialNumber: domain.Ptr("RTM-FTTH-0421"), TechnicianID: domain.Ptr("tech-ines"), DueDate: &due, Status: domain.LoanInProgress},
		{ID: "loan-splicer", ToolName: "Soudeuse fibre Fujikura", Category: "Terrain", SerialNumber: domain.Ptr("SP-9931"), TechnicianID: domain.Ptr("tech-samir"), Status: domain.LoanOverdue},
		{ID: "loan-laptop", ToolName: "PC terrain durci", Category: "Informatique", SerialNumber: domain.Ptr("PC-TMF-778"), Status: domain.LoanAvailable},
		{ID: "loan-dangling", ToolName: "Pince à sertir", Category: "Outillage", TechnicianID: domain.Ptr("tech-deleted"), Status: domain.LoanInProgress},
	}
}

func TestBuildToolLoanRows(t *testing.T) {
	rows := BuildToolLoanRows(loans(), technicians())
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].TechnicianName != "Inès Diallo" || rows[0].Team != "FTTH" {
		t.Fatalf("unexpected join %+v", rows[0])
	}
	for _, i := range []int{2, 3} {
		if rows[i].TechnicianName != AvailableTechnicianName || rows[i].Team != CentralStoreTeam {
			t.Fatalf("row %d should carry the central store sentinels, got %+v", i, rows[i])
		}
	}
	if rows[3].TechnicianID == nil {
		t.Fatalf("dangling reference must be preserved on the row")
	}
}

func TestFilterToolLoanRows(t *testing.T) {
	rows := BuildToolLoanRows(loans(), technicians())
	cases := map[string][]string{
		"":             {"loan-fiber-meter", "loan-splicer", "loan-laptop", "loan-dangling"},
		"sp-99":        {"loan-splicer"},
		"informatique": {"loan-laptop"},
		"inès":         {"loan-fiber-meter"},
		"disponible":   {"loan-laptop", "loan-dangling"},
		"fibre":        {"loan-splicer"},
	}
	for q, want := range cases {
		got := FilterToolLoanRows(rows, q)
		if len(got) != len(want) {
			t.Fatalf("query %q: expected %v, got %d rows", q, want, len(got))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Fatalf("query %q: position %d want %s got %s", q, i, want[i], got[i].ID)
			}
		}
	}
}

func TestPartitionByAvailability(t *testing.T) {
	assigned, available := PartitionByAvailability(BuildToolLoanRows(loans(), technicians()))
	if len(assigned) != 3 || len(available) != 1 {
		t.Fatalf("unexpected partition sizes %d/%d", len(assigned), len(available))
	}
	if assigned[0].ID != "loan-fiber-meter" || assigned[1].ID != "loan-splicer" || assigned[2].ID != "loan-dangling" {
		t.Fatalf("assigned order not preserved")
	}
	if available[0].ID != "loan-laptop" {
		t.Fatalf("unexpected available row %s", available[0].ID)
	}
}

func TestOverdueCandidates(t *testing.T) {
	now := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	got := OverdueCandidates(loans(), now)
	if len(got) != 1 || got[0].ID != "loan-fiber-meter" {
		t.Fatalf("expected only the fiber meter, got %+v", got)
	}
	if got := OverdueCandidates(loans(), time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)); len(got) != 0 {
		t.Fatalf("a loan due exactly now is not overdue yet")
	}
}

func TestOverview(t *testing.T) {
	snap := domain.Snapshot{
		Products:    catalog(),
		Technicians: technicians(),
		Movements: []domain.Movement{
			movement("m1", "prod-fibre", domain.MovementOut, 60, domain.Ptr("tech-ines"), time.Hour),
		},
		ToolLoans: loans(),
	}
	c := Overview(snap)
	if c.Products != 3 || c.Technicians != 2 {
		t.Fatalf("unexpected counts %+v", c)
	}
	if c.StockAlerts != 1 {
		t.Fatalf("expected fibre kit (15 <= 15) to alert, got %d", c.StockAlerts)
	}
	if c.LoanedTools != 3 {
		t.Fatalf("expected 3 loaned tools, got %d", c.LoanedTools)
	}
}
