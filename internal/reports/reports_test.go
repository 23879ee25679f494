package reports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"tmfstock/pkg/domain"
	"tmfstock/pkg/stockview"
)

var at = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func TestWriteConsumption(t *testing.T) {
	rows := []stockview.ConsumptionRow{
		{ID: "m2", TechnicianName: "Inès Diallo", Team: "FTTH", ProductName: "Câble RJ45 Cat6 - 3m", Quantity: 20, Comment: domain.Ptr("Chantier, rue Victor Hugo"), CreatedAt: at},
		{ID: "m1", TechnicianName: stockview.UnknownTechnicianName, Team: stockview.UnknownTeam, ProductName: stockview.DeletedProductName, Quantity: 3, CreatedAt: at.Add(-time.Hour)},
	}
	var buf bytes.Buffer
	if err := WriteConsumption(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[1][0] != "2024-06-10T09:00:00Z" || records[1][5] != "Chantier, rue Victor Hugo" {
		t.Fatalf("unexpected first row %v", records[1])
	}
	if records[2][1] != stockview.UnknownTechnicianName || records[2][4] != "3" {
		t.Fatalf("unexpected sentinel row %v", records[2])
	}
}

func TestWriteHistoryAppendsTotal(t *testing.T) {
	rows := []stockview.HistoryRow{
		{ID: "in", Type: domain.MovementIn, ProductName: "Gants nitrile taille L", Quantity: 50, Attachment: &domain.Attachment{Name: "bon.png", Ref: "data:image/png;base64,AA=="}, CreatedAt: at},
		{ID: "out", Type: domain.MovementOut, ProductName: "Gants nitrile taille L", TechnicianName: "Samir Khaled", Quantity: 10, CreatedAt: at},
	}
	var buf bytes.Buffer
	if err := WriteHistory(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := records[1][6]; got != "bon.png" {
		t.Fatalf("attachment column should carry the name only, got %q", got)
	}
	last := records[len(records)-1]
	if last[0] != "total" || last[4] != "60" {
		t.Fatalf("unexpected total line %v", last)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSurfacesWriterErrors(t *testing.T) {
	if err := WriteConsumption(failingWriter{}, nil); err == nil {
		t.Fatalf("expected flush error")
	}
	if err := WriteHistory(failingWriter{}, nil); err == nil {
		t.Fatalf("expected flush error")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(KindHistory, at); got != "history-20240610T090000Z.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}
