// Package reports renders joined stock views as CSV for download and the CLI.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"tmfstock/pkg/stockview"
)

// Report kinds accepted by Filename and the CLI.
const (
	KindConsumption = "consumption"
	KindHistory     = "history"
)

// ContentType is the media type of every report.
const ContentType = "text/csv; charset=utf-8"

var (
	consumptionHeader = []string{"date", "technicien", "equipe", "produit", "quantite", "commentaire"}
	historyHeader     = []string{"date", "type", "produit", "technicien", "quantite", "commentaire", "piece_jointe"}
)

// Filename builds a download name such as consumption-20240610T090000Z.csv.
func Filename(kind string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", kind, now.UTC().Format("20060102T150405Z"))
}

// WriteConsumption writes one line per SORTIE row in the given order.
func WriteConsumption(w io.Writer, rows []stockview.ConsumptionRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(consumptionHeader); err != nil {
		return fmt.Errorf("write consumption header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			stamp(r.CreatedAt),
			r.TechnicianName,
			r.Team,
			r.ProductName,
			strconv.Itoa(r.Quantity),
			deref(r.Comment),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write consumption row %s: %w", r.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteHistory writes every ledger row followed by a total line.
func WriteHistory(w io.Writer, rows []stockview.HistoryRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(historyHeader); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	for _, r := range rows {
		var attachment string
		if r.Attachment != nil {
			attachment = r.Attachment.Name
		}
		record := []string{
			stamp(r.CreatedAt),
			string(r.Type),
			r.ProductName,
			r.TechnicianName,
			strconv.Itoa(r.Quantity),
			deref(r.Comment),
			attachment,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write history row %s: %w", r.ID, err)
		}
	}
	if err := writer.Write([]string{"total", "", "", "", strconv.Itoa(stockview.HistoryTotal(rows)), "", ""}); err != nil {
		return fmt.Errorf("write history total: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
