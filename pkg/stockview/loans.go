package stockview

import (
	"time"

	"tmfstock/pkg/domain"
)

// Sentinels for tools sitting in the central store.
const (
	AvailableTechnicianName = "Disponible"
	CentralStoreTeam        = "Stock central"
)

// ToolLoanRow is a tool loan joined with its custodian.
type ToolLoanRow struct {
	domain.ToolLoan
	TechnicianName string `json:"technicianName"`
	Team           string `json:"team"`
}

// BuildToolLoanRows joins each loan with its technician, keeping input order.
// A nil or dangling technician reference resolves to the central store
// sentinels.
func BuildToolLoanRows(loans []domain.ToolLoan, technicians []domain.Technician) []ToolLoanRow {
	techs := indexTechnicians(technicians)
	rows := make([]ToolLoanRow, 0, len(loans))
	for _, l := range loans {
		row := ToolLoanRow{ToolLoan: l, TechnicianName: AvailableTechnicianName, Team: CentralStoreTeam}
		if l.TechnicianID != nil {
			if t, ok := techs[*l.TechnicianID]; ok {
				row.TechnicianName = t.Name
				row.Team = t.Team
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// FilterToolLoanRows matches query against tool name, category, serial
// number and technician name, ignoring case.
func FilterToolLoanRows(rows []ToolLoanRow, query string) []ToolLoanRow {
	q := normalizeQuery(query)
	out := make([]ToolLoanRow, 0, len(rows))
	for _, r := range rows {
		if q == "" ||
			containsFold(r.ToolName, q) ||
			containsFold(r.Category, q) ||
			(r.SerialNumber != nil && containsFold(*r.SerialNumber, q)) ||
			containsFold(r.TechnicianName, q) {
			out = append(out, r)
		}
	}
	return out
}

// PartitionByAvailability splits rows into loaned-out tools and tools marked
// DISPONIBLE, preserving relative order within each side.
func PartitionByAvailability(rows []ToolLoanRow) (assigned, available []ToolLoanRow) {
	assigned = make([]ToolLoanRow, 0, len(rows))
	available = make([]ToolLoanRow, 0, len(rows))
	for _, r := range rows {
		if r.Status == domain.LoanAvailable {
			available = append(available, r)
			continue
		}
		assigned = append(assigned, r)
	}
	return assigned, available
}

// OverdueCandidates lists EN_COURS loans whose due date lies strictly before now.
func OverdueCandidates(loans []domain.ToolLoan, now time.Time) []domain.ToolLoan {
	var out []domain.ToolLoan
	for _, l := range loans {
		if l.Status == domain.LoanInProgress && l.DueDate != nil && l.DueDate.Before(now) {
			out = append(out, l)
		}
	}
	return out
}

// OverviewCounters feeds the dashboard cards.
type OverviewCounters struct {
	Products    int `json:"products"`
	Technicians int `json:"technicians"`
	StockAlerts int `json:"stockAlerts"`
	LoanedTools int `json:"loanedTools"`
}

// Overview counts products at or below their threshold and loans held by a
// technician.
func Overview(snap domain.Snapshot) OverviewCounters {
	c := OverviewCounters{Products: len(snap.Products), Technicians: len(snap.Technicians)}
	for _, p := range ProductsWithStock(snap.Products, snap.Movements) {
		if p.Available <= p.Threshold {
			c.StockAlerts++
		}
	}
	for _, l := range snap.ToolLoans {
		if l.TechnicianID != nil {
			c.LoanedTools++
		}
	}
	return c
}
