package stockview

import (
	"fmt"
	"sort"
	"time"

	"tmfstock/pkg/domain"
)

// AllFilter is the wildcard accepted by MovementFilter identifiers.
const AllFilter = "all"

// Sentinel strings shown when a reference no longer resolves.
const (
	DeletedProductName    = "Produit supprimé"
	UnknownTechnicianName = "Technicien inconnu"
	UnknownTeam           = "N/A"
	NoTechnicianName      = "N/A"
)

// MovementFilter selects movements. Empty or "all" identifiers match
// anything; From and To are inclusive instants compared as-is.
type MovementFilter struct {
	TechnicianID string
	ProductID    string
	From         *time.Time
	To           *time.Time
}

func matchID(want string, got *string) bool {
	if want == "" || want == AllFilter {
		return true
	}
	return got != nil && *got == want
}

// Match reports whether m satisfies every criterion of f.
func (f MovementFilter) Match(m domain.Movement) bool {
	if !matchID(f.TechnicianID, m.TechnicianID) {
		return false
	}
	if !matchID(f.ProductID, &m.ProductID) {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// FilterMovements returns the movements matching f. Output order follows the
// input but callers must not rely on it.
func FilterMovements(movements []domain.Movement, f MovementFilter) []domain.Movement {
	out := make([]domain.Movement, 0, len(movements))
	for _, m := range movements {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// DayRange turns date-only strings (YYYY-MM-DD) into an inclusive range from
// midnight of fromDate to the last nanosecond of toDate in loc. Blank inputs
// yield nil bounds.
func DayRange(fromDate, toDate string, loc *time.Location) (from, to *time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	if fromDate != "" {
		d, perr := time.ParseInLocation(time.DateOnly, fromDate, loc)
		if perr != nil {
			return nil, nil, fmt.Errorf("parse from date: %w", perr)
		}
		from = &d
	}
	if toDate != "" {
		d, perr := time.ParseInLocation(time.DateOnly, toDate, loc)
		if perr != nil {
			return nil, nil, fmt.Errorf("parse to date: %w", perr)
		}
		end := d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

// ConsumptionRow is a SORTIE movement joined with product and technician.
type ConsumptionRow struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	TechnicianID   string    `json:"technicianId"`
	TechnicianName string    `json:"technicianName"`
	Team           string    `json:"team"`
	Quantity       int       `json:"quantity"`
	Comment        *string   `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// BuildTechnicianConsumptionRows joins every SORTIE movement that still names
// a technician, newest first.
func BuildTechnicianConsumptionRows(movements []domain.Movement, products []domain.Product, technicians []domain.Technician) []ConsumptionRow {
	productNames := indexProducts(products)
	techs := indexTechnicians(technicians)
	rows := make([]ConsumptionRow, 0, len(movements))
	for _, m := range movements {
		if m.Type != domain.MovementOut || m.TechnicianID == nil {
			continue
		}
		row := ConsumptionRow{
			ID:             m.ID,
			ProductID:      m.ProductID,
			ProductName:    DeletedProductName,
			TechnicianID:   *m.TechnicianID,
			TechnicianName: UnknownTechnicianName,
			Team:           UnknownTeam,
			Quantity:       m.Quantity,
			Comment:        m.Comment,
			CreatedAt:      m.CreatedAt,
		}
		if name, ok := productNames[m.ProductID]; ok {
			row.ProductName = name
		}
		if t, ok := techs[*m.TechnicianID]; ok {
			row.TechnicianName = t.Name
			row.Team = t.Team
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows
}

// HistoryRow is any ledger entry joined for the movement history table.
type HistoryRow struct {
	ID             string              `json:"id"`
	Type           domain.MovementType `json:"type"`
	ProductID      string              `json:"productId"`
	ProductName    string              `json:"productName"`
	TechnicianID   *string             `json:"technicianId"`
	TechnicianName string              `json:"technicianName"`
	Quantity       int                 `json:"quantity"`
	Comment        *string             `json:"comment,omitempty"`
	Attachment     *domain.Attachment  `json:"attachment,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// BuildMovementHistoryRows joins all movements, newest first. ENTREE rows
// without a technician show NoTechnicianName; a SORTIE whose technician was
// deleted or never resolves shows UnknownTechnicianName.
func BuildMovementHistoryRows(movements []domain.Movement, products []domain.Product, technicians []domain.Technician) []HistoryRow {
	productNames := indexProducts(products)
	techs := indexTechnicians(technicians)
	rows := make([]HistoryRow, 0, len(movements))
	for _, m := range movements {
		row := HistoryRow{
			ID:           m.ID,
			Type:         m.Type,
			ProductID:    m.ProductID,
			ProductName:  DeletedProductName,
			TechnicianID: m.TechnicianID,
			Quantity:     m.Quantity,
			Comment:      m.Comment,
			Attachment:   m.Attachment,
			CreatedAt:    m.CreatedAt,
		}
		if name, ok := productNames[m.ProductID]; ok {
			row.ProductName = name
		}
		switch {
		case m.TechnicianID != nil:
			row.TechnicianName = UnknownTechnicianName
			if t, ok := techs[*m.TechnicianID]; ok {
				row.TechnicianName = t.Name
			}
		case m.Type == domain.MovementOut:
			row.TechnicianName = UnknownTechnicianName
		default:
			row.TechnicianName = NoTechnicianName
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows
}

// HistoryTotal sums the quantities of rows regardless of movement type.
func HistoryTotal(rows []HistoryRow) int {
	total := 0
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}

func indexProducts(products []domain.Product) map[string]string {
	out := make(map[string]string, len(products))
	for _, p := range products {
		out[p.ID] = p.Name
	}
	return out
}

func indexTechnicians(technicians []domain.Technician) map[string]domain.Technician {
	out := make(map[string]domain.Technician, len(technicians))
	for _, t := range technicians {
		out[t.ID] = t
	}
	return out
}
