// Package stockview computes the read-side projections of the inventory:
// available stock, stock status, filtered lists and joined view rows. Every
// function is pure and leaves its inputs untouched.
package stockview

import (
	"strings"

	"tmfstock/pkg/domain"
)

// StockStatus classifies a product's available stock against its threshold.
type StockStatus string

// Stock statuses ordered from worst to best.
const (
	StatusRupture StockStatus = "RUPTURE"
	StatusAlerte  StockStatus = "ALERTE"
	StatusOK      StockStatus = "OK"
)

// Label returns the short French label shown next to a product.
func (s StockStatus) Label() string {
	switch s {
	case StatusRupture:
		return "Rupture"
	case StatusAlerte:
		return "Alerte"
	default:
		return "OK"
	}
}

// ProductStock is a product joined with its ledger aggregates.
type ProductStock struct {
	domain.Product
	Incoming  int         `json:"incoming"`
	Outgoing  int         `json:"outgoing"`
	Available int         `json:"available"`
	Status    StockStatus `json:"status"`
}

// Totals sums ENTREE and SORTIE quantities recorded against productID.
func Totals(productID string, movements []domain.Movement) (incoming, outgoing int) {
	for _, m := range movements {
		if m.ProductID != productID {
			continue
		}
		switch m.Type {
		case domain.MovementIn:
			incoming += m.Quantity
		case domain.MovementOut:
			outgoing += m.Quantity
		}
	}
	return incoming, outgoing
}

// AvailableStock returns initialQuantity + incoming - outgoing. The result is
// not clamped and may be negative.
func AvailableStock(p domain.Product, movements []domain.Movement) int {
	in, out := Totals(p.ID, movements)
	return p.InitialQuantity + in - out
}

// ClassifyStockStatus applies the inclusive thresholds 0 and threshold.
func ClassifyStockStatus(available, threshold int) StockStatus {
	if available <= 0 {
		return StatusRupture
	}
	if available <= threshold {
		return StatusAlerte
	}
	return StatusOK
}

// StatusOf classifies a product against the given ledger.
func StatusOf(p domain.Product, movements []domain.Movement) StockStatus {
	return ClassifyStockStatus(AvailableStock(p, movements), p.Threshold)
}

// ProductsWithStock joins every product with its aggregates, preserving order.
func ProductsWithStock(products []domain.Product, movements []domain.Movement) []ProductStock {
	type agg struct{ in, out int }
	sums := make(map[string]agg, len(products))
	for _, m := range movements {
		a := sums[m.ProductID]
		switch m.Type {
		case domain.MovementIn:
			a.in += m.Quantity
		case domain.MovementOut:
			a.out += m.Quantity
		}
		sums[m.ProductID] = a
	}
	out := make([]ProductStock, 0, len(products))
	for _, p := range products {
		a := sums[p.ID]
		available := p.InitialQuantity + a.in - a.out
		out = append(out, ProductStock{
			Product:   p,
			Incoming:  a.in,
			Outgoing:  a.out,
			Available: available,
			Status:    ClassifyStockStatus(available, p.Threshold),
		})
	}
	return out
}

// Named is satisfied by anything exposing a product name and category.
type Named interface {
	GetName() string
	GetCategory() string
}

// FilterProducts keeps the items whose name or category contains query,
// ignoring case. A blank query returns a copy of the whole input.
func FilterProducts[T Named](items []T, query string) []T {
	q := normalizeQuery(query)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q == "" || containsFold(it.GetName(), q) || containsFold(it.GetCategory(), q) {
			out = append(out, it)
		}
	}
	return out
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// containsFold expects needle to be lower-cased already.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
