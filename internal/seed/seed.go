// Package seed provides the demo catalog loaded at startup.
package seed

import (
	"time"

	"tmfstock/pkg/domain"
)

// Stable identifiers of the demo records.
const (
	ProductEthernet = "prod-ethernet"
	ProductGloves   = "prod-gants"
	ProductFibre    = "prod-fibre"

	TechnicianInes  = "tech-ines"
	TechnicianSamir = "tech-samir"
	TechnicianLina  = "tech-lina"

	LoanFiberMeter = "loan-fiber-meter"
	LoanSplicer    = "loan-splicer"
	LoanLaptop     = "loan-laptop"
)

// Snapshot returns a fresh copy of the demo state. The ledger starts empty.
func Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Products:    Products(),
		Technicians: Technicians(),
		ToolLoans:   ToolLoans(),
	}
}

// Products returns the demo catalog.
func Products() []domain.Product {
	return []domain.Product{
		{
			ID:              ProductEthernet,
			Name:            "Câble RJ45 Cat6 - 3m",
			Category:        "Réseau",
			Unit:            domain.Ptr("pièce"),
			InitialQuantity: 180,
			Threshold:       40,
			AlertMessage:    "Prévoir réappro des câbles RJ45 pour les prochaines interventions.",
		},
		{
			ID:              ProductGloves,
			Name:            "Gants nitrile taille L",
			Category:        "Protection",
			Unit:            domain.Ptr("boîte"),
			InitialQuantity: 320,
			Threshold:       60,
			AlertMessage:    "Commander des gants supplémentaires avant la fin de semaine.",
		},
		{
			ID:              ProductFibre,
			Name:            "Kit raccord fibre FTTH",
			Category:        "Terrain",
			Unit:            domain.Ptr("kit"),
			InitialQuantity: 75,
			Threshold:       15,
			AlertMessage:    "Stock critique pour les kits FTTH, déclencher une commande.",
		},
	}
}

// Technicians returns the demo technicians.
func Technicians() []domain.Technician {
	return []domain.Technician{
		{ID: TechnicianInes, Name: "Inès Diallo", Email: "ines.diallo@tmf.local", Team: "FTTH"},
		{ID: TechnicianSamir, Name: "Samir Khaled", Email: "samir.khaled@tmf.local", Team: "Maintenance"},
		{ID: TechnicianLina, Name: "Lina Hadj", Email: "lina.hadj@tmf.local", Team: "Install"},
	}
}

// ToolLoans returns the demo loans: one in progress, one overdue, one in
// the central store.
func ToolLoans() []domain.ToolLoan {
	return []domain.ToolLoan{
		{
			ID:           LoanFiberMeter,
			ToolName:     "Réflectomètre optique",
			Category:     "Mesure",
			SerialNumber: domain.Ptr("RTM-FTTH-0421"),
			TechnicianID: domain.Ptr(TechnicianInes),
			LoanedAt:     utc(2024, time.June, 2, 9, 30),
			DueDate:      domain.Ptr(utc(2024, time.June, 15, 18, 0)),
			Status:       domain.LoanInProgress,
			Notes:        domain.Ptr("Utilisé pour la campagne FTTH Est."),
		},
		{
			ID:           LoanSplicer,
			ToolName:     "Soudeuse fibre Fujikura",
			Category:     "Terrain",
			SerialNumber: domain.Ptr("SP-9931"),
			TechnicianID: domain.Ptr(TechnicianSamir),
			LoanedAt:     utc(2024, time.June, 5, 8, 0),
			Status:       domain.LoanOverdue,
			Notes:        domain.Ptr("Relancer pour retour atelier."),
		},
		{
			ID:           LoanLaptop,
			ToolName:     "PC terrain durci",
			Category:     "Informatique",
			SerialNumber: domain.Ptr("PC-TMF-778"),
			LoanedAt:     utc(2024, time.May, 28, 10, 15),
			Status:       domain.LoanAvailable,
			Notes:        domain.Ptr("Prêt pour prochaine mission."),
		},
	}
}

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}
