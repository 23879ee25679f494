package domain

import (
	"context"
	"time"
)

// Transaction exposes the domain operations that a store implementation must
// support within an atomic scope. Mutations apply to a private copy of the
// state which is only published when the whole transaction succeeds.
type Transaction interface {
	Snapshot() TransactionView

	CreateProduct(Product) (Product, error)
	UpdateProduct(id string, mutator func(*Product) error) (Product, error)
	DeleteProduct(id string) error

	CreateTechnician(Technician) (Technician, error)
	UpdateTechnician(id string, mutator func(*Technician) error) (Technician, error)
	DeleteTechnician(id string) error

	AppendMovement(Movement) (Movement, error)

	CreateToolLoan(ToolLoan) (ToolLoan, error)
	UpdateToolLoan(id string, mutator func(*ToolLoan) error) (ToolLoan, error)
	DeleteToolLoan(id string) error

	FindProduct(id string) (Product, bool)
	FindTechnician(id string) (Technician, bool)
	FindToolLoan(id string) (ToolLoan, bool)
	Now() time.Time
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
}

// PersistentStore is the store abstraction the service layer depends on.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	Snapshot() Snapshot
}

// Snapshot is an immutable point-in-time copy of the whole store. Collections
// keep their presentation order: products and technicians in insertion
// order, movements newest first, tool loans newest first.
type Snapshot struct {
	Products    []Product    `json:"products"`
	Technicians []Technician `json:"technicians"`
	Movements   []Movement   `json:"movements"`
	ToolLoans   []ToolLoan   `json:"toolLoans"`
}
