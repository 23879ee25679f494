// Package domain defines the inventory entities, value types, and rule
// evaluation primitives used by tmfstock.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and errors.
const (
	// EntityProduct identifies a tracked consumable article.
	EntityProduct EntityType = "product"
	// EntityTechnician identifies a technician record.
	EntityTechnician EntityType = "technician"
	// EntityMovement identifies a stock ledger entry.
	EntityMovement EntityType = "movement"
	// EntityToolLoan identifies a loanable tool record.
	EntityToolLoan EntityType = "tool_loan"
)

// MovementType distinguishes stock received from stock issued.
type MovementType string

// Movement kinds recorded in the ledger.
const (
	// MovementIn (ENTREE) is stock received into the central store.
	MovementIn MovementType = "ENTREE"
	// MovementOut (SORTIE) is stock issued to a technician.
	MovementOut MovementType = "SORTIE"
)

// ToolLoanStatus enumerates custody states of a loanable tool.
type ToolLoanStatus string

// Canonical tool loan statuses.
const (
	LoanInProgress ToolLoanStatus = "EN_COURS"
	LoanOverdue    ToolLoanStatus = "RETARD"
	LoanAvailable  ToolLoanStatus = "DISPONIBLE"
)

// Valid reports whether s is one of the canonical statuses.
func (s ToolLoanStatus) Valid() bool {
	switch s {
	case LoanInProgress, LoanOverdue, LoanAvailable:
		return true
	default:
		return false
	}
}

// Product is a tracked consumable article. Stock levels are derived from the
// movement ledger and never stored on the product itself.
type Product struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Unit            *string `json:"unit,omitempty"`
	InitialQuantity int     `json:"initialQuantity"`
	Threshold       int     `json:"threshold"`
	AlertMessage    string  `json:"alertMessage"`
}

// GetName returns the product name.
func (p Product) GetName() string { return p.Name }

// GetCategory returns the product category.
func (p Product) GetCategory() string { return p.Category }

// ProductPayload carries the editable fields of a product.
type ProductPayload struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Unit            *string `json:"unit,omitempty"`
	InitialQuantity int     `json:"initialQuantity"`
	Threshold       int     `json:"threshold"`
	AlertMessage    string  `json:"alertMessage"`
}

// Apply copies the payload onto p, leaving the identifier untouched.
func (pl ProductPayload) Apply(p *Product) {
	p.Name = pl.Name
	p.Category = pl.Category
	p.Unit = cloneString(pl.Unit)
	p.InitialQuantity = pl.InitialQuantity
	p.Threshold = pl.Threshold
	p.AlertMessage = pl.AlertMessage
}

// Technician is a person allowed to receive stock or borrow tools.
type Technician struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team"`
}

// TechnicianPayload carries the editable fields of a technician.
type TechnicianPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team"`
}

// Apply copies the payload onto t, leaving the identifier untouched.
func (pl TechnicianPayload) Apply(t *Technician) {
	t.Name = pl.Name
	t.Email = pl.Email
	t.Team = pl.Team
}

// Attachment is a receipt document attached to an ENTREE movement. Ref is an
// opaque handle produced by the attachment encoder and stored verbatim.
type Attachment struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

// Movement is an immutable ledger entry of stock entering or leaving.
// TechnicianID is nil for ENTREE movements and for SORTIE movements whose
// technician has since been deleted.
type Movement struct {
	ID           string       `json:"id"`
	ProductID    string       `json:"productId"`
	TechnicianID *string      `json:"technicianId"`
	Quantity     int          `json:"quantity"`
	Type         MovementType `json:"type"`
	Comment      *string      `json:"comment,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	CreatedBy    *string      `json:"createdBy,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
}

// ToolLoan tracks a piece of loanable equipment and its current custodian.
// A nil TechnicianID means the tool sits in the central store.
type ToolLoan struct {
	ID           string         `json:"id"`
	ToolName     string         `json:"toolName"`
	Category     string         `json:"category"`
	SerialNumber *string        `json:"serialNumber,omitempty"`
	TechnicianID *string        `json:"technicianId"`
	LoanedAt     time.Time      `json:"loanedAt"`
	DueDate      *time.Time     `json:"dueDate,omitempty"`
	Status       ToolLoanStatus `json:"status"`
	Notes        *string        `json:"notes,omitempty"`
}

// ToolLoanPayload carries the editable fields of a tool loan.
type ToolLoanPayload struct {
	ToolName     string         `json:"toolName"`
	Category     string         `json:"category"`
	SerialNumber *string        `json:"serialNumber,omitempty"`
	TechnicianID *string        `json:"technicianId"`
	LoanedAt     time.Time      `json:"loanedAt"`
	DueDate      *time.Time     `json:"dueDate,omitempty"`
	Status       ToolLoanStatus `json:"status"`
	Notes        *string        `json:"notes,omitempty"`
}

// Apply copies the payload onto l, leaving the identifier untouched.
func (pl ToolLoanPayload) Apply(l *ToolLoan) {
	l.ToolName = pl.ToolName
	l.Category = pl.Category
	l.SerialNumber = cloneString(pl.SerialNumber)
	l.TechnicianID = cloneString(pl.TechnicianID)
	l.LoanedAt = pl.LoanedAt
	l.DueDate = cloneTime(pl.DueDate)
	l.Status = pl.Status
	l.Notes = cloneString(pl.Notes)
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the supported mutations.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Ptr returns a pointer to v. Handy for optional fields.
func Ptr[T any](v T) *T { return &v }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
