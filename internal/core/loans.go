package core

import (
	"context"
	"time"

	"tmfstock/pkg/domain"
	"tmfstock/pkg/stockview"
)

// AssignInput hands a tool over to a technician.
type AssignInput struct {
	LoanID       string
	TechnicianID string
	DueDate      *time.Time
	Notes        *string
}

// CreateToolLoan places a new tool loan at the head of the list. A zero
// status defaults to DISPONIBLE and a zero LoanedAt to the current time.
func (s *Service) CreateToolLoan(ctx context.Context, payload domain.ToolLoanPayload) (domain.ToolLoan, domain.Result, error) {
	var created domain.ToolLoan
	payload, err := normalizeToolLoan(payload)
	if err != nil {
		return created, domain.Result{}, err
	}
	res, err := s.run(ctx, "create_tool_loan", func(tx domain.Transaction) error {
		var l domain.ToolLoan
		payload.Apply(&l)
		if l.Status == "" {
			l.Status = domain.LoanAvailable
		}
		if l.LoanedAt.IsZero() {
			l.LoanedAt = tx.Now()
		}
		var err error
		created, err = tx.CreateToolLoan(l)
		return err
	})
	return committed(created, res, err)
}

// UpdateToolLoan replaces the editable fields of a tool loan. This is also
// how an operator flags a loan RETARD. A blank status keeps the current one.
// A missing id is a no-op.
func (s *Service) UpdateToolLoan(ctx context.Context, id string, payload domain.ToolLoanPayload) (domain.ToolLoan, domain.Result, error) {
	var updated domain.ToolLoan
	payload, err := normalizeToolLoan(payload)
	if err != nil {
		return updated, domain.Result{}, err
	}
	res, err := s.run(ctx, "update_tool_loan", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateToolLoan(id, func(l *domain.ToolLoan) error {
			loanedAt, status := l.LoanedAt, l.Status
			payload.Apply(l)
			if l.LoanedAt.IsZero() {
				l.LoanedAt = loanedAt
			}
			if l.Status == "" {
				l.Status = status
			}
			return nil
		})
		return ignoreMissing(err)
	})
	return committed(updated, res, err)
}

// DeleteToolLoan removes a tool loan. A missing id is a no-op.
func (s *Service) DeleteToolLoan(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_tool_loan", func(tx domain.Transaction) error {
		return ignoreMissing(tx.DeleteToolLoan(id))
	})
}

// AssignTool hands the loan to a technician: loanedAt becomes now, status
// EN_COURS, and due date and notes are replaced.
func (s *Service) AssignTool(ctx context.Context, in AssignInput) (domain.ToolLoan, domain.Result, error) {
	var updated domain.ToolLoan
	if blank(in.TechnicianID) {
		return updated, domain.Result{}, invalid("technicianId", MsgLoanTechnicianMissing)
	}
	res, err := s.run(ctx, "assign_tool", func(tx domain.Transaction) error {
		if _, ok := tx.FindToolLoan(in.LoanID); !ok {
			return domain.ErrNotFound{Entity: domain.EntityToolLoan, ID: in.LoanID}
		}
		techID := in.TechnicianID
		var err error
		updated, err = tx.UpdateToolLoan(in.LoanID, func(l *domain.ToolLoan) error {
			l.TechnicianID = &techID
			l.LoanedAt = tx.Now()
			l.Status = domain.LoanInProgress
			l.DueDate = nil
			if in.DueDate != nil {
				due := *in.DueDate
				l.DueDate = &due
			}
			l.Notes = optionalText(in.Notes)
			return nil
		})
		return err
	})
	return committed(updated, res, err)
}

// ReturnTool puts the tool back in the central store. Notes and loanedAt are
// kept. A missing id is a no-op.
func (s *Service) ReturnTool(ctx context.Context, loanID string) (domain.ToolLoan, domain.Result, error) {
	var updated domain.ToolLoan
	res, err := s.run(ctx, "return_tool", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateToolLoan(loanID, func(l *domain.ToolLoan) error {
			l.TechnicianID = nil
			l.Status = domain.LoanAvailable
			l.DueDate = nil
			return nil
		})
		return ignoreMissing(err)
	})
	return committed(updated, res, err)
}

// MarkOverdueLoans flags every EN_COURS loan whose due date has passed as
// RETARD and returns the loans it changed.
func (s *Service) MarkOverdueLoans(ctx context.Context) ([]domain.ToolLoan, domain.Result, error) {
	var flagged []domain.ToolLoan
	res, err := s.run(ctx, "mark_overdue_loans", func(tx domain.Transaction) error {
		flagged = flagged[:0]
		for _, l := range stockview.OverdueCandidates(tx.Snapshot().ListToolLoans(), tx.Now()) {
			updated, err := tx.UpdateToolLoan(l.ID, func(l *domain.ToolLoan) error {
				l.Status = domain.LoanOverdue
				return nil
			})
			if err != nil {
				return err
			}
			flagged = append(flagged, updated)
		}
		return nil
	})
	if err != nil {
		return nil, res, err
	}
	return flagged, res, nil
}
