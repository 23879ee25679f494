package core

import (
	"context"
	"fmt"

	"tmfstock/pkg/domain"
	"tmfstock/pkg/stockview"
)

// Built-in rule names.
const (
	RuleStockAvailable      = "stock_available"
	RuleLoanCustody         = "loan_custody"
	RuleTechnicianReference = "technician_reference"
	RuleStockThreshold      = "stock_threshold"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewStockAvailableRule())
	engine.Register(NewLoanCustodyRule())
	engine.Register(NewTechnicianReferenceRule())
	engine.Register(NewStockThresholdRule())
	return engine
}

// NewStockAvailableRule blocks any SORTIE movement that leaves its product
// with negative available stock.
func NewStockAvailableRule() domain.Rule {
	return stockAvailableRule{}
}

type stockAvailableRule struct{}

func (stockAvailableRule) Name() string { return RuleStockAvailable }

func (stockAvailableRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	checked := map[string]bool{}
	var ledger []domain.Movement
	for _, c := range changes {
		if c.Entity != domain.EntityMovement || c.Action != domain.ActionCreate {
			continue
		}
		m, ok := c.After.(domain.Movement)
		if !ok || m.Type != domain.MovementOut || checked[m.ProductID] {
			continue
		}
		checked[m.ProductID] = true
		product, ok := view.FindProduct(m.ProductID)
		if !ok {
			continue
		}
		if ledger == nil {
			ledger = view.ListMovements()
		}
		if available := stockview.AvailableStock(product, ledger); available < 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     RuleStockAvailable,
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s (%s: %d)", MsgInsufficientStock, product.Name, available),
				Entity:   domain.EntityProduct,
				EntityID: product.ID,
			})
		}
	}
	return res, nil
}

// NewLoanCustodyRule blocks loans whose status disagrees with their custodian:
// DISPONIBLE if and only if no technician holds the tool.
func NewLoanCustodyRule() domain.Rule {
	return loanCustodyRule{}
}

type loanCustodyRule struct{}

func (loanCustodyRule) Name() string { return RuleLoanCustody }

func (loanCustodyRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, c := range changes {
		if c.Entity != domain.EntityToolLoan || c.Action == domain.ActionDelete {
			continue
		}
		l, ok := c.After.(domain.ToolLoan)
		if !ok {
			continue
		}
		available := l.Status == domain.LoanAvailable
		held := l.TechnicianID != nil
		if available == held {
			msg := fmt.Sprintf("l'outil %s est %s mais n'a pas de technicien", l.ToolName, l.Status)
			if held {
				msg = fmt.Sprintf("l'outil %s est DISPONIBLE mais reste attribué à %s", l.ToolName, *l.TechnicianID)
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     RuleLoanCustody,
				Severity: domain.SeverityBlock,
				Message:  msg,
				Entity:   domain.EntityToolLoan,
				EntityID: l.ID,
			})
		}
	}
	return res, nil
}

// NewTechnicianReferenceRule blocks new movements and newly assigned loans
// that name a technician who does not exist. Existing dangling references
// left by a technician deletion are tolerated.
func NewTechnicianReferenceRule() domain.Rule {
	return technicianReferenceRule{}
}

type technicianReferenceRule struct{}

func (technicianReferenceRule) Name() string { return RuleTechnicianReference }

func (technicianReferenceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	check := func(entity domain.EntityType, id string, tech *string) {
		if tech == nil {
			return
		}
		if _, ok := view.FindTechnician(*tech); ok {
			return
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleTechnicianReference,
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("technicien %s introuvable", *tech),
			Entity:   entity,
			EntityID: id,
		})
	}
	for _, c := range changes {
		switch c.Entity {
		case domain.EntityMovement:
			if c.Action != domain.ActionCreate {
				continue
			}
			if m, ok := c.After.(domain.Movement); ok {
				check(domain.EntityMovement, m.ID, m.TechnicianID)
			}
		case domain.EntityToolLoan:
			after, ok := c.After.(domain.ToolLoan)
			if !ok {
				continue
			}
			if before, ok := c.Before.(domain.ToolLoan); ok && sameRef(before.TechnicianID, after.TechnicianID) {
				continue
			}
			check(domain.EntityToolLoan, after.ID, after.TechnicianID)
		}
	}
	return res, nil
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// NewStockThresholdRule warns when a change leaves a product at or below its
// alert threshold. The warning carries the product's alert message.
func NewStockThresholdRule() domain.Rule {
	return stockThresholdRule{}
}

type stockThresholdRule struct{}

func (stockThresholdRule) Name() string { return RuleStockThreshold }

func (stockThresholdRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	touched := map[string]bool{}
	var order []string
	mark := func(id string) {
		if !touched[id] {
			touched[id] = true
			order = append(order, id)
		}
	}
	for _, c := range changes {
		switch c.Entity {
		case domain.EntityMovement:
			if m, ok := c.After.(domain.Movement); ok && c.Action == domain.ActionCreate {
				mark(m.ProductID)
			}
		case domain.EntityProduct:
			if p, ok := c.After.(domain.Product); ok {
				mark(p.ID)
			}
		}
	}
	res := domain.Result{}
	if len(order) == 0 {
		return res, nil
	}
	ledger := view.ListMovements()
	for _, id := range order {
		product, ok := view.FindProduct(id)
		if !ok {
			continue
		}
		available := stockview.AvailableStock(product, ledger)
		if stockview.ClassifyStockStatus(available, product.Threshold) == stockview.StatusOK {
			continue
		}
		msg := product.AlertMessage
		if msg == "" {
			msg = fmt.Sprintf("Stock bas pour %s", product.Name)
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleStockThreshold,
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("%s (disponible: %d, seuil: %d)", msg, available, product.Threshold),
			Entity:   domain.EntityProduct,
			EntityID: product.ID,
		})
	}
	return res, nil
}
