package core

import (
	"context"
	"strings"

	"tmfstock/pkg/domain"
	"tmfstock/pkg/stockview"
)

// RestockInput records stock received into the central store.
type RestockInput struct {
	ProductID  string
	Quantity   int
	Comment    *string
	Attachment *domain.Attachment
	// Actor is the session user id, when known.
	Actor string
}

// DistributeInput records stock issued to a technician.
type DistributeInput struct {
	ProductID    string
	TechnicianID string
	Quantity     int
	Comment      *string
	Actor        string
}

func actorRef(actor string) *string {
	if strings.TrimSpace(actor) == "" {
		return nil
	}
	return &actor
}

// Restock appends an ENTREE movement at the head of the ledger.
func (s *Service) Restock(ctx context.Context, in RestockInput) (domain.Movement, domain.Result, error) {
	var created domain.Movement
	if err := validateQuantity(in.Quantity); err != nil {
		return created, domain.Result{}, err
	}
	res, err := s.run(ctx, "restock", func(tx domain.Transaction) error {
		if _, ok := tx.FindProduct(in.ProductID); !ok {
			return domain.ErrNotFound{Entity: domain.EntityProduct, ID: in.ProductID}
		}
		var attachment *domain.Attachment
		if in.Attachment != nil {
			a := *in.Attachment
			attachment = &a
		}
		var err error
		created, err = tx.AppendMovement(domain.Movement{
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			Type:       domain.MovementIn,
			Comment:    optionalText(in.Comment),
			CreatedAt:  tx.Now(),
			CreatedBy:  actorRef(in.Actor),
			Attachment: attachment,
		})
		return err
	})
	return committed(created, res, err)
}

// Distribute appends a SORTIE movement after checking that a technician was
// chosen and that enough stock is available.
func (s *Service) Distribute(ctx context.Context, in DistributeInput) (domain.Movement, domain.Result, error) {
	var created domain.Movement
	if blank(in.TechnicianID) {
		return created, domain.Result{}, invalid("technicianId", MsgTechnicianRequired)
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return created, domain.Result{}, err
	}
	res, err := s.run(ctx, "distribute", func(tx domain.Transaction) error {
		product, ok := tx.FindProduct(in.ProductID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityProduct, ID: in.ProductID}
		}
		if _, ok := tx.FindTechnician(in.TechnicianID); !ok {
			return domain.ErrNotFound{Entity: domain.EntityTechnician, ID: in.TechnicianID}
		}
		available := stockview.AvailableStock(product, tx.Snapshot().ListMovements())
		if in.Quantity > available {
			return invalid("quantity", MsgInsufficientStock)
		}
		techID := in.TechnicianID
		var err error
		created, err = tx.AppendMovement(domain.Movement{
			ProductID:    in.ProductID,
			TechnicianID: &techID,
			Quantity:     in.Quantity,
			Type:         domain.MovementOut,
			Comment:      optionalText(in.Comment),
			CreatedAt:    tx.Now(),
			CreatedBy:    actorRef(in.Actor),
		})
		return err
	})
	return committed(created, res, err)
}
