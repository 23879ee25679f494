package core

import (
	"context"

	"tmfstock/pkg/domain"
)

// CreateProduct appends a product to the catalogue.
func (s *Service) CreateProduct(ctx context.Context, payload domain.ProductPayload) (domain.Product, domain.Result, error) {
	var created domain.Product
	if err := validateProduct(payload); err != nil {
		return created, domain.Result{}, err
	}
	res, err := s.run(ctx, "create_product", func(tx domain.Transaction) error {
		var p domain.Product
		payload.Apply(&p)
		var err error
		created, err = tx.CreateProduct(p)
		return err
	})
	return committed(created, res, err)
}

// UpdateProduct replaces the editable fields of a product. A missing id is a
// no-op returning the zero Product.
func (s *Service) UpdateProduct(ctx context.Context, id string, payload domain.ProductPayload) (domain.Product, domain.Result, error) {
	var updated domain.Product
	if err := validateProduct(payload); err != nil {
		return updated, domain.Result{}, err
	}
	res, err := s.run(ctx, "update_product", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateProduct(id, func(p *domain.Product) error {
			payload.Apply(p)
			return nil
		})
		return ignoreMissing(err)
	})
	return committed(updated, res, err)
}

// DeleteProduct removes a product together with its movements. A missing id
// is a no-op.
func (s *Service) DeleteProduct(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_product", func(tx domain.Transaction) error {
		return ignoreMissing(tx.DeleteProduct(id))
	})
}

// CreateTechnician appends a technician.
func (s *Service) CreateTechnician(ctx context.Context, payload domain.TechnicianPayload) (domain.Technician, domain.Result, error) {
	var created domain.Technician
	if err := validateTechnician(payload); err != nil {
		return created, domain.Result{}, err
	}
	res, err := s.run(ctx, "create_technician", func(tx domain.Transaction) error {
		var t domain.Technician
		payload.Apply(&t)
		var err error
		created, err = tx.CreateTechnician(t)
		return err
	})
	return committed(created, res, err)
}

// UpdateTechnician replaces the editable fields of a technician. A missing id
// is a no-op returning the zero Technician.
func (s *Service) UpdateTechnician(ctx context.Context, id string, payload domain.TechnicianPayload) (domain.Technician, domain.Result, error) {
	var updated domain.Technician
	if err := validateTechnician(payload); err != nil {
		return updated, domain.Result{}, err
	}
	res, err := s.run(ctx, "update_technician", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateTechnician(id, func(t *domain.Technician) error {
			payload.Apply(t)
			return nil
		})
		return ignoreMissing(err)
	})
	return committed(updated, res, err)
}

// DeleteTechnician removes a technician. Movements keep their history with a
// cleared technician reference; tool loans are not modified.
func (s *Service) DeleteTechnician(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_technician", func(tx domain.Transaction) error {
		return ignoreMissing(tx.DeleteTechnician(id))
	})
}
