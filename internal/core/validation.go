package core

import (
	"strings"

	"tmfstock/pkg/domain"
)

// User-facing rejection messages.
const (
	MsgQuantityNotPositive   = "La quantité doit être positive."
	MsgTechnicianRequired    = "Merci de choisir un technicien."
	MsgLoanTechnicianMissing = "Veuillez sélectionner un technicien."
	MsgInsufficientStock     = "Quantité supérieure au stock disponible."
	MsgNameRequired          = "Le nom est obligatoire."
	MsgEmailRequired         = "L'adresse e-mail est obligatoire."
	MsgNegativeQuantity      = "La quantité initiale ne peut pas être négative."
	MsgNegativeThreshold     = "Le seuil d'alerte ne peut pas être négatif."
	MsgToolNameRequired      = "Le nom de l'outil est obligatoire."
	MsgInvalidStatus         = "Statut de prêt inconnu."
)

func invalid(field, msg string) error {
	return domain.ValidationError{Field: field, Message: msg}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// optionalText trims s and maps blank input to nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func validateQuantity(q int) error {
	if q <= 0 {
		return invalid("quantity", MsgQuantityNotPositive)
	}
	return nil
}

func validateProduct(p domain.ProductPayload) error {
	switch {
	case blank(p.Name):
		return invalid("name", MsgNameRequired)
	case p.InitialQuantity < 0:
		return invalid("initialQuantity", MsgNegativeQuantity)
	case p.Threshold < 0:
		return invalid("threshold", MsgNegativeThreshold)
	}
	return nil
}

func validateTechnician(t domain.TechnicianPayload) error {
	switch {
	case blank(t.Name):
		return invalid("name", MsgNameRequired)
	case blank(t.Email):
		return invalid("email", MsgEmailRequired)
	}
	return nil
}

// normalizeToolLoan validates the payload. A blank status is left for the
// caller to resolve.
func normalizeToolLoan(p domain.ToolLoanPayload) (domain.ToolLoanPayload, error) {
	if blank(p.ToolName) {
		return p, invalid("toolName", MsgToolNameRequired)
	}
	if p.Status != "" && !p.Status.Valid() {
		return p, invalid("status", MsgInvalidStatus)
	}
	if p.TechnicianID != nil && blank(*p.TechnicianID) {
		p.TechnicianID = nil
	}
	p.SerialNumber = optionalText(p.SerialNumber)
	p.Notes = optionalText(p.Notes)
	return p, nil
}
