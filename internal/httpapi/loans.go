package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"tmfstock/internal/core"
	"tmfstock/pkg/domain"
	"tmfstock/pkg/stockview"
)

func (s *Server) registerLoans(g *echo.Group) {
	g.GET("/loans", s.listLoans)
	g.POST("/loans", s.createLoan, s.requireWriter)
	g.PUT("/loans/:id", s.updateLoan, s.requireWriter)
	g.DELETE("/loans/:id", s.deleteLoan, s.requireWriter)
	g.POST("/loans/:id/assign", s.assignLoan, s.requireWriter)
	g.POST("/loans/:id/return", s.returnLoan, s.requireWriter)
}

type loansResponse struct {
	Assigned  []stockview.ToolLoanRow `json:"assigned"`
	Available []stockview.ToolLoanRow `json:"available"`
}

// assignRequest takes the due date as RFC 3339 or YYYY-MM-DD.
type assignRequest struct {
	TechnicianID string  `json:"technicianId"`
	DueDate      string  `json:"dueDate"`
	Notes        *string `json:"notes"`
}

func (s *Server) listLoans(c echo.Context) error {
	snap := s.svc.Snapshot()
	rows := stockview.FilterToolLoanRows(stockview.BuildToolLoanRows(snap.ToolLoans, snap.Technicians), c.QueryParam("q"))
	assigned, available := stockview.PartitionByAvailability(rows)
	return c.JSON(http.StatusOK, loansResponse{Assigned: assigned, Available: available})
}

func (s *Server) createLoan(c echo.Context) error {
	var payload domain.ToolLoanPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	l, res, err := s.svc.CreateToolLoan(c.Request().Context(), payload)
	if err != nil {
		return err
	}
	return written(c, http.StatusCreated, l, res)
}

func (s *Server) updateLoan(c echo.Context) error {
	var payload domain.ToolLoanPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	id := c.Param("id")
	l, res, err := s.svc.UpdateToolLoan(c.Request().Context(), id, payload)
	if err != nil {
		return err
	}
	if l.ID == "" {
		return domain.ErrNotFound{Entity: domain.EntityToolLoan, ID: id}
	}
	return written(c, http.StatusOK, l, res)
}

func (s *Server) deleteLoan(c echo.Context) error {
	res, err := s.svc.DeleteToolLoan(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return written(c, http.StatusOK, nil, res)
}

func (s *Server) assignLoan(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	due, err := s.parseDueDate(req.DueDate)
	if err != nil {
		return err
	}
	l, res, err := s.svc.AssignTool(c.Request().Context(), core.AssignInput{
		LoanID:       c.Param("id"),
		TechnicianID: req.TechnicianID,
		DueDate:      due,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return written(c, http.StatusOK, l, res)
}

func (s *Server) returnLoan(c echo.Context) error {
	id := c.Param("id")
	l, res, err := s.svc.ReturnTool(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if l.ID == "" {
		return domain.ErrNotFound{Entity: domain.EntityToolLoan, ID: id}
	}
	return written(c, http.StatusOK, l, res)
}

func (s *Server) parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, s.loc)
	if err != nil {
		return nil, domain.ValidationError{Field: "dueDate", Message: "Date de retour invalide."}
	}
	return &t, nil
}
