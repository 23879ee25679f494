package httpapi

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"tmfstock/internal/core"
	"tmfstock/internal/reports"
	"tmfstock/pkg/domain"
	"tmfstock/pkg/stockview"
)

func (s *Server) registerStock(g *echo.Group) {
	g.POST("/products/:id/restock", s.restock, s.requireWriter)
	g.POST("/products/:id/distribute", s.distribute, s.requireWriter)

	g.GET("/movements", s.listMovements)
	g.GET("/movements.csv", s.exportMovements)
	g.GET("/movements/:id/attachment", s.movementAttachment)
	g.GET("/consumption", s.listConsumption)
	g.GET("/consumption.csv", s.exportConsumption)
}

type restockRequest struct {
	Quantity int     `json:"quantity"`
	Comment  *string `json:"comment"`
}

type distributeRequest struct {
	TechnicianID string  `json:"technicianId"`
	Quantity     int     `json:"quantity"`
	Comment      *string `json:"comment"`
}

type historyResponse struct {
	Rows  []stockview.HistoryRow `json:"rows"`
	Total int                    `json:"total"`
}

// restock accepts JSON, or multipart with an optional "attachment" image.
func (s *Server) restock(c echo.Context) error {
	ctx := c.Request().Context()
	in := core.RestockInput{ProductID: c.Param("id"), Actor: claimsFrom(c).UserID}
	if isMultipart(c) {
		q, err := strconv.Atoi(strings.TrimSpace(c.FormValue("quantity")))
		if err != nil {
			return domain.ValidationError{Field: "quantity", Message: core.MsgQuantityNotPositive}
		}
		in.Quantity = q
		if comment := c.FormValue("comment"); comment != "" {
			in.Comment = &comment
		}
		fh, err := c.FormFile("attachment")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		default:
			att, err := s.encodeUpload(ctx, fh)
			if err != nil {
				return err
			}
			in.Attachment = &att
		}
	} else {
		var req restockRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		in.Quantity, in.Comment = req.Quantity, req.Comment
	}

	m, res, err := s.svc.Restock(ctx, in)
	if err != nil {
		if in.Attachment != nil {
			s.discardAttachment(ctx, in.Attachment.Ref)
		}
		return err
	}
	return written(c, http.StatusCreated, m, res)
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func (s *Server) encodeUpload(ctx context.Context, fh *multipart.FileHeader) (domain.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return s.codec.Encode(ctx, fh.Filename, fh.Header.Get(echo.HeaderContentType), f)
}

// discardAttachment releases an encoded upload whose movement was rejected.
func (s *Server) discardAttachment(ctx context.Context, ref string) {
	if err := s.codec.Remove(context.WithoutCancel(ctx), ref); err != nil {
		s.logger.Warn("discard attachment", "error", err)
	}
}

func (s *Server) distribute(c echo.Context) error {
	var req distributeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	m, res, err := s.svc.Distribute(c.Request().Context(), core.DistributeInput{
		ProductID:    c.Param("id"),
		TechnicianID: req.TechnicianID,
		Quantity:     req.Quantity,
		Comment:      req.Comment,
		Actor:        claimsFrom(c).UserID,
	})
	if err != nil {
		return err
	}
	return written(c, http.StatusCreated, m, res)
}

// movementFilter reads technicianId, productId and the date-only from/to
// bounds.
func (s *Server) movementFilter(c echo.Context) (stockview.MovementFilter, error) {
	from, to, err := stockview.DayRange(c.QueryParam("from"), c.QueryParam("to"), s.loc)
	if err != nil {
		return stockview.MovementFilter{}, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return stockview.MovementFilter{
		TechnicianID: c.QueryParam("technicianId"),
		ProductID:    c.QueryParam("productId"),
		From:         from,
		To:           to,
	}, nil
}

func (s *Server) historyRows(c echo.Context) ([]stockview.HistoryRow, error) {
	f, err := s.movementFilter(c)
	if err != nil {
		return nil, err
	}
	snap := s.svc.Snapshot()
	return stockview.BuildMovementHistoryRows(stockview.FilterMovements(snap.Movements, f), snap.Products, snap.Technicians), nil
}

func (s *Server) consumptionRows(c echo.Context) ([]stockview.ConsumptionRow, error) {
	f, err := s.movementFilter(c)
	if err != nil {
		return nil, err
	}
	snap := s.svc.Snapshot()
	return stockview.BuildTechnicianConsumptionRows(stockview.FilterMovements(snap.Movements, f), snap.Products, snap.Technicians), nil
}

func (s *Server) listMovements(c echo.Context) error {
	rows, err := s.historyRows(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, historyResponse{Rows: rows, Total: stockview.HistoryTotal(rows)})
}

func (s *Server) listConsumption(c echo.Context) error {
	rows, err := s.consumptionRows(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) exportMovements(c echo.Context) error {
	rows, err := s.historyRows(c)
	if err != nil {
		return err
	}
	s.csvHeaders(c, reports.KindHistory)
	return reports.WriteHistory(c.Response(), rows)
}

func (s *Server) exportConsumption(c echo.Context) error {
	rows, err := s.consumptionRows(c)
	if err != nil {
		return err
	}
	s.csvHeaders(c, reports.KindConsumption)
	return reports.WriteConsumption(c.Response(), rows)
}

func (s *Server) csvHeaders(c echo.Context, kind string) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, reports.ContentType)
	h.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": reports.Filename(kind, s.now())}))
	c.Response().WriteHeader(http.StatusOK)
}

func (s *Server) movementAttachment(c echo.Context) error {
	id := c.Param("id")
	for _, m := range s.svc.Snapshot().Movements {
		if m.ID != id {
			continue
		}
		if m.Attachment == nil {
			return echo.NewHTTPError(http.StatusNotFound, "no attachment on movement "+id)
		}
		ct, rc, err := s.codec.Open(c.Request().Context(), m.Attachment.Ref)
		if err != nil {
			return err
		}
		defer rc.Close()
		c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": m.Attachment.Name}))
		return c.Stream(http.StatusOK, ct, rc)
	}
	return domain.ErrNotFound{Entity: domain.EntityMovement, ID: id}
}
