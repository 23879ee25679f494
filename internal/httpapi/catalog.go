package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tmfstock/pkg/domain"
	"tmfstock/pkg/stockview"
)

func (s *Server) registerCatalog(g *echo.Group) {
	g.GET("/overview", s.overview)

	g.GET("/products", s.listProducts)
	g.POST("/products", s.createProduct, s.requireWriter)
	g.PUT("/products/:id", s.updateProduct, s.requireWriter)
	g.DELETE("/products/:id", s.deleteProduct, s.requireWriter)

	g.GET("/technicians", s.listTechnicians)
	g.POST("/technicians", s.createTechnician, s.requireWriter)
	g.PUT("/technicians/:id", s.updateTechnician, s.requireWriter)
	g.DELETE("/technicians/:id", s.deleteTechnician, s.requireWriter)
}

type overviewResponse struct {
	Counters stockview.OverviewCounters `json:"counters"`
	Alerts   []stockview.ProductStock   `json:"alerts"`
}

func (s *Server) overview(c echo.Context) error {
	snap := s.svc.Snapshot()
	alerts := []stockview.ProductStock{}
	for _, p := range stockview.ProductsWithStock(snap.Products, snap.Movements) {
		if p.Status != stockview.StatusOK {
			alerts = append(alerts, p)
		}
	}
	return c.JSON(http.StatusOK, overviewResponse{Counters: stockview.Overview(snap), Alerts: alerts})
}

func (s *Server) listProducts(c echo.Context) error {
	snap := s.svc.Snapshot()
	rows := stockview.ProductsWithStock(snap.Products, snap.Movements)
	return c.JSON(http.StatusOK, stockview.FilterProducts(rows, c.QueryParam("q")))
}

func (s *Server) createProduct(c echo.Context) error {
	var payload domain.ProductPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	p, res, err := s.svc.CreateProduct(c.Request().Context(), payload)
	if err != nil {
		return err
	}
	return written(c, http.StatusCreated, p, res)
}

func (s *Server) updateProduct(c echo.Context) error {
	var payload domain.ProductPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	id := c.Param("id")
	p, res, err := s.svc.UpdateProduct(c.Request().Context(), id, payload)
	if err != nil {
		return err
	}
	if p.ID == "" {
		return domain.ErrNotFound{Entity: domain.EntityProduct, ID: id}
	}
	return written(c, http.StatusOK, p, res)
}

func (s *Server) deleteProduct(c echo.Context) error {
	res, err := s.svc.DeleteProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return written(c, http.StatusOK, nil, res)
}

func (s *Server) listTechnicians(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Snapshot().Technicians)
}

func (s *Server) createTechnician(c echo.Context) error {
	var payload domain.TechnicianPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	t, res, err := s.svc.CreateTechnician(c.Request().Context(), payload)
	if err != nil {
		return err
	}
	return written(c, http.StatusCreated, t, res)
}

func (s *Server) updateTechnician(c echo.Context) error {
	var payload domain.TechnicianPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	id := c.Param("id")
	t, res, err := s.svc.UpdateTechnician(c.Request().Context(), id, payload)
	if err != nil {
		return err
	}
	if t.ID == "" {
		return domain.ErrNotFound{Entity: domain.EntityTechnician, ID: id}
	}
	return written(c, http.StatusOK, t, res)
}

func (s *Server) deleteTechnician(c echo.Context) error {
	res, err := s.svc.DeleteTechnician(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return written(c, http.StatusOK, nil, res)
}
