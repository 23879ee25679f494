package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tmfstock/internal/identity"
)

const claimsKey = "tmfstock.claims"

// Operator-facing auth messages.
const (
	MsgSessionRequired = "Session invalide ou expirée."
	MsgReadOnly        = "Accès en lecture seule."
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string        `json:"token,omitempty"`
	ExpiresAt int64         `json:"expiresAt"`
	User      identity.User `json:"user"`
}

func (s *Server) registerSession(g *echo.Group) {
	g.POST("/session", s.login)
	g.GET("/session", s.currentSession)
	g.DELETE("/session", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
}

// authenticate checks the bearer session token on every /api route except
// login.
func (s *Server) authenticate() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Skipper: func(c echo.Context) bool {
			return c.Request().Method == http.MethodPost && c.Path() == "/api/session"
		},
		Validator: func(token string, c echo.Context) (bool, error) {
			claims, err := s.sessions.Parse(token)
			if err != nil {
				return false, err
			}
			c.Set(claimsKey, claims)
			return true, nil
		},
		ErrorHandler: func(err error, _ echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgSessionRequired).SetInternal(err)
		},
	})
}

// requireWriter rejects sessions whose role cannot mutate state.
func (s *Server) requireWriter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !claimsFrom(c).Role.CanWrite() {
			return echo.NewHTTPError(http.StatusForbidden, MsgReadOnly)
		}
		return next(c)
	}
}

func claimsFrom(c echo.Context) identity.Claims {
	claims, _ := c.Get(claimsKey).(identity.Claims)
	return claims
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := s.users.Authenticate(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		s.logger.Info("sign-in rejected", "email", req.Email)
		return err
	}
	token, claims, err := s.sessions.Issue(user)
	if err != nil {
		return err
	}
	s.logger.Info("signed in", "user", user.ID, "role", user.Role)
	return c.JSON(http.StatusOK, sessionResponse{Token: token, ExpiresAt: claims.ExpiresAt, User: user.Public()})
}

func (s *Server) currentSession(c echo.Context) error {
	claims := claimsFrom(c)
	user, ok := s.users.Lookup(claims.UserID)
	if !ok {
		user = identity.User{ID: claims.UserID, Name: claims.Name, Role: claims.Role}
	}
	user.Role = claims.Role
	return c.JSON(http.StatusOK, sessionResponse{ExpiresAt: claims.ExpiresAt, User: user.Public()})
}
