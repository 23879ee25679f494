package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidSession = errors.New("identity: invalid session token")
	ErrSessionExpired = errors.New("identity: session expired")
)

// DefaultSessionTTL is used when NewSessions gets a non-positive ttl.
const DefaultSessionTTL = 12 * time.Hour

// Claims is the signed session payload.
type Claims struct {
	UserID    string `json:"sub"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	ExpiresAt int64  `json:"exp"`
}

// Expires returns the expiry as a time.
func (c Claims) Expires() time.Time { return time.Unix(c.ExpiresAt, 0).UTC() }

// Sessions issues and verifies "<payload>.<signature>" tokens, both parts
// base64url without padding, signed with HMAC-SHA256.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions signs with secret. An empty secret is rejected by Issue and
// Parse.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy using now; for tests and replay tooling.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	cp := *s
	cp.now = now
	return &cp
}

// Issue signs a token for u.
func (s *Sessions) Issue(u User) (string, Claims, error) {
	if len(s.secret) == 0 {
		return "", Claims{}, errors.New("identity: session secret not configured")
	}
	claims := Claims{UserID: u.ID, Name: u.Name, Role: u.Role, ExpiresAt: s.now().Add(s.ttl).Unix()}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", Claims{}, err
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + s.sign(body), claims, nil
}

// Parse verifies the signature and expiry. A missing role reads as viewer.
func (s *Sessions) Parse(token string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrInvalidSession
	}
	body, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || body == "" || sig == "" {
		return Claims{}, ErrInvalidSession
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(body))) {
		return Claims{}, ErrInvalidSession
	}
	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return Claims{}, ErrInvalidSession
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil || claims.UserID == "" {
		return Claims{}, ErrInvalidSession
	}
	if !claims.Role.valid() {
		claims.Role = RoleViewer
	}
	if !s.now().Before(claims.Expires()) {
		return Claims{}, ErrSessionExpired
	}
	return claims, nil
}

func (s *Sessions) sign(body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
