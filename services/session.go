package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/meinhoongagan/findam/models"
)

// Session is the authenticated identity attached to a request.
type Session struct {
	AccountID uint
	Email     string
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

// SessionManager issues and validates session tokens.
type SessionManager interface {
	Issue(a *models.Account) (string, Session, error)
	Verify(ctx context.Context, token string) (Session, error)
	Revoke(ctx context.Context, s Session) error
}

// RevocationList remembers logged-out token ids until they would have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTSessions implements SessionManager with HS256 tokens.
type JWTSessions struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationList
	now     func() time.Time
}

func NewJWTSessions(secret string, ttl time.Duration, revoked RevocationList) *JWTSessions {
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	return &JWTSessions{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Key is the HMAC key, shared with the JWT middleware.
func (m *JWTSessions) Key() []byte { return m.secret }

func (m *JWTSessions) Issue(a *models.Account) (string, Session, error) {
	now := m.now()
	s := Session{
		AccountID: a.ID,
		Email:     a.Email,
		Role:      a.Role,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	claims := jwt.MapClaims{
		"id":    a.ID,
		"email": a.Email,
		"role":  string(a.Role),
		"jti":   s.TokenID,
		"iat":   now.Unix(),
		"exp":   s.ExpiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, s, nil
}

func (m *JWTSessions) Verify(ctx context.Context, raw string) (Session, error) {
	if raw == "" {
		return Session{}, ErrAuthenticationRequired()
	}
	token, err := jwt.Parse(raw, m.keyFunc)
	if err != nil || !token.Valid {
		return Session{}, ErrAuthenticationRequired()
	}
	return m.FromToken(ctx, token)
}

// FromToken converts an already signature-checked token into a Session and
// rejects it if it has been revoked.
func (m *JWTSessions) FromToken(ctx context.Context, token *jwt.Token) (Session, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrAuthenticationRequired()
	}
	s, err := sessionFromClaims(claims)
	if err != nil {
		return Session{}, &Error{Kind: KindAuth, Code: CodeAuthenticationRequired, Message: "authentication required", Cause: err}
	}

	revoked, err := m.revoked.IsRevoked(ctx, s.TokenID)
	if err != nil {
		return Session{}, ErrInternal(err)
	}
	if revoked {
		return Session{}, ErrAuthenticationRequired()
	}
	return s, nil
}

func (m *JWTSessions) Revoke(ctx context.Context, s Session) error {
	if s.TokenID == "" {
		return nil
	}
	if err := m.revoked.Revoke(ctx, s.TokenID, s.ExpiresAt); err != nil {
		return ErrInternal(err)
	}
	return nil
}

func (m *JWTSessions) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return m.secret, nil
}

func sessionFromClaims(claims jwt.MapClaims) (Session, error) {
	id, err := claimUint(claims["id"])
	if err != nil {
		return Session{}, err
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Session{}, fmt.Errorf("no role found in claims")
	}
	jti, _ := claims["jti"].(string)
	email, _ := claims["email"].(string)

	s := Session{
		AccountID: id,
		Email:     email,
		Role:      models.ParseRole(role),
		TokenID:   jti,
	}
	if exp, ok := claims["exp"].(float64); ok {
		s.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return s, nil
}

// claimUint accepts the numeric forms a JSON-decoded id can take.
func claimUint(v interface{}) (uint, error) {
	switch id := v.(type) {
	case float64:
		if id <= 0 {
			return 0, fmt.Errorf("invalid id %v", id)
		}
		return uint(id), nil
	case string:
		parsed, err := strconv.ParseUint(id, 10, 64)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("could not parse id %q", id)
		}
		return uint(parsed), nil
	case nil:
		return 0, fmt.Errorf("no id found in claims")
	default:
		return 0, fmt.Errorf("unsupported id type: %T", v)
	}
}

// MemoryRevocations is the RevocationList used when Redis is not configured.
type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{entries: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, id)
		}
	}
	r.entries[tokenID] = until
	return nil
}

func (r *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.entries[tokenID]
	return ok && exp.After(r.now()), nil
}
