package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
)

// PurgeGate guards the bulk delete behind a shared confirmation code.
type PurgeGate struct {
	hash []byte
}

// NewPurgeGate builds a gate from a bcrypt hash, or from a plain code when no hash is set.
// With neither configured every purge attempt is refused.
func NewPurgeGate(code, hash string) (*PurgeGate, error) {
	hash = strings.TrimSpace(hash)
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, err
		}
		return &PurgeGate{hash: []byte(hash)}, nil
	}
	if code == "" {
		return &PurgeGate{}, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &PurgeGate{hash: hashed}, nil
}

// Enabled reports whether a confirmation code is configured.
func (g *PurgeGate) Enabled() bool {
	return g != nil && len(g.hash) > 0
}

// Verify returns ErrForbidden unless code matches the configured secret.
func (g *PurgeGate) Verify(code string) error {
	if !g.Enabled() {
		return appErrors.Clone(appErrors.ErrForbidden, "bulk delete is disabled")
	}
	if code == "" {
		return appErrors.Clone(appErrors.ErrForbidden, "confirmation code required")
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(code)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "invalid confirmation code")
	}
	return nil
}
