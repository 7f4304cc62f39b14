package qrtoken

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidToken = errors.New("location token signature is invalid")
	ErrExpiredToken = errors.New("location token has expired")
)

// DefaultTTL is the freshness window for a displayed QR code.
const DefaultTTL = 5 * time.Minute

// Signer issues and validates short-lived signed location tokens. The
// signature is a blake2b-256 keyed MAC over "site_id|issued_at", so
// tokens are self-contained and never persisted.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("qr token secret must not be empty")
	}
	if len(secret) > blake2b.Size {
		return nil, fmt.Errorf("qr token secret must be at most %d bytes", blake2b.Size)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl}, nil
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

func (s *Signer) sign(siteID string, issuedAt int64) string {
	h, _ := blake2b.New256(s.secret)
	h.Write([]byte(siteID))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatInt(issuedAt, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Issue creates a fresh token for a site.
func (s *Signer) Issue(siteID string, now time.Time) site.LocationToken {
	issuedAt := now.Unix()
	return site.LocationToken{
		SiteID:    siteID,
		IssuedAt:  issuedAt,
		Signature: s.sign(siteID, issuedAt),
	}
}

// Validate checks signature and freshness. The signature is checked
// first so an attacker cannot distinguish "expired" from "forged" by
// replaying stale payloads with modified timestamps.
func (s *Signer) Validate(tok site.LocationToken, now time.Time) error {
	expected := s.sign(tok.SiteID, tok.IssuedAt)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(tok.Signature)) != 1 {
		return ErrInvalidToken
	}

	issued := time.Unix(tok.IssuedAt, 0)
	if issued.After(now.Add(30 * time.Second)) {
		// Clock skew beyond tolerance means a forged issued_at that
		// somehow carries a valid signature; treat as invalid.
		return ErrInvalidToken
	}
	if now.Sub(issued) > s.ttl {
		return ErrExpiredToken
	}
	return nil
}
