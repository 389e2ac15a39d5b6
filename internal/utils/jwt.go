package utils // package utils provides helpers for tokens, hashing and random secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// inviteScope marks tokens that may only be used to accept a staff invite.
const inviteScope = "invite"

// ErrInvalidInvite is returned for tokens that are malformed, expired,
// signed with another key or issued for another purpose.
var ErrInvalidInvite = errors.New("convite inválido ou expirado")

// InviteToken is a signed invite and its expiry. Only the SHA-256 digest of
// Token is persisted.
type InviteToken struct {
	Token string
	Exp   time.Time
}

// NewInviteToken signs an HS256 JWT naming the invited staff member.
func NewInviteToken(secret string, gestorID uint64, ttl time.Duration) (InviteToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl).Truncate(time.Second)
	nonce, err := randomHex(8)
	if err != nil {
		return InviteToken{}, err
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(gestorID, 10),
		Audience:  jwt.ClaimStrings{inviteScope},
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        nonce,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return InviteToken{}, err
	}
	return InviteToken{Token: signed, Exp: exp}, nil
}

// ParseInviteToken verifies signature, expiry and audience and returns the
// staff id the invite was issued for.
func ParseInviteToken(secret, raw string) (uint64, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidInvite
		}
		return []byte(secret), nil
	}, jwt.WithAudience(inviteScope), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return 0, ErrInvalidInvite
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidInvite
	}
	return id, nil
}

// HashToken returns the SHA-256 hex digest stored in place of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewSessionID returns a 256-bit random identifier for the session cookie.
func NewSessionID() (string, error) { return randomHex(32) }

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%"

// TemporaryPassword returns a random password of length n handed to new or
// reset staff accounts.
func TemporaryPassword(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		k, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[k.Int64()]
	}
	return string(out), nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
