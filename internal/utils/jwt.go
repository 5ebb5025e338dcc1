package utils // package utils provides helpers for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken represents a signed JWT session token along with its
// expiry. The Token field contains the JWT string; Exp stores the UTC
// expiration. Sessions are carried in the Authorization header on every
// protected endpoint.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// SessionClaims is what the application embeds in a session token: the
// user ID and the admin flag. Everything else about the user is re-fetched
// from the database on each request.
type SessionClaims struct {
	UserID  uint64
	IsAdmin bool
}

// NewSessionToken builds and signs an HS256 JWT for a user. The JWT
// includes sub (user ID), adm (admin flag), exp and iat. The TTL is given
// in minutes; the default configuration uses one day.
func NewSessionToken(secret string, userID uint64, isAdmin bool, ttlMin int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"adm": isAdmin,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ErrInvalidToken is returned for any malformed, mis-signed or expired
// session token. Callers do not learn which; all map to Unauthorized.
var ErrInvalidToken = errors.New("invalid token")

// ParseSessionToken verifies a session token and extracts its claims. Only
// HMAC-signed tokens are accepted; a token signed with any other method is
// rejected regardless of its validity.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // JWT numbers decode as float64
	if !ok || sub <= 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	adm, _ := claims["adm"].(bool)
	return SessionClaims{UserID: uint64(sub), IsAdmin: adm}, nil
}
