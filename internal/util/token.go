package util

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the payload of the session cookie: the user id plus the
// opaque token identifying the server-side session row.
type SessionClaims struct {
	UserID       uuid.UUID `json:"uid"`
	SessionToken string    `json:"sid"`
	jwt.RegisteredClaims
}

type SessionTokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionTokenManager(secret string, ttl time.Duration) *SessionTokenManager {
	return &SessionTokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *SessionTokenManager) TTL() time.Duration { return m.ttl }

// NewSessionToken returns a random opaque token for the sessions table.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (m *SessionTokenManager) Generate(userID uuid.UUID, sessionToken string) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.ttl)
	claims := SessionClaims{
		UserID:       userID,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *SessionTokenManager) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.SessionToken == "" {
		return nil, errors.New("missing session token claim")
	}
	return claims, nil
}
