package live

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"lukechampine.com/frand"
)

var ErrUnauthorized = errors.New("host token invalid for this session")

// signHostToken creates an HS256 JWT naming the session and game. The jti
// nonce is returned separately; only its bcrypt hash is kept server-side.
func signHostToken(secret []byte, code, gameID string, now time.Time, ttl time.Duration) (token, nonce string, err error) {
	nonce = hex.EncodeToString(frand.Bytes(16))
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"code": code,
		"game": gameID,
		"role": "host",
		"jti":  nonce,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	token, err = t.SignedString(secret)
	return token, nonce, err
}

func hashNonce(nonce string, cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(nonce), cost)
}

// verifyHostToken checks signature, expiry, role and code, then compares the
// nonce against the stored hash.
func verifyHostToken(secret []byte, token, code string, hash []byte, now time.Time) error {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !t.Valid {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if c, _ := claims["code"].(string); c != code {
		return ErrUnauthorized
	}
	if role, _ := claims["role"].(string); role != "host" {
		return ErrUnauthorized
	}
	nonce, _ := claims["jti"].(string)
	if nonce == "" || bcrypt.CompareHashAndPassword(hash, []byte(nonce)) != nil {
		return ErrUnauthorized
	}
	return nil
}
