// Package auth implements the HS256 access tokens and password hashing
// used by host sign-in.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidToken covers every verification failure so callers cannot
// distinguish a forged token from an expired one.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the access-token payload. Sub is the host ID.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// SignHS256 issues a compact JWT for the claims.
func SignHS256(claims Claims, secret []byte) (string, error) {
	headerJSON, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString(headerJSON) + "." + enc.EncodeToString(claimsJSON)
	sig := hmacSHA256([]byte(signingInput), secret)
	return signingInput + "." + enc.EncodeToString(sig), nil
}

// ParseAndVerifyHS256 checks the signature and expiry and returns the claims.
func ParseAndVerifyHS256(token string, secret []byte, now time.Time) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}
	enc := base64.RawURLEncoding

	headerJSON, err := enc.DecodeString(parts[0])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil || h.Alg != "HS256" {
		return Claims{}, ErrInvalidToken
	}

	wantSig := hmacSHA256([]byte(parts[0]+"."+parts[1]), secret)
	gotSig, err := enc.DecodeString(parts[2])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if subtle.ConstantTimeCompare(wantSig, gotSig) != 1 {
		return Claims{}, ErrInvalidToken
	}

	claimsJSON, err := enc.DecodeString(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Exp != 0 && now.Unix() >= claims.Exp {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func hmacSHA256(msg, key []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}
