// Package session issues and verifies the signed dashboard session.
// The cookie wraps the remote API's bearer token so the browser never
// sees it; every authenticated request carries it back through the
// context for outbound calls.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Claims is what a session cookie carries.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	// Token is the upstream bearer token, or "local" for the
	// bootstrap admin.
	Token     string `json:"token"`
	ExpiresAt int64  `json:"exp"`
}

// Sign serializes and signs claims as payload.signature, both
// base64url. HMAC-SHA256 with the deployment's session secret.
func Sign(secret string, claims Claims) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("session secret is empty")
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	enc := base64.RawURLEncoding
	unsigned := enc.EncodeToString(payload)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(unsigned))
	return unsigned + "." + enc.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks the signature and expiry and returns the claims.
func Verify(secret, raw string) (Claims, error) {
	var claims Claims

	unsigned, sig, ok := strings.Cut(raw, ".")
	if !ok {
		return claims, fmt.Errorf("malformed session token")
	}
	enc := base64.RawURLEncoding

	wantSig, err := enc.DecodeString(sig)
	if err != nil {
		return claims, fmt.Errorf("malformed session signature")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(unsigned))
	if !hmac.Equal(mac.Sum(nil), wantSig) {
		return claims, fmt.Errorf("session signature mismatch")
	}

	payload, err := enc.DecodeString(unsigned)
	if err != nil {
		return claims, fmt.Errorf("malformed session payload")
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, fmt.Errorf("decode session claims: %w", err)
	}
	if claims.ExpiresAt < time.Now().Unix() {
		return claims, fmt.Errorf("session expired")
	}
	return claims, nil
}
