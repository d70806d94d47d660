package listener

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultSignatureHeader is the header the provider uses to carry the
// HMAC digest of the delivery body.
const DefaultSignatureHeader = "Smartsheet-Hook-Signature"

// ValidSignature verifies an HMAC-SHA256 hex digest over the raw body
// using constant-time comparison. It never panics and returns false
// for any malformed input.
func ValidSignature(payload []byte, signature, secret string) bool {
	signature = strings.TrimSpace(signature)
	secret = strings.TrimSpace(secret)
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// SignPayload computes the hex digest a sender would attach. Exposed
// for tests and local tooling.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
