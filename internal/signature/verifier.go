// Package signature authenticates /stream callers. A caller signs the exact
// request body with HMAC-SHA256 using the shared secret and sends the hex
// digest in the X-Grd-Signature header. The secret is configured as base64
// text.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"pokeproxy/internal/common/logging"
)

// Header carries the hex-encoded HMAC-SHA256 of the body
const Header = "X-Grd-Signature"

// Verifier checks body signatures and logs rejections at debug level
type Verifier struct {
	logger logging.Logger
}

// NewVerifier creates a new signature verifier
func NewVerifier(logger logging.Logger) *Verifier {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Verifier{logger: logger}
}

// Verify reports whether signatureHex is the HMAC-SHA256 of body keyed with
// the base64-decoded secret. Every failure, including a malformed secret or
// signature, is reported as false.
func (v *Verifier) Verify(body []byte, signatureHex, secretB64 string) bool {
	if err := check(body, signatureHex, secretB64); err != nil {
		v.logger.Debug("Signature rejected",
			logging.String("reason", err.Error()),
			logging.Int("body_bytes", len(body)),
		)
		return false
	}
	return true
}

// Sign returns the hex signature for body under the base64 secret
func Sign(body []byte, secretB64 string) (string, error) {
	key, err := decodeSecret(secretB64)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(computeMAC(body, key)), nil
}

func check(body []byte, signatureHex, secretB64 string) error {
	key, err := decodeSecret(secretB64)
	if err != nil {
		return err
	}

	// The header must be the exact lowercase hex digest, compared in
	// constant time. Case and surrounding whitespace are significant.
	expected := hex.EncodeToString(computeMAC(body, key))
	if !hmac.Equal([]byte(signatureHex), []byte(expected)) {
		return NewVerificationError("signature mismatch")
	}
	return nil
}

func decodeSecret(secretB64 string) ([]byte, error) {
	if secretB64 == "" {
		return nil, NewVerificationError("secret is empty")
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(secretB64))
	if err != nil {
		return nil, NewVerificationError("secret is not valid base64")
	}
	return key, nil
}

func computeMAC(body, key []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return mac.Sum(nil)
}
