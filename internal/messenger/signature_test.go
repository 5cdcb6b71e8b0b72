package messenger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAccepts(t *testing.T) {
	body := []byte(`{"object":"page","entry":[]}`)
	assert.True(t, VerifySignature("app-secret", body, sign("app-secret", body)))
}

func TestVerifySignatureRejects(t *testing.T) {
	body := []byte(`{"object":"page"}`)
	valid := sign("app-secret", body)

	tests := []struct {
		name   string
		secret string
		body   []byte
		header string
	}{
		{"wrong secret", "other-secret", body, valid},
		{"tampered body", "app-secret", []byte(`{"object":"page","entry":[{}]}`), valid},
		{"missing header", "app-secret", body, ""},
		{"missing secret", "", body, valid},
		{"wrong prefix", "app-secret", body, "sha1=" + valid[len("sha256="):]},
		{"bad hex", "app-secret", body, "sha256=not-hex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifySignature(tt.secret, tt.body, tt.header))
		})
	}
}

func TestVerifySignatureSensitiveToExactBytes(t *testing.T) {
	// Re-encoding whitespace must invalidate the signature.
	body := []byte(`{"object": "page"}`)
	compact := []byte(`{"object":"page"}`)
	assert.False(t, VerifySignature("app-secret", compact, sign("app-secret", body)))
}
