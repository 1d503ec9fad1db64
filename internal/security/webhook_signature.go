package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrBadSignature     = errors.New("signature mismatch")
)

// WebhookVerifier checks MercadoPago's x-signature header: the header
// carries "ts=<unix>,v1=<hex hmac>" and the HMAC-SHA256 is computed over
// the manifest "id:<data.id>;request-id:<x-request-id>;ts:<ts>;".
type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	if secret == "" {
		return nil // verification disabled (local/sandbox)
	}
	return &WebhookVerifier{secret: []byte(secret)}
}

func (v *WebhookVerifier) Verify(signatureHeader, requestID, dataID string) error {
	if signatureHeader == "" {
		return ErrMissingSignature
	}

	var ts, v1 string
	for _, part := range strings.Split(signatureHeader, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "ts":
			ts = val
		case "v1":
			v1 = val
		}
	}
	if ts == "" || v1 == "" {
		return ErrMissingSignature
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(manifest))
	want := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(want), []byte(strings.ToLower(v1))) {
		return ErrBadSignature
	}
	return nil
}
