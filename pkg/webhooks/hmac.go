package webhooks

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	hmacSignatureHeader = "X-Signature"
	hmacEventIDHeader   = "X-Event-Id"
	hmacScheme          = "hmac-sha256/v1"
)

type hmacVerifier struct {
	provider string
}

// NewHMACVerifier returns a Verifier for the hex-encoded HMAC-SHA256 scheme:
// the tag over the raw body arrives in X-Signature, optionally prefixed with
// "sha256=". An invalid or undecodable tag yields Valid=false, never an error.
func NewHMACVerifier(provider string) Verifier {
	return &hmacVerifier{provider: strings.TrimSpace(provider)}
}

func (v *hmacVerifier) Provider() string {
	return v.provider
}

func (v *hmacVerifier) Verify(headers http.Header, rawBody []byte, _ time.Time, secret string) (VerificationResult, error) {
	if strings.TrimSpace(secret) == "" {
		return VerificationResult{}, fmt.Errorf("webhook verifier secret is empty")
	}

	tag := strings.TrimSpace(headers.Get(hmacSignatureHeader))
	res := VerificationResult{
		Valid:  false,
		Scheme: hmacScheme,
		Details: map[string]any{
			"signature_header_present": tag != "",
			"provider":                 v.provider,
			"used_header":              hmacSignatureHeader,
		},
		ProviderEventID: strings.TrimSpace(headers.Get(hmacEventIDHeader)),
	}
	if tag == "" {
		return res, nil
	}

	res.Valid = VerifySignature(secret, rawBody, tag)
	return res, nil
}
