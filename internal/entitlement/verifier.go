package entitlement

import (
	"context"
	"crypto/subtle"
	"strings"

	"tonehub/internal/textutil"
)

// Verifier decides whether an access key grants entitlement.
type Verifier interface {
	Verify(ctx context.Context, input string) (bool, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, input string) (bool, error)

func (f VerifierFunc) Verify(ctx context.Context, input string) (bool, error) { return f(ctx, input) }

// SharedSecretVerifier compares the trimmed, case-folded input with a fixed
// secret.
//
// The secret ships with the client, so anyone who reads the configuration or
// the binary can unlock. It is a convenience gate with no security value;
// deployments that need real protection must supply a server-side Verifier.
type SharedSecretVerifier struct {
	secret string
}

// NewSharedSecretVerifier builds a verifier for secret.
func NewSharedSecretVerifier(secret string) SharedSecretVerifier {
	return SharedSecretVerifier{secret: normalizeKey(secret)}
}

func (v SharedSecretVerifier) Verify(_ context.Context, input string) (bool, error) {
	candidate := normalizeKey(input)
	if v.secret == "" || candidate == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(v.secret)) == 1, nil
}

func normalizeKey(s string) string {
	return textutil.Fold(strings.TrimSpace(s))
}
