// Package secret resolves backend API keys. The resolver owns all access to
// encrypted resources and environment variables – the core never reads env
// vars directly.
package secret

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/viant/scy"
)

// Resolver loads an API key either from an encrypted scy resource or, when
// no resource URL is configured, from the provider's conventional env var.
type Resolver struct {
	scyService *scy.Service

	// KeyURL points at an encrypted secret (blowfish://default by default);
	// empty means env-var fallback
	KeyURL string

	// Key overrides the encryption key expression for the resource
	Key string
}

// New creates a resolver for the given resource URL (may be empty).
func New(keyURL string) *Resolver {
	return &Resolver{scyService: scy.New(), KeyURL: keyURL, Key: "blowfish://default"}
}

// envKeys maps provider names onto their conventional API-key variables.
var envKeys = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
}

// Resolve returns the API key for the named provider.
func (r *Resolver) Resolve(ctx context.Context, provider string) (string, error) {
	if r.KeyURL != "" {
		resource := scy.NewResource(nil, r.KeyURL, r.Key)
		loaded, err := r.scyService.Load(ctx, resource)
		if err != nil {
			return "", fmt.Errorf("failed to load secret from %s: %w", r.KeyURL, err)
		}
		if key := strings.TrimSpace(loaded.String()); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("secret at %s is empty", r.KeyURL)
	}
	envKey, ok := envKeys[strings.ToLower(provider)]
	if !ok {
		return "", fmt.Errorf("no api key source for provider %q", provider)
	}
	if key := strings.TrimSpace(os.Getenv(envKey)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s is not set", envKey)
}
