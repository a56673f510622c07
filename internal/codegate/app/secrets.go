package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/codegate/pkg/secretx"
)

// SigningKeys builds the key cache for the configured secret source. The
// derived key is bound to the app tag.
func SigningKeys(cfg Config) (*secretx.KeyCache, error) {
	var provider secretx.Provider
	switch cfg.SigningKeySource {
	case "env":
		provider = secretx.EnvProvider{Var: cfg.SigningKeyVar}
	case "file":
		provider = secretx.FileProvider{Path: cfg.SigningKeyFile}
	default:
		return nil, fmt.Errorf("unknown signing key source %q", cfg.SigningKeySource)
	}
	return secretx.NewKeyCache(provider, cfg.AppTag), nil
}

// warmSigningKeys loads the key once at startup. A failure is not fatal: the
// service starts degraded, claims answer 503 and /readyz reports it until
// the secret appears.
func warmSigningKeys(keys *secretx.KeyCache, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := keys.Key(ctx); err != nil {
		logger.Warn("signing key not available at startup, claims will fail until it is", "error", err)
		return
	}
	logger.Info("signing key loaded")
}
