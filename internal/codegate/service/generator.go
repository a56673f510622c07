package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/internal/codegate/metrics"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/aussiebroadwan/codegate/pkg/codex"
	"github.com/aussiebroadwan/codegate/pkg/slogx"
)

const (
	MaxGenerateBatch        = 1000
	DefaultGenerateAttempts = 16
	DefaultStoreTimeout     = 3 * time.Second
	maxNotesLength          = 256
)

// Generator mints batches of fresh codes straight into the store.
type Generator struct {
	Store  store.Store
	Format codex.Format

	// AllowOverrides accepts per-batch prefix, length and alphabet.
	// Claims must then be validated with ClaimValidator.
	AllowOverrides bool

	MaxAttempts  int
	StoreTimeout time.Duration
	Metrics      metrics.Recorder
	Random       io.Reader // nil means crypto/rand
	Now          func() time.Time
}

// Generate creates count AVAILABLE codes. A draw that collides with an
// existing code is discarded and redrawn without counting towards count;
// each slot gets MaxAttempts draws before ErrExhaustedKeyspace.
//
// On failure the codes already written are returned alongside the error.
func (g *Generator) Generate(ctx context.Context, count int, opts domain.GenerateOptions) ([]string, error) {
	log := slogx.FromContext(ctx)

	if count < 1 || count > MaxGenerateBatch {
		return nil, fmt.Errorf("%w: count must be in [1, %d]", ErrInvalidRequest, MaxGenerateBatch)
	}
	if len(opts.Notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes longer than %d bytes", ErrInvalidRequest, maxNotesLength)
	}

	format, err := g.formatFor(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	// Asking for more codes than exist can never succeed.
	if format.Keyspace().Cmp(big.NewInt(int64(count))) < 0 {
		return nil, fmt.Errorf("%w: keyspace %s smaller than batch %d", ErrExhaustedKeyspace, format.Keyspace(), count)
	}

	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultGenerateAttempts
	}

	codes := make([]string, 0, count)
	for len(codes) < count {
		code, err := g.fillSlot(ctx, format, opts.Notes, attempts)
		if err != nil {
			log.Error("code generation stopped",
				slog.Int("requested", count),
				slog.Int("created", len(codes)),
				slog.Any("error", err),
			)
			g.recorder().CodesGenerated(len(codes))
			return codes, err
		}
		codes = append(codes, code)
	}

	g.recorder().CodesGenerated(len(codes))
	log.Info("codes generated",
		slog.Int("count", len(codes)),
		slog.String("prefix", format.Prefix()),
		slog.Int("length", format.Length()),
	)
	return codes, nil
}

func (g *Generator) fillSlot(ctx context.Context, format codex.Format, notes string, attempts int) (string, error) {
	for range attempts {
		code, err := format.Draw(g.Random)
		if err != nil {
			return "", err
		}

		err = g.create(ctx, domain.NewAccessCode(code, notes, g.now()))
		switch {
		case err == nil:
			return code, nil
		case errors.Is(err, store.ErrAlreadyExists):
			g.recorder().GenerateCollision()
			slogx.FromContext(ctx).Debug("generated code collided, redrawing",
				slog.String("code_fp", codex.Fingerprint(code)),
			)
		default:
			return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}
	return "", ErrExhaustedKeyspace
}

func (g *Generator) create(ctx context.Context, c domain.AccessCode) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout(g.StoreTimeout))
	defer cancel()
	return g.Store.AccessCodes().CreateIfAbsent(ctx, c)
}

// formatFor layers per-request overrides over the configured format.
func (g *Generator) formatFor(opts domain.GenerateOptions) (codex.Format, error) {
	if !g.AllowOverrides && (opts.Alphabet != "" || opts.Length != 0 || opts.Prefix != "") {
		return codex.Format{}, errors.New("format overrides are disabled")
	}

	alphabet := g.Format.Alphabet()
	if opts.Alphabet != "" {
		alphabet = codex.ResolveAlphabet(opts.Alphabet)
	}
	length := g.Format.Length()
	if opts.Length != 0 {
		length = opts.Length
	}
	prefix := g.Format.Prefix()
	if opts.Prefix != "" {
		prefix = opts.Prefix
	}
	return codex.NewFormat(alphabet, length, prefix)
}

func (g *Generator) recorder() metrics.Recorder {
	if g.Metrics == nil {
		return metrics.NewNoopMetrics()
	}
	return g.Metrics
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func storeTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultStoreTimeout
	}
	return d
}
