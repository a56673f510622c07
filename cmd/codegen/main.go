// Command codegen writes a batch of access codes straight into the
// configured store and prints them to stdout, one per line.
//
//	codegen --count 50 --prefix EVT- --notes "launch party"
//
// Store selection and the default format come from the same environment
// and config file as the service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/codegate/internal/codegate/app"
	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/internal/codegate/service"
	"github.com/aussiebroadwan/codegate/pkg/slogx"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "codegen:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("codegen", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	count := fs.IntP("count", "n", 1, "number of codes to generate (1-1000)")
	prefix := fs.String("prefix", "", "prefix for every code, e.g. EVT-")
	length := fs.Int("length", 0, "random symbols per code (default from CODEGATE_CODE_LENGTH)")
	alphabet := fs.String("alphabet", "", "numeric, unambiguous or a literal alphabet")
	notes := fs.String("notes", "", "operator notes stored with each code")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Logs go to stderr so stdout carries only codes.
	logger := slogx.New(slogx.Config{
		Service: "codegen",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  "text",
		Output:  stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = slogx.WithContext(ctx, logger)

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	format, err := cfg.CodeFormat()
	if err != nil {
		return err
	}

	gen := &service.Generator{
		Store:          st,
		Format:         format,
		AllowOverrides: cfg.CodeAllowOverrides,
		MaxAttempts:    cfg.GenerateMaxAttempts,
		StoreTimeout:   cfg.StoreTimeout,
	}

	codes, err := gen.Generate(ctx, *count, domain.GenerateOptions{
		Prefix:   *prefix,
		Length:   *length,
		Alphabet: *alphabet,
		Notes:    *notes,
	})
	// Whatever was written is usable, so print it even on failure.
	for _, code := range codes {
		fmt.Fprintln(stdout, code)
	}
	if err != nil {
		return fmt.Errorf("generated %d of %d codes: %w", len(codes), *count, err)
	}
	return nil
}
