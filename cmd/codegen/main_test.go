package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/codegate/internal/codegate/app"
	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/pkg/codex"
	"github.com/stretchr/testify/require"
)

// useTempStore points the configuration at a fresh sqlite file.
func useTempStore(t *testing.T) app.Config {
	t.Helper()

	t.Setenv("CODEGATE_CONFIG_FILE", "")
	t.Setenv("CODEGATE_STORE", "sqlite")
	t.Setenv("CODEGATE_DATABASE_FILE", filepath.Join(t.TempDir(), "codegen.db"))
	t.Setenv("CODEGATE_CODE_ALLOW_OVERRIDES", "")

	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	return cfg
}

func lines(s string) []string {
	return strings.Fields(s)
}

func TestRun(t *testing.T) {
	t.Run("writes codes to the store and stdout", func(t *testing.T) {
		cfg := useTempStore(t)

		var stdout, stderr bytes.Buffer
		require.NoError(t, run([]string{"-n", "3", "--notes", "door"}, &stdout, &stderr))

		codes := lines(stdout.String())
		require.Len(t, codes, 3)

		st, err := app.OpenStore(context.Background(), cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })

		format := codex.MustFormat(codex.Numeric, 6, "")
		for _, code := range codes {
			require.NoError(t, format.Validate(code))

			record, err := st.AccessCodes().GetByCode(context.Background(), code)
			require.NoError(t, err)
			require.Equal(t, domain.StatusAvailable, record.Status)
			require.Equal(t, "door", record.Notes)
		}
	})

	t.Run("refuses overrides unless allowed", func(t *testing.T) {
		useTempStore(t)

		var stdout, stderr bytes.Buffer
		err := run([]string{"--prefix", "EVT-"}, &stdout, &stderr)
		require.Error(t, err)
		require.Empty(t, stdout.String())
	})

	t.Run("applies overrides when allowed", func(t *testing.T) {
		useTempStore(t)
		t.Setenv("CODEGATE_CODE_ALLOW_OVERRIDES", "true")

		var stdout, stderr bytes.Buffer
		require.NoError(t, run([]string{"--count", "2", "--prefix", "EVT-", "--alphabet", "unambiguous", "--length", "8"}, &stdout, &stderr))

		format := codex.MustFormat(codex.Unambiguous, 8, "EVT-")
		codes := lines(stdout.String())
		require.Len(t, codes, 2)
		for _, code := range codes {
			require.NoError(t, format.Validate(code))
		}
	})

	t.Run("rejects a bad count", func(t *testing.T) {
		useTempStore(t)

		var stdout, stderr bytes.Buffer
		require.Error(t, run([]string{"--count", "0"}, &stdout, &stderr))
		require.Empty(t, stdout.String())
	})

	t.Run("unknown flag", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.Error(t, run([]string{"--bogus"}, &stdout, &stderr))
	})

	t.Run("help is not an error", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.NoError(t, run([]string{"--help"}, &stdout, &stderr))
		require.Contains(t, stderr.String(), "--count")
	})
}
