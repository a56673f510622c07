package codegate_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/app"
	"github.com/aussiebroadwan/codegate/pkg/codesdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common helpers for codegate end-to-end tests. Each test gets its own
 * fully wired service behind an httptest server and talks to it through
 * the SDK, exactly like a real caller.
 */

const (
	adminToken  = "e2e-admin-token"
	signingVar  = "CODEGATE_E2E_SIGNING_KEY"
	signingSeed = "e2e-signing-secret-that-is-long-enough-for-hkdf"
)

// startService boots the service with cfg adjusted by mutate and returns an
// SDK client with admin credentials.
func startService(t *testing.T, mutate func(*app.Config)) *codesdk.Client {
	t.Helper()

	t.Setenv(signingVar, signingSeed)

	cfg := app.DefaultConfig()
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "codegate.db")
	cfg.SigningKeyVar = signingVar
	cfg.AdminToken = adminToken
	cfg.Env = "test"
	cfg.LogLevel = "error"
	if mutate != nil {
		mutate(&cfg)
	}

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Close()
	})

	client := codesdk.NewClient(srv.URL)
	client.AdminToken = adminToken
	return client
}

// startRedis runs a throwaway Redis and returns its address.
func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mappedPort.Port())
}

// generate creates n codes and fails the test otherwise.
func generate(t *testing.T, client *codesdk.Client, req codesdk.GenerateRequest) []string {
	t.Helper()

	resp, err := client.Generate(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, req.Count, resp.Created)
	require.Len(t, resp.Codes, req.Count)
	return resp.Codes
}

// assertHealthy checks that a health response indicates the service is healthy.
func assertHealthy(t *testing.T, health *codesdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
