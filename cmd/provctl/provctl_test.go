package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provenance-backend/application/queries"
	"provenance-backend/infrastructure/config"
	"provenance-backend/infrastructure/di"
	"provenance-backend/interfaces/http/rest/handlers"
	"provenance-backend/pkg/auth"
)

// isolate points the CLI at a fresh SQLite file
func isolate(t *testing.T) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "provenance.db") + "?_pragma=foreign_keys(1)"
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DB_DSN", dsn)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ENABLE_METRICS", "false")
	t.Setenv("ENABLE_TRACING", "false")
}

// seed creates brigade > company with two raw facts on the company and an
// armor CCIR on the brigade
func seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	cfg, err := config.Load("")
	require.NoError(t, err)
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	brigade, err := container.Catalog.CreateUnit(ctx, "1st Brigade", "brigade", nil)
	require.NoError(t, err)
	parent := brigade.ID()
	company, err := container.Catalog.CreateUnit(ctx, "A Company", "company", &parent)
	require.NoError(t, err)
	_, err = container.Catalog.CreateRawFact(ctx, company.ID(), "enemy armor spotted", "")
	require.NoError(t, err)
	_, err = container.Catalog.CreateRawFact(ctx, company.ID(), "supply route open", "")
	require.NoError(t, err)
	_, err = container.Catalog.CreateCCIR(ctx, brigade.ID(), "Armor", []string{"armor"}, true)
	require.NoError(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	isolate(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "schema version "), out)

	again, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestMigrate_BadDriver(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestRegenerate(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		bullets int
		ccirID  *int64
	}{
		{name: "no filter", args: nil, bullets: 4},
		{name: "keyword", args: []string{"--ccir", "armor"}, bullets: 2},
		{name: "stored ccir", args: []string{"--ccir-id", "1"}, bullets: 2, ccirID: ptr(int64(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			seed(t)

			out, err := run(t, append([]string{"regenerate"}, tt.args...)...)
			require.NoError(t, err)

			var view queries.RegenerationView
			require.NoError(t, json.Unmarshal([]byte(out), &view))
			assert.Equal(t, 2, view.UnitsProcessed)
			assert.Equal(t, tt.bullets, view.BulletsCreated)
			assert.Equal(t, tt.ccirID, view.CCIRID)
		})
	}
}

func TestRegenerate_Errors(t *testing.T) {
	isolate(t)
	seed(t)

	_, err := run(t, "regenerate", "--ccir", "armor", "--ccir-id", "1")
	assert.Error(t, err)

	_, err = run(t, "regenerate", "--ccir-id", "42")
	assert.ErrorContains(t, err, "not found")
}

func TestInvalidate(t *testing.T) {
	isolate(t)
	seed(t)
	_, err := run(t, "regenerate")
	require.NoError(t, err)

	out, err := run(t, "invalidate", "1")
	require.NoError(t, err)

	var resp handlers.InvalidateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	// Company bullet 1 feeds brigade bullet 3.
	assert.ElementsMatch(t, []int64{1, 3}, resp.InvalidatedIDs)

	_, err = run(t, "invalidate", "abc")
	assert.ErrorContains(t, err, "invalid bullet point id")

	_, err = run(t, "invalidate", "99")
	assert.ErrorContains(t, err, "not found")
}

func TestHierarchy(t *testing.T) {
	isolate(t)
	seed(t)
	_, err := run(t, "regenerate")
	require.NoError(t, err)

	out, err := run(t, "hierarchy")
	require.NoError(t, err)
	var forest []queries.HierarchyNodeView
	require.NoError(t, json.Unmarshal([]byte(out), &forest))
	require.Len(t, forest, 2)
	for _, root := range forest {
		assert.Equal(t, int64(1), root.UnitID)
		require.Len(t, root.Children, 1)
		assert.Equal(t, int64(2), root.Children[0].UnitID)
	}

	out, err = run(t, "hierarchy", "--unit", "2")
	require.NoError(t, err)
	forest = nil
	require.NoError(t, json.Unmarshal([]byte(out), &forest))
	require.Len(t, forest, 2)
	assert.Empty(t, forest[0].Children)
}

func TestToken(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "provenance-backend")

	out, err := run(t, "token", "--subject", "ops-1", "--role", "admin")
	require.NoError(t, err)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: "cli-secret", Issuer: "provenance-backend"})
	require.NoError(t, err)
	claims, err := validator.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops-1", claims.UserID())
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestToken_RequiresSecret(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "")

	_, err := run(t, "token", "--subject", "ops-1")
	assert.ErrorContains(t, err, "token signing unavailable")
}

func ptr[T any](v T) *T { return &v }
