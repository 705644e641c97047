package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/cache"
	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/service"
	"github.com/chicommerce/catalog-api/internal/testutil"
)

// run executes catalogctl with args against db and returns stdout.
func run(t *testing.T, db *sqlx.DB, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	opts := &RootOptions{OpenDB: func() (*sqlx.DB, string, error) {
		if db == nil {
			return nil, "", errors.New("no database in this test")
		}
		return db, "file://migrations", nil
	}}
	return execute(opts, stdin, args...)
}

func execute(opts *RootOptions, stdin io.Reader, args ...string) (string, error) {
	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "seed", "check", "validate-definition", "genkey"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("format"))
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := run(t, nil, nil, "genkey", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(&ExitError{Code: ExitCommandError, Message: "x"}))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := &ExitError{Code: ExitFailure, Message: "seed failed", Err: errors.New("boom")}
	assert.Equal(t, "seed failed: boom", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "boom")
}

func TestOpenDBFailure(t *testing.T) {
	_, err := run(t, nil, nil, "check")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheck(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := db.Exec(`INSERT INTO products (id, name, base_price) VALUES ('11111111-1111-1111-1111-111111111111', 'Tee', 10)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO templates (id, product_id, version, definition, is_default)
		VALUES ('22222222-2222-2222-2222-222222222222', '11111111-1111-1111-1111-111111111111', 1, '{"zones":{}}', TRUE)`)
	require.NoError(t, err)

	out, err := run(t, db, nil, "check")
	require.NoError(t, err)
	golden(t).Assert(t, "check_healthy_text", []byte(out))
}

func TestCheck_ProductWithoutDefault(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := db.Exec(`INSERT INTO products (id, name, base_price) VALUES ('11111111-1111-1111-1111-111111111111', 'Tee', 10)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO templates (id, product_id, version, definition, is_default)
		VALUES ('22222222-2222-2222-2222-222222222222', '11111111-1111-1111-1111-111111111111', 1, '{"zones":{}}', FALSE)`)
	require.NoError(t, err)

	out, err := run(t, db, nil, "check", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `"products_without_default": 1`)
	assert.Contains(t, out, `"database": "ok"`)
}

func TestSeed(t *testing.T) {
	db := testutil.NewDB(t)

	out, err := run(t, db, nil, "seed", "testdata/catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "seeded 2 products, 1 templates, 1 option sets, 2 options\n", out)
}

// recordingCache is a ProductDetailCache that only records invalidations.
type recordingCache struct {
	invalidated []uuid.UUID
}

func (c *recordingCache) Get(context.Context, uuid.UUID) (*models.ProductDetail, error) {
	return nil, cache.ErrCacheMiss
}

func (c *recordingCache) Set(context.Context, *models.ProductDetail) error { return nil }

func (c *recordingCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.invalidated = append(c.invalidated, id)
	return nil
}

func TestSeed_InvalidatesProductCache(t *testing.T) {
	db := testutil.NewDB(t)
	rc := &recordingCache{}
	released := false
	opts := &RootOptions{
		OpenDB: func() (*sqlx.DB, string, error) { return db, "file://migrations", nil },
		OpenCache: func() (service.ProductDetailCache, func(), error) {
			return rc, func() { released = true }, nil
		},
	}

	_, err := execute(opts, nil, "seed", "testdata/catalog.yaml")
	require.NoError(t, err)
	assert.True(t, released)

	// Only Poster gets a template; product inserts have nothing cached yet.
	require.Len(t, rc.invalidated, 1)
	assert.NotEqual(t, uuid.Nil, rc.invalidated[0])
}

func TestSeed_CacheUnavailable(t *testing.T) {
	opts := &RootOptions{
		OpenDB: func() (*sqlx.DB, string, error) { return testutil.NewDB(t), "file://migrations", nil },
		OpenCache: func() (service.ProductDetailCache, func(), error) {
			return nil, nil, errors.New("redis connection failed")
		},
	}
	_, err := execute(opts, nil, "seed", "testdata/catalog.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSeed_MissingFile(t *testing.T) {
	_, err := run(t, testutil.NewDB(t), nil, "seed", "testdata/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGenKey(t *testing.T) {
	out, err := run(t, nil, nil, "genkey")
	require.NoError(t, err)
	assert.Regexp(t, `^key:  cc_admin_[0-9a-f]{64}\n$`, out)

	out, err = run(t, nil, nil, "genkey", "--hash")
	require.NoError(t, err)
	assert.Regexp(t, `^key:  cc_admin_[0-9a-f]{64}\nhash: \$2a\$10\$\S+\n$`, out)
}
