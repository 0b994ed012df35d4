package repository_test

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderpipe/internal/port"
	"github.com/nikolayk812/orderpipe/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const testQuotaBytes = 64

type postgresStoreSuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	store     *repository.PostgresStore
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	suite.Run(t, new(postgresStoreSuite))
}

// before all tests in the suite
func (suite *postgresStoreSuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.store, err = repository.NewPostgresStore(suite.pool, testQuotaBytes)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.store.Migrate(ctx))
}

// after all tests in the suite
func (suite *postgresStoreSuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}

	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *postgresStoreSuite) TestSetGetRemove() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	key := gofakeit.UUID()
	value := gofakeit.LetterN(20)

	_, found, err := suite.store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, suite.store.Set(ctx, key, value))

	actual, found, err := suite.store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, value, actual)

	overwritten := gofakeit.LetterN(10)
	require.NoError(t, suite.store.Set(ctx, key, overwritten))

	actual, _, err = suite.store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, overwritten, actual)

	require.NoError(t, suite.store.Remove(ctx, key))

	_, found, err = suite.store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func (suite *postgresStoreSuite) TestSetQuota() {
	tests := []struct {
		name      string
		existing  map[string]string
		key       string
		value     string
		wantError error
	}{
		{
			name:  "fits into empty table: ok",
			key:   "a",
			value: strings.Repeat("x", testQuotaBytes),
		},
		{
			name:      "larger than quota: fail",
			key:       "a",
			value:     strings.Repeat("x", testQuotaBytes+1),
			wantError: port.ErrQuotaExceeded,
		},
		{
			name:      "other keys use the space: fail",
			existing:  map[string]string{"b": strings.Repeat("y", testQuotaBytes-1)},
			key:       "a",
			value:     "xx",
			wantError: port.ErrQuotaExceeded,
		},
		{
			name:     "overwrite of the same key: ok",
			existing: map[string]string{"a": strings.Repeat("y", testQuotaBytes)},
			key:      "a",
			value:    strings.Repeat("x", testQuotaBytes),
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			defer suite.deleteAll()

			t := suite.T()
			ctx := t.Context()

			for k, v := range tt.existing {
				require.NoError(t, suite.store.Set(ctx, k, v))
			}

			err := suite.store.Set(ctx, tt.key, tt.value)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)

				// a rejected write leaves the previous value in place
				actual, _, getErr := suite.store.Get(ctx, tt.key)
				require.NoError(t, getErr)
				assert.Equal(t, tt.existing[tt.key], actual)
				return
			}
			require.NoError(t, err)

			actual, found, err := suite.store.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.value, actual)
		})
	}
}

func (suite *postgresStoreSuite) TestWithTx() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)

	txStore := repository.NewPostgresStoreWithTx(tx, testQuotaBytes)
	require.NoError(t, txStore.Set(ctx, "in-tx", "value"))

	require.NoError(t, tx.Rollback(ctx))

	_, found, err := suite.store.Get(ctx, "in-tx")
	require.NoError(t, err)
	assert.False(t, found)
}

func (suite *postgresStoreSuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), `DELETE FROM order_cache_kv`)
	suite.NoError(err)
}
