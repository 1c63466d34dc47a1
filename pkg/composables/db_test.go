package composables_test

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/constants"
)

type fakeTx struct{}

func (fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func TestUseTx_NoTxNoPool(t *testing.T) {
	_, err := composables.UseTx(context.Background())
	assert.ErrorIs(t, err, composables.ErrNoPool)
}

func TestUseTx_AmbientTx(t *testing.T) {
	ctx := context.WithValue(context.Background(), constants.TxKey, fakeTx{})
	tx, err := composables.UseTx(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakeTx{}, tx)
}

func TestInTx_JoinsAmbientTx(t *testing.T) {
	ctx := context.WithValue(context.Background(), constants.TxKey, fakeTx{})

	called := false
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		called = true
		tx, err := composables.UseTx(txCtx)
		require.NoError(t, err)
		assert.Equal(t, fakeTx{}, tx)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestInTx_NoPoolFails(t *testing.T) {
	err := composables.InTx(context.Background(), func(txCtx context.Context) error {
		t.Fatal("callback must not run without a pool")
		return nil
	})
	assert.ErrorIs(t, err, composables.ErrNoPool)
}

func TestInTxResult_PropagatesError(t *testing.T) {
	ctx := context.WithValue(context.Background(), constants.TxKey, fakeTx{})

	sentinel := errors.New("op failed")
	_, err := composables.InTxResult(ctx, func(txCtx context.Context) (int, error) {
		return 0, sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestUseUserID(t *testing.T) {
	_, err := composables.UseUserID(context.Background())
	require.Error(t, err)

	userID := uuid.New()
	got, err := composables.UseUserID(composables.WithUserID(context.Background(), userID))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
