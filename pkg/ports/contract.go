package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract. The store is cleared before and after each step.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)

	record := func(expr, result string, offset time.Duration) *domain.Evaluation {
		e := domain.NewEvaluation(expr)
		e.Result = result
		e.Kind = "int"
		e.CreatedAt = base.Add(offset)
		return e
	}

	reset := func(t *testing.T) {
		require.NoError(t, store.Clear(ctx), "Clear should not return error")
	}

	t.Run("Append and Get", func(t *testing.T) {
		reset(t)
		defer reset(t)

		e := record("1 + 2", "3", 0)
		require.NoError(t, store.Append(ctx, e), "Append should not return error")

		loaded, err := store.Get(ctx, e.ID)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, e.ID, loaded.ID)
		assert.Equal(t, "1 + 2", loaded.Expression)
		assert.Equal(t, "3", loaded.Result)
		assert.Equal(t, "int", loaded.Kind)
		assert.False(t, loaded.Failed())
		assert.True(t, e.CreatedAt.Equal(loaded.CreatedAt), "CreatedAt should survive persistence")
	})

	t.Run("Failed evaluations are kept", func(t *testing.T) {
		reset(t)
		defer reset(t)

		e := record("1 / 0", "", 0)
		e.Kind = ""
		e.Error = "division by zero"
		require.NoError(t, store.Append(ctx, e))

		loaded, err := store.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Failed())
		assert.Equal(t, "division by zero", loaded.Error)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-evaluation")
		assert.ErrorIs(t, err, domain.ErrEvaluationNotFound)
	})

	t.Run("Empty ID", func(t *testing.T) {
		_, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, domain.ErrEmptyID)
		err = store.Append(ctx, &domain.Evaluation{Expression: "1"})
		assert.ErrorIs(t, err, domain.ErrEmptyID)
	})

	t.Run("List newest first", func(t *testing.T) {
		reset(t)
		defer reset(t)

		oldest := record("1", "1", 0)
		middle := record("2", "2", time.Second)
		newest := record("3", "3", 2*time.Second)
		// Insertion order differs from chronological order on purpose.
		for _, e := range []*domain.Evaluation{middle, newest, oldest} {
			require.NoError(t, store.Append(ctx, e))
		}

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, ids(all))

		limited, err := store.List(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{newest.ID, middle.ID}, ids(limited))

		more, err := store.List(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, more, 3)
	})

	t.Run("Same microsecond orders by ID", func(t *testing.T) {
		reset(t)
		defer reset(t)

		// Sub-microsecond apart: equal at the resolution every store keeps.
		first := record("1", "1", 100*time.Nanosecond)
		second := record("2", "2", 300*time.Nanosecond)
		third := record("3", "3", 600*time.Nanosecond)
		for _, e := range []*domain.Evaluation{second, third, first} {
			require.NoError(t, store.Append(ctx, e))
		}

		for range 5 {
			all, err := store.List(ctx, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))
		}
	})

	t.Run("Append replaces same ID", func(t *testing.T) {
		reset(t)
		defer reset(t)

		e := record("2 * 3", "6", 0)
		require.NoError(t, store.Append(ctx, e))
		e.Result = "7"
		require.NoError(t, store.Append(ctx, e))

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "7", all[0].Result)
	})

	t.Run("Isolation", func(t *testing.T) {
		reset(t)
		defer reset(t)

		e := record("5 - 3", "2", 0)
		require.NoError(t, store.Append(ctx, e))
		e.Result = "mutated after append"

		loaded, err := store.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "2", loaded.Result)

		loaded.Result = "mutated after get"
		again, err := store.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "2", again.Result)
	})

	t.Run("Clear", func(t *testing.T) {
		reset(t)

		require.NoError(t, store.Append(ctx, record("1", "1", 0)))
		require.NoError(t, store.Clear(ctx))

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, all)

		// Clearing an empty history is not an error.
		assert.NoError(t, store.Clear(ctx))
	})
}

func ids(list []domain.Evaluation) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}
