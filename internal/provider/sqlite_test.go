package provider

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/labelscore/internal/lib/logger/sl"
	"github.com/speedwagon-io/labelscore/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteProvider {
	t.Helper()
	p, err := NewSQLiteProvider(sl.NewDiscardLogger(), filepath.Join(t.TempDir(), "nested", "thresholds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSQLiteProvider_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	p := newTestSQLite(t)

	key := model.NewThresholdKey(model.NutrientSugar, model.UnitGram)
	require.NoError(t, p.Store(ctx, rule(model.NutrientSugar, model.UnitGram, 5, 22.5)))

	got, err := p.GetThresholds(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Lower: 5, Upper: 22.5}, got)

	require.NoError(t, p.Store(ctx, rule(model.NutrientSugar, model.UnitGram, 4, 20)))
	got, err = p.GetThresholds(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Lower: 4, Upper: 20}, got)

	count, err := p.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteProvider_NotFound(t *testing.T) {
	p := newTestSQLite(t)

	_, err := p.GetThresholds(context.Background(), model.NewThresholdKey(model.NutrientSalt, model.UnitMilliliter))
	assert.ErrorIs(t, err, model.ErrThresholdsNotFound)
}

func TestSQLiteProvider_StoreRejectsInvalid(t *testing.T) {
	p := newTestSQLite(t)

	err := p.Store(context.Background(), rule(model.NutrientSalt, model.UnitGram, 2, 1))
	assert.ErrorIs(t, err, model.ErrInvalidThresholds)
}

func TestSQLiteProvider_StoreAllIsAtomic(t *testing.T) {
	ctx := context.Background()
	p := newTestSQLite(t)

	err := p.StoreAll(ctx, []model.ThresholdRule{
		rule(model.NutrientFat, model.UnitGram, 3, 17.5),
		rule(model.NutrientSalt, model.UnitGram, 2, 1),
	})
	assert.ErrorIs(t, err, model.ErrInvalidThresholds)

	count, err := p.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, p.StoreAll(ctx, []model.ThresholdRule{
		rule(model.NutrientSalt, model.UnitGram, 0.3, 1.5),
		rule(model.NutrientFat, model.UnitMilliliter, 1.5, 8.75),
		rule(model.NutrientFat, model.UnitGram, 3, 17.5),
	}))

	rules, err := p.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.ThresholdRule{
		rule(model.NutrientFat, model.UnitGram, 3, 17.5),
		rule(model.NutrientFat, model.UnitMilliliter, 1.5, 8.75),
		rule(model.NutrientSalt, model.UnitGram, 0.3, 1.5),
	}, rules)
}

func TestSQLiteProvider_Delete(t *testing.T) {
	ctx := context.Background()
	p := newTestSQLite(t)
	key := model.NewThresholdKey(model.NutrientFat, model.UnitGram)

	require.NoError(t, p.Store(ctx, rule(model.NutrientFat, model.UnitGram, 3, 17.5)))
	require.NoError(t, p.Delete(ctx, key))
	require.NoError(t, p.Delete(ctx, key))

	_, err := p.GetThresholds(ctx, key)
	assert.ErrorIs(t, err, model.ErrThresholdsNotFound)
}

func TestSQLiteProvider_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "thresholds.db")

	p, err := NewSQLiteProvider(sl.NewDiscardLogger(), path)
	require.NoError(t, err)
	require.NoError(t, p.Store(ctx, rule(model.NutrientSaturatedFat, model.UnitGram, 1.5, 5)))
	require.NoError(t, p.Close())

	reopened, err := NewSQLiteProvider(sl.NewDiscardLogger(), path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetThresholds(ctx, model.NewThresholdKey(model.NutrientSaturatedFat, model.UnitGram))
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Lower: 1.5, Upper: 5}, got)
	assert.Equal(t, "sqlite", reopened.Name())
}

func TestSQLiteProvider_ListRejectsCorruptRows(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		insert  string
		wantErr error
	}{
		{
			name:    "unknown nutrient",
			insert:  `INSERT INTO thresholds VALUES ('protein', 'gram', 1, 2, '')`,
			wantErr: model.ErrUnknownNutrient,
		},
		{
			name:    "unknown unit",
			insert:  `INSERT INTO thresholds VALUES ('fat', 'cup', 1, 2, '')`,
			wantErr: model.ErrUnknownUnit,
		},
		{
			name:    "inverted bounds",
			insert:  `INSERT INTO thresholds VALUES ('fat', 'gram', 9, 1, '')`,
			wantErr: model.ErrInvalidThresholds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestSQLite(t)
			require.NoError(t, p.Store(ctx, rule(model.NutrientSalt, model.UnitGram, 0.3, 1.5)))
			_, err := p.db.ExecContext(ctx, tt.insert)
			require.NoError(t, err)

			rules, err := p.List(ctx)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rules)
		})
	}

	t.Run("unscannable bound", func(t *testing.T) {
		p := newTestSQLite(t)
		_, err := p.db.ExecContext(ctx, `INSERT INTO thresholds VALUES ('fat', 'gram', 'low', 2, '')`)
		require.NoError(t, err)

		rules, err := p.List(ctx)
		assert.ErrorContains(t, err, "failed to scan threshold row")
		assert.Nil(t, rules)
	})
}
