package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/adapters/storage"
	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEntry(id string, createdAt time.Time, price float64) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:           id,
		CreatedAt:    createdAt,
		FuelType:     string(domain.FuelPetrol),
		BasePrice:    95.50,
		Cost:         84.50,
		AvgCompPrice: 96.00,
		Recommendation: domain.Recommendation{
			RecommendedPrice: price,
			ExpectedVolume:   19500,
			ExpectedProfit:   domain.Round2((price - 84.50) * 19500),
		},
	}
}

func TestSQLiteStorage_SaveAndGetHistory(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, db.SaveRecommendation(ctx, makeEntry("b", now, 96.10)))
	require.NoError(t, db.SaveRecommendation(ctx, makeEntry("a", now.Add(-time.Second), 97.00)))

	history, err := db.GetHistory(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Ordenados del más antiguo al más reciente
	assert.Equal(t, "a", history[0].ID)
	assert.Equal(t, "b", history[1].ID)
	assert.Equal(t, 97.00, history[0].RecommendedPrice)
	assert.Equal(t, "Petrol", history[0].FuelType)
	assert.True(t, history[1].CreatedAt.Equal(now))
}

func TestSQLiteStorage_FallbackFlagRoundTrip(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	e := makeEntry("fb", now, 102.00)
	e.FilterFallback = true
	require.NoError(t, db.SaveRecommendation(ctx, e))

	history, err := db.GetHistory(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].FilterFallback)
}

func TestSQLiteStorage_DuplicateIDRejected(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveRecommendation(ctx, makeEntry("dup", time.Now(), 96)))
	assert.Error(t, db.SaveRecommendation(ctx, makeEntry("dup", time.Now(), 97)))
}

func TestSQLiteStorage_GetHistory_EmptyRange(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveRecommendation(ctx, makeEntry("old", time.Now().Add(-48*time.Hour), 96)))

	history, err := db.GetHistory(ctx, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, history)
}
