package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/prefill/internal/domain"
	testingpkg "github.com/aristath/prefill/internal/testing"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(testingpkg.NewMemoryDB(t, "prefill"), zerolog.Nop())
}

var base = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func record(t *testing.T, repo *Repository, o domain.HistoricalOrder) int64 {
	t.Helper()
	id, err := repo.Record(context.Background(), o)
	require.NoError(t, err)
	return id
}

func TestRepository_RecentForClientSymbol(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		record(t, repo, domain.HistoricalOrder{
			ClientID:  "C1",
			Symbol:    "INFY",
			Direction: domain.DirectionBuy,
			Quantity:  1000 + i,
			AlgoType:  domain.AlgoVWAP,
			OrderType: domain.OrderTypeLimit,
			TIF:       domain.TIFDay,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	record(t, repo, domain.HistoricalOrder{ClientID: "C2", Symbol: "INFY", Direction: domain.DirectionSell, Quantity: 5, CreatedAt: base})
	record(t, repo, domain.HistoricalOrder{ClientID: "C1", Symbol: "TCS", Direction: domain.DirectionSell, Quantity: 5, CreatedAt: base})

	t.Run("newest first and limited", func(t *testing.T) {
		got, err := repo.RecentForClientSymbol(ctx, "C1", "infy", 12)
		require.NoError(t, err)
		require.Len(t, got, 12)
		assert.Equal(t, 1014, got[0].Quantity)
		assert.Equal(t, 1003, got[11].Quantity)
		for _, o := range got {
			assert.Equal(t, "C1", o.ClientID)
			assert.Equal(t, "INFY", o.Symbol)
		}
	})

	t.Run("limit raised to minimum", func(t *testing.T) {
		got, err := repo.RecentForClientSymbol(ctx, "C1", "INFY", 3)
		require.NoError(t, err)
		assert.Len(t, got, MinHistoryLimit)
	})

	t.Run("no history", func(t *testing.T) {
		got, err := repo.RecentForClientSymbol(ctx, "C9", "INFY", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRepository_RecordRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	want := domain.HistoricalOrder{
		ClientID:      "C1",
		Symbol:        "HDFCBANK",
		Direction:     domain.DirectionSell,
		Quantity:      2500,
		AlgoType:      domain.AlgoPOV,
		OrderType:     domain.OrderTypeMarket,
		TIF:           domain.TIFImmediateOrCancel,
		Aggression:    domain.AggressionHigh,
		GetDone:       true,
		Status:        domain.StatusPartial,
		VolatilityPct: 2.4,
		SpreadBps:     3.5,
		CreatedAt:     base,
	}
	want.ID = record(t, repo, want)

	got, err := repo.RecentForClientSymbol(context.Background(), "C1", "HDFCBANK", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestRepository_RecordDefaults(t *testing.T) {
	repo := newTestRepository(t)
	record(t, repo, domain.HistoricalOrder{ClientID: "C1", Symbol: "INFY", Direction: domain.DirectionBuy, Quantity: 10})

	got, err := repo.RecentForClientSymbol(context.Background(), "C1", "INFY", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.AlgoNone, got[0].AlgoType)
	assert.Equal(t, domain.StatusFilled, got[0].Status)
	assert.Equal(t, domain.AggressionUnknown, got[0].Aggression)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestRepository_FilledAlgoDistribution(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	add := func(n int, algo domain.AlgoType, qty int, status string) {
		for i := 0; i < n; i++ {
			record(t, repo, domain.HistoricalOrder{
				ClientID:  fmt.Sprintf("C%d", i),
				Symbol:    "INFY",
				Direction: domain.DirectionBuy,
				Quantity:  qty,
				AlgoType:  algo,
				Status:    status,
				CreatedAt: base,
			})
		}
	}
	add(6, domain.AlgoVWAP, 1000, domain.StatusFilled)
	add(2, domain.AlgoPOV, 2500, domain.StatusFilled)
	add(3, domain.AlgoIceberg, 1000, domain.StatusCancelled)
	add(4, domain.AlgoNone, 100, domain.StatusFilled)

	got, err := repo.FilledAlgoDistribution(ctx, "INFY", 400, 2500)
	require.NoError(t, err)
	assert.Equal(t, []domain.AlgoCount{
		{AlgoType: domain.AlgoVWAP, Count: 6},
		{AlgoType: domain.AlgoPOV, Count: 2},
	}, got)

	got, err = repo.FilledAlgoDistribution(ctx, "TCS", 1, 1_000_000)
	require.NoError(t, err)
	assert.Empty(t, got)
}
