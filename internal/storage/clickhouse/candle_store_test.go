package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage"
)

func testCandle(instrument string, ts int64, close float64) *domain.Candle {
	return &domain.Candle{
		Instrument:  instrument,
		TimestampMs: ts,
		Open:        close - 1,
		High:        close + 2,
		Low:         close - 2,
		Close:       close,
		Volume:      1234.5,
	}
}

func TestCandleStore_InsertBulkAndGetSeries(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Candle{
		testCandle("BTC-USD", 1000, 43_000),
		testCandle("BTC-USD", 2000, 43_100),
		testCandle("BTC-USD", 3000, 43_050),
	}))

	series, err := store.GetSeries(ctx, "BTC-USD")
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())
	assert.Equal(t, int64(1000), series.Candles[0].TimestampMs)
	assert.InDelta(t, 43_100, series.Candles[1].Close, 1e-9)
	assert.NoError(t, series.Validate())
}

func TestCandleStore_DuplicateDetection(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Candle{
		testCandle("BTC-USD", 1000, 43_000),
	}))

	// Same (instrument, timestamp) against existing rows.
	err := store.InsertBulk(ctx, []*domain.Candle{testCandle("BTC-USD", 1000, 44_000)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Intra-batch duplicate.
	err = store.InsertBulk(ctx, []*domain.Candle{
		testCandle("ETH-USD", 5000, 2400),
		testCandle("ETH-USD", 5000, 2401),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCandleStore_GetSeriesRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(conn)

	var batch []*domain.Candle
	for ts := int64(1000); ts <= 5000; ts += 1000 {
		batch = append(batch, testCandle("BTC-USD", ts, 43_000+float64(ts)))
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	series, err := store.GetSeriesRange(ctx, "BTC-USD", 2000, 4000)
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())

	_, err = store.GetSeriesRange(ctx, "BTC-USD", 9000, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCandleStore_Instruments(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCandleStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Candle{
		testCandle("ETH-USD", 1000, 2400),
		testCandle("BTC-USD", 1000, 43_000),
	}))

	instruments, err := store.Instruments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, instruments)
}
