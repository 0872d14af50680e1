// Package ingestion loads candle history from CSV files and live
// WebSocket kline feeds into domain series and candle stores.
package ingestion

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage"
)

// csvHeader is the expected column order.
var csvHeader = []string{"timestamp_ms", "open", "high", "low", "close", "volume"}

// LoadCandlesCSV reads a candle series for one instrument from a CSV
// file with header timestamp_ms,open,high,low,close,volume. The
// returned series is validated: strictly increasing timestamps,
// positive prices.
func LoadCandlesCSV(path, instrument string) (*domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candles csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < len(csvHeader) {
		return nil, fmt.Errorf("csv header has %d columns, want %d", len(header), len(csvHeader))
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("csv column %d is %q, want %q", i, header[i], want)
		}
	}

	series := &domain.Series{Instrument: instrument}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		c, err := parseCandleRecord(instrument, rec)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		series.Candles = append(series.Candles, c)
	}

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("csv series %s: %w", instrument, err)
	}
	return series, nil
}

func parseCandleRecord(instrument string, rec []string) (domain.Candle, error) {
	ts, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("bad timestamp_ms %q: %w", rec[0], err)
	}

	var prices [5]float64
	for i, name := range []string{"open", "high", "low", "close", "volume"} {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("bad %s %q: %w", name, rec[i+1], err)
		}
		prices[i] = v
	}

	return domain.Candle{
		Instrument:  instrument,
		TimestampMs: ts,
		Open:        prices[0],
		High:        prices[1],
		Low:         prices[2],
		Close:       prices[3],
		Volume:      prices[4],
	}, nil
}

// IngestSeries writes a series into a candle store in fixed-size
// batches. Returns the number of candles written; a duplicate anywhere
// in a batch fails that batch and stops ingestion.
func IngestSeries(ctx context.Context, store storage.CandleStore, series *domain.Series, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	written := 0
	for start := 0; start < len(series.Candles); start += batchSize {
		end := start + batchSize
		if end > len(series.Candles) {
			end = len(series.Candles)
		}

		batch := make([]*domain.Candle, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, &series.Candles[i])
		}
		if err := store.InsertBulk(ctx, batch); err != nil {
			return written, fmt.Errorf("insert batch at %d: %w", start, err)
		}
		written += len(batch)
	}
	return written, nil
}
