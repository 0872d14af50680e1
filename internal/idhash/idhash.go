package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(instrument|strategy_id|entry_time_ms|exit_time_ms)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(instrument, strategyID string, entryTimeMs, exitTimeMs int64) string {
	data := fmt.Sprintf("%s|%s|%d|%d", instrument, strategyID, entryTimeMs, exitTimeMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeRunID computes a deterministic validation run_id using SHA256.
// Formula: SHA256(instrument|strategy_id|mode|seed|created_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(instrument, strategyID, mode string, seed, createdAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d", instrument, strategyID, mode, seed, createdAtMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
