package relay

// Usage tracks token consumption.
//
// Invariant across all providers:
//
//	InputTokens      = non-cached input tokens
//	CacheReadTokens  = tokens served from cache (cache hit)
//	CacheWriteTokens = tokens written to cache (cache creation)
//
// Total input tokens = InputTokens + CacheReadTokens + CacheWriteTokens.
// Providers normalize their API-specific fields to this invariant and clamp
// derived values to zero to guard against inconsistent upstream data.
type Usage struct {
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
}

// Add accumulates u2 into u. The loop uses it to total usage across the
// provider calls of a single run.
func (u *Usage) Add(u2 Usage) {
	u.InputTokens += u2.InputTokens
	u.OutputTokens += u2.OutputTokens
	u.CacheReadTokens += u2.CacheReadTokens
	u.CacheWriteTokens += u2.CacheWriteTokens
}
