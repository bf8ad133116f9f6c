package cli

import "time"

// parseStoreTimestamp parses a timestamp column value as returned by
// modernc.org/sqlite, which serializes time.Time values as RFC3339Nano.
func parseStoreTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
