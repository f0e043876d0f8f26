package postgres

import (
	"time"
)

// stubIDs hands out a fixed identifier so expectations can match args.
type stubIDs struct{ id string }

func (s stubIDs) NewID() (string, error) { return s.id, nil }

// stubClock freezes time for deterministic timestamps.
type stubClock struct{ now time.Time }

func (s stubClock) Now() time.Time { return s.now }

var testNow = time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)
