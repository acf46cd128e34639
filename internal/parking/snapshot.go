package parking

import (
	"context"
	"encoding/json"
	"errors"
)

var errEmptySnapshot = errors.New("snapshot holds no spots")

// StateKey is the single key the registry snapshot is stored under.
const StateKey = "parking-spots"

// StateStore persists the registry snapshot. LoadState returns ErrNoState
// when nothing has been saved yet.
type StateStore interface {
	LoadState(ctx context.Context) ([]byte, error)
	SaveState(ctx context.Context, data []byte) error
}

func EncodeSnapshot(reg Registry) ([]byte, error) {
	return json.Marshal(reg)
}

// DecodeSnapshot parses a stored snapshot. Timestamps are RFC 3339 strings
// and come back as time.Time values.
func DecodeSnapshot(data []byte) (Registry, error) {
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return Registry{}, &StorageParseError{Err: err}
	}
	if reg.Len() == 0 {
		return Registry{}, &StorageParseError{Err: errEmptySnapshot}
	}
	return reg, nil
}
