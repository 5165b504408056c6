// Package telemetry provides combat statistics, bookmarks, the event journal and
// experiment output.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pthm-cable/rift/combat"
)

// Record is one journal line: a combat event stamped with where and when it happened.
type Record struct {
	Session int             `json:"session"`
	Tick    int             `json:"tick"`
	SimTime float64         `json:"sim_time"` // Seconds
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// NewRecord stamps a combat event for the journal.
func NewRecord(session, tick int, now time.Duration, e combat.Event) (Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Record{}, fmt.Errorf("encoding %s event: %w", e.Kind(), err)
	}
	return Record{
		Session: session,
		Tick:    tick,
		SimTime: now.Seconds(),
		Kind:    e.Kind().String(),
		Payload: payload,
	}, nil
}
