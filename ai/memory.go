package ai

import "time"

// State is a mob's awareness of the observer.
type State uint8

const (
	Dormant State = iota // Unaware; not simulated
	Active               // Engaging the observer
)

func (s State) String() string {
	if s == Active {
		return "ACTIVE"
	}
	return "DORMANT"
}

// Objective is what an active mob is trying to achieve.
type Objective uint8

const (
	KillObserver Objective = iota
	ProtectAsset
	Hoard
	Survive
)

var objectiveNames = [...]string{"KILL_OBSERVER", "PROTECT_ASSET", "HOARD", "SURVIVE"}

func (o Objective) String() string {
	if int(o) < len(objectiveNames) {
		return objectiveNames[o]
	}
	return "UNKNOWN"
}

// Record is the transient behaviour memory of one mob.
type Record struct {
	LastAttack time.Duration // Sim clock time of the last attack
	Attacked   bool          // False until the first attack, which is never cooldown-gated
	State      State
	Objective  Objective
}

// Memory holds per-mob records keyed by entity id. It is owned by the host and
// passed into every Tick. Not safe for concurrent use.
type Memory struct {
	records map[string]*Record
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record)}
}

// Get returns the record for id, creating a dormant one if none exists.
func (m *Memory) Get(id string) *Record {
	r, ok := m.records[id]
	if !ok {
		r = &Record{State: Dormant, Objective: KillObserver}
		m.records[id] = r
	}
	return r
}

// Peek returns the record for id without creating one.
func (m *Memory) Peek(id string) (Record, bool) {
	r, ok := m.records[id]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Clear drops the record of a despawned mob.
func (m *Memory) Clear(id string) {
	delete(m.records, id)
}

// Reset drops every record, e.g. at the start of a new session.
func (m *Memory) Reset() {
	clear(m.records)
}

// Len returns the number of records held.
func (m *Memory) Len() int {
	return len(m.records)
}
