package resource

import "sync"

// OpKind names one of the tracked operation kinds.
type OpKind string

const (
	OpFetchAll OpKind = "fetchAll"
	OpFetchOne OpKind = "fetchOne"
	OpCreate   OpKind = "create"
	OpUpdate   OpKind = "update"
	OpDelete   OpKind = "delete"
	OpSearch   OpKind = "search"
)

// AllOps lists every tracked kind in a stable order.
var AllOps = []OpKind{OpFetchAll, OpFetchOne, OpCreate, OpUpdate, OpDelete, OpSearch}

// Status is the lifecycle state of one operation kind.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// OpState is the status and last error of one kind.
type OpState struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Lifecycle tracks pending/succeeded/failed status per operation kind.
// Only the most recent transition is kept: status is last-write-wins and
// independent of the order responses arrive in.
type Lifecycle struct {
	mu     sync.RWMutex
	states map[OpKind]OpState
}

func NewLifecycle() *Lifecycle {
	states := make(map[OpKind]OpState, len(AllOps))
	for _, k := range AllOps {
		states[k] = OpState{Status: StatusIdle}
	}
	return &Lifecycle{states: states}
}

// Begin marks kind pending and clears its previous error.
func (l *Lifecycle) Begin(kind OpKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[kind] = OpState{Status: StatusPending}
}

// TryBegin is Begin that refuses when kind is already pending.
func (l *Lifecycle) TryBegin(kind OpKind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.states[kind].Status == StatusPending {
		return false
	}
	l.states[kind] = OpState{Status: StatusPending}
	return true
}

func (l *Lifecycle) Succeed(kind OpKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[kind] = OpState{Status: StatusSucceeded}
}

func (l *Lifecycle) Fail(kind OpKind, err string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[kind] = OpState{Status: StatusFailed, Error: err}
}

// Reset returns kind to idle, dropping any error.
func (l *Lifecycle) Reset(kind OpKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[kind] = OpState{Status: StatusIdle}
}

func (l *Lifecycle) State(kind OpKind) OpState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.states[kind]
	if !ok {
		return OpState{Status: StatusIdle}
	}
	return st
}

func (l *Lifecycle) IsPending(kind OpKind) bool {
	return l.State(kind).Status == StatusPending
}

func (l *Lifecycle) IsAnyPending() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, st := range l.states {
		if st.Status == StatusPending {
			return true
		}
	}
	return false
}

// Snapshot copies the state of every kind.
func (l *Lifecycle) Snapshot() map[OpKind]OpState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[OpKind]OpState, len(l.states))
	for k, v := range l.states {
		out[k] = v
	}
	return out
}
