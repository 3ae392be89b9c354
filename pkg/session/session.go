// Package session models the conversational state a front end holds while
// waiting for the next user input: naming a folder, choosing a rename
// target, typing a new filename, or picking a move destination.
//
// The flow is an explicit finite state machine. A front end begins a prompt
// with Begin, stashes request-scoped values on the session, and resolves it
// with Complete or Cancel. Sessions expire after a TTL so an abandoned
// prompt never wedges an owner.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// State identifies what input the owner's front end is waiting for.
type State int

const (
	// StateIdle means no prompt is outstanding.
	StateIdle State = iota

	// StateAwaitingFolderName waits for the name of a folder to create.
	StateAwaitingFolderName

	// StateAwaitingRenameChoice waits for the user to pick which entry
	// to rename.
	StateAwaitingRenameChoice

	// StateAwaitingFilename waits for the new name of a file.
	StateAwaitingFilename

	// StateAwaitingMoveDestination waits for the destination folder path.
	StateAwaitingMoveDestination
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingFolderName:
		return "AwaitingFolderName"
	case StateAwaitingRenameChoice:
		return "AwaitingRenameChoice"
	case StateAwaitingFilename:
		return "AwaitingFilename"
	case StateAwaitingMoveDestination:
		return "AwaitingMoveDestination"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ParseState resolves a state by the name String returns. Idle is not a
// valid prompt target, so it parses like any other state and callers decide
// whether to accept it.
func ParseState(name string) (State, error) {
	switch name {
	case "Idle":
		return StateIdle, nil
	case "AwaitingFolderName":
		return StateAwaitingFolderName, nil
	case "AwaitingRenameChoice":
		return StateAwaitingRenameChoice, nil
	case "AwaitingFilename":
		return StateAwaitingFilename, nil
	case "AwaitingMoveDestination":
		return StateAwaitingMoveDestination, nil
	default:
		return StateIdle, fmt.Errorf("unknown session state: %q", name)
	}
}

// TransitionError reports a rejected state transition.
type TransitionError struct {
	From State
	To   State
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid session transition: %s -> %s", e.From, e.To)
}

// Session is one owner's outstanding prompt. Values carries request-scoped
// strings such as the id of the file being renamed.
type Session struct {
	Owner     vfs.OwnerID
	State     State
	Values    map[string]string
	UpdatedAt time.Time
}

// Manager holds the per-owner sessions and expires abandoned ones.
type Manager struct {
	mu       sync.Mutex
	sessions map[vfs.OwnerID]*Session
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Config controls session expiry.
type Config struct {
	// TTL is how long a prompt may stay unanswered. Zero means the
	// default of 10 minutes.
	TTL time.Duration

	// SweepInterval is how often expired sessions are collected. Zero
	// means one minute.
	SweepInterval time.Duration
}

// NewManager creates a session manager. Call Start to begin the expiry
// sweep and Stop on shutdown.
func NewManager(cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Manager{
		sessions: make(map[vfs.OwnerID]*Session),
		ttl:      cfg.TTL,
		interval: cfg.SweepInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep. It returns immediately.
func (m *Manager) Start() {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends the background sweep and waits for it to exit.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}

// Begin opens a prompt for the owner. Only an idle (or expired) owner can
// enter a waiting state; a second prompt while one is outstanding is
// rejected with a TransitionError.
func (m *Manager) Begin(owner vfs.OwnerID, target State) error {
	if target == StateIdle {
		return &TransitionError{From: StateIdle, To: StateIdle}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.currentLocked(owner)
	if current != StateIdle {
		return &TransitionError{From: current, To: target}
	}

	m.sessions[owner] = &Session{
		Owner:     owner,
		State:     target,
		Values:    make(map[string]string),
		UpdatedAt: m.now(),
	}
	return nil
}

// Complete resolves the owner's prompt, returning its values. The owner
// must currently be in the expected state.
func (m *Manager) Complete(owner vfs.OwnerID, expected State) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.currentLocked(owner)
	if current != expected {
		return nil, &TransitionError{From: current, To: StateIdle}
	}

	values := m.sessions[owner].Values
	delete(m.sessions, owner)
	return values, nil
}

// Cancel drops the owner's prompt, if any. Cancelling an idle owner is a
// no-op.
func (m *Manager) Cancel(owner vfs.OwnerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, owner)
}

// Current reports the owner's state. Expired sessions read as idle.
func (m *Manager) Current(owner vfs.OwnerID) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked(owner)
}

// SetValue stashes a request-scoped value on the owner's open session and
// refreshes its TTL.
func (m *Manager) SetValue(owner vfs.OwnerID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentLocked(owner) == StateIdle {
		return &TransitionError{From: StateIdle, To: StateIdle}
	}

	sess := m.sessions[owner]
	sess.Values[key] = value
	sess.UpdatedAt = m.now()
	return nil
}

// currentLocked resolves the owner's state, treating expired sessions as
// idle. Callers must hold the mutex.
func (m *Manager) currentLocked(owner vfs.OwnerID) State {
	sess, ok := m.sessions[owner]
	if !ok {
		return StateIdle
	}
	if m.now().Sub(sess.UpdatedAt) > m.ttl {
		delete(m.sessions, owner)
		return StateIdle
	}
	return sess.State
}

// sweep removes every expired session.
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	for owner, sess := range m.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(m.sessions, owner)
		}
	}
}
