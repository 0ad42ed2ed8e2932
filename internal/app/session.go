package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"quizlink-service/internal/domain"
)

// SessionState is the lifecycle state of one participant's quiz-taking session.
type SessionState string

const (
	StateActive    SessionState = "active"
	StatePaused    SessionState = "paused"
	StateExpired   SessionState = "expired"
	StateSubmitted SessionState = "submitted"
)

// UnboundedTime marks a session without a countdown in snapshots.
const UnboundedTime = -1

// SubmitFunc is how a session hands its buffered answers to the submission
// coordinator. The session has no privileged bypass: it submits exactly as a
// participant-initiated request would.
type SubmitFunc func(ctx context.Context, token string, participant domain.Participant, answers []domain.AttemptAnswer) (domain.SubmitResult, error)

// SessionSnapshot is the client-facing view pushed to subscribers on every
// tick and transition.
type SessionSnapshot struct {
	State        SessionState `json:"state"`
	RemainingSec int          `json:"remainingSec"`
	Answered     int          `json:"answered"`
	PausedForSec int          `json:"pausedForSec"`
}

// Session is the per-participant timer state machine. It runs as a single
// cooperative loop: ticks, pauses, answer edits, and submissions all serialize
// on one mutex, so a manual submit racing the timeout resolves to exactly one
// finalization. Terminal states (Submitted, Expired) accept no further
// transitions or answer mutation.
//
// Pause policy: pausing suspends the countdown and therefore extends the
// wall-clock deadline by the paused duration. The accumulated pause time is
// reported in snapshots.
type Session struct {
	id          string
	quizToken   string
	participant domain.Participant

	mu          sync.Mutex
	state       SessionState
	remaining   int
	unbounded   bool
	pausedAt    time.Time
	pausedFor   time.Duration
	answers     map[string]domain.AttemptAnswer
	dirty       bool
	sinceSave   int
	saveEvery   int
	attached    int
	subscribers map[chan SessionSnapshot]struct{}

	stopOnce sync.Once
	stopped  chan struct{}

	clock    func() time.Time
	progress ProgressStore
	submit   SubmitFunc
}

// SessionConfig carries the knobs a session is built with.
type SessionConfig struct {
	ID           string
	QuizToken    string
	Participant  domain.Participant
	TimeLimitSec int // 0 means unbounded
	// SaveEveryTicks is the auto-save cadence in ticks; defaults to 15.
	SaveEveryTicks int
	// Restored seeds the answer buffer, e.g. from ProgressStore.Load after a
	// page refresh.
	Restored []domain.AttemptAnswer
}

func NewSession(cfg SessionConfig, progress ProgressStore, submit SubmitFunc) *Session {
	return NewSessionWithClock(cfg, progress, submit, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(cfg SessionConfig, progress ProgressStore, submit SubmitFunc, now func() time.Time) *Session {
	saveEvery := cfg.SaveEveryTicks
	if saveEvery <= 0 {
		saveEvery = 15
	}
	s := &Session{
		id:          cfg.ID,
		quizToken:   cfg.QuizToken,
		participant: cfg.Participant,
		state:       StateActive,
		remaining:   cfg.TimeLimitSec,
		unbounded:   cfg.TimeLimitSec <= 0,
		answers:     make(map[string]domain.AttemptAnswer, len(cfg.Restored)),
		saveEvery:   saveEvery,
		subscribers: make(map[chan SessionSnapshot]struct{}),
		stopped:     make(chan struct{}),
		clock:       now,
		progress:    progress,
		submit:      submit,
	}
	for _, answer := range cfg.Restored {
		s.answers[answer.QuestionID] = answer
	}
	return s
}

// ID returns the session identifier used as the progress-store key.
func (s *Session) ID() string { return s.id }

// Attach registers a connection with the session. The timer outlives any
// single connection; it is Stop that ends it, once nothing is attached.
func (s *Session) Attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached++
}

// Detach unregisters a connection and reports how many remain attached.
func (s *Session) Detach() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached--
	return s.attached
}

// Stop halts the countdown without finalizing. It models the participant
// abandoning the quiz entirely: nothing is recorded, and only a completed
// submission blocks the participant's next attempt.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

// Run drives the countdown at one tick per second until the session reaches a
// terminal state, is stopped, or ctx is canceled. The session owns its
// lifetime: callers run it detached from any one connection's context and use
// Stop when the last attached connection departs.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopped:
			return
		case <-ticker.C:
			if s.tick(ctx); s.terminal() {
				return
			}
		}
	}
}

// tick advances the countdown by one second. While paused the countdown (and
// the auto-save cadence) is frozen. Reaching zero triggers the auto-submit.
func (s *Session) tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return
	}
	if !s.unbounded {
		s.remaining--
		if s.remaining <= 0 {
			s.remaining = 0
			s.finalizeLocked(ctx, true)
			s.broadcastLocked()
			return
		}
	}

	s.sinceSave++
	if s.sinceSave >= s.saveEvery {
		s.sinceSave = 0
		s.flushLocked(ctx)
	}
	s.broadcastLocked()
}

// SetAnswer buffers one answer. Rejected once the session is terminal.
func (s *Session) SetAnswer(answer domain.AttemptAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminalLocked() {
		return domain.ErrSessionClosed
	}
	s.answers[answer.QuestionID] = answer
	s.dirty = true
	s.broadcastLocked()
	return nil
}

// Pause suspends the countdown. Only valid while Active.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.ErrSessionClosed
	}
	s.state = StatePaused
	s.pausedAt = s.clock()
	s.broadcastLocked()
	return nil
}

// Resume continues the countdown from the same remaining time.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return domain.ErrSessionClosed
	}
	s.pausedFor += s.clock().Sub(s.pausedAt)
	s.state = StateActive
	s.broadcastLocked()
	return nil
}

// Submit is the participant-initiated finalization. It flushes the answer
// buffer first so the last edits are never lost, then submits. A failure other
// than duplicate rejection leaves the session in its prior state so the
// participant can retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminalLocked() {
		return domain.ErrSessionClosed
	}
	s.flushLocked(ctx)
	err := s.finalizeLocked(ctx, false)
	s.broadcastLocked()
	return err
}

// finalizeLocked submits the buffered answers. Duplicate rejection means the
// other racer already recorded the attempt, so it is treated as success. Any
// other failure on the timeout path parks the session in Expired; on the
// manual path the error is returned and the state kept for a retry.
func (s *Session) finalizeLocked(ctx context.Context, timeout bool) error {
	_, err := s.submit(ctx, s.quizToken, s.participant, s.bufferedLocked())
	if err == nil || errors.Is(err, domain.ErrDuplicateAttempt) {
		s.state = StateSubmitted
		if clearErr := s.progress.Clear(ctx, s.id); clearErr != nil {
			log.Printf("session %s: clear progress: %v", s.id, clearErr)
		}
		return nil
	}
	if timeout {
		log.Printf("session %s: auto-submit failed: %v", s.id, err)
		s.state = StateExpired
		return err
	}
	return err
}

// flushLocked persists the answer buffer. Failures are logged and swallowed:
// auto-save must never surface to the participant or block the timer.
func (s *Session) flushLocked(ctx context.Context) {
	if !s.dirty {
		return
	}
	if err := s.progress.Save(ctx, s.id, s.bufferedLocked()); err != nil {
		log.Printf("session %s: auto-save failed: %v", s.id, err)
		return
	}
	s.dirty = false
}

func (s *Session) bufferedLocked() []domain.AttemptAnswer {
	answers := make([]domain.AttemptAnswer, 0, len(s.answers))
	for _, answer := range s.answers {
		answers = append(answers, answer)
	}
	return answers
}

// Snapshot returns the current client-facing view.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving snapshots on every tick and
// transition. The caller must invoke the returned cancel function.
func (s *Session) Subscribe() (<-chan SessionSnapshot, func()) {
	ch := make(chan SessionSnapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminalLocked()
}

func (s *Session) terminalLocked() bool {
	return s.state == StateSubmitted || s.state == StateExpired
}

func (s *Session) snapshotLocked() SessionSnapshot {
	remaining := s.remaining
	if s.unbounded {
		remaining = UnboundedTime
	}
	pausedFor := s.pausedFor
	if s.state == StatePaused {
		pausedFor += s.clock().Sub(s.pausedAt)
	}
	return SessionSnapshot{
		State:        s.state,
		RemainingSec: remaining,
		Answered:     len(s.answers),
		PausedForSec: int(pausedFor / time.Second),
	}
}

func (s *Session) broadcastLocked() {
	snapshot := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so a slow client never blocks the timer.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
