package player

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/demobox/internal/app/hook"
	"github.com/osa030/demobox/internal/domain/segment"
)

// Errors
var (
	ErrAlreadyRunning = errors.New("already in a running demo")
	ErrNotRunning     = errors.New("not in a demo, nothing to stop")
)

// StepSignal is the host's event registration for "user advanced".
type StepSignal interface {
	Install(fn hook.Listener) hook.Handle
	Remove(h hook.Handle)
}

// Player replays a queue of segments one step at a time.
// Each step signal from the host presents the next segment.
type Player struct {
	mu sync.Mutex

	queue     []segment.Segment
	state     State
	presented int

	presenter Presenter
	signal    StepSignal
	handle    hook.Handle // Empty when no listener is installed
	installs  uint64      // Bumped on every install; listeners carry their own
}

// New creates an idle player.
func New(presenter Presenter, signal StepSignal) *Player {
	return &Player{
		queue:     make([]segment.Segment, 0),
		state:     StateIdle,
		presenter: presenter,
		signal:    signal,
	}
}

// Start loads a new demo and presents its first segment.
// Fails with ErrAlreadyRunning, leaving the current demo untouched, if a demo
// is in flight. An empty demo completes immediately.
func (p *Player) Start(segments []segment.Segment) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateRunning {
		return ErrAlreadyRunning
	}

	p.presented = 0
	if len(segments) == 0 {
		zlog.Debug().Msg("player: empty demo, nothing to present")
		p.presenter.NotifyStarted()
		p.presenter.NotifyStopped(ReasonFinished)
		return nil
	}

	p.queue = append(make([]segment.Segment, 0, len(segments)), segments...)
	p.state = StateRunning
	p.installLocked()

	zlog.Debug().Msgf("player: demo started: steps=%d", len(segments))
	p.presenter.NotifyStarted()
	p.advanceLocked()

	return nil
}

// Advance presents the next segment. It returns false if nothing was left to
// present, in which case any stale listener is uninstalled.
func (p *Player) Advance() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.advanceLocked()
}

// Abort stops the running demo. Returns ErrNotRunning if there is none.
func (p *Player) Abort() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateRunning {
		return ErrNotRunning
	}

	dropped := len(p.queue)
	p.queue = make([]segment.Segment, 0)
	p.uninstallLocked()
	p.state = StateIdle

	zlog.Debug().Msgf("player: demo aborted: presented=%d dropped=%d", p.presented, dropped)
	p.presenter.NotifyStopped(ReasonAborted)

	return nil
}

// IsRunning reports whether a demo is in flight.
func (p *Player) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == StateRunning
}

// GetState returns the current state.
func (p *Player) GetState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Remaining returns the number of segments not yet presented.
func (p *Player) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Presented returns the number of segments presented in the current (or
// last) demo.
func (p *Player) Presented() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presented
}

// advanceLocked must be called with lock held.
func (p *Player) advanceLocked() bool {
	if len(p.queue) == 0 {
		// Listener outlived the demo.
		p.uninstallLocked()
		p.state = StateIdle
		return false
	}

	next := p.queue[0]
	p.queue = p.queue[1:]
	p.presented++

	zlog.Debug().Msgf("player: presenting step: index=%d kind=%s remaining=%d",
		p.presented, next.Kind, len(p.queue))
	p.presenter.RenderStep(next)

	if len(p.queue) == 0 {
		p.uninstallLocked()
		p.state = StateIdle
		zlog.Debug().Msgf("player: demo finished: steps=%d", p.presented)
		p.presenter.NotifyStopped(ReasonFinished)
	}

	return true
}

// advanceFrom advances only if the listener installed as install is still
// the current one. A registry may run a listener after it was removed.
func (p *Player) advanceFrom(install uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == "" || p.installs != install {
		zlog.Debug().Msgf("player: ignoring stale step signal: install=%d current=%d", install, p.installs)
		return false
	}
	return p.advanceLocked()
}

// installLocked must be called with lock held.
func (p *Player) installLocked() {
	if p.handle != "" {
		return
	}
	p.installs++
	install := p.installs
	p.handle = p.signal.Install(func() {
		p.advanceFrom(install)
	})
}

// uninstallLocked must be called with lock held.
func (p *Player) uninstallLocked() {
	if p.handle == "" {
		return
	}
	p.signal.Remove(p.handle)
	p.handle = ""
}
