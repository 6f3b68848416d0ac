package frontend

import (
	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/domain/segment"
)

// Stepwise presents one unit per step signal through a Player.
type Stepwise struct {
	player  *player.Player
	pending []segment.Segment
}

// NewStepwise creates a stepwise front end driving the given player.
func NewStepwise(p *player.Player) *Stepwise {
	return &Stepwise{player: p}
}

// Build folds prose into presentable units.
// Fails with player.ErrAlreadyRunning while a demo is in flight.
func (s *Stepwise) Build(segments []segment.Segment) error {
	if s.player.IsRunning() {
		return player.ErrAlreadyRunning
	}
	s.pending = FoldProse(segments)
	return nil
}

// Publish starts the player with the built units.
func (s *Stepwise) Publish() error {
	units := s.pending
	s.pending = nil
	return s.player.Start(units)
}

// IsRunning reports whether the player still has units queued.
func (s *Stepwise) IsRunning() bool {
	return s.player.IsRunning()
}

// Abort stops the player.
func (s *Stepwise) Abort() error {
	s.pending = nil
	return s.player.Abort()
}

// Player returns the underlying player.
func (s *Stepwise) Player() *player.Player {
	return s.player
}
