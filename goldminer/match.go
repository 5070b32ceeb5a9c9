package goldminer

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
)

// GameTimerSystem counts every match timer down to zero.
type GameTimerSystem struct {
	Match  ecs.Singleton[MatchState]
	Timers ecs.Query[struct {
		*GameTimer
	}]
}

func (s *GameTimerSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Match.Get().Over {
		return
	}
	dt := float32(frame.DeltaTime)
	for t := range s.Timers.Iter() {
		t.TimeLeft = max(0, t.TimeLeft-dt)
	}
}

// GameOverSystem ends the match once every timer has run out and picks the
// winner by score. Ties go to the lowest player id.
type GameOverSystem struct {
	Match  ecs.Singleton[MatchState]
	Timers ecs.Query[struct {
		ecs.EntityId
		*GameTimer
	}]
	Scoreboards ecs.Query[scoreView]

	logger *zap.Logger
}

func NewGameOverSystem(logger *zap.Logger) *GameOverSystem {
	return &GameOverSystem{logger: logger}
}

func (s *GameOverSystem) Execute(frame *ecs.UpdateFrame) {
	match := s.Match.Get()
	if match.Over {
		return
	}

	timers := 0
	for t := range s.Timers.Iter() {
		if t.TimeLeft > 0 {
			return
		}
		timers++
	}
	if timers == 0 {
		return
	}

	for id := range s.Timers.Ids() {
		ecs.Add(frame.Storage, id, GameOverTag{})
	}

	match.Over = true
	match.Winner = 0
	best := 0
	fields := make([]zap.Field, 0, 4)
	for b := range s.Scoreboards.Iter() {
		if match.Winner == 0 || b.Points > best || b.Points == best && b.PlayerID < match.Winner {
			match.Winner = b.PlayerID
			best = b.Points
		}
		fields = append(fields, zap.Int("player_"+strconv.Itoa(b.PlayerID), b.Points))
	}
	fields = append(fields, zap.Int("winner", match.Winner), zap.Int("collected", match.Collected))
	s.logger.Info("match over", fields...)
}

// LayoutSystem loads the next layout once the field has been cleared. The
// old moles leave and the new placements arrive when the frame's commands
// are flushed.
type LayoutSystem struct {
	Config       ecs.Singleton[Config]
	Match        ecs.Singleton[MatchState]
	Collectables ecs.Query[struct {
		*Collectable
	}]
	Moles ecs.Query[struct {
		ecs.EntityId
		*Mole
	}]

	factory *Factory
	logger  *zap.Logger
	pending bool
}

func NewLayoutSystem(factory *Factory, logger *zap.Logger) *LayoutSystem {
	return &LayoutSystem{factory: factory, logger: logger}
}

func (s *LayoutSystem) Execute(frame *ecs.UpdateFrame) {
	match := s.Match.Get()
	if match.Over || s.pending || s.Collectables.Count() > 0 {
		return
	}

	next := (match.Layout + 1) % len(s.Config.Get().Layouts)
	for mole := range s.Moles.Ids() {
		frame.Commands.AddComponent(mole, DestroyTag{})
	}

	s.pending = true
	frame.Commands.Defer(func() {
		s.pending = false
		if _, err := s.factory.LoadLayout(next); err != nil {
			s.logger.Error("load layout", zap.Int("layout", next), zap.Error(err))
			return
		}
		match.Layout = next
	})
}
