package goldminer

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/physics"
)

// Simulation owns one match: the storage, the physics binding and the
// scheduler running the systems in their fixed order. A frontend drives it
// with SendRope and Step and reads Storage between frames.
type Simulation struct {
	MatchID uuid.UUID

	config    *Config
	storage   *ecs.Storage
	binding   *Binding
	factory   *Factory
	scheduler *ecs.Scheduler
	match     *ecs.Singleton[MatchState]
	players   ecs.Query[playerView]
	scores    ecs.Query[scoreView]
	logger    *zap.Logger
}

// NewSimulation sets up a match from cfg. When engine is nil a Chipmunk
// space with the configured gravity is used. The simulation owns the
// engine and closes it in Close.
func NewSimulation(cfg Config, engine physics.Engine, logger *zap.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = physics.NewSpace(physics.Vec2{Y: cfg.Physics.Gravity})
	}

	id := uuid.New()
	logger = logger.With(zap.String("match", id.String()))

	storage := ecs.NewStorage(NewRegistry())
	config := ecs.NewSingleton[Config](storage, cfg).Get()
	match := ecs.NewSingleton[MatchState](storage, MatchState{Layout: cfg.Match.Layout})

	binding := NewBinding(engine, cfg.Physics.PixelsPerMeter)
	factory := NewFactory(storage, binding, config, logger.Named("factory"))

	sim := &Simulation{
		MatchID: id,
		config:  config,
		storage: storage,
		binding: binding,
		factory: factory,
		match:   match,
		logger:  logger,
	}
	sim.players.Init(storage)
	sim.scores.Init(storage)

	for slot, spawn := range cfg.Players {
		if _, err := factory.SetupPlayer(spawn, slot); err != nil {
			sim.Close()
			return nil, fmt.Errorf("setup player %d: %w", spawn.ID, err)
		}
	}
	if _, err := factory.LoadLayout(cfg.Match.Layout); err != nil {
		sim.Close()
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Match.Seed), uint64(cfg.Match.Seed)>>1|1))

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(NewPhysicsStepSystem(binding))
	scheduler.Register(&GameTimerSystem{})
	scheduler.Register(NewRopeSwingSystem(binding, logger.Named("rope")))
	scheduler.Register(NewRopeExtensionSystem(binding, factory, rng, logger.Named("rope")))
	scheduler.Register(NewCollisionSystem(binding, logger.Named("collision")))
	scheduler.Register(&MoleSystem{})
	scheduler.Register(&LifeTimeSystem{})
	scheduler.Register(NewPhysicsSyncSystem(binding))
	scheduler.Register(NewGameOverSystem(logger.Named("match")))
	scheduler.Register(NewDestructionSystem(binding, logger.Named("destruction")))
	scheduler.Register(NewLayoutSystem(factory, logger.Named("layout")))
	sim.scheduler = scheduler

	logger.Info("match started",
		zap.Int("players", len(cfg.Players)),
		zap.Int("layout", cfg.Match.Layout),
		zap.Int64("seed", cfg.Match.Seed),
	)
	return sim, nil
}

// Step runs one fixed time step.
func (s *Simulation) Step() {
	s.scheduler.Once(s.config.Physics.TimeStep)
}

// Run steps n frames.
func (s *Simulation) Run(n int) {
	for range n {
		s.Step()
	}
}

// SendRope raises the send-rope flag of a player. The flag is consumed by
// the next frame. It reports false when the player does not exist or the
// match is over.
func (s *Simulation) SendRope(playerID int) bool {
	if s.match.Get().Over {
		return false
	}
	player, ok := findPlayer(&s.players, playerID)
	if !ok {
		s.logger.Warn("send rope for unknown player", zap.Int("player", playerID))
		return false
	}
	player.SendRope = true
	return true
}

// Score returns the points of a player.
func (s *Simulation) Score(playerID int) int {
	_, b, ok := s.scores.First(func(b scoreView) bool {
		return b.PlayerID == playerID
	})
	if !ok {
		return 0
	}
	return b.Points
}

// State returns a copy of the match state.
func (s *Simulation) State() MatchState {
	return *s.match.Get()
}

func (s *Simulation) Over() bool {
	return s.match.Get().Over
}

func (s *Simulation) Frame() uint64 {
	return s.scheduler.Frames()
}

func (s *Simulation) Config() *Config {
	return s.config
}

func (s *Simulation) Storage() *ecs.Storage {
	return s.storage
}

func (s *Simulation) Binding() *Binding {
	return s.binding
}

func (s *Simulation) Factory() *Factory {
	return s.factory
}

func (s *Simulation) Scheduler() *ecs.Scheduler {
	return s.scheduler
}

// Hash is StateHash of the simulation's storage.
func (s *Simulation) Hash() uint64 {
	return StateHash(s.storage)
}

// Close releases every physics body and the engine.
func (s *Simulation) Close() {
	bodies := s.binding.Len()
	s.binding.Close()
	s.binding.Engine().Close()
	s.logger.Info("match closed", zap.Int("bodies_released", bodies), zap.Uint64("frames", s.frameCount()))
}

func (s *Simulation) frameCount() uint64 {
	if s.scheduler == nil {
		return 0
	}
	return s.scheduler.Frames()
}
