package goldminer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/goldminer"
	"github.com/plus3/goldminer/physics"
	"github.com/plus3/goldminer/physics/physicstest"
)

const dt = 1.0 / 60.0

// testConfig has one player and a single gold nugget out of the rope's reach.
func testConfig() goldminer.Config {
	cfg := goldminer.DefaultConfig()
	cfg.Players = []goldminer.PlayerSpawn{{ID: 1, X: 570, Y: 10}}
	cfg.Layouts = [][]goldminer.Placement{
		{{Kind: "gold", X: 50, Y: 900}},
	}
	return cfg
}

func newSim(t *testing.T, cfg goldminer.Config, logger *zap.Logger) (*goldminer.Simulation, *physicstest.Engine) {
	t.Helper()
	engine := physicstest.New(physics.Vec2{Y: cfg.Physics.Gravity})
	if logger == nil {
		logger = zap.NewNop()
	}
	sim, err := goldminer.NewSimulation(cfg, engine, logger)
	require.NoError(t, err)
	t.Cleanup(sim.Close)
	return sim, engine
}

// world is a bare storage with a binding and factory, for driving single
// systems through their own scheduler.
type world struct {
	storage *ecs.Storage
	engine  *physicstest.Engine
	binding *goldminer.Binding
	factory *goldminer.Factory
	config  *goldminer.Config
}

func newWorld(t *testing.T) *world {
	t.Helper()
	cfg := testConfig()
	storage := ecs.NewStorage(goldminer.NewRegistry())
	config := ecs.NewSingleton[goldminer.Config](storage, cfg).Get()
	ecs.NewSingleton[goldminer.MatchState](storage)

	engine := physicstest.New(physics.Vec2{Y: cfg.Physics.Gravity})
	binding := goldminer.NewBinding(engine, cfg.Physics.PixelsPerMeter)
	t.Cleanup(binding.Close)

	return &world{
		storage: storage,
		engine:  engine,
		binding: binding,
		factory: goldminer.NewFactory(storage, binding, config, zap.NewNop()),
		config:  config,
	}
}

// run steps the given systems once through a fresh scheduler.
func (w *world) run(systems ...ecs.System) {
	scheduler := ecs.NewScheduler(w.storage)
	for _, s := range systems {
		scheduler.Register(s)
	}
	scheduler.Once(dt)
}

func (w *world) body(id ecs.EntityId) physics.BodyHandle {
	return ecs.Get[goldminer.PhysicsBody](w.storage, id).Body
}

func ropeOf(t *testing.T, storage *ecs.Storage, playerID int) ecs.EntityId {
	t.Helper()
	ropes := ecs.NewQuery[struct {
		ecs.EntityId
		*goldminer.RoperTag
		*goldminer.PlayerInfo
	}](storage)
	for r := range ropes.Iter() {
		if r.PlayerID == playerID {
			return r.EntityId
		}
	}
	t.Fatalf("no rope for player %d", playerID)
	return ecs.NilEntity
}

func collectables(storage *ecs.Storage) []ecs.EntityId {
	var ids []ecs.EntityId
	for id := range ecs.NewQuery[struct{ *goldminer.Collectable }](storage).Ids() {
		ids = append(ids, id)
	}
	return ids
}

// placeAtTip creates an item of kind centered just below the rope's current
// body position, overlapping it.
func placeAtTip(sim *goldminer.Simulation, rope ecs.EntityId, kind goldminer.ItemKind) ecs.EntityId {
	body := ecs.Get[goldminer.PhysicsBody](sim.Storage(), rope).Body
	cx, cy := sim.Binding().Center(body)
	item := sim.Config().Items.Item(kind)
	return sim.Factory().CreateItem(kind, cx-item.Width/2, cy+5-item.Height/2)
}
