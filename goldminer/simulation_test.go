package goldminer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/goldminer"
	"github.com/plus3/goldminer/physics"
	"github.com/plus3/goldminer/physics/physicstest"
)

func TestNewSimulationRejectsInvalidConfig(t *testing.T) {
	cfg := goldminer.DefaultConfig()
	cfg.Rope.MaxLength = -1

	sim, err := goldminer.NewSimulation(cfg, physicstest.New(physics.Vec2{}), zap.NewNop())
	require.ErrorIs(t, err, goldminer.ErrInvalidConfig)
	assert.Nil(t, sim)
}

func TestNewSimulation(t *testing.T) {
	sim, engine := newSim(t, goldminer.DefaultConfig(), nil)
	s := sim.Storage()

	assert.NotEqual(t, [16]byte{}, [16]byte(sim.MatchID))
	assert.Equal(t, 2, ecs.NewQuery[struct{ *goldminer.RoperTag }](s).Count())
	assert.Equal(t, 2, ecs.NewQuery[struct{ *goldminer.Score }](s).Count())
	assert.Len(t, collectables(s), 6)
	assert.Equal(t, 2+6, engine.BodyCount())
	assert.Equal(t, engine.BodyCount(), sim.Binding().Len())

	stats := sim.Scheduler().GetStats()
	names := make([]string, 0, stats.SystemCount)
	for _, sys := range stats.Systems {
		names = append(names, sys.Name)
	}
	assert.Equal(t, []string{
		"PhysicsStepSystem",
		"GameTimerSystem",
		"RopeSwingSystem",
		"RopeExtensionSystem",
		"CollisionSystem",
		"MoleSystem",
		"LifeTimeSystem",
		"PhysicsSyncSystem",
		"GameOverSystem",
		"DestructionSystem",
		"LayoutSystem",
	}, names)
}

func TestScoreCreditedOnceAtRelease(t *testing.T) {
	sim, engine := newSim(t, testConfig(), nil)
	s := sim.Storage()
	rope := ropeOf(t, s, 1)
	sim.Step()

	gold := placeAtTip(sim, rope, goldminer.Gold)
	goldBody := ecs.Get[goldminer.PhysicsBody](s, gold).Body

	sim.Step()
	require.True(t, ecs.Has[goldminer.GrabbedJoint](s, rope))
	assert.Zero(t, sim.Score(1), "nothing is credited while the item is on its way")

	for range 10 {
		if !s.Alive(gold) {
			break
		}
		sim.Step()
	}
	require.False(t, s.Alive(gold))

	assert.Equal(t, 70, sim.Score(1))
	assert.Equal(t, 1, sim.State().Collected)
	assert.False(t, engine.HasBody(goldBody))
	assert.False(t, ecs.Has[goldminer.GrabbedJoint](s, rope))
	assert.Equal(t, goldminer.AtRest, ecs.Get[goldminer.RopeControl](s, rope).State)

	popups := ecs.NewQuery[struct {
		*goldminer.ScoredTag
		*goldminer.Value
		*goldminer.PlayerInfo
	}](s)
	require.Equal(t, 1, popups.Count())
	for p := range popups.Iter() {
		assert.Equal(t, 70, p.Amount)
		assert.Equal(t, 1, p.PlayerID)
	}

	sim.Run(120)
	assert.Equal(t, 70, sim.Score(1))
	assert.Zero(t, popups.Count(), "popups expire")
}

func TestMysteryBagValue(t *testing.T) {
	play := func() int {
		sim, _ := newSim(t, testConfig(), nil)
		rope := ropeOf(t, sim.Storage(), 1)
		sim.Step()
		placeAtTip(sim, rope, goldminer.MysteryBag)
		sim.Run(10)
		return sim.Score(1)
	}

	first := play()
	assert.GreaterOrEqual(t, first, 10)
	assert.LessOrEqual(t, first, 300)
	assert.Equal(t, first, play(), "same seed, same roll")
}

func TestSimulationIsDeterministic(t *testing.T) {
	script := map[uint64]int{5: 1, 40: 2, 130: 1, 200: 2, 260: 1, 400: 2}

	play := func() []uint64 {
		sim, _ := newSim(t, goldminer.DefaultConfig(), nil)
		var hashes []uint64
		for frame := range uint64(600) {
			if player, ok := script[frame]; ok {
				sim.SendRope(player)
			}
			sim.Step()
			if frame%50 == 0 {
				hashes = append(hashes, sim.Hash())
			}
		}
		return hashes
	}

	a, b := play(), play()
	assert.Equal(t, a, b)
	assert.NotEqual(t, a[0], a[len(a)-1])
}

func TestCloseReleasesBodies(t *testing.T) {
	engine := physicstest.New(physics.Vec2{Y: 9.8})
	sim, err := goldminer.NewSimulation(goldminer.DefaultConfig(), engine, zap.NewNop())
	require.NoError(t, err)
	require.NotZero(t, engine.BodyCount())

	sim.Close()
	assert.Zero(t, engine.BodyCount())
	assert.Zero(t, sim.Binding().Len())
}

func TestGrabWithChipmunk(t *testing.T) {
	sim, err := goldminer.NewSimulation(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	defer sim.Close()

	s := sim.Storage()
	rope := ropeOf(t, s, 1)
	sim.Step()
	gold := placeAtTip(sim, rope, goldminer.Gold)

	for range 30 {
		if !s.Alive(gold) {
			break
		}
		sim.Step()
	}

	require.False(t, s.Alive(gold), "gold was never reeled in")
	assert.Equal(t, 70, sim.Score(1))
	assert.False(t, ecs.Has[goldminer.GrabbedJoint](s, rope))
	assert.Equal(t, 2, sim.Binding().Len(), "rope and the out-of-reach nugget keep their bodies")
}

func TestItemPositionRoundTripWithChipmunk(t *testing.T) {
	sim, err := goldminer.NewSimulation(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	defer sim.Close()

	for _, kind := range []goldminer.ItemKind{goldminer.Gold, goldminer.MysteryBag} {
		item := sim.Factory().CreateItem(kind, 123.37, 457.91)
		pos := ecs.Get[goldminer.Position](sim.Storage(), item)
		require.InDelta(t, 123.37, pos.X, 1e-4)
		require.InDelta(t, 457.91, pos.Y, 1e-4)

		sim.Step()
		assert.InDelta(t, 123.37, pos.X, 1e-3, kind.String())
		assert.InDelta(t, 457.91, pos.Y, 1e-3, kind.String())
	}
}
