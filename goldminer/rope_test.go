package goldminer_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/goldminer"
)

func TestRopeSwingsAtRest(t *testing.T) {
	sim, _ := newSim(t, testConfig(), nil)
	rope := ropeOf(t, sim.Storage(), 1)

	rotation := ecs.Get[goldminer.Rotation](sim.Storage(), rope)
	control := ecs.Get[goldminer.RopeControl](sim.Storage(), rope)

	reversals := 0
	prevDir := control.SwingDir
	for range 400 {
		sim.Step()

		require.Equal(t, goldminer.AtRest, control.State)
		require.GreaterOrEqual(t, rotation.Angle, float32(-75))
		require.LessOrEqual(t, rotation.Angle, float32(75))

		if control.SwingDir != prevDir {
			reversals++
			if control.SwingDir < 0 {
				assert.Equal(t, float32(75), rotation.Angle)
			} else {
				assert.Equal(t, float32(-75), rotation.Angle)
			}
			prevDir = control.SwingDir
		}
	}
	assert.GreaterOrEqual(t, reversals, 3)
}

func TestRopeTipFollowsSwing(t *testing.T) {
	sim, _ := newSim(t, testConfig(), nil)
	rope := ropeOf(t, sim.Storage(), 1)

	for range 20 {
		sim.Step()
	}

	cfg := sim.Config()
	angle := float64(ecs.Get[goldminer.Rotation](sim.Storage(), rope).Angle) * math.Pi / 180
	ox := 570 + cfg.Player.WinchX*cfg.Player.Width
	oy := 10 + cfg.Player.WinchY*cfg.Player.Height

	x, y := sim.Binding().Center(ecs.Get[goldminer.PhysicsBody](sim.Storage(), rope).Body)
	assert.InDelta(t, ox+cfg.Rope.RestLength*math.Sin(angle), x, 1e-3)
	assert.InDelta(t, oy+cfg.Rope.RestLength*math.Cos(angle), y, 1e-3)
}

func TestRopeExtendAndRetract(t *testing.T) {
	sim, engine := newSim(t, testConfig(), nil)
	s := sim.Storage()
	rope := ropeOf(t, s, 1)
	control := ecs.Get[goldminer.RopeControl](s, rope)
	length := ecs.Get[goldminer.Length](s, rope)
	body := ecs.Get[goldminer.PhysicsBody](s, rope).Body

	require.True(t, sim.SendRope(1))
	sim.Step()
	require.Equal(t, goldminer.Extending, control.State)
	assert.Zero(t, engine.GravityScale(body))

	frames := 0
	for length.Value < 800 {
		require.Equal(t, goldminer.Extending, control.State)
		require.Less(t, frames, 200, "rope never reached full length")
		sim.Step()
		frames++
	}
	assert.Equal(t, float32(800), length.Value)
	assert.Equal(t, goldminer.Retracting, control.State)

	prev := length.Value
	for control.State == goldminer.Retracting {
		require.Less(t, frames, 400, "rope never came back")
		sim.Step()
		frames++
		assert.Less(t, length.Value, prev)
		assert.GreaterOrEqual(t, length.Value, float32(0))
		prev = length.Value
	}
	assert.Equal(t, goldminer.AtRest, control.State)
	assert.Zero(t, length.Value)
	assert.False(t, ecs.Has[goldminer.GrabbedJoint](s, rope))
}

func TestSendRopeIsConsumed(t *testing.T) {
	sim, _ := newSim(t, testConfig(), nil)
	s := sim.Storage()
	rope := ropeOf(t, s, 1)
	control := ecs.Get[goldminer.RopeControl](s, rope)

	var input *goldminer.PlayerInput
	for p := range ecs.NewQuery[struct{ *goldminer.PlayerInput }](s).Iter() {
		input = p.PlayerInput
	}
	require.NotNil(t, input)

	sim.SendRope(1)
	sim.Step()
	assert.False(t, input.SendRope)
	assert.Equal(t, goldminer.Extending, control.State)

	sim.SendRope(1)
	sim.Step()
	assert.False(t, input.SendRope, "input while extending is dropped")
	assert.Equal(t, goldminer.Extending, control.State)

	for frames := 0; control.State != goldminer.AtRest; frames++ {
		require.Less(t, frames, 400, "rope never came back")
		sim.Step()
	}
	sim.Step()
	assert.Equal(t, goldminer.AtRest, control.State, "a dropped press does not fire later")

	assert.False(t, sim.SendRope(9))
}

func TestRopeWithoutPlayerIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sim, _ := newSim(t, testConfig(), zap.New(core))
	s := sim.Storage()
	rope := ropeOf(t, s, 1)

	ecs.Get[goldminer.PlayerInfo](s, rope).PlayerID = 7
	angle := ecs.Get[goldminer.Rotation](s, rope).Angle

	sim.Step()

	assert.Equal(t, angle, ecs.Get[goldminer.Rotation](s, rope).Angle)
	assert.Equal(t, goldminer.AtRest, ecs.Get[goldminer.RopeControl](s, rope).State)

	missing := logs.FilterMessage("rope has no player").All()
	require.NotEmpty(t, missing)
	assert.Equal(t, int64(7), missing[0].ContextMap()["player"])
}

func TestReleaseKeepsMysteryBagValue(t *testing.T) {
	w := newWorld(t)
	w.factory.CreatePlayer(1, 570, 10)
	rope, err := w.factory.CreateRope(1)
	require.NoError(t, err)
	board := w.factory.CreateScoreboard(1)
	bag := w.factory.CreateMysteryBag(400, 500)
	before := *ecs.Get[goldminer.Value](w.storage, bag)

	collision := goldminer.NewCollisionSystem(w.binding, zap.NewNop())
	collision.Holders.Init(w.storage)
	require.True(t, collision.TryAttach(w.storage, rope, bag))
	ecs.Get[goldminer.Length](w.storage, rope).Value = 1

	rng := rand.New(rand.NewPCG(1, 1))
	w.run(goldminer.NewRopeExtensionSystem(w.binding, w.factory, rng, zap.NewNop()))

	require.False(t, ecs.Has[goldminer.GrabbedJoint](w.storage, rope))
	require.True(t, ecs.Has[goldminer.DestroyTag](w.storage, bag))
	assert.Equal(t, before, *ecs.Get[goldminer.Value](w.storage, bag), "item value is immutable")

	points := ecs.Get[goldminer.Score](w.storage, board).Points
	assert.GreaterOrEqual(t, points, 10)
	assert.LessOrEqual(t, points, 300)

	popups := ecs.NewQuery[struct {
		*goldminer.ScoredTag
		*goldminer.Value
	}](w.storage)
	require.Equal(t, 1, popups.Count())
	for p := range popups.Iter() {
		assert.Equal(t, points, p.Amount)
	}
}
