package goldminer_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/goldminer"
)

func TestDestroyRemovesEverything(t *testing.T) {
	w := newWorld(t)
	gold := w.factory.CreateGold(100, 500)
	body := w.body(gold)

	ecs.Add(w.storage, gold, goldminer.DestroyTag{})
	w.run(goldminer.NewDestructionSystem(w.binding, zap.NewNop()))

	assert.True(t, w.storage.Mask(gold).Empty())
	assert.False(t, w.storage.Alive(gold))
	registry := w.storage.Registry()
	for bit := range registry.Len() {
		typ := registry.TypeOf(uint8(bit))
		assert.False(t, w.storage.HasComponent(gold, typ), "%s survived destruction", typ)
		assert.Nil(t, w.storage.GetComponent(gold, typ))
	}

	assert.False(t, w.engine.HasBody(body))
	_, ok := w.binding.Resolve(body)
	assert.False(t, ok, "freed body must not resolve")
	assert.Empty(t, collectables(w.storage))
}

func TestDestructionIsIdempotent(t *testing.T) {
	w := newWorld(t)
	w.factory.CreatePlayer(1, 570, 10)
	_, err := w.factory.CreateRope(1)
	require.NoError(t, err)
	gold := w.factory.CreateGold(100, 500)
	w.factory.CreateRock(300, 500)

	destruction := goldminer.NewDestructionSystem(w.binding, zap.NewNop())
	ecs.Add(w.storage, gold, goldminer.DestroyTag{})
	w.run(destruction)

	hash := goldminer.StateHash(w.storage)
	bodies := w.engine.BodyCount()

	assert.NotPanics(t, func() { w.run(destruction) })
	assert.Equal(t, hash, goldminer.StateHash(w.storage))
	assert.Equal(t, bodies, w.engine.BodyCount())
}

func TestDestroyHeldItemReleasesRope(t *testing.T) {
	w := newWorld(t)
	w.factory.CreatePlayer(1, 570, 10)
	rope, err := w.factory.CreateRope(1)
	require.NoError(t, err)
	gold := w.factory.CreateGold(100, 500)

	collision := goldminer.NewCollisionSystem(w.binding, zap.NewNop())
	collision.Holders.Init(w.storage)
	require.True(t, collision.TryAttach(w.storage, rope, gold))
	joint := ecs.Get[goldminer.GrabbedJoint](w.storage, rope).Joint

	ecs.Add(w.storage, gold, goldminer.DestroyTag{})
	w.run(goldminer.NewDestructionSystem(w.binding, zap.NewNop()))

	assert.False(t, ecs.Has[goldminer.GrabbedJoint](w.storage, rope))
	assert.False(t, w.engine.HasJoint(joint))
	assert.Zero(t, w.engine.JointCount())
	assert.True(t, w.storage.Alive(rope))
}

func TestDestroyRopeKeepsItem(t *testing.T) {
	w := newWorld(t)
	w.factory.CreatePlayer(1, 570, 10)
	rope, err := w.factory.CreateRope(1)
	require.NoError(t, err)
	gold := w.factory.CreateGold(100, 500)

	collision := goldminer.NewCollisionSystem(w.binding, zap.NewNop())
	collision.Holders.Init(w.storage)
	require.True(t, collision.TryAttach(w.storage, rope, gold))

	ecs.Add(w.storage, rope, goldminer.DestroyTag{})
	w.run(goldminer.NewDestructionSystem(w.binding, zap.NewNop()))

	assert.False(t, w.storage.Alive(rope))
	assert.Zero(t, w.engine.JointCount())
	assert.True(t, w.storage.Alive(gold))
	assert.True(t, w.engine.HasBody(w.body(gold)))
}

func TestLifeTime(t *testing.T) {
	w := newWorld(t)
	popup := w.factory.CreateScorePopup(1, 10, 10, 70)
	life := &goldminer.LifeTimeSystem{}

	for range 89 {
		w.run(life)
	}
	assert.False(t, ecs.Has[goldminer.DestroyTag](w.storage, popup))
	assert.InDelta(t, 1.5-89*dt, ecs.Get[goldminer.LifeTime](w.storage, popup).Remaining, 1e-4)

	w.run(life, goldminer.NewDestructionSystem(w.binding, zap.NewNop()))
	w.run(life, goldminer.NewDestructionSystem(w.binding, zap.NewNop()))
	assert.False(t, w.storage.Alive(popup))
}

func TestMolePatrol(t *testing.T) {
	w := newWorld(t)
	mole := w.factory.CreateMole(1170, 640)
	moles := &goldminer.MoleSystem{}

	w.run(moles)
	pos := ecs.Get[goldminer.Position](w.storage, mole)
	state := ecs.Get[goldminer.Mole](w.storage, mole)
	vel := ecs.Get[goldminer.Velocity](w.storage, mole)
	assert.InDelta(t, 1170+100*dt, pos.X, 1e-3)
	assert.True(t, state.MovingRight)

	for range 10 {
		w.run(moles)
	}
	assert.False(t, state.MovingRight)
	assert.Equal(t, float32(-100), vel.X)
	assert.LessOrEqual(t, pos.X, float32(1180))
	assert.Equal(t, float32(640), pos.Y)
}

func TestComponentTypesAreRegistered(t *testing.T) {
	registry := goldminer.NewRegistry()
	for _, typ := range []reflect.Type{
		reflect.TypeFor[goldminer.Position](),
		reflect.TypeFor[goldminer.PhysicsBody](),
		reflect.TypeFor[goldminer.GrabbedJoint](),
		reflect.TypeFor[goldminer.DestroyTag](),
		reflect.TypeFor[goldminer.ScoredTag](),
	} {
		_, ok := registry.Lookup(typ)
		assert.True(t, ok, typ.String())
	}
	assert.Equal(t, 24, registry.Len())
}
