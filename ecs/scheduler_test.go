package ecs_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/plus3/goldminer/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameRecorder struct {
	indices []uint64
	deltas  []float64
}

func (s *frameRecorder) Execute(frame *ecs.UpdateFrame) {
	s.indices = append(s.indices, frame.Index)
	s.deltas = append(s.deltas, frame.DeltaTime)
}

type orderRecorder struct {
	label string
	log   *[]string
}

func (s *orderRecorder) Execute(frame *ecs.UpdateFrame) {
	*s.log = append(*s.log, s.label)
}

type driftSystem struct {
	Movers ecs.Query[struct {
		*Position
		*Velocity
	}]
}

func (s *driftSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Movers.Iter() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type roundCounter struct {
	Round int
}

type roundSystem struct {
	Counter ecs.Singleton[roundCounter]
}

func (s *roundSystem) Execute(frame *ecs.UpdateFrame) {
	s.Counter.Get().Round++
}

// emitter spawns one entity per frame and records how many Position
// entities it could see when it ran.
type emitter struct {
	Visible ecs.Query[struct{ *Position }]
	seen    []int
}

func (s *emitter) Execute(frame *ecs.UpdateFrame) {
	s.seen = append(s.seen, s.Visible.Count())
	frame.Commands.Spawn(Position{X: float32(frame.Index)})
}

type tickSystem struct {
	ticks atomic.Int64
}

func (s *tickSystem) Execute(frame *ecs.UpdateFrame) {
	s.ticks.Add(1)
}

func TestSchedulerFrames(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	recorder := &frameRecorder{}
	scheduler.Register(recorder)

	assert.Equal(t, uint64(0), scheduler.Frames())

	scheduler.Once(0.5)
	scheduler.Once(0.25)
	scheduler.Once(0.125)

	assert.Equal(t, uint64(3), scheduler.Frames())
	assert.Equal(t, []uint64{0, 1, 2}, recorder.indices, "Index counts frames completed before this one")
	assert.Equal(t, []float64{0.5, 0.25, 0.125}, recorder.deltas)
}

func TestSchedulerRunsInRegistrationOrder(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	var log []string
	for _, label := range []string{"input", "physics", "score"} {
		scheduler.Register(&orderRecorder{label: label, log: &log})
	}

	scheduler.Once(1.0 / 60)
	scheduler.Once(1.0 / 60)

	assert.Equal(t, []string{"input", "physics", "score", "input", "physics", "score"}, log)
}

func TestSchedulerInitializesFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.AddSingleton(roundCounter{Round: 10})
	moving := storage.Spawn(Position{}, Velocity{DX: 2, DY: -4})
	still := storage.Spawn(Position{X: 7})

	scheduler := ecs.NewScheduler(storage)
	drift := &driftSystem{}
	rounds := &roundSystem{}
	scheduler.Register(drift)
	scheduler.Register(rounds)

	assert.Equal(t, 1, drift.Movers.Count())
	require.True(t, rounds.Counter.Exists())

	scheduler.Once(0.5)

	assert.Equal(t, Position{X: 1, Y: -2}, *ecs.Get[Position](storage, moving))
	assert.Equal(t, Position{X: 7}, *ecs.Get[Position](storage, still))
	assert.Equal(t, 11, rounds.Counter.Get().Round)
}

func TestSchedulerFlushesCommandsEveryFrame(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	first := &emitter{}
	second := &emitter{}
	scheduler.Register(first)
	scheduler.Register(second)

	for range 3 {
		scheduler.Once(1)
	}

	// The second emitter runs after the first within a frame but still cannot
	// see its spawn until the buffer is flushed at the end of the frame.
	assert.Equal(t, []int{0, 2, 4}, first.seen)
	assert.Equal(t, []int{0, 2, 4}, second.seen)
	assert.Equal(t, 6, first.Visible.Count())

	t.Run("pending is empty between frames", func(t *testing.T) {
		counter := &pendingCounter{}
		scheduler.Register(counter)

		scheduler.Once(1)

		assert.Equal(t, 2, counter.seen)
		assert.Equal(t, 8, first.Visible.Count())
	})

	t.Run("deferred work runs after every system", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		scheduler := ecs.NewScheduler(storage)

		var log []string
		scheduler.Register(&deferSystem{log: &log})
		scheduler.Register(&orderRecorder{label: "after", log: &log})

		scheduler.Once(1)
		assert.Equal(t, []string{"after", "deferred"}, log)

		scheduler.Once(1)
		assert.Equal(t, []string{"after", "deferred", "after", "deferred"}, log, "each frame flushes its own defers exactly once")
	})
}

type deferSystem struct {
	log *[]string
}

func (s *deferSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Defer(func() {
		*s.log = append(*s.log, "deferred")
	})
}

func TestSchedulerRun(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	ticker := &tickSystem{}
	scheduler.Register(ticker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return ticker.ticks.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	stopped := ticker.ticks.Load()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, stopped, ticker.ticks.Load())
	assert.Equal(t, uint64(stopped), scheduler.Frames())
}
