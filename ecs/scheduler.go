package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

func (s *SystemStats) record(d time.Duration) {
	if s.ExecutionCount == 0 || d < s.MinDuration {
		s.MinDuration = d
	}
	s.MaxDuration = max(s.MaxDuration, d)
	s.ExecutionCount++
	s.LastDuration = d
	s.TotalDuration += d
	s.AvgDuration = s.TotalDuration / time.Duration(s.ExecutionCount)
}

// storageBound is implemented by Query and Singleton.
type storageBound interface {
	Init(storage *Storage)
}

var storageBoundType = reflect.TypeFor[storageBound]()

type scheduledSystem struct {
	system System
	stats  SystemStats
}

// Scheduler runs systems one after another in registration order and flushes
// the shared command buffer after the last one.
type Scheduler struct {
	storage  *Storage
	systems  []*scheduledSystem
	commands *Commands
	frames   uint64
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage:  storage,
		commands: newCommands(),
	}
}

// Register appends a system. Exported Query and Singleton fields of a struct
// system are bound to the scheduler's storage.
func (s *Scheduler) Register(system System) {
	s.bindFields(system)

	t := reflect.TypeOf(system)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.systems = append(s.systems, &scheduledSystem{
		system: system,
		stats:  SystemStats{Name: t.Name()},
	})
}

func (s *Scheduler) bindFields(system System) {
	v := reflect.ValueOf(system)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}
		if !field.Addr().Type().Implements(storageBoundType) {
			continue
		}
		field.Addr().Interface().(storageBound).Init(s.storage)
	}
}

// Once runs every system with the given delta time, then flushes the command
// buffer. frame.Index is the number of frames completed before this one.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(s.frames, dt, s.storage, s.commands)
	s.frames++

	for _, entry := range s.systems {
		start := time.Now()
		entry.system.Execute(frame)
		entry.stats.record(time.Since(start))
	}

	frame.Commands.Flush(s.storage)
}

// Run calls Once at the given interval until ctx is cancelled. The delta time
// is the wall time between ticks.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			s.Once(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Frames returns the number of completed Once calls.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// GetStats returns a snapshot of per-system timings in registration order.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}
	for i, entry := range s.systems {
		stats.Systems[i] = entry.stats
		stats.TotalExecutions += entry.stats.ExecutionCount
	}
	return stats
}
