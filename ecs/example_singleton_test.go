package ecs_test

import (
	"fmt"

	"github.com/plus3/goldminer/ecs"
)

type Rules struct {
	Players  int
	Duration float64
}

type Tally struct {
	Points map[int]int
}

// ExampleNewSingleton installs a value the first time and hands back the
// stored one afterwards; the initializer of a later call is ignored.
func ExampleNewSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	rules := ecs.NewSingleton(storage, Rules{Players: 2, Duration: 60})
	again := ecs.NewSingleton(storage, Rules{Players: 4})

	rules.Get().Duration = 90
	fmt.Printf("%d players, %.0fs\n", again.Get().Players, again.Get().Duration)

	// Output:
	// 2 players, 90s
}

// ExampleSingleton_Exists shows a Singleton field that is declared before its
// value is installed. Get re-reads storage until the value appears.
func ExampleSingleton_Exists() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	var tally ecs.Singleton[Tally]
	tally.Init(storage)
	fmt.Println("installed:", tally.Exists())

	storage.AddSingleton(Tally{Points: map[int]int{1: 0, 2: 0}})
	fmt.Println("installed:", tally.Exists())

	tally.MustGet().Points[2] += 250
	fmt.Println("player 2:", tally.Get().Points[2])

	// Output:
	// installed: false
	// installed: true
	// player 2: 250
}

// ExampleStorage_ReadSingleton looks a singleton up by the type of the
// pointer it fills in.
func ExampleStorage_ReadSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	storage.AddSingleton(Rules{Players: 1, Duration: 30})

	var rules *Rules
	if storage.ReadSingleton(&rules) {
		fmt.Printf("%d player, %.0fs\n", rules.Players, rules.Duration)
	}

	var missing *Tally
	fmt.Println("tally found:", storage.ReadSingleton(&missing))

	// Output:
	// 1 player, 30s
	// tally found: false
}
