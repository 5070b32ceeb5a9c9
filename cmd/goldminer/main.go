// Command goldminer plays a two-player match in an ebiten window. Player 1
// fires with Space, player 2 with Enter. With -debug, F1 toggles the ECS
// inspector overlay.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/ecs/debugui"
	debugui_ebiten "github.com/plus3/goldminer/ecs/debugui/ebiten"
	"github.com/plus3/goldminer/goldminer"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

func main() {
	configPath := flag.String("config", "", "YAML match config. Defaults are used when empty.")
	logLevel := flag.String("log-level", "info", "Log level.")
	logFormat := flag.String("log-format", "console", "Log format: json or console.")
	debug := flag.Bool("debug", false, "Show the ECS debug overlay.")
	flag.Parse()

	logger, err := goldminer.NewLogger(*logLevel, *logFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg := goldminer.DefaultConfig()
	if *configPath != "" {
		cfg, err = goldminer.LoadConfigFile(*configPath)
		if err != nil {
			logger.Fatal("load config", zap.Error(err))
		}
	}

	sim, err := goldminer.NewSimulation(cfg, nil, logger)
	if err != nil {
		logger.Fatal("create simulation", zap.Error(err))
	}
	defer sim.Close()

	game := &Game{Sim: sim}

	if *debug {
		registry := ecs.NewComponentRegistry()
		debugui.RegisterDebugUIComponents(registry)
		ui := ecs.NewStorage(registry)
		game.ImguiBackend = ecs.NewSingleton(ui, debugui_ebiten.NewImguiBackend("Gold Miner", ScreenWidth, ScreenHeight))
		game.ImguiInput = ecs.NewSingleton[debugui.ImguiInputState](ui)
		game.Overlay = ecs.NewSingleton[debugui.Overlay](ui)
		debugui.SpawnDebugUI(ui, sim.Storage(), sim.Scheduler())

		game.UIScheduler = ecs.NewScheduler(ui)
		game.UIScheduler.Register(&debugui.ImguiSystem{})
	} else {
		ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
		ebiten.SetWindowTitle("Gold Miner")
	}
	ebiten.SetTPS(int(1/cfg.Physics.TimeStep + 0.5))

	logger.Info("starting", zap.String("match", sim.MatchID.String()), zap.Bool("debug", *debug))
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run game", zap.Error(err))
	}
}
