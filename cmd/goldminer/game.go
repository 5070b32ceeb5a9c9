package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/ecs/debugui"
	debugui_ebiten "github.com/plus3/goldminer/ecs/debugui/ebiten"
	"github.com/plus3/goldminer/goldminer"
)

// Game implements ebiten.Game over a Simulation. The ImGui fields are nil
// unless the debug overlay is enabled.
type Game struct {
	Sim *goldminer.Simulation

	UIScheduler  *ecs.Scheduler
	ImguiBackend *ecs.Singleton[debugui_ebiten.ImguiBackend]
	ImguiInput   *ecs.Singleton[debugui.ImguiInputState]
	Overlay      *ecs.Singleton[debugui.Overlay]
}

var fireKeys = map[int]ebiten.Key{
	1: ebiten.KeySpace,
	2: ebiten.KeyEnter,
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.UIScheduler != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
			g.Overlay.Get().Toggle()
		}
		g.ImguiBackend.Get().Frame(func() {
			g.UIScheduler.Once(g.Sim.Config().Physics.TimeStep)
		})
	}

	if g.ImguiInput == nil || !g.ImguiInput.Get().WantCaptureKeyboard {
		for player, key := range fireKeys {
			if inpututil.IsKeyJustPressed(key) {
				g.Sim.SendRope(player)
			}
		}
	}

	g.Sim.Step()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{96, 64, 32, 255})
	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, 200, color.RGBA{150, 200, 240, 255}, false)

	storage := g.Sim.Storage()
	cfg := g.Sim.Config()

	players := ecs.NewQuery[struct {
		*goldminer.PlayerInfo
		*goldminer.PlayerInput
		*goldminer.Position
	}](storage)
	ropes := ecs.NewQuery[struct {
		*goldminer.RoperTag
		*goldminer.PlayerInfo
		*goldminer.Position
	}](storage)

	for rope := range ropes.Iter() {
		for player := range players.Iter() {
			if player.PlayerID != rope.PlayerID {
				continue
			}
			wx := player.X + float32(cfg.Player.WinchX*cfg.Player.Width)
			wy := player.Y + float32(cfg.Player.WinchY*cfg.Player.Height)
			vector.StrokeLine(screen, wx, wy, rope.X, rope.Y, 2, color.RGBA{40, 40, 40, 255}, false)
			vector.DrawFilledCircle(screen, rope.X, rope.Y, float32(cfg.Rope.TipRadius), color.RGBA{80, 80, 80, 255}, false)
		}
	}

	sprites := ecs.NewQuery[struct {
		*goldminer.Position
		*goldminer.Renderable
	}](storage)
	for s := range sprites.Iter() {
		vector.DrawFilledRect(screen, s.X, s.Y, s.Width, s.Height, spriteColor(s.Sprite), false)
	}

	popups := ecs.NewQuery[struct {
		*goldminer.ScoredTag
		*goldminer.Position
		*goldminer.Value
	}](storage)
	for p := range popups.Iter() {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("+%d", p.Amount), int(p.X), int(p.Y))
	}

	g.drawHUD(screen, storage)

	if g.ImguiBackend != nil {
		g.ImguiBackend.Get().Overlay(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image, storage *ecs.Storage) {
	timers := ecs.NewQuery[struct {
		*goldminer.GameTimer
		*goldminer.PlayerInfo
	}](storage)

	y := 10
	for timer := range timers.Iter() {
		line := fmt.Sprintf("P%d  score %d  time %.0f", timer.PlayerID, g.Sim.Score(timer.PlayerID), timer.TimeLeft)
		ebitenutil.DebugPrintAt(screen, line, 10, y)
		y += 16
	}

	if state := g.Sim.State(); state.Over {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("GAME OVER  player %d wins", state.Winner), ScreenWidth/2-80, ScreenHeight/2)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.ImguiBackend != nil {
		g.ImguiBackend.Get().Layout(outsideWidth, outsideHeight)
	}
	return ScreenWidth, ScreenHeight
}

func spriteColor(sprite goldminer.SpriteID) color.RGBA {
	switch sprite {
	case goldminer.SpritePlayer:
		return color.RGBA{200, 60, 60, 255}
	case goldminer.SpriteGold:
		return color.RGBA{255, 200, 0, 255}
	case goldminer.SpriteRock:
		return color.RGBA{120, 120, 120, 255}
	case goldminer.SpriteDiamond:
		return color.RGBA{150, 230, 255, 255}
	case goldminer.SpriteTreasureChest:
		return color.RGBA{140, 90, 30, 255}
	case goldminer.SpriteMysteryBag:
		return color.RGBA{220, 180, 120, 255}
	case goldminer.SpriteMole:
		return color.RGBA{90, 60, 40, 255}
	default:
		return color.RGBA{255, 0, 255, 255}
	}
}
