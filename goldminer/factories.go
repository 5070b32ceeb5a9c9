package goldminer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
	"github.com/plus3/goldminer/physics"
)

// ErrPlayerNotFound is returned when an entity that belongs to a player is
// created before the player itself.
var ErrPlayerNotFound = errors.New("player not found")

const (
	itemDensity     = 1.0
	itemFriction    = 0.4
	itemRestitution = 0.2

	popupLifeTime = 1.5
)

// PlayerEntities are the entities SetupPlayer creates for one player.
type PlayerEntities struct {
	Player     ecs.EntityId
	Rope       ecs.EntityId
	Scoreboard ecs.EntityId
	Timer      ecs.EntityId
	UI         ecs.EntityId
}

// Factory builds every game object with its complete initial component set.
// Nothing else adds components piecemeal to a new entity.
type Factory struct {
	storage *ecs.Storage
	binding *Binding
	config  *Config
	logger  *zap.Logger
}

func NewFactory(storage *ecs.Storage, binding *Binding, config *Config, logger *zap.Logger) *Factory {
	return &Factory{
		storage: storage,
		binding: binding,
		config:  config,
		logger:  logger,
	}
}

// spawnBound creates an entity, binds a new body to it and adds components
// in one go.
func (f *Factory) spawnBound(kind physics.BodyKind, cx, cy float64, shape physics.ShapeDef, components ...any) ecs.EntityId {
	id := f.storage.Create()
	body := f.binding.Attach(id, kind, cx, cy, shape)
	for _, c := range components {
		f.storage.AddComponent(id, c)
	}
	f.storage.AddComponent(id, body)
	return id
}

// CreatePlayer places the miner of playerID with its top-left corner at (x, y).
func (f *Factory) CreatePlayer(playerID int, x, y float64) ecs.EntityId {
	p := f.config.Player
	return f.storage.Spawn(
		Position{X: float32(x), Y: float32(y)},
		Velocity{},
		Renderable{Sprite: SpritePlayer, Width: float32(p.Width), Height: float32(p.Height)},
		PlayerInfo{PlayerID: playerID},
		PlayerInput{},
	)
}

// CreateRope creates the rope of an existing player, with its tip resting
// at the player's winch.
func (f *Factory) CreateRope(playerID int) (ecs.EntityId, error) {
	players := ecs.NewQuery[playerView](f.storage)
	player, ok := findPlayer(players, playerID)
	if !ok {
		return ecs.NilEntity, fmt.Errorf("create rope for player %d: %w", playerID, ErrPlayerNotFound)
	}

	ox, oy := f.config.winch(player.Position)
	rope := f.config.Rope
	id := f.spawnBound(physics.Dynamic, ox, oy,
		physics.ShapeDef{
			Kind:        physics.Circle,
			Radius:      rope.TipRadius / f.config.Physics.PixelsPerMeter,
			Density:     rope.Density,
			Friction:    rope.Friction,
			Restitution: rope.Restitution,
			HitEvents:   true,
		},
		Position{X: float32(ox), Y: float32(oy)},
		Rotation{},
		Length{},
		RopeControl{State: AtRest, SwingDir: 1},
		RoperTag{},
		PlayerInfo{PlayerID: playerID},
		Collidable{},
	)
	body := ecs.Get[PhysicsBody](f.storage, id).Body
	f.binding.SetGravityScale(body, 0)

	f.logger.Debug("rope created", entityField("rope", id), zap.Int("player", playerID))
	return id, nil
}

func (f *Factory) CreateGold(x, y float64) ecs.EntityId {
	return f.createItem(Gold, SpriteGold, x, y)
}

func (f *Factory) CreateRock(x, y float64) ecs.EntityId {
	return f.createItem(Rock, SpriteRock, x, y)
}

func (f *Factory) CreateDiamond(x, y float64) ecs.EntityId {
	return f.createItem(Diamond, SpriteDiamond, x, y)
}

func (f *Factory) CreateTreasureChest(x, y float64) ecs.EntityId {
	return f.createItem(TreasureChest, SpriteTreasureChest, x, y)
}

// CreateMysteryBag creates a bag whose value is only decided when it is
// cashed in.
func (f *Factory) CreateMysteryBag(x, y float64) ecs.EntityId {
	return f.createItem(MysteryBag, SpriteMysteryBag, x, y)
}

// CreateItem dispatches to the constructor of kind.
func (f *Factory) CreateItem(kind ItemKind, x, y float64) ecs.EntityId {
	switch kind {
	case Gold:
		return f.CreateGold(x, y)
	case Rock:
		return f.CreateRock(x, y)
	case Diamond:
		return f.CreateDiamond(x, y)
	case TreasureChest:
		return f.CreateTreasureChest(x, y)
	case MysteryBag:
		return f.CreateMysteryBag(x, y)
	}
	panic(fmt.Sprintf("goldminer: unknown item kind %d", kind))
}

func (f *Factory) createItem(kind ItemKind, sprite SpriteID, x, y float64) ecs.EntityId {
	item := f.config.Items.Item(kind)
	ppm := f.config.Physics.PixelsPerMeter

	shape := physics.ShapeDef{
		Kind:        physics.Circle,
		Radius:      item.Width / 2 / ppm,
		Density:     itemDensity,
		Friction:    itemFriction,
		Restitution: itemRestitution,
	}
	value := item.Value
	if kind == MysteryBag {
		shape.Kind = physics.Polygon
		shape.Vertices = sackVertices(item.Width/2/ppm, item.Height/2/ppm)
		value = 0
	}

	return f.spawnBound(physics.Static, x+item.Width/2, y+item.Height/2, shape,
		Position{X: float32(x), Y: float32(y)},
		Renderable{Sprite: sprite, Width: float32(item.Width), Height: float32(item.Height)},
		Collectable{},
		ItemType{Kind: kind},
		Value{Amount: value},
		Weight{W: float32(item.Weight)},
		Collidable{},
		PlayerInfo{PlayerID: -1},
	)
}

// sackVertices outlines a tied sack inside a hw x hh half-extent box.
func sackVertices(hw, hh float64) []physics.Vec2 {
	return []physics.Vec2{
		{X: 0, Y: -hh * 0.9},
		{X: -hw * 0.8, Y: -hh * 0.3},
		{X: -hw, Y: hh * 0.6},
		{X: hw, Y: hh * 0.6},
		{X: hw * 0.8, Y: -hh * 0.3},
	}
}

// CreateMole creates a patrolling mole. Moles have no body: their Position
// is moved directly by the MoleSystem.
func (f *Factory) CreateMole(x, y float64) ecs.EntityId {
	m := f.config.Mole
	return f.storage.Spawn(
		Position{X: float32(x), Y: float32(y)},
		Velocity{X: float32(m.Speed)},
		Renderable{Sprite: SpriteMole, Width: float32(m.Width), Height: float32(m.Height)},
		Mole{Speed: float32(m.Speed), MovingRight: true},
		Collidable{},
	)
}

func (f *Factory) CreateTimer(playerID int) ecs.EntityId {
	return f.storage.Spawn(
		GameTimer{TimeLeft: float32(f.config.Match.Duration)},
		PlayerInfo{PlayerID: playerID},
	)
}

func (f *Factory) CreateUIEntity(playerID int, slot int) ecs.EntityId {
	return f.storage.Spawn(
		UIComponent{Slot: slot},
		PlayerInfo{PlayerID: playerID},
	)
}

func (f *Factory) CreateScoreboard(playerID int) ecs.EntityId {
	return f.storage.Spawn(
		Score{},
		PlayerInfo{PlayerID: playerID},
	)
}

// CreateScorePopup shows amount at (x, y) for a short while.
func (f *Factory) CreateScorePopup(playerID int, x, y float64, amount int) ecs.EntityId {
	return f.storage.Spawn(
		Position{X: float32(x), Y: float32(y)},
		Value{Amount: amount},
		LifeTime{Remaining: popupLifeTime},
		ScoredTag{},
		PlayerInfo{PlayerID: playerID},
	)
}

// SetupPlayer creates everything one player needs. slot is the UI slot the
// player is shown in.
func (f *Factory) SetupPlayer(spawn PlayerSpawn, slot int) (PlayerEntities, error) {
	var e PlayerEntities
	e.Player = f.CreatePlayer(spawn.ID, spawn.X, spawn.Y)

	rope, err := f.CreateRope(spawn.ID)
	if err != nil {
		return PlayerEntities{}, err
	}
	e.Rope = rope
	e.Scoreboard = f.CreateScoreboard(spawn.ID)
	e.Timer = f.CreateTimer(spawn.ID)
	e.UI = f.CreateUIEntity(spawn.ID, slot)

	f.logger.Info("player ready",
		zap.Int("player", spawn.ID),
		entityField("entity", e.Player),
		entityField("rope", e.Rope),
	)
	return e, nil
}

// LoadLayout spawns the placements of layout index and returns how many
// entities were created.
func (f *Factory) LoadLayout(index int) (int, error) {
	if index < 0 || index >= len(f.config.Layouts) {
		return 0, fmt.Errorf("layout %d out of range [0, %d)", index, len(f.config.Layouts))
	}

	n := 0
	for _, p := range f.config.Layouts[index] {
		if p.Kind == moleKind {
			f.CreateMole(p.X, p.Y)
			n++
			continue
		}
		kind, ok := ParseItemKind(p.Kind)
		if !ok {
			return n, fmt.Errorf("layout %d: unknown kind %q", index, p.Kind)
		}
		f.CreateItem(kind, p.X, p.Y)
		n++
	}

	f.logger.Info("layout loaded", zap.Int("layout", index), zap.Int("entities", n))
	return n, nil
}
