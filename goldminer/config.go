package goldminer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Physics PhysicsConfig `yaml:"physics"`
	Rope    RopeConfig    `yaml:"rope"`
	Player  PlayerConfig  `yaml:"player"`
	Players []PlayerSpawn `yaml:"players"`
	Items   ItemCatalog   `yaml:"items"`
	Mole    MoleConfig    `yaml:"mole"`
	Match   MatchConfig   `yaml:"match"`
	Layouts [][]Placement `yaml:"layouts"`
}

type PhysicsConfig struct {
	PixelsPerMeter float64 `yaml:"pixels_per_meter"`
	// Gravity in m/s², pointing down the screen.
	Gravity    float64 `yaml:"gravity"`
	TimeStep   float64 `yaml:"time_step"`
	Iterations int     `yaml:"iterations"`
}

type RopeConfig struct {
	MaxLength       float64 `yaml:"max_length"`
	ExtensionSpeed  float64 `yaml:"extension_speed"`
	RetractionSpeed float64 `yaml:"retraction_speed"`
	// SwingSpeed in degrees per second.
	SwingSpeed    float64 `yaml:"swing_speed"`
	MaxSwingAngle float64 `yaml:"max_swing_angle"`
	// RestLength is the distance of the tip from the winch while swinging.
	RestLength  float64 `yaml:"rest_length"`
	TipRadius   float64 `yaml:"tip_radius"`
	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// PlayerConfig holds what all players share.
type PlayerConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// The winch sits at anchor + (WinchX*Width, WinchY*Height).
	WinchX float64 `yaml:"winch_x"`
	WinchY float64 `yaml:"winch_y"`
}

type PlayerSpawn struct {
	ID int     `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

type ItemConfig struct {
	Value  int     `yaml:"value"`
	Weight float64 `yaml:"weight"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// MaxValue is only used by the mystery bag, whose value is rolled
	// uniformly in [Value, MaxValue] when it is cashed in.
	MaxValue int `yaml:"max_value,omitempty"`
}

type ItemCatalog struct {
	Gold          ItemConfig `yaml:"gold"`
	Rock          ItemConfig `yaml:"rock"`
	Diamond       ItemConfig `yaml:"diamond"`
	TreasureChest ItemConfig `yaml:"treasure_chest"`
	MysteryBag    ItemConfig `yaml:"mystery_bag"`
}

// Item returns the catalogue entry of a kind.
func (c *ItemCatalog) Item(kind ItemKind) ItemConfig {
	switch kind {
	case Gold:
		return c.Gold
	case Rock:
		return c.Rock
	case Diamond:
		return c.Diamond
	case TreasureChest:
		return c.TreasureChest
	case MysteryBag:
		return c.MysteryBag
	}
	panic(fmt.Sprintf("goldminer: unknown item kind %d", kind))
}

type MoleConfig struct {
	Speed  float64 `yaml:"speed"`
	MinX   float64 `yaml:"min_x"`
	MaxX   float64 `yaml:"max_x"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type MatchConfig struct {
	// Duration in seconds.
	Duration float64 `yaml:"duration"`
	Seed     int64   `yaml:"seed"`
	// Layout is the index of the first layout loaded.
	Layout int `yaml:"layout"`
}

// moleKind is the placement kind of a mole. Every other kind names an item.
const moleKind = "mole"

// Placement puts one item or mole at a top-left pixel position.
type Placement struct {
	Kind string  `yaml:"kind"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// winch returns the pixel position the rope of a player anchored at p hangs
// from.
func (c *Config) winch(p *Position) (float64, float64) {
	return float64(p.X) + c.Player.WinchX*c.Player.Width,
		float64(p.Y) + c.Player.WinchY*c.Player.Height
}

// DefaultConfig returns the stock tuning of the game.
func DefaultConfig() Config {
	return Config{
		Physics: PhysicsConfig{
			PixelsPerMeter: 50,
			Gravity:        9.8,
			TimeStep:       1.0 / 60.0,
			Iterations:     8,
		},
		Rope: RopeConfig{
			MaxLength:       800,
			ExtensionSpeed:  600,
			RetractionSpeed: 900,
			SwingSpeed:      90,
			MaxSwingAngle:   75,
			RestLength:      80,
			TipRadius:       15,
			Density:         1,
			Friction:        0.5,
			Restitution:     0.2,
		},
		Player: PlayerConfig{
			Width:  164,
			Height: 169,
			WinchX: -0.001,
			WinchY: 1.1,
		},
		Players: []PlayerSpawn{
			{ID: 1, X: 570, Y: 10},
			{ID: 2, X: 870, Y: 10},
		},
		Items: ItemCatalog{
			Gold:          ItemConfig{Value: 70, Weight: 5, Width: 35, Height: 30},
			Rock:          ItemConfig{Value: 100, Weight: 1, Width: 77, Height: 87},
			Diamond:       ItemConfig{Value: 100, Weight: 1, Width: 41, Height: 32},
			TreasureChest: ItemConfig{Value: 100, Weight: 3, Width: 88, Height: 82},
			MysteryBag:    ItemConfig{Value: 10, MaxValue: 300, Weight: 1, Width: 52, Height: 59},
		},
		Mole: MoleConfig{
			Speed:  100,
			MinX:   100,
			MaxX:   1180,
			Width:  60,
			Height: 40,
		},
		Match: MatchConfig{
			Duration: 60,
			Seed:     1,
		},
		Layouts: defaultLayouts(),
	}
}

func defaultLayouts() [][]Placement {
	return [][]Placement{
		{
			{Kind: "gold", X: 200, Y: 450},
			{Kind: "gold", X: 950, Y: 520},
			{Kind: "rock", X: 420, Y: 380},
			{Kind: "diamond", X: 700, Y: 600},
			{Kind: "treasure_chest", X: 300, Y: 620},
			{Kind: "mystery_bag", X: 1050, Y: 400},
			{Kind: "mole", X: 500, Y: 540},
		},
		{
			{Kind: "gold", X: 150, Y: 600},
			{Kind: "gold", X: 640, Y: 480},
			{Kind: "gold", X: 1100, Y: 600},
			{Kind: "rock", X: 850, Y: 400},
			{Kind: "rock", X: 350, Y: 420},
			{Kind: "diamond", X: 520, Y: 640},
			{Kind: "mystery_bag", X: 980, Y: 640},
		},
		{
			{Kind: "diamond", X: 250, Y: 500},
			{Kind: "diamond", X: 1000, Y: 500},
			{Kind: "treasure_chest", X: 620, Y: 600},
			{Kind: "rock", X: 450, Y: 350},
			{Kind: "rock", X: 780, Y: 350},
			{Kind: "gold", X: 640, Y: 420},
			{Kind: "mole", X: 300, Y: 640},
			{Kind: "mole", X: 900, Y: 660},
		},
	}
}

// ParseItemKind maps a config name such as "treasure_chest" to its kind.
func ParseItemKind(name string) (ItemKind, bool) {
	switch name {
	case "gold":
		return Gold, true
	case "rock":
		return Rock, true
	case "diamond":
		return Diamond, true
	case "treasure_chest":
		return TreasureChest, true
	case "mystery_bag":
		return MysteryBag, true
	}
	return 0, false
}

// Validate reports every problem found, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string
	positive := func(name string, v float64) {
		if v <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %v", name, v))
		}
	}

	positive("physics.pixels_per_meter", c.Physics.PixelsPerMeter)
	positive("physics.time_step", c.Physics.TimeStep)
	positive("physics.iterations", float64(c.Physics.Iterations))
	positive("rope.max_length", c.Rope.MaxLength)
	positive("rope.extension_speed", c.Rope.ExtensionSpeed)
	positive("rope.retraction_speed", c.Rope.RetractionSpeed)
	positive("rope.swing_speed", c.Rope.SwingSpeed)
	positive("rope.tip_radius", c.Rope.TipRadius)
	positive("rope.density", c.Rope.Density)
	positive("match.duration", c.Match.Duration)

	if c.Rope.MaxSwingAngle <= 0 || c.Rope.MaxSwingAngle >= 90 {
		problems = append(problems, fmt.Sprintf("rope.max_swing_angle must be in (0, 90), got %v", c.Rope.MaxSwingAngle))
	}
	if c.Rope.RestLength < 0 || c.Rope.RestLength > c.Rope.MaxLength {
		problems = append(problems, fmt.Sprintf("rope.rest_length must be in [0, max_length], got %v", c.Rope.RestLength))
	}

	if len(c.Players) == 0 {
		problems = append(problems, "players must not be empty")
	}
	seen := make(map[int]bool, len(c.Players))
	for _, p := range c.Players {
		if p.ID <= 0 {
			problems = append(problems, fmt.Sprintf("player id must be positive, got %d", p.ID))
		}
		if seen[p.ID] {
			problems = append(problems, fmt.Sprintf("duplicate player id %d", p.ID))
		}
		seen[p.ID] = true
	}

	for kind := Gold; kind <= MysteryBag; kind++ {
		item := c.Items.Item(kind)
		if item.Weight < 1 {
			problems = append(problems, fmt.Sprintf("items.%s.weight must be at least 1, got %v", kind, item.Weight))
		}
		if item.Width <= 0 || item.Height <= 0 {
			problems = append(problems, fmt.Sprintf("items.%s size must be positive", kind))
		}
	}
	if c.Items.MysteryBag.MaxValue < c.Items.MysteryBag.Value {
		problems = append(problems, "items.mystery_bag.max_value must not be below value")
	}

	if c.Mole.MaxX <= c.Mole.MinX {
		problems = append(problems, "mole.max_x must be greater than mole.min_x")
	}

	if len(c.Layouts) == 0 {
		problems = append(problems, "layouts must not be empty")
	}
	if c.Match.Layout < 0 || c.Match.Layout >= len(c.Layouts) {
		problems = append(problems, fmt.Sprintf("match.layout %d out of range", c.Match.Layout))
	}
	for i, layout := range c.Layouts {
		items := 0
		for _, p := range layout {
			if _, ok := ParseItemKind(p.Kind); ok {
				items++
			} else if p.Kind != moleKind {
				problems = append(problems, fmt.Sprintf("layouts[%d]: unknown kind %q", i, p.Kind))
			}
		}
		if items == 0 {
			problems = append(problems, fmt.Sprintf("layouts[%d] has no collectable", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LoadConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile is LoadConfig on the contents of a file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
