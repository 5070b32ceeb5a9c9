package goldminer

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/plus3/goldminer/ecs"
)

type playerView struct {
	ecs.EntityId
	*PlayerInfo
	*PlayerInput
	*Position
}

// findPlayer returns the lowest-id player with the given id.
func findPlayer(players *ecs.Query[playerView], playerID int) (playerView, bool) {
	_, p, ok := players.First(func(p playerView) bool {
		return p.PlayerID == playerID
	})
	return p, ok
}

type scoreView struct {
	ecs.EntityId
	*Score
	*PlayerInfo
}

// tipAt returns the pixel position at distance length from (ox, oy) along
// angle degrees, measured from straight down.
func tipAt(ox, oy, length, angle float64) (float64, float64) {
	rad := degToRad(angle)
	return ox + length*math.Sin(rad), oy + length*math.Cos(rad)
}

// RopeSwingSystem swings every resting rope like a pendulum and pins its tip
// to the end of the swing.
type RopeSwingSystem struct {
	Config ecs.Singleton[Config]
	Ropes  ecs.Query[struct {
		ecs.EntityId
		*RoperTag
		*Rotation
		*RopeControl
		*PlayerInfo
		*PhysicsBody
		Grabbed *GrabbedJoint `ecs:"optional"`
	}]
	Players ecs.Query[playerView]

	binding *Binding
	logger  *zap.Logger
}

func NewRopeSwingSystem(binding *Binding, logger *zap.Logger) *RopeSwingSystem {
	return &RopeSwingSystem{binding: binding, logger: logger}
}

func (s *RopeSwingSystem) Execute(frame *ecs.UpdateFrame) {
	cfg := s.Config.Get()
	maxAngle := float32(cfg.Rope.MaxSwingAngle)

	for rope := range s.Ropes.Iter() {
		if rope.State != AtRest || rope.Grabbed != nil {
			continue
		}

		player, ok := findPlayer(&s.Players, rope.PlayerID)
		if !ok {
			s.logger.Warn("rope has no player", entityField("rope", rope.EntityId), zap.Int("player", rope.PlayerID))
			continue
		}

		rope.Angle += rope.SwingDir * float32(cfg.Rope.SwingSpeed*frame.DeltaTime)
		if rope.Angle >= maxAngle {
			rope.Angle = maxAngle
			rope.SwingDir = -1
		} else if rope.Angle <= -maxAngle {
			rope.Angle = -maxAngle
			rope.SwingDir = 1
		}

		ox, oy := cfg.winch(player.Position)
		tx, ty := tipAt(ox, oy, cfg.Rope.RestLength, float64(rope.Angle))
		s.binding.MoveTo(rope.Body, tx, ty)
		s.binding.Stop(rope.Body)
		s.binding.SetGravityScale(rope.Body, 0)
	}
}

// RopeExtensionSystem starts ropes on input, drives extending and retracting
// ropes toward their target and cashes in whatever a rope brings back.
type RopeExtensionSystem struct {
	Config ecs.Singleton[Config]
	Match  ecs.Singleton[MatchState]
	Ropes  ecs.Query[struct {
		ecs.EntityId
		*RoperTag
		*RopeControl
		*Length
		*Rotation
		*PlayerInfo
		*PhysicsBody
		Grabbed *GrabbedJoint `ecs:"optional"`
	}]
	Players     ecs.Query[playerView]
	Scoreboards ecs.Query[scoreView]

	binding *Binding
	factory *Factory
	rng     *rand.Rand
	logger  *zap.Logger
}

func NewRopeExtensionSystem(binding *Binding, factory *Factory, rng *rand.Rand, logger *zap.Logger) *RopeExtensionSystem {
	return &RopeExtensionSystem{
		binding: binding,
		factory: factory,
		rng:     rng,
		logger:  logger,
	}
}

func (s *RopeExtensionSystem) Execute(frame *ecs.UpdateFrame) {
	cfg := s.Config.Get()
	match := s.Match.Get()
	dt := float32(frame.DeltaTime)

	for rope := range s.Ropes.Iter() {
		player, ok := findPlayer(&s.Players, rope.PlayerID)
		if !ok {
			s.logger.Warn("rope has no player", entityField("rope", rope.EntityId), zap.Int("player", rope.PlayerID))
			continue
		}

		if player.SendRope {
			player.SendRope = false
			if rope.State == AtRest && !match.Over {
				rope.State = Extending
				s.logger.Debug("rope sent", entityField("rope", rope.EntityId), zap.Float32("angle", rope.Angle))
			}
		}

		ox, oy := cfg.winch(player.Position)
		body := rope.Body

		switch rope.State {
		case Extending:
			speed := float32(cfg.Rope.ExtensionSpeed)
			rope.Value += speed * dt
			if rope.Value >= float32(cfg.Rope.MaxLength) {
				rope.Value = float32(cfg.Rope.MaxLength)
				rope.State = Retracting
			}
			tx, ty := tipAt(ox, oy, float64(rope.Value), float64(rope.Angle))
			s.binding.DriveToward(body, tx, ty, float64(speed))

		case Retracting:
			speed := float32(cfg.Rope.RetractionSpeed)
			if rope.Grabbed != nil {
				speed /= s.itemWeight(frame.Storage, rope.Grabbed.Attached)
			}
			rope.Value -= speed * dt
			if rope.Value <= 0 {
				rope.Value = 0
				rope.State = AtRest
				s.binding.Stop(body)
			} else {
				s.binding.DriveToward(body, ox, oy, float64(speed))
			}

		case AtRest:
			s.binding.Stop(body)
		}

		if rope.State == Retracting && rope.Grabbed != nil {
			s.binding.SetGravityScale(body, 1)
		} else {
			s.binding.SetGravityScale(body, 0)
		}

		if rope.State == AtRest && rope.Grabbed != nil {
			s.release(frame, rope.EntityId, rope.PlayerID, *rope.Grabbed)
			s.binding.Stop(body)
		}
	}
}

func (s *RopeExtensionSystem) itemWeight(storage *ecs.Storage, item ecs.EntityId) float32 {
	if w := ecs.TryGet[Weight](storage, item); w != nil && w.W > 1 {
		return w.W
	}
	return 1
}

// release credits the owner of rope with the held item, destroys the joint
// and hands the item to the DestructionSystem.
func (s *RopeExtensionSystem) release(frame *ecs.UpdateFrame, rope ecs.EntityId, owner int, grabbed GrabbedJoint) {
	storage := frame.Storage
	item := grabbed.Attached

	s.binding.Unweld(grabbed.Joint)
	ecs.Remove[GrabbedJoint](storage, rope)

	if !storage.Alive(item) {
		s.logger.Warn("released item is gone", entityField("rope", rope), entityField("item", item))
		return
	}

	amount := s.appraise(storage, item)
	_, board, ok := s.Scoreboards.First(func(b scoreView) bool {
		return b.PlayerID == owner
	})
	if ok {
		board.Points += amount
	} else {
		s.logger.Warn("no scoreboard for player", zap.Int("player", owner), entityField("item", item))
	}

	if pos := ecs.TryGet[Position](storage, item); pos != nil {
		s.factory.CreateScorePopup(owner, float64(pos.X), float64(pos.Y), amount)
	}
	ecs.Add(storage, item, DestroyTag{})
	s.Match.Get().Collected++

	s.logger.Debug("item released",
		entityField("rope", rope),
		entityField("item", item),
		zap.Int("player", owner),
		zap.Int("value", amount),
	)
}

// appraise returns the value of an item. A mystery bag is worth a fresh roll
// in its configured range; its Value component is left as created.
func (s *RopeExtensionSystem) appraise(storage *ecs.Storage, item ecs.EntityId) int {
	if kind := ecs.TryGet[ItemType](storage, item); kind != nil && kind.Kind == MysteryBag {
		bag := s.Config.Get().Items.MysteryBag
		return bag.Value + s.rng.IntN(bag.MaxValue-bag.Value+1)
	}
	if value := ecs.TryGet[Value](storage, item); value != nil {
		return value.Amount
	}
	return 0
}
