package goldminer

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/plus3/goldminer/ecs"
)

// StateHash digests the gameplay state of a storage: every live entity id
// and mask together with positions, rope state, scores, values and timers.
// Two simulations fed the same config and inputs hash equal frame by frame.
func StateHash(storage *ecs.Storage) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 64)

	for id := ecs.EntityId(1); id <= storage.MaxId(); id++ {
		if !storage.Alive(id) {
			continue
		}
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(storage.Mask(id)))

		if p := ecs.TryGet[Position](storage, id); p != nil {
			buf = appendFloat(buf, p.X)
			buf = appendFloat(buf, p.Y)
		}
		if r := ecs.TryGet[Rotation](storage, id); r != nil {
			buf = appendFloat(buf, r.Angle)
		}
		if l := ecs.TryGet[Length](storage, id); l != nil {
			buf = appendFloat(buf, l.Value)
		}
		if c := ecs.TryGet[RopeControl](storage, id); c != nil {
			buf = append(buf, byte(c.State))
		}
		if s := ecs.TryGet[Score](storage, id); s != nil {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(s.Points))
		}
		if v := ecs.TryGet[Value](storage, id); v != nil {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(v.Amount))
		}
		if t := ecs.TryGet[GameTimer](storage, id); t != nil {
			buf = appendFloat(buf, t.TimeLeft)
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

func appendFloat(buf []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
}
