package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/goldminer/ecs"
)

func NewPerformanceStatsComponent(historyFrames int) PerformanceStatsComponent {
	return PerformanceStatsComponent{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

// Render draws storage occupancy and frame timings. The scheduler may be nil,
// in which case the per-system table is omitted.
func (ps *PerformanceStatsComponent) Render(storage *ecs.Storage, scheduler *ecs.Scheduler, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
	ps.samples = min(ps.samples+1, ps.historyFrames)

	stats := storage.CollectStats()
	imgui.Text(fmt.Sprintf("Live entities: %d of %d issued ids", stats.TotalEntityCount, stats.IssuedIds))
	imgui.Text(fmt.Sprintf("Component types: %d / %d", storage.Registry().Len(), ecs.MaxComponentTypes))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))
	if scheduler != nil {
		imgui.Text(fmt.Sprintf("Simulation frames: %d", scheduler.Frames()))
	}

	var total float32
	for _, ms := range ps.frameHistory {
		total += ms
	}
	if avg := total / float32(ps.samples); avg > 0 {
		imgui.Text(fmt.Sprintf("Avg frame time: %.2f ms (%.0f FPS)", avg, 1000/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if scheduler != nil && imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			for _, column := range []string{"System", "Runs", "Last", "Avg", "Max"} {
				imgui.TableSetupColumn(column)
			}
			imgui.TableHeadersRow()

			for _, sys := range scheduler.GetStats().Systems {
				imgui.TableNextRow()
				for _, cell := range []string{
					sys.Name,
					fmt.Sprint(sys.ExecutionCount),
					sys.LastDuration.String(),
					sys.AvgDuration.String(),
					sys.MaxDuration.String(),
				} {
					imgui.TableNextColumn()
					imgui.Text(cell)
				}
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
