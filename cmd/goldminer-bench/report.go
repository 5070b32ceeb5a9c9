package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/goldminer/ecs"
)

type Report struct {
	// Configuration
	Matches  int
	Frames   int
	Parallel int
	Seed     int64

	// Results
	Results        []MatchResult
	TotalTime      time.Duration
	FrameTime      Stats
	Systems        []SystemTotal
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type MatchResult struct {
	ID        string
	Seed      int64
	Frames    uint64
	Over      bool
	Winner    int
	Collected int
	Hash      uint64
	Scores    []PlayerScore
	FrameTime Stats
	Systems   []ecs.SystemStats
}

type PlayerScore struct {
	Player int
	Points int
}

// SystemTotal sums the timings of one system over every match.
type SystemTotal struct {
	Name       string
	Executions int64
	Total      time.Duration
	Avg        time.Duration
	Max        time.Duration
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// Finalize merges the per-match frame and system timings.
func (r *Report) Finalize() {
	r.FrameTime = Stats{}
	r.Systems = r.Systems[:0]
	index := make(map[string]int)

	for _, m := range r.Results {
		r.FrameTime.Samples = append(r.FrameTime.Samples, m.FrameTime.Samples...)
		for _, sys := range m.Systems {
			i, ok := index[sys.Name]
			if !ok {
				i = len(r.Systems)
				index[sys.Name] = i
				r.Systems = append(r.Systems, SystemTotal{Name: sys.Name})
			}
			t := &r.Systems[i]
			t.Executions += sys.ExecutionCount
			t.Total += sys.TotalDuration
			t.Max = max(t.Max, sys.MaxDuration)
		}
	}
	r.FrameTime.Finalize()

	for i := range r.Systems {
		if r.Systems[i].Executions > 0 {
			r.Systems[i].Avg = r.Systems[i].Total / time.Duration(r.Systems[i].Executions)
		}
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Gold Miner Bench Report

## Configuration
- **Matches:** {{.Matches}} ({{.Parallel}} at a time)
- **Max Frames per Match:** {{.Frames}}
- **First Seed:** {{.Seed}}

## Performance Results
- **Total Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}

## Systems
| System | Executions | Avg | Max |
|---|---|---|---|
{{- range .Systems}}
| {{.Name}} | {{.Executions}} | {{.Avg}} | {{.Max}} |
{{- end}}

## Matches
| Match | Seed | Frames | Over | Winner | Collected | Scores | Hash |
|---|---|---|---|---|---|---|---|
{{- range .Results}}
| {{.ID}} | {{.Seed}} | {{.Frames}} | {{.Over}} | {{.Winner}} | {{.Collected}} | {{range $i, $s := .Scores}}{{if $i}}, {{end}}P{{$s.Player}}={{$s.Points}}{{end}} | {{hex .Hash}} |
{{- end}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
		"hex": func(v uint64) string {
			return fmt.Sprintf("%016x", v)
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
