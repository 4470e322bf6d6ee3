// Command heatmap renders a batch of simulated terrain surfaces to PNG
// without running the station. Useful for eyeballing palette and grid
// changes, and for producing fixture imagery.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/cansat-data/terrain.report/internal/config"
	"github.com/cansat-data/terrain.report/internal/render"
	"github.com/cansat-data/terrain.report/internal/source"
	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/cansat-data/terrain.report/internal/terrain"
	"github.com/cansat-data/terrain.report/internal/timeutil"
)

var (
	samples = flag.Int("n", 20, "Number of surfaces to render")
	outDir  = flag.String("out", "render", "Output directory for PNG files")
	seed    = flag.Uint64("seed", 1, "Noise seed (0 for nondeterministic)")
	step    = flag.Duration("step", 800*time.Millisecond, "Simulated time between samples")
)

func main() {
	flag.Parse()

	tuning := config.EmptyTuningConfig()

	positions := make([]terrain.Point, tuning.GetSensorCount())
	sx, sy := tuning.GetSensorX(), tuning.GetSensorY()
	for i := range positions {
		positions[i] = terrain.Point{X: sx[i], Y: sy[i]}
	}

	recon, err := terrain.NewReconstructor(terrain.ReconstructorConfig{
		Positions:   positions,
		GridSize:    tuning.GetGridSize(),
		Extent:      tuning.GetDomainExtent(),
		Power:       tuning.GetIDWPower(),
		Coincidence: tuning.GetCoincidenceEpsilon(),
	})
	if err != nil {
		log.Fatalf("failed to build reconstructor: %v", err)
	}

	heatmaps, err := render.NewHeatmapRenderer(*outDir)
	if err != nil {
		log.Fatalf("failed to set up output dir: %v", err)
	}

	// A mock clock drives simulated time so the batch is reproducible and
	// finishes immediately instead of waiting out the sample interval.
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	sim := source.NewSimulator(source.SimulatorConfig{Clock: clock, Seed: *seed})

	state := telemetry.NewState()
	ingestor := telemetry.NewIngestor(telemetry.IngestorConfig{
		Source: sim,
		State:  state,
		Clock:  clock,
	})
	consumer := telemetry.NewConsumer(telemetry.ConsumerConfig{
		State:         state,
		Reconstructor: recon,
		Renderer:      heatmaps,
		Clock:         clock,
	})

	for i := 0; i < *samples; i++ {
		clock.Advance(*step)
		ingestor.Ingest(sim.Sample())
		consumer.Tick()
	}

	log.Printf("rendered %d surfaces to %s", *samples, heatmaps.Dir())
}
