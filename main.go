package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cansat-data/terrain.report/internal/config"
	"github.com/cansat-data/terrain.report/internal/monitor"
	"github.com/cansat-data/terrain.report/internal/monitoring"
	"github.com/cansat-data/terrain.report/internal/render"
	"github.com/cansat-data/terrain.report/internal/serialmux"
	"github.com/cansat-data/terrain.report/internal/source"
	"github.com/cansat-data/terrain.report/internal/telemetry"
	"github.com/cansat-data/terrain.report/internal/terrain"
	"github.com/cansat-data/terrain.report/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to station YAML config")
	demoMode   = flag.Bool("demo", false, "Generate simulated terrain data instead of reading the serial port")
	listen     = flag.String("listen", "", "Listen address (overrides station config)")
	device     = flag.String("port", "", "Serial device path (overrides station config)")
	renderDir  = flag.String("render-dir", "", "Write PNG heatmaps under this directory (overrides station config)")
	verbose    = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	monitoring.SetDebug(*verbose)
	log.Printf("terrain.report %s (%s)", version.Version, version.GitSHA)

	station := config.DefaultStationConfig()
	if *configPath != "" {
		var err error
		station, err = config.LoadStationConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load station config: %v", err)
		}
	}
	if *listen != "" {
		station.Listen = *listen
	}
	if *device != "" {
		station.Mode = "serial"
		station.Serial.Device = *device
	}
	if *demoMode {
		station.Mode = "sim"
	}
	if *renderDir != "" {
		station.RenderDir = *renderDir
	}

	tuning := config.EmptyTuningConfig()
	if station.TuningPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(station.TuningPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}
	if err := tuning.Validate(); err != nil {
		log.Fatalf("invalid tuning config: %v", err)
	}

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

	state := telemetry.NewState()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Select the reading source. Demo mode is a second implementation of
	// the same producer interface, not a branch inside the ingestion loop.
	var src telemetry.Source
	switch station.Mode {
	case "serial":
		mux, err := serialmux.OpenMux(station.Serial.Device, serialmux.PortOptions{
			BaudRate: station.Serial.BaudRate,
			DataBits: station.Serial.DataBits,
			StopBits: station.Serial.StopBits,
			Parity:   station.Serial.Parity,
		})
		if err != nil {
			log.Fatalf("failed to open serial port %s: %v", station.Serial.Device, err)
		}
		defer mux.Close()

		// run the monitor routine to manage IO on the serial port
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mux.Monitor(ctx); err != nil && err != context.Canceled {
				log.Printf("failed to monitor serial port: %v", err)
			}
			log.Print("serial monitor routine terminated")
		}()

		serialSrc := source.NewSerialSource(mux)
		defer serialSrc.Close()
		src = serialSrc

	case "sim":
		log.Print("demo mode: generating simulated terrain data")
		sim := source.NewSimulator(source.SimulatorConfig{Interval: tuning.GetSimInterval()})
		defer sim.Close()
		src = sim

	default:
		log.Fatalf("unknown source mode %q", station.Mode)
	}

	webServer := monitor.NewWebServer(monitor.WebServerConfig{
		Address:       station.Listen,
		State:         state,
		Reconstructor: recon,
	})

	renderers := render.FanOut{
		render.LogRenderer{},
		monitor.NewBroadcastRenderer(webServer.Hub()),
	}
	if station.RenderDir != "" {
		heatmaps, err := render.NewHeatmapRenderer(station.RenderDir)
		if err != nil {
			log.Fatalf("failed to set up heatmap output: %v", err)
		}
		log.Printf("writing heatmaps to %s", heatmaps.Dir())
		renderers = append(renderers, heatmaps)
	}

	// ingestion routine: source -> shared state
	ingestor := telemetry.NewIngestor(telemetry.IngestorConfig{
		Source:           src,
		State:            state,
		MinValidDistance: tuning.GetMinValidDistance(),
		MaxValidDistance: tuning.GetMaxValidDistance(),
		Thresholds: telemetry.Thresholds{
			Hazard: tuning.GetHazardThreshold(),
			Uneven: tuning.GetUnevenThreshold(),
		},
		Backoff: tuning.GetSourceBackoff(),
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ingestor.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("ingestion loop error: %v", err)
		}
		log.Print("ingestion routine terminated")
	}()

	// snapshot consumer routine: shared state -> surface -> renderers
	consumer := telemetry.NewConsumer(telemetry.ConsumerConfig{
		State:         state,
		Reconstructor: recon,
		Renderer:      renderers,
		Interval:      tuning.GetRenderInterval(),
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("snapshot consumer error: %v", err)
		}
		log.Print("snapshot consumer routine terminated")
	}()

	// HTTP server routine
	wg.Add(1)
	go func() {
		defer wg.Done()
		webServer.Start(ctx)
	}()

	wg.Wait()
	// give the log a moment to flush on some terminals
	time.Sleep(10 * time.Millisecond)
	log.Printf("graceful shutdown complete")
}
