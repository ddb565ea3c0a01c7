package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gotravel/internal/buildinfo"
	"gotravel/internal/catalog"
	"gotravel/internal/config"
	"gotravel/internal/integrations"
	"gotravel/internal/integrations/csvfile"
	"gotravel/internal/itinerary"
	"gotravel/internal/metrics"
	"gotravel/internal/response"
	"gotravel/internal/scoring"
	"gotravel/internal/trip"
)

func main() {
	var (
		configPath  = flag.String("config", "", "config file (default: ./config.yaml if present)")
		tripPath    = flag.String("trip", "-", "trip file, YAML or JSON; - reads stdin")
		outPath     = flag.String("out", "-", "itinerary output; - writes stdout")
		days        = flag.Int("days", 0, "number of days (overrides config, not the trip file)")
		budget      = flag.Duration("budget", 0, "solver time budget (overrides config)")
		metricsFile = flag.String("metrics-file", "", "write Prometheus textfile metrics here")
		placesCSV   = flag.String("places", "", "CSV export of extra enriched places (single trip only)")
		parallel    = flag.Int("parallel", 2, "trips planned at once when several trip files are given as arguments")
		version     = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(buildinfo.String())
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *days > 0 {
		cfg.Planner.Days = *days
	}
	if *budget > 0 {
		cfg.Planner.TimeBudget = *budget
	}
	if *metricsFile != "" {
		cfg.Metrics.Textfile = *metricsFile
	}

	// stdout may carry the itinerary
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flag.NArg() > 0 {
		err = runBatch(ctx, cfg, logger, flag.Args(), *outPath, *parallel)
	} else {
		err = run(ctx, cfg, logger, *tripPath, *placesCSV, *outPath)
	}
	if err != nil {
		logger.Error("planning failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func loadTables(cfg *config.Config, logger *slog.Logger) (*catalog.Tables, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	f, err := os.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog overlay: %w", err)
	}
	defer f.Close()
	tables, err := catalog.Load(f)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog overlay loaded", "path", cfg.Catalog.Path)
	return tables, nil
}

func newPipeline(cfg *config.Config, tables *catalog.Tables, logger *slog.Logger) *trip.Pipeline {
	pc := cfg.Planner
	router := itinerary.NewRouter(tables, itinerary.Config{
		SpeedKmh:         pc.SpeedKmh,
		HopBufferMinutes: pc.HopBufferMinutes,
		DayStartMinute:   pc.DayStartMinute,
		DayEndMinute:     pc.DayEndMinute,
		MaxWaitMinutes:   pc.MaxWaitMinutes,
		PrizeScale:       pc.PrizeScale,
		Seed:             pc.Seed,
		MaxIterations:    pc.MaxIterations,
	}, itinerary.WithLogger(logger))
	return &trip.Pipeline{
		Scorer:         scoring.New(tables),
		Router:         router,
		DayStartMinute: pc.DayStartMinute,
		Weekday:        time.Weekday(pc.StartWeekday),
		Log:            logger,
	}
}

func loadTrip(path string) (*trip.File, error) {
	in, closeIn, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer closeIn()
	tf, err := trip.Load(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tf, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, tripPath, placesCSV, outPath string) error {
	tables, err := loadTables(cfg, logger)
	if err != nil {
		return err
	}
	tf, err := loadTrip(tripPath)
	if err != nil {
		return err
	}
	if placesCSV != "" {
		extra, err := integrations.Collect(ctx, csvfile.Adapter{Path: placesCSV})
		if err != nil {
			return fmt.Errorf("load places: %w", err)
		}
		tf.Places = append(tf.Places, extra...)
		if err := tf.Validate(); err != nil {
			return err
		}
		logger.Info("places imported", "source", placesCSV, "count", len(extra))
	}

	start := time.Now()
	doc, plan, runErr := newPipeline(cfg, tables, logger).Run(ctx, tf, cfg.Planner.Days, cfg.Planner.TimeBudget)
	if plan != nil {
		logger.Info("itinerary ready",
			"plan", plan.ID,
			"state", string(plan.State),
			"visited", plan.Visited(),
			"dropped", doc.Trip.PlacesDropped,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}
	if err := writeOutput(outPath, doc); err != nil {
		return err
	}
	if err := writeMetrics(cfg); err != nil {
		return err
	}
	return runErr
}

func runBatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, paths []string, outPath string, parallel int) error {
	tables, err := loadTables(cfg, logger)
	if err != nil {
		return err
	}
	files := make([]*trip.File, 0, len(paths))
	for _, p := range paths {
		tf, err := loadTrip(p)
		if err != nil {
			return err
		}
		files = append(files, tf)
	}
	start := time.Now()
	docs, runErr := newPipeline(cfg, tables, logger).RunAll(ctx, files, cfg.Planner.Days, cfg.Planner.TimeBudget, parallel)
	logger.Info("batch finished", "trips", len(files), "elapsed", time.Since(start).Round(time.Millisecond))
	if err := writeOutput(outPath, docs); err != nil {
		return err
	}
	if err := writeMetrics(cfg); err != nil {
		return err
	}
	return runErr
}

func writeOutput(path string, v any) error {
	out, closeOut, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := response.Write(out, v); err != nil {
		closeOut()
		return fmt.Errorf("write itinerary: %w", err)
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("write itinerary: %w", err)
	}
	return nil
}

func writeMetrics(cfg *config.Config) error {
	if cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" || path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open trip file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" || path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
