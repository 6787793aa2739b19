// Command builddataset joins a World Bank indicator archive with a sample
// guide workbook: for every guide row it derives directional year-over-year
// delta columns per the mapping file, plus a gov_expected_changes aggregate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"wbdcli/internal/config"
	"wbdcli/internal/dataset"
	"wbdcli/internal/guide"
	"wbdcli/internal/infrastructure"
	"wbdcli/internal/mapping"
	"wbdcli/internal/worldbank"
)

// options holds the per-run flag values.
type options struct {
	wbZip      string
	guidePath  string
	mappingCSV string
	output     string
	sheet      string
	countryCol string
	yearCol    string
	agg        string
	configPath string
}

func main() {
	var opts options
	flag.StringVar(&opts.wbZip, "wb-zip", "", "path to the World Bank zip archive (required)")
	flag.StringVar(&opts.guidePath, "guide", "", "path to the sample guide xlsx (required)")
	flag.StringVar(&opts.mappingCSV, "mapping", "", "path to the mapping csv (required)")
	flag.StringVar(&opts.output, "out", "", "output xlsx path (required)")
	flag.StringVar(&opts.sheet, "sheet", "", "guide worksheet name (default: first sheet)")
	flag.StringVar(&opts.countryCol, "country-col", "", "country column header in the guide (default: auto-detect)")
	flag.StringVar(&opts.yearCol, "year-col", "", "year column header in the guide (default: auto-detect)")
	flag.StringVar(&opts.agg, "agg", "", "aggregation for gov_expected_changes: mean | sum (default from config)")
	flag.StringVar(&opts.configPath, "config", "", "optional yaml config file")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	logger = logger.With(slog.String("run_id", uuid.New().String()))

	if err := run(context.Background(), cfg, opts, logger); err != nil {
		logger.Error("dataset build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run executes one dataset build. Any returned error is fatal: the output
// file is only written after every row has been augmented.
func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	if opts.wbZip == "" || opts.guidePath == "" || opts.mappingCSV == "" || opts.output == "" {
		return fmt.Errorf("flags -wb-zip, -guide, -mapping and -out are all required")
	}

	mode := opts.agg
	if mode == "" {
		mode = cfg.Dataset.Aggregation
	}

	logger.Info("starting dataset build",
		slog.String("wb_zip", opts.wbZip),
		slog.String("guide", opts.guidePath),
		slog.String("mapping", opts.mappingCSV),
		slog.String("output", opts.output),
		slog.String("agg", mode))

	table, err := mapping.LoadFile(opts.mappingCSV)
	if err != nil {
		return fmt.Errorf("load mapping: %w", err)
	}
	logger.Info("mapping loaded", slog.Int("entries", table.Len()))

	store, err := worldbank.LoadArchive(opts.wbZip, logger)
	if err != nil {
		return fmt.Errorf("load archive: %w", err)
	}

	wb, err := guide.Open(opts.guidePath, guide.Options{
		Sheet:         opts.sheet,
		CountryColumn: opts.countryCol,
		YearColumn:    opts.yearCol,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("open guide: %w", err)
	}
	defer wb.Close()

	engine, err := dataset.NewEngine(store, table, mode, logger)
	if err != nil {
		return err
	}
	engine.SetWorkers(cfg.Dataset.Workers)

	derived, err := engine.AugmentAll(ctx, wb.Rows())
	if err != nil {
		return err
	}

	if err := wb.Apply(table, derived); err != nil {
		return fmt.Errorf("apply derived columns: %w", err)
	}
	if err := wb.SaveAs(opts.output); err != nil {
		return err
	}

	logger.Info("dataset build complete",
		slog.Int("rows", len(derived)),
		slog.String("output", opts.output))
	return nil
}
