package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotel-rates-scraper/config"
	"hotel-rates-scraper/fetcher"
	"hotel-rates-scraper/filter"
	"hotel-rates-scraper/models"
	"hotel-rates-scraper/parser"
	"hotel-rates-scraper/pipeline"
	"hotel-rates-scraper/report"
	"hotel-rates-scraper/sheets"

	"github.com/spf13/cobra"
)

type scrapeOptions struct {
	hotels         []string
	hotelsFile     string
	country        string
	currency       string
	start          string
	horizon        int
	backend        string
	concurrency    int
	timeout        time.Duration
	format         string
	seed           uint64
	spreadsheetURL string
	credentials    string
	showFailures   bool
}

func newScrapeCmd(global *globalOptions) *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch room rates and print the cheapest offer per stay",
		Long: `Fetches every hotel for one sampled 7-night stay per calendar month of the
horizon, then keeps the cheapest price per (check-in, check-out, room type).`,
		Example: `  hotel-rates scrape --hotel marina-bay-sands --country sg --currency SGD
  hotel-rates scrape --hotels-file hotels.txt --country gb --currency GBP --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, global, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.hotels, "hotel", nil, "hotel page identifier, e.g. marina-bay-sands (repeatable)")
	flags.StringVar(&opts.hotelsFile, "hotels-file", "", "file with one hotel identifier per line")
	flags.StringVar(&opts.country, "country", "", "ISO 3166-1 alpha-2 country code of the hotels")
	flags.StringVar(&opts.currency, "currency", "", "ISO 4217 currency code for prices")
	flags.StringVar(&opts.start, "start", "", "first day of the horizon, YYYY-MM-DD (default: today)")
	flags.IntVar(&opts.horizon, "horizon", config.DefaultHorizonDays, "number of days to sample")
	flags.StringVar(&opts.backend, "backend", config.BackendColly, "fetch backend: colly, resty or browser")
	flags.IntVar(&opts.concurrency, "concurrency", config.DefaultConcurrency, "maximum concurrent requests")
	flags.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "per-request timeout")
	flags.StringVarP(&opts.format, "format", "f", report.FormatTable, "output format: table, markdown, csv or html")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed for the week sampled in each month (default: random)")
	flags.StringVar(&opts.spreadsheetURL, "spreadsheet", "", "Google Sheets URL to export the table to")
	flags.StringVar(&opts.credentials, "credentials", "", "service account JSON file (or use "+sheets.CredentialsEnv+")")
	flags.BoolVar(&opts.showFailures, "show-failures", false, "list every page that could not be fetched")

	return cmd
}

func runScrape(cmd *cobra.Command, global *globalOptions, opts *scrapeOptions) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	opts.applyTo(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !report.ValidFormat(cfg.Output.Format) {
		return fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}

	query, err := opts.query(cmd, cfg)
	if err != nil {
		return err
	}

	logger := global.logger
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := fetcher.New(cfg.Fetch.Backend, fetcher.OptionsFromConfig(cfg.Fetch), logger)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("failed to close fetcher", "error", err)
		}
	}()

	orchestrator := pipeline.NewOrchestrator(f, parser.NewRoomParser(parser.DefaultMarkup), cfg.Fetch.Concurrency, logger)
	orchestrator.SetProgress(func(done, total int) {
		if done == total || done%10 == 0 {
			logger.Info("progress", "done", done, "total", total)
		}
	})
	service := pipeline.NewService(orchestrator, filter.NewFilter(cfg.Filters), logger)

	rep, err := service.Search(ctx, query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rep.Empty {
		if err := report.RenderEmpty(out, rep.Hint); err != nil {
			return err
		}
	} else if err := report.Render(out, rep.Table, cfg.Output.Format); err != nil {
		return err
	}

	if n := len(rep.Failures); n > 0 {
		cmd.PrintErrf("%d of %d pages could not be fetched\n", n, rep.Stats.Targets)
		if opts.showFailures {
			report.RenderFailures(cmd.ErrOrStderr(), rep.Failures)
		}
	}
	if rep.Cancelled {
		cmd.PrintErrln("Run cancelled; the table only covers completed pages.")
	}

	if cfg.Output.SpreadsheetURL != "" && !rep.Empty {
		return exportToSheets(ctx, cmd, logger, cfg, rep)
	}
	return nil
}

// applyTo overrides configuration values with flags given on the command line
func (o *scrapeOptions) applyTo(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("country") {
		cfg.Search.Country = o.country
	}
	if flags.Changed("currency") {
		cfg.Search.Currency = o.currency
	}
	if flags.Changed("horizon") {
		cfg.Search.HorizonDays = o.horizon
	}
	if flags.Changed("backend") {
		cfg.Fetch.Backend = o.backend
	}
	if flags.Changed("concurrency") {
		cfg.Fetch.Concurrency = o.concurrency
	}
	if flags.Changed("timeout") {
		cfg.Fetch.Timeout = o.timeout
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("spreadsheet") {
		cfg.Output.SpreadsheetURL = o.spreadsheetURL
	}
	if flags.Changed("credentials") {
		cfg.Output.Credentials = o.credentials
	}
}

// query assembles the search input from flags, the hotels file and the configuration
func (o *scrapeOptions) query(cmd *cobra.Command, cfg *config.Config) (pipeline.Query, error) {
	q := pipeline.Query{
		Country:     cfg.Search.Country,
		Currency:    cfg.Search.Currency,
		HorizonDays: cfg.Search.HorizonDays,
	}

	q.Hotels = append(q.Hotels, cfg.Search.Hotels...)
	q.Hotels = append(q.Hotels, o.hotels...)
	if o.hotelsFile != "" {
		data, err := os.ReadFile(o.hotelsFile)
		if err != nil {
			return q, fmt.Errorf("failed to read hotels file: %w", err)
		}
		q.Hotels = append(q.Hotels, pipeline.ParseHotelList(string(data))...)
	}

	start, err := parseStart(o.start)
	if err != nil {
		return q, err
	}
	q.Start = start

	if cmd.Flags().Changed("seed") {
		q.Rand = rand.New(rand.NewPCG(o.seed, o.seed))
	}
	return q, nil
}

func exportToSheets(ctx context.Context, cmd *cobra.Command, logger *slog.Logger, cfg *config.Config, rep *pipeline.Report) error {
	creds, err := sheets.LoadCredentials(cfg.Output.Credentials)
	if err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, cfg.Output.SpreadsheetURL, creds, logger)
	if err != nil {
		return err
	}

	sheetName := fmt.Sprintf("Rates_%s_%s", rep.Query.Country, rep.Started.Format("20060102_150405"))
	meta := sheets.Meta{
		RunID:    rep.RunID,
		Country:  rep.Query.Country,
		Currency: rep.Query.Currency,
		Filters:  fmt.Sprintf("Min Price: %d, Max Price: %d", cfg.Filters.MinPrice, cfg.Filters.MaxPrice),
	}

	_, sheetID, err := writer.CreateSheetAndWriteTable(ctx, sheetName, rep.Table, meta)
	if err != nil {
		return err
	}
	cmd.PrintErrf("View spreadsheet: %s\n", writer.SheetURL(sheetID))
	return nil
}

// parseStart parses a YYYY-MM-DD date; empty means today
func parseStart(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	start, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q, want YYYY-MM-DD: %w", s, err)
	}
	return start, nil
}
