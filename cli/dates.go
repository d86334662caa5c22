package cli

import (
	"fmt"
	"math/rand/v2"

	"hotel-rates-scraper/config"
	"hotel-rates-scraper/daterange"
	"hotel-rates-scraper/models"

	"github.com/spf13/cobra"
)

type datesOptions struct {
	start   string
	horizon int
	seed    uint64
}

func newDatesCmd(global *globalOptions) *cobra.Command {
	opts := &datesOptions{}

	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Print the stay windows a scrape would sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseStart(opts.start)
			if err != nil {
				return err
			}

			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(opts.seed, opts.seed))
			}

			ranges := daterange.Generate(start, opts.horizon, rng)
			global.logger.Debug("generated date ranges", "count", len(ranges), "months", daterange.CountMonths(start, opts.horizon))
			out := cmd.OutOrStdout()
			for _, r := range ranges {
				fmt.Fprintf(out, "%s\t%s\n", r.CheckIn.Format(models.DateLayout), r.CheckOut.Format(models.DateLayout))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "first day of the horizon, YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&opts.horizon, "horizon", config.DefaultHorizonDays, "number of days to sample")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the sampled week (default: random)")
	return cmd
}
