package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"facturas/internal/core"
	"facturas/internal/details"
	"facturas/internal/repository"
	"facturas/internal/viewstate"
)

type listOptions struct {
	statuses    []string
	from, to    string
	min, max    string
	simulated   bool
	offline     bool
	withDetails bool
}

func listCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the billing records, optionally filtered",
		Long: `Load the billing records (refreshing them unless --offline is given) and
print the ones matching every filter. Dates use the dd/mm/yyyy format and
amounts accept a decimal comma or dot.

Examples:
  facturas list --status Pagada
  facturas list --from 01/03/2024 --to 31/03/2024
  facturas list --min 50 --max 150 --offline`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.statuses, "status", nil, "keep only these statuses (repeatable)")
	cmd.Flags().StringVar(&opts.from, "from", "", "earliest issue date, dd/mm/yyyy")
	cmd.Flags().StringVar(&opts.to, "to", "", "latest issue date, dd/mm/yyyy")
	cmd.Flags().StringVar(&opts.min, "min", "", "minimum amount")
	cmd.Flags().StringVar(&opts.max, "max", "", "maximum amount (defaults to the largest amount)")
	cmd.Flags().BoolVar(&opts.simulated, "simulated", false, "use the simulated backend")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "show the cached records without fetching")
	cmd.Flags().BoolVar(&opts.withDetails, "details", false, "also print the installation details")
	return cmd
}

func runList(cmd *cobra.Command, opts listOptions) error {
	ctx := cmd.Context()

	statuses, err := parseStatuses(opts.statuses)
	if err != nil {
		return err
	}
	min, max, err := parseAmountBounds(opts.min, opts.max)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appConfig)
	if err != nil {
		return err
	}
	defer a.Close()

	var refresher viewstate.Refresher = a.records
	if opts.offline {
		refresher = cachedRefresher{a.records}
	}
	coord := viewstate.New(refresher, a.logger)
	defer coord.Close()

	// criteria set before the load are applied when it completes
	coord.SetStatuses(statuses...)
	if err := coord.SetStartDate(opts.from); err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	if err := coord.SetEndDate(opts.to); err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}

	var info []core.InstallationDetails
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return coord.LoadInitial(gctx, opts.simulated)
	})
	if opts.withDetails {
		g.Go(func() error {
			list, err := a.details.Get(gctx)
			if err != nil && !errors.Is(err, details.ErrUnavailable) {
				return err
			}
			info = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if min != nil || max != nil {
		lo, hi := decimal.Zero, coord.MaxAmount()
		if min != nil {
			lo = *min
		}
		if max != nil {
			hi = *max
		}
		coord.SetAmountRange(lo, hi)
	}

	out := cmd.OutOrStdout()
	if err := renderState(out, coord.State()); err != nil {
		return err
	}
	if opts.withDetails {
		fmt.Fprintln(out)
		return renderDetails(out, info)
	}
	return nil
}

// cachedRefresher serves the cache as a fallback result without
// contacting any backend.
type cachedRefresher struct {
	repo *repository.Repository
}

func (c cachedRefresher) Refresh(ctx context.Context, _ bool) (repository.Result, error) {
	records, err := c.repo.Cached(ctx)
	if err != nil {
		return repository.Result{}, err
	}
	return repository.Result{Records: records, Origin: repository.OriginCache}, nil
}

func parseStatuses(labels []string) ([]core.Status, error) {
	var out []core.Status
	for _, label := range labels {
		s, err := core.ParseStatus(label)
		if err != nil {
			return nil, fmt.Errorf("invalid --status %q: must be one of %s", label, statusList())
		}
		out = append(out, s)
	}
	return out, nil
}

func statusList() string {
	names := make([]string, 0, len(core.Statuses()))
	for _, s := range core.Statuses() {
		names = append(names, fmt.Sprintf("%q", s))
	}
	return strings.Join(names, ", ")
}

func parseAmountBounds(min, max string) (*decimal.Decimal, *decimal.Decimal, error) {
	parse := func(flag, text string) (*decimal.Decimal, error) {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		d, err := core.ParseAmount(text)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", flag, text, err)
		}
		return &d, nil
	}

	lo, err := parse("min", min)
	if err != nil {
		return nil, nil, err
	}
	hi, err := parse("max", max)
	if err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}
