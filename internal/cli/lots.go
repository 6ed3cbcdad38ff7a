package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutcparking/parkspace/internal/filter"
	"github.com/nutcparking/parkspace/internal/lot"
	"github.com/nutcparking/parkspace/internal/scraper"
)

// filterFlags are the lot selection flags shared by lots and watch
type filterFlags struct {
	types         []string
	names         []string
	minAvailable  int
	knownCapacity bool
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.types, "type", "t", nil, "Parking type: motorcycle or car (repeatable)")
	cmd.Flags().StringSliceVarP(&f.names, "name", "n", nil, "Only lots whose name contains this text (repeatable)")
	cmd.Flags().IntVar(&f.minAvailable, "min-available", 0, "Only lots with at least this many free spaces")
	cmd.Flags().BoolVar(&f.knownCapacity, "known-capacity", false, "Only lots whose total capacity is published")
}

func (f *filterFlags) build() (*filter.Filter, error) {
	types, err := filter.ParseTypes(f.types)
	if err != nil {
		return nil, err
	}
	if f.minAvailable < 0 {
		return nil, fmt.Errorf("--min-available must be >= 0")
	}

	flt := filter.NewFilter()
	flt.Types = types
	flt.Names = f.names
	flt.MinAvailable = f.minAvailable
	flt.KnownCapacity = f.knownCapacity
	return flt, nil
}

type lotsOptions struct {
	filter  filterFlags
	sort    string
	top     int
	verbose bool
}

func newLotsCmd(root *rootOptions) *cobra.Command {
	opts := &lotsOptions{}

	cmd := &cobra.Command{
		Use:   "lots",
		Short: "Show the current free spaces once",
		Long: `Fetch the parking status page once and print every lot.

Exit codes: 0 on success, 1 on error, 2 when the page was read but held no lots.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLots(cmd, root, opts)
		},
	}

	opts.filter.bind(cmd)
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "document", "Sort order: document, available, name or type")
	cmd.Flags().IntVar(&opts.top, "top", 0, "Show at most this many lots (0 = all)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show lot IDs and data quality notes")

	return cmd
}

func runLots(cmd *cobra.Command, root *rootOptions, opts *lotsOptions) error {
	flt, err := opts.filter.build()
	if err != nil {
		return err
	}
	order, ok := lot.ParseSortOrder(opts.sort)
	if !ok {
		return fmt.Errorf("invalid sort: %s (must be document, available, name or type)", opts.sort)
	}

	sc, err := root.newScraper()
	if err != nil {
		return err
	}

	res, err := sc.Fetch(cmd.Context())
	if err != nil {
		var empty *scraper.EmptyResultError
		if !errors.As(err, &empty) {
			return fmt.Errorf("fetching lots: %w", err)
		}
		result := &LotsResult{
			CheckedAt: time.Now().UTC(),
			Lots:      []lot.Lot{},
			Missing:   empty.Missing,
			Error:     scraper.UserMessage(err),
		}
		if err := WriteLots(root.out, result, root.output, opts.verbose); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return &exitError{code: ExitEmpty}
	}

	lots := lot.Sorted(flt.Apply(res.Lots), order)
	if opts.top > 0 {
		lots = lot.Top(lots, opts.top)
	}

	result := &LotsResult{
		CheckedAt: res.FetchedAt,
		Lots:      lots,
		Count:     len(lots),
		Missing:   res.Missing,
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	if err := WriteLots(root.out, result, root.output, opts.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
