package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tmfstock/internal/reports"
	"tmfstock/pkg/stockview"
)

type reportFlags struct {
	technician string
	product    string
	from       string
	to         string
	utc        bool
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:       "report {consumption|history}",
		Short:     "Write a movement report as CSV to stdout",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{reports.KindConsumption, reports.KindHistory},
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := time.Local
			if f.utc {
				loc = time.UTC
			}
			from, to, err := stockview.DayRange(f.from, f.to, loc)
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			snap := a.svc.Snapshot()
			movements := stockview.FilterMovements(snap.Movements, stockview.MovementFilter{
				TechnicianID: f.technician,
				ProductID:    f.product,
				From:         from,
				To:           to,
			})
			switch args[0] {
			case reports.KindConsumption:
				return reports.WriteConsumption(opts.out, stockview.BuildTechnicianConsumptionRows(movements, snap.Products, snap.Technicians))
			case reports.KindHistory:
				return reports.WriteHistory(opts.out, stockview.BuildMovementHistoryRows(movements, snap.Products, snap.Technicians))
			}
			return fmt.Errorf("unknown report %q", args[0])
		},
	}
	cmd.Flags().StringVar(&f.technician, "technician", "", "technician id, or all")
	cmd.Flags().StringVar(&f.product, "product", "", "product id, or all")
	cmd.Flags().StringVar(&f.from, "from", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day included (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.utc, "utc", false, "interpret --from/--to in UTC instead of local time")
	return cmd
}
