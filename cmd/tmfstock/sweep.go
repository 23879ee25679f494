package main

import (
	"time"

	"github.com/spf13/cobra"

	"tmfstock/internal/core"
	"tmfstock/internal/scheduler"
)

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Flag EN_COURS loans past their due date as RETARD and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var extra []core.ServiceOption
			if at != "" {
				now, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return err
				}
				extra = append(extra, core.WithClock(core.ClockFunc(func() time.Time { return now })))
			}
			a, err := loadApp(cmd.Context(), opts, nil, extra...)
			if err != nil {
				return err
			}
			flagged, err := scheduler.New(a.svc, a.logger).SweepOnce(cmd.Context())
			if err != nil {
				return err
			}
			for _, l := range flagged {
				due := ""
				if l.DueDate != nil {
					due = l.DueDate.UTC().Format(time.RFC3339)
				}
				fprintf(opts.out, "%s\t%s\t%s\t%s\n", l.ID, l.ToolName, l.Status, due)
			}
			fprintf(opts.out, "%d loan(s) flagged\n", len(flagged))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate due dates at this RFC 3339 instant instead of now")
	return cmd
}
