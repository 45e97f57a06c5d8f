package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/report"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List claim actions taken from this machine",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().String("claim", "", "only actions on this claim")
	cmd.Flags().String("since", "", "only actions on or after this date, YYYY-MM-DD")
	cmd.Flags().Int("limit", 50, "maximum number of actions")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	filter := service.ActionFilter{ClaimID: mustString(cmd, "claim")}
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	since, err := report.ParseDate(mustString(cmd, "since"))
	if err != nil {
		return err
	}
	filter.Since = since

	session, closeStore, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer closeStore()

	actions, err := session.RecentActions(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to load actions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(actions) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No claim actions recorded yet."))
		return nil
	}

	fmt.Fprintln(out, cli.FormatTitle("Claim actions"))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		cli.BoldStyle.Render("WHEN"),
		cli.BoldStyle.Render("CLAIM"),
		cli.BoldStyle.Render("ACTION"),
		cli.BoldStyle.Render("REASON"),
	)
	for _, a := range actions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			a.PerformedAt.Local().Format("2006-01-02 15:04"),
			a.ClaimID,
			describeAction(a.Type),
			orDash(a.Reason),
		)
	}
	return tw.Flush()
}

func describeAction(t model.ActionType) string {
	switch t {
	case model.ActionMarkPaid:
		return "mark paid"
	case model.ActionReturnForReview:
		return "return for review"
	default:
		return string(t)
	}
}

func orDash(s string) string {
	if s == "" {
		return cli.Missing
	}
	return s
}
