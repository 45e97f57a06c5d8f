package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <claim-id>",
		Short: "Return a claim for review",
		Long: `Send a claim back for review with a reason. The reason is asked for
interactively when --reason is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, err := reasonFor(cmd, "Why is this claim going back for review?")
			if err != nil {
				return err
			}
			return runSingleAction(cmd, args[0], func(ctx context.Context, s *engine.Session) error {
				return s.ReturnForReview(ctx, args[0], reason)
			}, "returned for review")
		},
	}
	cmd.Flags().String("reason", "", "reason shown to the reviewer")
	return cmd
}

func approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <claim-id>",
		Short: "Approve a claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingleAction(cmd, args[0], func(ctx context.Context, s *engine.Session) error {
				return s.Approve(ctx, args[0])
			}, "approved")
		},
	}
}

func rejectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <claim-id>",
		Short: "Reject a claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, err := reasonFor(cmd, "Why is this claim rejected?")
			if err != nil {
				return err
			}
			return runSingleAction(cmd, args[0], func(ctx context.Context, s *engine.Session) error {
				return s.Reject(ctx, args[0], reason)
			}, "rejected")
		},
	}
	cmd.Flags().String("reason", "", "rejection reason shown to the member")
	return cmd
}

// reasonFor returns --reason, or asks for one on stdin.
func reasonFor(cmd *cobra.Command, question string) (string, error) {
	reason := strings.TrimSpace(mustString(cmd, "reason"))
	if reason != "" {
		return reason, nil
	}

	reader := cli.NewLineReader(cmd.InOrStdin(), cmd.ErrOrStderr())
	answer, err := reader.Ask(cmd.Context(), question)
	if err != nil {
		if errors.Is(err, cli.ErrEmptyInput) {
			return "", fmt.Errorf("a reason is required: %w", err)
		}
		return "", err
	}
	return answer, nil
}

func runSingleAction(cmd *cobra.Command, claimID string, action func(context.Context, *engine.Session) error, done string) error {
	ctx := cmd.Context()
	session, closeStore, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer closeStore()

	err = action(ctx, session)
	stale := errors.Is(err, common.ErrStaleReport)
	if err != nil && !stale {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Claim %s %s", claimID, done)))
	printReport(out, session, stale)
	return nil
}

// printReport shows the summary after mutations. When the last re-fetch failed
// the operator is told the figures are not current, and nothing is shown if no
// report was ever loaded.
func printReport(out io.Writer, session *engine.Session, stale bool) {
	if !stale {
		fmt.Fprintln(out, cli.RenderBox("Refreshed report", cli.RenderSummary(session.Result().Summary)))
		return
	}

	fmt.Fprintln(out, cli.FormatWarning(
		"The claims report could not be reloaded; run 'claimdesk report' to check the current state"))
	if session.Source() != engine.SourceNone {
		fmt.Fprintln(out, cli.RenderBox("Last known report", cli.RenderSummary(session.Result().Summary)))
	}
}

func payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <claim-id>...",
		Short: "Mark one or more claims as paid",
		Long: `Mark claims as paid, one at a time. Each payment is confirmed by
re-fetching the report. Ctrl-C stops after the claim in flight.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPay,
	}
}

func runPay(cmd *cobra.Command, ids []string) error {
	session, closeStore, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Payment")
	ctx = handler.HandleInterrupts(ctx, len(ids))

	bar := newPayProgress(cmd.ErrOrStderr(), len(ids))

	var failed []string
	stale := false
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		err := session.MarkAsPaid(ctx, id)
		switch {
		case err == nil:
			stale = false
		case errors.Is(err, common.ErrStaleReport):
			stale = true
			slog.Warn("Claim marked as paid but the report is stale", "claim_id", id, "error", err)
		case ctx.Err() != nil:
		default:
			slog.Warn("Failed to mark claim as paid", "claim_id", id, "error", err)
			failed = append(failed, id)
		}
		if ctx.Err() != nil {
			break
		}
		handler.Done()
		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	if handler.WasInterrupted() {
		return ctx.Err()
	}

	out := cmd.OutOrStdout()
	paid := len(ids) - len(failed)
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d of %d claims marked as paid", paid, len(ids))))
	printReport(out, session, stale)

	if len(failed) > 0 {
		return fmt.Errorf("could not mark %s as paid", strings.Join(failed, ", "))
	}
	return nil
}

// newPayProgress returns nil for a single claim; one payment needs no bar.
func newPayProgress(w io.Writer, total int) *progressbar.ProgressBar {
	if total < 2 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Marking claims as paid...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
