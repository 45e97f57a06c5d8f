package main

import (
	"github.com/Veraticus/claimdesk/internal/tui"
	"github.com/Veraticus/claimdesk/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse claims interactively",
		Long: `Open the claims report in a terminal UI. Every filter change re-renders
immediately from the fetched snapshot; claim actions re-fetch the whole report.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}

	addCriteriaFlags(cmd.Flags())
	cmd.Flags().Bool("offline", false, "browse the last cached snapshot; claim actions are disabled")
	cmd.Flags().String("theme", "", "color theme (default, catppuccin-mocha)")
	cmd.Flags().Bool("no-summary", false, "hide the summary panel")

	_ = viper.BindPFlag("ui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	noSummary, _ := cmd.Flags().GetBool("no-summary")

	ctx := cmd.Context()
	session, closeStore, err := openSession(ctx, offline)
	if err != nil {
		return err
	}
	defer closeStore()

	// Offline sessions start from the cache; online ones fetch once the UI is up.
	if offline {
		if _, err := loadReport(ctx, session, true); err != nil {
			return err
		}
	}
	if err := applyFlags(cmd, session); err != nil {
		return err
	}

	opts := []tui.Option{
		tui.WithTheme(themes.GetTheme(viper.GetString("ui.theme"))),
		tui.WithSummary(!noSummary),
	}
	if viper.IsSet("api.timeout") {
		opts = append(opts, tui.WithRequestTimeout(2*viper.GetDuration("api.timeout")))
	}
	return tui.Run(ctx, session, opts...)
}
