package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/Veraticus/claimdesk/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the filtered claims report",
		Long: `Fetch the claims report and print the claims that match the filters,
followed by counts and totals per status.

Filters combine: a claim is shown only when it passes all of them.`,
		Example: `  claimdesk report --status pending --sort amountDesc
  claimdesk report --search acme --min 100 --max 500
  claimdesk report --from 2024-01-01 --to 2024-03-31 --format csv`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}

	addCriteriaFlags(cmd.Flags())
	cmd.Flags().String("format", string(cli.FormatTable), "output format (table, json, csv)")
	cmd.Flags().Bool("offline", false, "use the last cached snapshot instead of the API")

	return cmd
}

// addCriteriaFlags registers one flag per criteria dimension.
func addCriteriaFlags(flags *pflag.FlagSet) {
	flags.String("search", "", "case-insensitive text to find in member, policy, description or provider")
	flags.String("status", string(report.ScopeAll), "status scope (all, approved, rejected, pending)")
	flags.String("provider", string(report.ProviderAll), "provider role (all, DOCTOR, PHARMACIST, LAB_TECH, RADIOLOGIST, INSURANCE_CLIENT, OTHER)")
	flags.String("policy", report.PolicyAll, "exact policy name")
	flags.Float64("min", 0, "minimum amount, inclusive")
	flags.Float64("max", 0, "maximum amount, inclusive (default: largest claim amount)")
	flags.String("from", "", "earliest submission date, YYYY-MM-DD")
	flags.String("to", "", "latest submission date, YYYY-MM-DD")
	flags.String("sort", string(report.SortDateDesc), "sort key (dateDesc, dateAsc, amountDesc, amountAsc, memberNameAsc)")
}

// criteriaFromFlags starts from defaults and applies each flag the user set.
func criteriaFromFlags(flags *pflag.FlagSet, defaults report.Criteria) (report.Criteria, error) {
	c := defaults

	search, _ := flags.GetString("search")
	c.SetSearchQuery(strings.TrimSpace(search))

	status, _ := flags.GetString("status")
	scope, err := report.ParseStatusScope(status)
	if err != nil {
		return c, err
	}
	c.SetStatusScope(scope)

	provider, _ := flags.GetString("provider")
	role, err := report.ParseProviderFilter(provider)
	if err != nil {
		return c, err
	}
	c.SetProviderFilter(role)

	policy, _ := flags.GetString("policy")
	c.SetPolicyFilter(strings.TrimSpace(policy))

	sortName, _ := flags.GetString("sort")
	key, err := report.ParseSortKey(sortName)
	if err != nil {
		return c, err
	}
	c.SetSortKey(key)

	minAmount, maxAmount := c.AmountMin, c.AmountMax
	if flags.Changed("min") {
		minAmount, _ = flags.GetFloat64("min")
	}
	if flags.Changed("max") {
		maxAmount, _ = flags.GetFloat64("max")
	}
	c.SetAmountRange(minAmount, maxAmount)

	from, _ := flags.GetString("from")
	dateFrom, err := report.ParseDate(from)
	if err != nil {
		return c, err
	}
	c.SetDateFrom(dateFrom)

	to, _ := flags.GetString("to")
	dateTo, err := report.ParseDate(to)
	if err != nil {
		return c, err
	}
	c.SetDateTo(dateTo)

	return c, nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}
	offline, _ := cmd.Flags().GetBool("offline")

	ctx := cmd.Context()
	session, closeStore, err := openSession(ctx, offline)
	if err != nil {
		return err
	}
	defer closeStore()

	warning, err := loadReport(ctx, session, offline)
	if err != nil {
		return err
	}
	if warning != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(warning))
	}

	if err := applyFlags(cmd, session); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatTable {
		if filters := cli.DescribeCriteria(session.Criteria(), session.Defaults()); len(filters) > 0 {
			fmt.Fprintf(out, "%s %s\n\n", cli.FilterIcon, cli.SubtleStyle.Render(strings.Join(filters, " | ")))
		}
	}
	return cli.WriteReport(out, format, session.Result())
}

// applyFlags turns the criteria flags into one session update.
func applyFlags(cmd *cobra.Command, session *engine.Session) error {
	criteria, err := criteriaFromFlags(cmd.Flags(), session.Defaults())
	if err != nil {
		return err
	}
	session.Apply(criteria)
	return nil
}

func mustString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}
