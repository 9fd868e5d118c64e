package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iho/ledgercheck/internal/adapter/repository/jsonfile"
	"github.com/iho/ledgercheck/internal/domain"
	"github.com/iho/ledgercheck/internal/infrastructure/config"
	"github.com/iho/ledgercheck/internal/infrastructure/idgen"
	"github.com/iho/ledgercheck/internal/infrastructure/logger"
	"github.com/iho/ledgercheck/internal/usecase"
)

var errIssuesFound = errors.New("issues found")

type options struct {
	file           string
	homeCurrencies []string
	verbose        bool
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ledgercheck",
		Short:         "Ledger consistency checker",
		Long:          `Checks a ledger file for broken invariants and applies repairs.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", cfg.LedgerFile, "Ledger file")
	rootCmd.PersistentFlags().StringSliceVar(&opts.homeCurrencies, "home-currency", cfg.HomeCurrencies, "Preferred currencies, most preferred first")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every check")

	rootCmd.AddCommand(
		newChecksCmd(opts),
		newCheckCmd(opts),
		newHealCmd(opts),
		newFixCmd(opts),
	)

	return rootCmd
}

func newChecksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List checks in execution order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, check := range usecase.HealingChecks() {
				fmt.Fprintf(out, "%-26s heals\n", check.Name())
			}
			for _, check := range usecase.ValidatorChecks(usecase.CheckConfig{HomeCurrencies: opts.homeCurrencies}) {
				fmt.Fprintf(out, "%-26s reports\n", check.Name())
			}
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {
	var (
		asJSON       bool
		only         string
		failOnIssues bool
		write        bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run all checks and list the issues found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := open(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			report, err := env.checker.Run(cmd.Context(), env.ledger)
			if err != nil {
				return err
			}

			issues := report.Issues
			if only != "" {
				issues = filterByCheck(issues, only)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				printJSON(out, issueViews(issues))
			} else {
				printIssues(out, issues)
				for _, f := range report.Failures {
					fmt.Fprintf(out, "check %s failed: %v\n", f.Check, f.Err)
				}
			}

			if write {
				if err := env.store.Save(cmd.Context(), env.ledger); err != nil {
					return err
				}
			}

			if failOnIssues && len(issues) > 0 {
				return errIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print issues as JSON")
	cmd.Flags().StringVar(&only, "check", "", "Only list issues of this check")
	cmd.Flags().BoolVar(&failOnIssues, "fail-on-issues", false, "Exit non-zero when issues are found")
	cmd.Flags().BoolVar(&write, "write", false, "Save the healed ledger")

	return cmd
}

func newHealCmd(opts *options) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Run the auto-healing checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := open(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if write {
				if err := env.store.Save(cmd.Context(), env.ledger); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ledger healed and saved to %s\n", env.store.Path())
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ledger healed (dry run, use --write to save)")
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Save the healed ledger")

	return cmd
}

func newFixCmd(opts *options) *cobra.Command {
	var (
		issueNumber int
		fixNumber   int
		write       bool
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Apply one fix of one issue",
		Long:  `Issues and fixes are numbered from 1 as printed by "check".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := open(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			report, err := env.checker.Run(cmd.Context(), env.ledger)
			if err != nil {
				return err
			}
			if issueNumber < 1 || issueNumber > len(report.Issues) {
				return fmt.Errorf("%w: %d (found %d)", domain.ErrIssueNotFound, issueNumber, len(report.Issues))
			}

			issue := report.Issues[issueNumber-1]
			done, err := env.checker.ApplyFix(cmd.Context(), env.ledger, issue, fixNumber-1)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done)

			if write {
				return env.store.Save(cmd.Context(), env.ledger)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&issueNumber, "issue", 0, "Issue number")
	cmd.Flags().IntVar(&fixNumber, "fix", 0, "Fix number")
	cmd.Flags().BoolVar(&write, "write", false, "Save the ledger after fixing")
	_ = cmd.MarkFlagRequired("issue")
	_ = cmd.MarkFlagRequired("fix")

	return cmd
}

type environment struct {
	store   *jsonfile.Store
	ledger  *domain.Ledger
	checker *usecase.ConsistencyUseCase
}

// open loads and heals the ledger file.
func open(ctx context.Context, opts *options, logOut io.Writer) (*environment, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Format: "console", Output: logOut})

	ids := idgen.NewULIDGenerator()
	store := jsonfile.NewStore(opts.file, ids, log)

	ledger, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	checker := usecase.NewConsistencyUseCase(
		usecase.DefaultChecks(usecase.CheckConfig{HomeCurrencies: opts.homeCurrencies}),
		ids,
		nil,
		log,
	)
	if _, err := checker.Heal(ctx, ledger); err != nil {
		return nil, err
	}

	return &environment{store: store, ledger: ledger, checker: checker}, nil
}

func filterByCheck(issues []domain.Issue, check string) []domain.Issue {
	var out []domain.Issue
	for _, issue := range issues {
		if issue.Check == check {
			out = append(out, issue)
		}
	}
	return out
}

func printIssues(w io.Writer, issues []domain.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "No issues found")
		return
	}

	for i, issue := range issues {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, issue.Check, truncate(issue.Label, 120))

		var details []string
		if issue.Entity.Name != "" {
			details = append(details, fmt.Sprintf("%s %q", issue.Entity.Kind, issue.Entity.Name))
		}
		if issue.Date != nil {
			details = append(details, issue.Date.Format("2006-01-02"))
		}
		if issue.Amount != nil {
			details = append(details, issue.Amount.String())
		}
		if issue.Quantity != nil {
			details = append(details, issue.Quantity.String()+" shares")
		}
		if len(details) > 0 {
			fmt.Fprintf(w, "   %s\n", strings.Join(details, ", "))
		}

		if len(issue.Fixes) == 0 {
			fmt.Fprintln(w, "   no automatic fix")
		}
		for j, fix := range issue.Fixes {
			fmt.Fprintf(w, "   %d) %s\n", j+1, fix.Label)
		}
	}
}

type issueView struct {
	Number int      `json:"number"`
	Check  string   `json:"check"`
	Entity string   `json:"entity,omitempty"`
	Label  string   `json:"label"`
	Fixes  []string `json:"fixes"`
}

func issueViews(issues []domain.Issue) []issueView {
	views := make([]issueView, len(issues))
	for i, issue := range issues {
		fixes := make([]string, len(issue.Fixes))
		for j, fix := range issue.Fixes {
			fixes[j] = fix.Label
		}
		views[i] = issueView{
			Number: i + 1,
			Check:  issue.Check,
			Entity: issue.Entity.Name,
			Label:  issue.Label,
			Fixes:  fixes,
		}
	}
	return views
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
