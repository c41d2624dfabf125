package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/accountledger/internal/adapter/http/dto"
	"github.com/iho/accountledger/internal/infrastructure/postgres"
)

// Overridable in tests.
var (
	runMigrationsUp   = postgres.RunMigrations
	runMigrationsDown = postgres.RunMigrationsDown
)

type options struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ledger-cli",
		Short:         "Account ledger CLI tool",
		Long:          `A command line interface for interacting with the account ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("LEDGER_API_URL", "http://localhost:8080"), "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(opts),
		movementCmd(opts, "deposit", "Deposit funds into an account"),
		movementCmd(opts, "withdraw", "Withdraw funds from an account"),
		statementCmd(opts),
		reconcileCmd(opts),
		ledgerCmd(opts),
		migrateCmd(),
	)

	return rootCmd
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.timeout)
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var (
		personID       int64
		accountType    int16
		dailyLimit     float64
		idempotencyKey string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open an account for a person",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateAccountRequest{
				PersonID:             personID,
				AccountType:          accountType,
				DailyWithdrawalLimit: &dailyLimit,
			}
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/accounts/", req, idempotencyKey, &resp); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	createCmd.Flags().Int64Var(&personID, "person", 0, "Owner person id")
	createCmd.Flags().Int16Var(&accountType, "type", 1, "Account type (1 checking, 2 savings)")
	createCmd.Flags().Float64Var(&dailyLimit, "daily-limit", 0, "Daily withdrawal limit")
	createCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	_ = createCmd.MarkFlagRequired("person")

	getCmd := &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+args[0], nil, "", &resp); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BalanceResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+args[0]+"/balance", nil, "", &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %d balance: %s\n", resp.AccountID, resp.Balance)
			return nil
		},
	}

	blockCmd := &cobra.Command{
		Use:   "block <account-id>",
		Short: "Block an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/accounts/"+args[0]+"/block", nil, "", &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %d blocked\n", resp.AccountID)
			return nil
		},
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListAccountsResponse
			path := "/api/v1/accounts/?" + pageValues(limit, offset).Encode()
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, "", &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPERSON\tTYPE\tBALANCE\tDAILY LIMIT\tACTIVE")
			for _, a := range resp.Accounts {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%v\n", a.AccountID, a.PersonID, a.AccountType, a.Balance, a.DailyWithdrawalLimit, a.ActiveFlag)
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(createCmd, getCmd, balanceCmd, blockCmd, listCmd)
	return cmd
}

func movementCmd(opts *options, action, short string) *cobra.Command {
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   action + " <account-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			var resp dto.MovementResponse
			path := "/api/v1/accounts/" + args[0] + "/" + action
			if err := opts.client().do(cmd.Context(), http.MethodPost, path, dto.MovementRequest{Value: value}, idempotencyKey, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction %d recorded, new balance: %s\n", resp.TransactionID, resp.NewBalance)
			return nil
		},
	}
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")

	return cmd
}

func statementCmd(opts *options) *cobra.Command {
	var (
		limit, offset int
		from, to      string
	)

	cmd := &cobra.Command{
		Use:   "statement <account-id>",
		Short: "Show an account statement, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := pageValues(limit, offset)
			if from != "" {
				q.Set("from", from)
			}
			if to != "" {
				q.Set("to", to)
			}

			var resp dto.StatementResponse
			path := "/api/v1/accounts/" + args[0] + "/statements?" + q.Encode()
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, "", &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tVALUE")
			for _, item := range resp.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", item.TransactionID, item.TransactionDate.Format(time.RFC3339), truncate(item.Type, 10), item.Value)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Showing %d of %d transactions\n", len(resp.Items), resp.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size (1-100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.Flags().StringVar(&from, "from", "", "Inclusive lower bound (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "Inclusive upper bound (RFC3339)")

	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Reconcile one account, or the whole ledger when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()

			if len(args) == 0 {
				var resp dto.ReconciliationReportResponse
				if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconciliation", nil, "", &resp); err != nil {
					return err
				}
				printJSON(cmd.OutOrStdout(), resp)
				if !resp.LedgerConsistent {
					return fmt.Errorf("%d account(s) out of balance", len(resp.Discrepancies))
				}
				return nil
			}

			var resp dto.ReconciliationResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+args[0]+"/reconciliation", nil, "", &resp); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), resp)
			if !resp.IsReconciled {
				return fmt.Errorf("account %d is off by %s", resp.AccountID, resp.Difference)
			}
			return nil
		},
	}
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.ConsistencyResponse
			err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, "", &result)

			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Consistency check FAILED\n")
				for _, d := range result.Discrepancies {
					fmt.Fprintf(out, "  account %d: recorded %s, entries %s\n", d.AccountID, d.RecordedBalance, d.EntriesTotal)
				}
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Consistency check PASSED\nConsistent: %v\nStatus: %s\n", result.Consistent, result.Status)
			return nil
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.PersistentFlags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			if err := runMigrationsUp(databaseURL, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			if err := runMigrationsDown(databaseURL, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func pageValues(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
