package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/KOMKZ/go-yogan-ioc/container"
	"github.com/KOMKZ/go-yogan-ioc/example/bank"
	"github.com/KOMKZ/go-yogan-ioc/health"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// teller 嵌入式代理对外暴露的方法
type teller interface {
	Open(ctx context.Context, accounts ...*bank.Account) error
	Move(ctx context.Context, fromCardNo, toCardNo string, money int64) error
}

var demoAccounts = []bank.Account{
	{CardNo: "6029621011000", Name: "李大雷", Money: 10000},
	{CardNo: "6029621011001", Name: "韩梅梅", Money: 10000},
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the accounts table and open the demo accounts",
		Args:  cobra.NoArgs,
		RunE: opts.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := do.Invoke[*gorm.DB](opts.app.Injector())
			if err != nil {
				return err
			}
			if err := bank.Migrate(ctx, db); err != nil {
				return err
			}

			c, err := opts.app.Container(ctx)
			if err != nil {
				return err
			}
			t, err := container.Bean[teller](c, "teller")
			if err != nil {
				return err
			}

			accounts := make([]*bank.Account, len(demoAccounts))
			for i := range demoAccounts {
				a := demoAccounts[i]
				accounts[i] = &a
			}
			if err := t.Open(ctx, accounts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "opened %d accounts\n", len(accounts))
			return nil
		}),
	}
}

func newBeansCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "beans",
		Short: "List the beans of the built container",
		Args:  cobra.NoArgs,
		RunE: opts.runE(func(cmd *cobra.Command, args []string) error {
			c, err := opts.app.Container(cmd.Context())
			if err != nil {
				return err
			}

			switch output {
			case "yaml":
				return writeYAML(cmd.OutOrStdout(), newBeansView(c.Beans(), c.ScanFailures()))
			case "table":
			default:
				return fmt.Errorf("unknown output format %q", output)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tPROXY\tTRANSACTIONAL")
			for _, b := range c.Beans() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n",
					b.Name, b.Descriptor.Type, b.Proxy, b.Descriptor.TransactionalMethods())
			}
			for _, failure := range c.ScanFailures() {
				fmt.Fprintf(w, "skipped:\t%v\t\t\n", failure)
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func newAccountsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Show account balances",
		Args:  cobra.NoArgs,
		RunE: opts.runE(func(cmd *cobra.Command, args []string) error {
			c, err := opts.app.Container(cmd.Context())
			if err != nil {
				return err
			}
			dao, err := container.Bean[bank.AccountDao](c, "accountDao")
			if err != nil {
				return err
			}
			accounts, err := dao.FindAll(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CARD\tNAME\tMONEY")
			for _, a := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%d\n", a.CardNo, a.Name, a.Money)
			}
			return w.Flush()
		}),
	}
}

func newTransferCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer FROM TO MONEY",
		Short: "Transfer money between two cards in one transaction",
		Args:  cobra.ExactArgs(3),
		RunE: opts.runE(func(cmd *cobra.Command, args []string) error {
			money, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid money %q: %w", args[2], err)
			}

			c, err := opts.app.Container(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := container.Bean[bank.TransferService](c, "transferService")
			if err != nil {
				return err
			}
			if err := svc.Transfer(cmd.Context(), args[0], args[1], money); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transferred %d from %s to %s\n", money, args[0], args[1])
			return nil
		}),
	}
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the database connections and the container",
		Args:  cobra.NoArgs,
		RunE: opts.runE(func(cmd *cobra.Command, args []string) error {
			agg, err := do.Invoke[*health.Aggregator](opts.app.Injector())
			if err != nil {
				return err
			}
			resp := agg.Check(cmd.Context())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHECK\tSTATUS\tERROR")
			for _, r := range resp.Checks {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, statusText(cmd.OutOrStdout(), r.Status), r.Error)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !resp.IsHealthy() {
				return fmt.Errorf("unhealthy")
			}
			return nil
		}),
	}
}
