package main

import (
	"context"
	"time"

	"github.com/KOMKZ/go-yogan-ioc/application"
	"github.com/KOMKZ/go-yogan-ioc/example/bank"
	"github.com/KOMKZ/go-yogan-ioc/scanner"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// 命令行参数 -> 配置 key
var flagBindings = map[string]string{
	"scan-root": "ioc.scan_root",
	"trace":     "telemetry.enabled",
	"metrics":   "telemetry.metrics.enabled",
}

type rootOptions struct {
	configPath string
	envPrefix  string
	app        *application.Application
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "yogan-ioc",
		Short:         "Bank transfer sample running on the yogan IoC container",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "./configs", "config directory (config.yaml, <env>.yaml)")
	flags.StringVar(&opts.envPrefix, "env-prefix", "YOGAN", "environment variable prefix")
	flags.String("scan-root", "", "namespace to scan (overrides ioc.scan_root)")
	flags.Bool("trace", false, "export spans to stdout (overrides telemetry.enabled)")
	flags.Bool("metrics", false, "export metrics to stdout (overrides telemetry.metrics.enabled)")

	cmd.AddCommand(
		newSeedCmd(opts),
		newBeansCmd(opts),
		newAccountsCmd(opts),
		newTransferCmd(opts),
		newHealthCmd(opts),
	)
	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	catalog := scanner.NewCatalog()
	o.app = application.New(catalog,
		application.WithConfigPath(o.configPath),
		application.WithConfigPrefix(o.envPrefix),
		application.WithFlags(cmd.Flags(), flagBindings),
	)
	injector := o.app.Injector()
	bank.Register(catalog, func() (*gorm.DB, error) {
		return do.Invoke[*gorm.DB](injector)
	})
	if err := o.app.Setup(cmd.Context()); err != nil {
		o.shutdown()
		return err
	}
	return nil
}

// runE 命令结束后关闭应用（数据库连接、telemetry 刷新）
func (o *rootOptions) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer o.shutdown()
		return fn(cmd, args)
	}
}

func (o *rootOptions) shutdown() {
	if o.app == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	o.app.Shutdown(ctx)
}
