package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/fightlink/internal/config"
	"github.com/John-Robertt/fightlink/internal/logging"
)

// appContext 在子命令之间共享全局 flag 与加载后的配置。
type appContext struct {
	configFlag   string
	catalogFlag  string
	logLevelFlag string
	jsonFlag     bool

	cfg      config.EffectiveConfig
	closeLog func() error
}

func newRootCommand() *cobra.Command {
	app := &appContext{}

	rootCmd := &cobra.Command{
		Use:           "fightlink",
		Short:         "为 UFC 比赛查找 Paramount+ 视频链接",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.closeLog != nil {
				return app.closeLog()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&app.configFlag, "config", "c", "", "配置文件路径（默认读取 ./"+config.FileName+"，不存在则使用内置默认值）")
	pf.StringVar(&app.catalogFlag, "catalog", "", "目录文件路径（.json 或 .csv）")
	pf.StringVar(&app.logLevelFlag, "log-level", "", "日志级别：trace|debug|info|warn|error")
	pf.BoolVar(&app.jsonFlag, "json", false, "强制以 JSON 输出到 stdout（stdout 非终端时默认即为 JSON）")

	rootCmd.AddCommand(newServeCommand(app))
	rootCmd.AddCommand(newMatchCommand(app))
	rootCmd.AddCommand(newIngestCommand(app))
	rootCmd.AddCommand(newParseCommand(app))
	rootCmd.AddCommand(newCatalogCommand(app))
	rootCmd.AddCommand(newSearchCommand(app))
	rootCmd.AddCommand(newFightsCommand(app))

	return rootCmd
}

// setup 读取配置并初始化日志；日志统一写 stderr，stdout 只留给命令结果。
func (a *appContext) setup(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	env, err := config.Environ(cwd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	cli := config.CLIArgs{
		ConfigPath:  a.configFlag,
		Catalog:     a.catalogFlag,
		CatalogSet:  flags.Changed("catalog"),
		LogLevel:    a.logLevelFlag,
		LogLevelSet: flags.Changed("log-level"),
	}
	if f := flags.Lookup("listen"); f != nil && f.Changed {
		cli.Listen = f.Value.String()
		cli.ListenSet = true
	}

	cfg, err := config.LoadEffective(cwd, cli, env)
	if err != nil {
		return err
	}
	a.cfg = cfg

	closeFn, err := logging.Setup(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.closeLog = closeFn
	return nil
}

// wantJSON：显式 --json，或 stdout 不是终端（被管道/重定向）。
func (a *appContext) wantJSON(cmd *cobra.Command) bool {
	return a.jsonFlag || !logging.IsTerminal(cmd.OutOrStdout())
}
