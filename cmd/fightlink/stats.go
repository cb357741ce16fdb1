package main

import (
	"github.com/spf13/cobra"

	"github.com/John-Robertt/fightlink/internal/config"
	"github.com/John-Robertt/fightlink/internal/infra/cache"
	"github.com/John-Robertt/fightlink/internal/infra/httpx"
	"github.com/John-Robertt/fightlink/internal/stats"
)

func newStatsClient(cfg config.EffectiveConfig) (*stats.Client, error) {
	hc, err := httpx.NewClient(httpx.Options{ProxyURL: cfg.ProxyURL})
	if err != nil {
		return nil, err
	}
	return &stats.Client{
		BaseURL: cfg.StatsURL,
		HTTP:    hc,
		Cache:   cache.New(cfg.CacheDir, false),
		TTL:     cfg.CacheTTL,
	}, nil
}

func newSearchCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "在战绩站点按名字搜索选手",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newStatsClient(app.cfg)
			if err != nil {
				return err
			}
			fighters, err := c.SearchFighters(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if app.wantJSON(cmd) {
				return writeJSON(cmd, map[string]any{"fighters": fighters, "count": len(fighters)})
			}
			rows := make([][]string, 0, len(fighters))
			for _, f := range fighters {
				rows = append(rows, []string{f.Name, f.Record, f.URL})
			}
			printTable(cmd, []string{"Name", "Record", "URL"}, rows, nil)
			return nil
		},
	}
}

func newFightsCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fights <fighter-url>",
		Short: "列出选手的比赛历史（不含胜负）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newStatsClient(app.cfg)
			if err != nil {
				return err
			}
			fights, err := c.FighterFights(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if app.wantJSON(cmd) {
				return writeJSON(cmd, map[string]any{"fights": fights, "count": len(fights)})
			}
			rows := make([][]string, 0, len(fights))
			for _, f := range fights {
				rows = append(rows, []string{f.Date, f.Event, f.Opponent})
			}
			printTable(cmd, []string{"Date", "Event", "Opponent"}, rows, nil)
			return nil
		},
	}
}
