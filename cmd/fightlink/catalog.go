package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/fightlink/internal/catalog"
	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/title"
)

func newParseCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <title>...",
		Short: "显示标题的解析结果",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type parsed struct {
				Title    string `json:"title"`
				Format   string `json:"format"`
				Fighter1 string `json:"fighter1"`
				Fighter2 string `json:"fighter2"`
				Event    string `json:"event"`
				Card     string `json:"card"`
			}
			out := make([]parsed, 0, len(args))
			for _, raw := range args {
				r := title.Parse(raw)
				out = append(out, parsed{
					Title: raw, Format: r.Format.String(),
					Fighter1: r.Fighter1, Fighter2: r.Fighter2, Event: r.Event, Card: r.Card,
				})
			}
			if app.wantJSON(cmd) {
				return writeJSON(cmd, out)
			}
			rows := make([][]string, 0, len(out))
			for _, p := range out {
				rows = append(rows, []string{p.Title, p.Format, orDash(p.Fighter1), orDash(p.Fighter2), orDash(p.Event), orDash(p.Card)})
			}
			printTable(cmd, []string{"Title", "Format", "Fighter 1", "Fighter 2", "Event", "Card"}, rows, nil)
			return nil
		},
	}
}

func newCatalogCommand(app *appContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "列出目录中可匹配的记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 这里用严格读取：文件有问题要直接报错，而不是像 serve 那样降级为空目录。
			recs, err := catalog.ReadFile(app.cfg.Catalog)
			if err != nil {
				return err
			}
			shown := catalog.New(recs).Records()
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}

			if app.wantJSON(cmd) {
				return writeJSON(cmd, shown)
			}
			printTable(cmd, []string{"#", "Fighter 1", "Fighter 2", "Event", "Card"}, catalogRows(shown), []columnAlignment{alignRight})
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "最多显示多少条（0 表示全部）")
	return cmd
}

func catalogRows(recs []domain.FightRecord) [][]string {
	rows := make([][]string, 0, len(recs))
	for i, r := range recs {
		rows = append(rows, []string{strconv.Itoa(i + 1), r.Fighter1, r.Fighter2, orDash(r.Event), orDash(r.Card)})
	}
	return rows
}
