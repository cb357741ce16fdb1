package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/fightlink/internal/catalog"
	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/match"
)

// matchOutput 是 match 命令的 JSON 输出；未命中时附带相近的选手名。
type matchOutput struct {
	domain.MatchResult
	Suggestions []match.Suggestion `json:"suggestions,omitempty"`
}

func newMatchCommand(app *appContext) *cobra.Command {
	var (
		event   string
		suggest int
	)
	cmd := &cobra.Command{
		Use:   "match <name> <opponent>",
		Short: "为一场比赛查找视频链接（找不到时给出搜索链接）",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := match.New(catalog.Load(app.cfg.Catalog), app.cfg.SearchURL)
			q := domain.Query{Name: args[0], OpponentName: args[1], EventLabel: event}

			out := matchOutput{MatchResult: m.Resolve(q)}
			if !out.Matched && suggest > 0 {
				for _, name := range []string{q.Name, q.OpponentName} {
					out.Suggestions = append(out.Suggestions, m.Closest(name, suggest, match.DefaultMinSimilarity)...)
				}
			}

			if app.wantJSON(cmd) {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			if out.Matched {
				fmt.Fprintf(w, "找到：%s\n", out.URL)
				return nil
			}
			fmt.Fprintf(w, "目录中没有这场比赛，搜索链接：%s\n", out.URL)
			for _, s := range out.Suggestions {
				fmt.Fprintf(w, "  你是不是要找：%s（相似度 %.2f）\n", s.Name, s.Similarity)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&event, "event", "e", "", `赛事名，例如 "UFC 278: Usman vs. Edwards 2"`)
	cmd.Flags().IntVar(&suggest, "suggest", 3, "未命中时每个名字最多给出几个相近的目录选手名（0 关闭）")
	return cmd
}
