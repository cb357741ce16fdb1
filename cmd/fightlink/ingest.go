package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/fightlink/internal/ingest"
)

func newIngestCommand(app *appContext) *cobra.Command {
	var (
		output string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "ingest <crawler.json>",
		Short: "把爬虫输出解析为目录文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := strings.TrimSpace(output)
			if out == "" {
				out = app.cfg.Catalog
			}
			rep, err := ingest.Run(ingest.Options{Source: args[0], Output: out, DryRun: dryRun})

			if app.wantJSON(cmd) {
				if werr := writeJSON(cmd, rep); werr != nil {
					return werr
				}
				return err
			}

			w := cmd.OutOrStdout()
			s := rep.Summary
			fmt.Fprintf(w, "完成：total=%d kept=%d duplicates=%d excluded=%d unparsed=%d\n",
				s.Total, s.Kept, s.Duplicates, s.Excluded, s.Unparsed)
			if len(rep.Dropped) > 0 {
				rows := make([][]string, 0, len(rep.Dropped))
				for _, d := range rep.Dropped {
					rows = append(rows, []string{orDash(d.Code), d.Reason, d.Title})
				}
				printTable(cmd, []string{"Code", "Reason", "Title"}, rows, nil)
			}
			if err == nil && rep.Output != "" {
				fmt.Fprintf(w, "catalog: %s\n", rep.Output)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出目录文件（默认使用配置中的 catalog）")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只解析并输出报告，不写目录文件")
	return cmd
}
