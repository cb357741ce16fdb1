// Package ingest 把爬虫原始输出整理成可供匹配使用的目录文件。
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/John-Robertt/fightlink/internal/catalog"
	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/title"
)

// RawItem 是爬虫输出的一条视频：只有 code/url/标题，尚未解析。
type RawItem struct {
	Code  string `json:"code"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ReadRaw 读取爬虫输出（JSON 数组）。
func ReadRaw(path string) ([]RawItem, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []RawItem
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("解析爬虫输出 %q 失败：%w", path, err)
	}
	if items == nil {
		return nil, errors.New("爬虫输出不是 JSON 数组")
	}
	return items, nil
}

// Build 去重、解析并排序，返回目录记录与丢弃明细。
//
// 约束：
// - 按 code 去重，先出现的胜出；code 为空时退化为按 url 去重
// - 宣传类标题与无法解析（含任一选手为空）的标题不进入目录，只进入 dropped
// - 目录按赛事名倒序稳定排序（同名赛事保持输入顺序）；匹配同分时先出现者胜出，
//   因此该顺序会影响匹配结果
func Build(items []RawItem) ([]domain.FightRecord, []domain.DroppedItem) {
	seen := make(map[string]struct{}, len(items))
	recs := make([]domain.FightRecord, 0, len(items))
	dropped := make([]domain.DroppedItem, 0, 16)

	for _, it := range items {
		code := strings.TrimSpace(it.Code)
		key := code
		if key == "" {
			key = "url:" + strings.TrimSpace(it.URL)
		}
		if _, ok := seen[key]; ok {
			dropped = append(dropped, domain.DroppedItem{Code: code, Title: it.Title, Reason: domain.DropDuplicate})
			continue
		}
		seen[key] = struct{}{}

		res := title.Parse(it.Title)
		switch res.Format {
		case title.FormatExcluded:
			dropped = append(dropped, domain.DroppedItem{Code: code, Title: it.Title, Reason: domain.DropExcluded})
			continue
		case title.FormatNone:
			dropped = append(dropped, domain.DroppedItem{Code: code, Title: it.Title, Reason: domain.DropUnparsed})
			continue
		}
		// 形态命中但某一方为空（如 "A vs  (UFC 309)"）同样视为无法解析。
		if strings.TrimSpace(res.Fighter1) == "" || strings.TrimSpace(res.Fighter2) == "" {
			dropped = append(dropped, domain.DroppedItem{Code: code, Title: it.Title, Reason: domain.DropUnparsed})
			continue
		}

		recs = append(recs, domain.FightRecord{
			SourceCode: code,
			URL:        strings.TrimSpace(it.URL),
			RawTitle:   it.Title,
			Fighter1:   res.Fighter1,
			Fighter2:   res.Fighter2,
			Event:      res.Event,
			Card:       res.Card,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Event > recs[j].Event })
	return recs, dropped
}

// Options 控制一次 ingest。
type Options struct {
	Source string // 爬虫输出（JSON）
	Output string // 目录文件（.json / .csv）
	DryRun bool   // 只生成报告，不写目录文件

	Now func() time.Time // 测试注入；nil 时使用 time.Now
}

// Run 执行 ingest 并返回报告。报告在失败时也会尽量填充（便于排查）。
func Run(opts Options) (domain.IngestReport, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rep := domain.IngestReport{
		Source:    opts.Source,
		Output:    opts.Output,
		StartedAt: now(),
	}
	finish := func(err error) (domain.IngestReport, error) {
		rep.FinishedAt = now()
		rep.Finalize()
		return rep, err
	}

	items, err := ReadRaw(opts.Source)
	if err != nil {
		return finish(err)
	}
	recs, dropped := Build(items)
	rep.Summary.Total = len(items)
	rep.Summary.Kept = len(recs)
	rep.Dropped = dropped

	log.Info().
		Str("source", opts.Source).
		Int("total", len(items)).
		Int("kept", len(recs)).
		Int("dropped", len(dropped)).
		Msg("ingest 完成解析")

	if opts.DryRun {
		rep.Output = ""
		return finish(nil)
	}
	if strings.TrimSpace(opts.Output) == "" {
		return finish(errors.New("output 不能为空"))
	}
	if err := catalog.WriteFile(opts.Output, recs); err != nil {
		return finish(err)
	}
	return finish(nil)
}
