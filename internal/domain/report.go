package domain

import (
	"sort"
	"time"
)

// 标题被丢弃的原因。
const (
	DropDuplicate = "duplicate_code"
	DropExcluded  = "excluded_title"
	DropUnparsed  = "unparsed_title"
)

// IngestReport 是一次 ingest 的对外稳定输出（stdout JSON / 终端摘要）。
type IngestReport struct {
	Source string `json:"source"`
	Output string `json:"output"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary IngestSummary `json:"summary"`
	Dropped []DroppedItem `json:"dropped"`
}

type IngestSummary struct {
	Total      int `json:"total"`
	Kept       int `json:"kept"`
	Duplicates int `json:"duplicates"`
	Excluded   int `json:"excluded"`
	Unparsed   int `json:"unparsed"`
}

type DroppedItem struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) dropped 稳定排序：按 code 字典序；code=="" 的条目排在最后
// 3) 丢弃类计数由 dropped 计算得出（Total/Kept 由调用方填写）
func (r *IngestReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Dropped == nil {
		r.Dropped = []DroppedItem{}
	}

	sort.SliceStable(r.Dropped, func(i, j int) bool {
		a := r.Dropped[i].Code
		b := r.Dropped[j].Code
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	r.Summary.Duplicates = 0
	r.Summary.Excluded = 0
	r.Summary.Unparsed = 0
	for _, d := range r.Dropped {
		switch d.Reason {
		case DropDuplicate:
			r.Summary.Duplicates++
		case DropExcluded:
			r.Summary.Excluded++
		case DropUnparsed:
			r.Summary.Unparsed++
		}
	}
}
