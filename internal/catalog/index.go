// Package catalog 持有已解析的视频目录，并负责目录文件的读写。
package catalog

import (
	"strings"

	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/names"
)

// Entry 是一条目录记录及其在建索引时预先计算好的归一化键。
//
// 这些键只是逐条记录的缓存值，不是查找索引：匹配仍是对全部 Entry 的顺序扫描。
type Entry struct {
	Record domain.FightRecord

	Name1, Name2 string // 归一化全名
	Last1, Last2 string // 归一化姓
	EventNumber  string // "UFC NNN" 中的数字，未知为空
}

// Index 是只读目录；构建后不再修改，多个 goroutine 可无锁共享同一个 *Index。
type Index struct {
	entries []Entry
}

// New 保留 Fighter1、Fighter2 去空白后均非空的记录，按输入顺序排列。
func New(records []domain.FightRecord) *Index {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Fighter1) == "" || strings.TrimSpace(r.Fighter2) == "" {
			continue
		}
		n1 := names.Normalize(r.Fighter1)
		n2 := names.Normalize(r.Fighter2)
		entries = append(entries, Entry{
			Record:      r,
			Name1:       n1,
			Name2:       n2,
			Last1:       names.Normalize(names.LastName(r.Fighter1)),
			Last2:       names.Normalize(names.LastName(r.Fighter2)),
			EventNumber: names.EventNumber(r.Event),
		})
	}
	return &Index{entries: entries}
}

// Len 对 nil 安全。
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// Entries 返回内部切片；调用方只读，不得修改。
func (x *Index) Entries() []Entry {
	if x == nil {
		return nil
	}
	return x.entries
}

// Records 返回记录副本（按目录顺序）。
func (x *Index) Records() []domain.FightRecord {
	out := make([]domain.FightRecord, 0, x.Len())
	for _, e := range x.Entries() {
		out = append(out, e.Record)
	}
	return out
}
