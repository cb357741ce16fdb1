// Package match 在目录中为一对选手查找最匹配的视频，找不到时给出兜底搜索链接。
package match

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/John-Robertt/fightlink/internal/catalog"
	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/names"
)

// DefaultSearchURL 是兜底搜索链接的默认基地址。
const DefaultSearchURL = "https://www.paramountplus.com/search/"

// 评分权重。
const (
	scoreFullName  = 10
	scoreLastName  = 5
	scoreEventNum  = 3
	scoreMainCard  = 1
	mainCardMarker = "Main"
)

// Matcher 对只读目录做顺序扫描评分。
//
// 约束：
// - 同分时先出现的记录胜出（只在严格更高分时替换）；因此目录顺序会影响结果，
//   ingest 按赛事倒序写目录，同分时偏向较新的赛事
// - 扫描是 O(n)，不建按姓的辅助索引；目录规模在数千条以内时足够
// - Matcher 无内部状态，可被多个 goroutine 并发使用
type Matcher struct {
	Index     *catalog.Index
	SearchURL string // 为空时使用 DefaultSearchURL
}

func New(idx *catalog.Index, searchURL string) *Matcher {
	return &Matcher{Index: idx, SearchURL: searchURL}
}

// queryKeys 是查询侧预先计算的归一化键。
type queryKeys struct {
	name, opp         string
	nameLast, oppLast string
	eventNum          string
}

func newQueryKeys(name, opponent, eventLabel string) queryKeys {
	n := names.Normalize(name)
	o := names.Normalize(opponent)
	return queryKeys{
		name:     n,
		opp:      o,
		nameLast: names.Normalize(names.LastName(name)),
		oppLast:  names.Normalize(names.LastName(opponent)),
		eventNum: names.EventNumber(eventLabel),
	}
}

// FindMatch 返回得分最高的目录记录 URL；任一方姓为空或没有合格记录时返回 ok=false。
func (m *Matcher) FindMatch(name, opponent, eventLabel string) (string, bool) {
	best, ok := m.best(newQueryKeys(name, opponent, eventLabel))
	if !ok {
		return "", false
	}
	return best.Record.URL, true
}

func (m *Matcher) best(q queryKeys) (catalog.Entry, bool) {
	if q.nameLast == "" || q.oppLast == "" {
		return catalog.Entry{}, false
	}

	var (
		best      catalog.Entry
		bestScore int
	)
	for _, e := range m.Index.Entries() {
		s := score(e, q)
		if s > bestScore {
			best, bestScore = e, s
		}
	}
	if bestScore == 0 {
		return catalog.Entry{}, false
	}
	log.Debug().
		Str("name", q.name).
		Str("opponent", q.opp).
		Str("url", best.Record.URL).
		Int("score", bestScore).
		Msg("目录命中")
	return best, true
}

// score 对单条记录打分；选手配对不成立时返回 0（不参与比较）。
func score(e catalog.Entry, q queryKeys) int {
	s := 0
	switch {
	case containsEither(q.name, e.Name1) && containsEither(q.opp, e.Name2):
		s = scoreFullName
	case containsEither(q.name, e.Name2) && containsEither(q.opp, e.Name1):
		s = scoreFullName
	case q.nameLast == e.Last1 && q.oppLast == e.Last2:
		s = scoreLastName
	case q.nameLast == e.Last2 && q.oppLast == e.Last1:
		s = scoreLastName
	default:
		return 0
	}
	if q.eventNum != "" && q.eventNum == e.EventNumber {
		s += scoreEventNum
	}
	if strings.Contains(e.Record.Card, mainCardMarker) {
		s += scoreMainCard
	}
	return s
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Resolve 永不失败：命中返回目录 URL（Matched=true），否则返回兜底搜索链接（Matched=false）。
func (m *Matcher) Resolve(q domain.Query) domain.MatchResult {
	if u, ok := m.FindMatch(q.Name, q.OpponentName, q.EventLabel); ok {
		return domain.MatchResult{URL: u, Matched: true}
	}
	base := m.SearchURL
	if strings.TrimSpace(base) == "" {
		base = DefaultSearchURL
	}
	return domain.MatchResult{URL: FallbackURL(base, q), Matched: false}
}

// SearchQuery 构造兜底搜索词："<赛事> <选手> vs <对手>"；赛事取冒号前部分，名字保持原样。
func SearchQuery(q domain.Query) string {
	event, _, _ := strings.Cut(q.EventLabel, ":")
	event = strings.TrimSpace(event)
	return strings.TrimSpace(event + " " + q.Name + " vs " + q.OpponentName)
}

// FallbackURL 把搜索词作为 q 参数拼到 base 上（保留 base 已有的查询参数）。
func FallbackURL(base string, q domain.Query) string {
	term := SearchQuery(q)
	u, err := url.Parse(base)
	if err != nil {
		return DefaultSearchURL + "?" + url.Values{"q": {term}}.Encode()
	}
	v := u.Query()
	v.Set("q", term)
	u.RawQuery = v.Encode()
	return u.String()
}
