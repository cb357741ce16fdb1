// Package title 把抓取到的视频标题解析为结构化的对阵信息。
//
// 标题形态很多且互相重叠，因此用一组按优先级排列的独立 matcher 逐个尝试，
// 第一个结构匹配成功的 matcher 决定结果（不回溯到后面的形态）。
package title

import (
	"regexp"
	"strings"
	"unicode"
)

// Format 标识标题按哪种形态解析成功。
type Format int

const (
	FormatNone          Format = iota // 没有任何形态匹配
	FormatExcluded                    // 宣传类标题（Event Recap 等），直接排除
	FormatParenthetical               // A vs B (Event - Card)
	FormatNumberColon                 // 323: A vs B Main Card
	FormatUFCColon                    // UFC 307: A vs B Prelims
	FormatShowdown                    // Watch the UFC 313 showdown between A vs B streamed on ...
	FormatBoutFrom                    // Watch the A vs B bout from EVENT from ...
	FormatBare                        // A vs B
)

func (f Format) String() string {
	switch f {
	case FormatExcluded:
		return "excluded"
	case FormatParenthetical:
		return "parenthetical"
	case FormatNumberColon:
		return "number_colon"
	case FormatUFCColon:
		return "ufc_colon"
	case FormatShowdown:
		return "showdown"
	case FormatBoutFrom:
		return "bout_from"
	case FormatBare:
		return "bare"
	default:
		return "none"
	}
}

// Result 是一条标题的解析结果。名字只做 TrimSpace，保留原始大小写与重音（规范化在匹配时做）。
type Result struct {
	Fighter1 string
	Fighter2 string
	Event    string
	Card     string
	Format   Format
}

var (
	subscribeRE = regexp.MustCompile(`^SUBSCRIBE\s*`)

	parentheticalRE = regexp.MustCompile(`^(.+?)\s+vs\.?\s+(.+?)\s*\((.+?)\)`)
	numberColonRE   = regexp.MustCompile(`^(\d+):\s+(.+?)\s+vs\.?\s+(.+?)(?:\s+(Main Card|Prelims|Early Prelims))?\s*$`)
	ufcColonRE      = regexp.MustCompile(`^(UFC\s+\d+):\s+(.+?)\s+vs\.?\s+(.+?)(?:\s+(Main Card|Prelims|Early Prelims))?\s*$`)
	showdownRE      = regexp.MustCompile(`^Watch the (?:UFC\s+\d+\s+showdown between\s+)?(.+?)\s+vs\.?\s+(.+?)\s+(?:bout\s+from\s+|streamed\s+on)`)
	embeddedEventRE = regexp.MustCompile(`(UFC\s+\d+|UFC Fight Night[^:]*)`)
	boutFromRE      = regexp.MustCompile(`^Watch the\s+(.+?)\s+vs\.?\s+(.+?)\s+bout\s+from\s+(.+?)(?:\s+from\s+|\s+streamed)`)
	bareRE          = regexp.MustCompile(`^(.+?)\s+vs\.?\s+(.+?)$`)
)

// excludeMarkers 出现在宣传/回顾类视频标题中，这些不是单场比赛。
var excludeMarkers = []string{"Event Recap", "Storylines", "Breakdown"}

type matcher struct {
	format Format
	match  func(s string) (Result, bool)
}

// cascade 的顺序即优先级。
var cascade = []matcher{
	{FormatParenthetical, matchParenthetical},
	{FormatNumberColon, matchNumberColon},
	{FormatUFCColon, matchUFCColon},
	{FormatShowdown, matchShowdown},
	{FormatBoutFrom, matchBoutFrom},
	{FormatBare, matchBare},
}

// Parse 解析一条原始标题。
//
// 无法解析或被排除时返回字段全空的 Result（Format 分别为 FormatNone / FormatExcluded），
// 由 catalog 建索引时丢弃。
func Parse(raw string) Result {
	s := strings.TrimSpace(asciiSpaces(raw))
	s = strings.TrimSpace(subscribeRE.ReplaceAllString(s, ""))

	// 排除检查必须先于任何形态尝试。
	for _, m := range excludeMarkers {
		if strings.Contains(s, m) {
			return Result{Format: FormatExcluded}
		}
	}

	for _, m := range cascade {
		if r, ok := m.match(s); ok {
			r.Format = m.format
			return r
		}
	}
	return Result{Format: FormatNone}
}

// asciiSpaces 把所有 Unicode 空白（NBSP 等）替换为普通空格；RE2 的 \s 只认 ASCII 空白。
func asciiSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r != ' ' && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

func matchParenthetical(s string) (Result, bool) {
	m := parentheticalRE.FindStringSubmatch(s)
	if m == nil {
		return Result{}, false
	}
	r := Result{
		Fighter1: strings.TrimSpace(m[1]),
		Fighter2: strings.TrimSpace(m[2]),
	}
	ctx := strings.TrimSpace(m[3])
	// 以最后一个 " - " 切分：赛事名里本身可能含有 " - "。
	if i := strings.LastIndex(ctx, " - "); i >= 0 {
		r.Event = strings.TrimSpace(ctx[:i])
		r.Card = strings.TrimSpace(ctx[i+len(" - "):])
	} else {
		r.Event = ctx
	}
	return r, true
}

func matchNumberColon(s string) (Result, bool) {
	m := numberColonRE.FindStringSubmatch(s)
	if m == nil {
		return Result{}, false
	}
	return Result{
		Fighter1: strings.TrimSpace(m[2]),
		Fighter2: strings.TrimSpace(m[3]),
		Event:    "UFC " + m[1],
		Card:     strings.TrimSpace(m[4]),
	}, true
}

func matchUFCColon(s string) (Result, bool) {
	m := ufcColonRE.FindStringSubmatch(s)
	if m == nil {
		return Result{}, false
	}
	return Result{
		Fighter1: strings.TrimSpace(m[2]),
		Fighter2: strings.TrimSpace(m[3]),
		Event:    strings.TrimSpace(m[1]),
		Card:     strings.TrimSpace(m[4]),
	}, true
}

func matchShowdown(s string) (Result, bool) {
	m := showdownRE.FindStringSubmatch(s)
	if m == nil {
		return Result{}, false
	}
	r := Result{
		Fighter1: strings.TrimSpace(m[1]),
		Fighter2: strings.TrimSpace(m[2]),
	}
	// 赛事名独立于选手子句，在整条标题里另行查找。
	if ev := embeddedEventRE.FindStringSubmatch(s); ev != nil {
		r.Event = strings.TrimSpace(ev[1])
	}
	return r, true
}

func matchBoutFrom(s string) (Result, bool) {
	m := boutFromRE.FindStringSubmatch(s)
	if m == nil {
		return Result{}, false
	}
	return Result{
		Fighter1: strings.TrimSpace(m[1]),
		Fighter2: strings.TrimSpace(m[2]),
		Event:    strings.TrimSpace(m[3]),
	}, true
}

func matchBare(s string) (Result, bool) {
	m := bareRE.FindStringSubmatch(s)
	if m == nil {
		return Result{}, false
	}
	return Result{
		Fighter1: strings.TrimSpace(m[1]),
		Fighter2: strings.TrimSpace(m[2]),
	}, true
}
