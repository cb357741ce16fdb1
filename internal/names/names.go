// Package names 提供匹配两侧共用的名字规范化工具（纯函数，无状态）。
package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// foldTable 是固定的音标折叠表；表外的重音字母不做音译，直接在过滤阶段被删除。
var foldTable = map[rune]rune{
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ñ': 'n', 'ç': 'c', 'ø': 'o', 'š': 's', 'ž': 'z',
}

var eventNumberRE = regexp.MustCompile(`UFC\s+(\d+)`)

func fold(r rune) rune {
	if f, ok := foldTable[r]; ok {
		return f
	}
	return r
}

// spaceToASCII 把 NBSP 等 Unicode 空白映射为普通空格，供只认 ASCII 空白的正则使用。
func spaceToASCII(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func disallowed(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ')
}

// Normalize 把名字规范化为只含 [a-z0-9 ] 的比较键：
// 小写 -> 折叠固定重音表 -> 删除其余字符 -> 去掉首尾空格。
//
// 内部空格与词序保持不变；Normalize(Normalize(s)) == Normalize(s)。
func Normalize(name string) string {
	// cases.Caser 有状态，不能跨 goroutine 共享：每次调用新建链。
	t := transform.Chain(
		cases.Lower(language.Und),
		runes.Map(fold),
		runes.Remove(runes.Predicate(disallowed)),
	)
	out, _, err := transform.String(t, name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// LastName 返回原始输入（未规范化）的最后一个空白分隔词；无词时返回空串。
func LastName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// EventNumber 提取 "UFC" + 空白 + 数字 形式的赛事编号；不存在时返回空串。
//
// 规则刻意很窄："UFC Fight Night 50" 不产出编号（"Fight" 夹在中间）。
func EventNumber(eventLabel string) string {
	m := eventNumberRE.FindStringSubmatch(strings.Map(spaceToASCII, eventLabel))
	if m == nil {
		return ""
	}
	return m[1]
}
