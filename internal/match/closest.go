package match

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/John-Robertt/fightlink/internal/names"
)

// DefaultMinSimilarity 是 Closest 的默认相似度下限（Jaro-Winkler）。
const DefaultMinSimilarity float32 = 0.85

// Suggestion 是一个与查询名字相近的目录选手名。
type Suggestion struct {
	Name       string  `json:"name"`
	Similarity float32 `json:"similarity"`
}

// Closest 在目录选手名中查找与 name 相近的候选，用于未命中时提示可能的拼写差异。
//
// 只做提示，不影响 FindMatch 的结果。按相似度降序，同分按名字字典序；最多返回 limit 条。
func (m *Matcher) Closest(name string, limit int, minSimilarity float32) []Suggestion {
	q := names.Normalize(name)
	if q == "" || limit <= 0 {
		return nil
	}

	// 同一选手在目录中出现多次，只保留首次出现的原始写法。
	seen := map[string]string{}
	for _, e := range m.Index.Entries() {
		if _, ok := seen[e.Name1]; !ok {
			seen[e.Name1] = e.Record.Fighter1
		}
		if _, ok := seen[e.Name2]; !ok {
			seen[e.Name2] = e.Record.Fighter2
		}
	}

	var out []Suggestion
	for norm, raw := range seen {
		if norm == "" || norm == q {
			continue
		}
		sim := edlib.JaroWinklerSimilarity(q, norm)
		if sim >= minSimilarity {
			out = append(out, Suggestion{Name: raw, Similarity: sim})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
