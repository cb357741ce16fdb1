package match

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/John-Robertt/fightlink/internal/catalog"
	"github.com/John-Robertt/fightlink/internal/domain"
)

var fighterPool = []string{
	"Jon Jones", "Ciryl Gane", "Stipe Miocic", "Tom Aspinall",
	"Alex Pereira", "Jiří Procházka", "Jamahal Hill", "Curtis Blaydes",
	"Tai Tuivasa", "Sergei Pavlovich",
}

var eventPool = []string{"", "UFC 285", "UFC 295", "UFC 300", "UFC Fight Night: Vegas 12"}

func genCatalog(t *rapid.T) *catalog.Index {
	n := rapid.IntRange(0, 12).Draw(t, "n")
	recs := make([]domain.FightRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, domain.FightRecord{
			URL:      fmt.Sprintf("u%d", i),
			Fighter1: rapid.SampledFrom(fighterPool).Draw(t, "f1"),
			Fighter2: rapid.SampledFrom(fighterPool).Draw(t, "f2"),
			Event:    rapid.SampledFrom(eventPool).Draw(t, "event"),
			Card:     rapid.SampledFrom([]string{"", "Main Card", "Prelims"}).Draw(t, "card"),
		})
	}
	return catalog.New(recs)
}

func TestFindMatch_SymmetricProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := New(genCatalog(t), "")
		a := rapid.SampledFrom(fighterPool).Draw(t, "a")
		b := rapid.SampledFrom(fighterPool).Draw(t, "b")
		ev := rapid.SampledFrom(eventPool).Draw(t, "query_event")

		u1, ok1 := m.FindMatch(a, b, ev)
		u2, ok2 := m.FindMatch(b, a, ev)
		if ok1 != ok2 || u1 != u2 {
			t.Fatalf("交换选手顺序结果不同：(%q,%v) vs (%q,%v)", u1, ok1, u2, ok2)
		}
	})
}

func TestResolve_AlwaysNonEmptyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := New(genCatalog(t), "")
		q := domain.Query{
			Name:         rapid.String().Draw(t, "name"),
			OpponentName: rapid.String().Draw(t, "opp"),
			EventLabel:   rapid.String().Draw(t, "event"),
		}
		if res := m.Resolve(q); res.URL == "" {
			t.Fatalf("Resolve 返回空 URL：%+v", q)
		}
	})
}
