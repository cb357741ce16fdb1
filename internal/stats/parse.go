package stats

import (
	"bytes"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/fightlink/internal/domain"
)

// DateUnknown / OpponentUnknown 是页面缺字段时的占位值。
const (
	DateUnknown     = "Date Unknown"
	OpponentUnknown = "Unknown"
)

// ParseFighters 解析选手搜索结果页。
//
// 约束：
// - 第一行是表头，跳过；少于 10 列的行跳过
// - 第 0/1 列都要有 a.b-link（名/姓），否则跳过
// - 战绩取第 7/8/9 列（胜/负/平）
// - 纯函数：相同输入 => 相同输出
func ParseFighters(html []byte, pageURL string) ([]domain.Fighter, error) {
	doc, err := newDoc(html)
	if err != nil {
		return nil, err
	}

	out := []domain.Fighter{}
	doc.Find("tr.b-statistics__table-row").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() < 10 {
			return
		}
		first := cols.Eq(0).Find("a.b-link").First()
		last := cols.Eq(1).Find("a.b-link").First()
		if first.Length() == 0 || last.Length() == 0 {
			return
		}
		href, _ := first.Attr("href")
		out = append(out, domain.Fighter{
			Name:   strings.TrimSpace(text(first) + " " + text(last)),
			URL:    resolveURL(pageURL, href),
			Record: text(cols.Eq(7)) + "-" + text(cols.Eq(8)) + "-" + text(cols.Eq(9)),
		})
	})
	return out, nil
}

// ParseFights 解析选手详情页的比赛历史。
//
// 胜负列（第 0 列）刻意不读取，避免剧透。
// 约束：第一行是表头；少于 7 列或第 6 列没有赛事链接的行跳过。
func ParseFights(html []byte, pageURL string) ([]domain.FighterFight, error) {
	doc, err := newDoc(html)
	if err != nil {
		return nil, err
	}

	out := []domain.FighterFight{}
	doc.Find("tr.b-fight-details__table-row").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() < 7 {
			return
		}
		eventCol := cols.Eq(6)
		link := eventCol.Find("a.b-link").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")

		date := DateUnknown
		if ps := eventCol.Find("p.b-fight-details__table-text"); ps.Length() > 1 {
			date = text(ps.Eq(1))
		}
		opponent := OpponentUnknown
		if as := cols.Eq(1).Find("a.b-link"); as.Length() >= 2 {
			opponent = text(as.Eq(1))
		}

		out = append(out, domain.FighterFight{
			Event:    text(link),
			Date:     date,
			Opponent: opponent,
			EventURL: resolveURL(pageURL, href),
		})
	})
	return out, nil
}

func newDoc(html []byte) (*goquery.Document, error) {
	if len(html) == 0 {
		return nil, errors.New("html 为空")
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(html))
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}
