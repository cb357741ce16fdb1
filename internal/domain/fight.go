package domain

// FightRecord 是目录中的一条视频记录（由抓取到的标题解析而来）。
//
// 不变量：
// - 进入 catalog.Index 的记录 Fighter1/Fighter2 必须非空（解析失败的标题在建索引时丢弃）
// - Event/Card 允许为空（未知）
// - SourceCode 是同一视频的稳定标识；去重（先到先得）由 ingest 负责
//
// 持久化字段名沿用抓取端的 paramount_fights.json：code/url/title/...
type FightRecord struct {
	SourceCode string `json:"code" csv:"code"`
	URL        string `json:"url" csv:"url"`
	RawTitle   string `json:"title" csv:"title"`
	Fighter1   string `json:"fighter1" csv:"fighter1"`
	Fighter2   string `json:"fighter2" csv:"fighter2"`
	Event      string `json:"event" csv:"event"`
	Card       string `json:"card" csv:"card"`
}

// Query 是一次匹配请求；由调用方构造，不落盘。
type Query struct {
	Name         string
	OpponentName string
	EventLabel   string // 可选，原样来自战绩站点，例如 "UFC 278: Usman vs. Edwards 2"
}

// MatchResult 区分“目录命中”与“兜底搜索链接”。
// Matched=false 时 URL 只是猜测，调用方不能把两者当作同等可信。
type MatchResult struct {
	URL     string `json:"url"`
	Matched bool   `json:"found"`
}
