package domain

// Fighter 是战绩站点搜索结果中的一行。
type Fighter struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Record string `json:"record"` // "W-L-D"
}

// FighterFight 是选手详情页中的一场比赛。
// 刻意不包含胜负结果（避免剧透）。
type FighterFight struct {
	Event    string `json:"event"`
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
	EventURL string `json:"event_url"`
}
