// Package stats 查询 ufcstats.com：按名字搜索选手、读取选手的比赛历史。
package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/infra/cache"
)

// DefaultBaseURL 是战绩站点默认地址。
const DefaultBaseURL = "http://ufcstats.com"

// 页面体积上限；正常的搜索/详情页远小于该值。
const maxPageBytes = 8 << 20

// 缓存分桶。
const (
	bucketSearch  = "search"
	bucketFighter = "fighter"
)

// Client 负责定位页面并交给 Parse* 解析。
//
// 约束：
// - 网络策略（UA/代理/重试/超时）由 HTTP（见 infra/httpx）统一提供
// - Cache 可选；命中且未过期时不发请求；只缓存 2xx 页面
// - FighterFights 只接受与 BaseURL 同 host 的 URL，避免被当作任意 URL 代理
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Cache   cache.Store
	TTL     time.Duration
}

func (c *Client) baseURL() string {
	u := strings.TrimSpace(c.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

// SearchURL 返回按名字搜索选手的页面地址。
func (c *Client) SearchURL(name string) string {
	return c.baseURL() + "/statistics/fighters/search?" + url.Values{"query": {name}}.Encode()
}

// SearchFighters 按名字搜索选手；没有结果时返回空切片。
func (c *Client) SearchFighters(ctx context.Context, name string) ([]domain.Fighter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &Error{Stage: StageValidate, Err: errors.New("name 不能为空")}
	}
	pageURL := c.SearchURL(name)
	html, err := c.page(ctx, bucketSearch, pageURL)
	if err != nil {
		return nil, err
	}
	fighters, err := ParseFighters(html, pageURL)
	if err != nil {
		return nil, &Error{Stage: StageParse, URL: pageURL, Err: err}
	}
	return fighters, nil
}

// FighterFights 读取选手详情页的比赛历史（按页面顺序，通常最新在前）。
func (c *Client) FighterFights(ctx context.Context, fighterURL string) ([]domain.FighterFight, error) {
	pageURL, err := c.checkFighterURL(fighterURL)
	if err != nil {
		return nil, &Error{Stage: StageValidate, URL: fighterURL, Err: err}
	}
	html, err := c.page(ctx, bucketFighter, pageURL)
	if err != nil {
		return nil, err
	}
	fights, err := ParseFights(html, pageURL)
	if err != nil {
		return nil, &Error{Stage: StageParse, URL: pageURL, Err: err}
	}
	return fights, nil
}

func (c *Client) checkFighterURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w：%q", ErrInvalidURL, raw)
	}
	base, err := url.Parse(c.baseURL())
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(u.Hostname(), base.Hostname()) {
		return "", fmt.Errorf("%w：host %q 不是 %q", ErrInvalidURL, u.Hostname(), base.Hostname())
	}
	return u.String(), nil
}

// page 先查缓存，miss 时抓取并回写（回写失败只记日志）。
func (c *Client) page(ctx context.Context, bucket, pageURL string) ([]byte, error) {
	if b, ok, err := c.Cache.ReadPage(bucket, pageURL, c.TTL); err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("读取页面缓存失败，改为在线抓取")
	} else if ok {
		log.Debug().Str("url", pageURL).Msg("页面缓存命中")
		return b, nil
	}

	b, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, &Error{Stage: StageFetch, URL: pageURL, Err: err}
	}
	if err := c.Cache.WritePage(bucket, pageURL, b); err != nil && !errors.Is(err, cache.ErrReadOnly) {
		log.Warn().Err(err).Str("url", pageURL).Msg("写入页面缓存失败")
	}
	return b, nil
}

func (c *Client) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	hc := c.HTTP
	if hc == nil {
		return nil, errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug().
		Str("url", pageURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("抓取战绩页面")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}
