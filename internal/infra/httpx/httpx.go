package httpx

import (
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTimeout  = 15 * time.Second
	defaultRetryMax = 2
	defaultBackoff  = 300 * time.Millisecond
)

// Options 描述战绩站点抓取 client 的网络策略。
type Options struct {
	ProxyURL string
	Timeout  time.Duration // <=0 使用 DefaultTimeout
	RetryMax int           // 最大重试次数（不含首次尝试）；<0 视为 0
}

// Transport 统一 UA、代理与有界重试策略；stats 客户端只负责拼 URL 与解析 HTML。
//
// 约束：
// - 只重试可重放请求（GET/HEAD 且无 body）
// - 可重试的失败：网络错误，或 502/503/504
// - ctx 取消后立即返回，不再等待退避
type Transport struct {
	Base     http.RoundTripper
	RetryMax int
	Backoff  time.Duration

	ua *uaPool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	max := t.RetryMax
	if max < 0 || !replayable(req) {
		max = 0
	}

	var (
		resp    *http.Response
		lastErr error
	)
	for attempt := 0; attempt <= max; attempt++ {
		if attempt > 0 && !t.wait(req, attempt) {
			break
		}

		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.ua != nil {
			r.Header.Set("User-Agent", t.ua.random())
		}

		resp, lastErr = t.Base.RoundTrip(r)
		if lastErr == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if lastErr == nil && attempt < max {
			// 丢弃本次响应，进入下一次尝试。
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			resp = nil
		}
		if req.Context().Err() != nil {
			break
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	if resp == nil {
		return nil, req.Context().Err()
	}
	// 重试用尽：把最后一次 5xx 原样交给调用方判定。
	return resp, nil
}

func (t *Transport) wait(req *http.Request, attempt int) bool {
	d := t.Backoff * time.Duration(attempt)
	if d <= 0 {
		return req.Context().Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return false
	case <-timer.C:
		return true
	}
}

func replayable(req *http.Request) bool {
	return (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// NewClient 构造用于 ufcstats 页面抓取的 HTTP client。
//
// proxyURL 非空时所有请求走代理，并禁用 keep-alive（代理池轮换依赖每请求新连接）。
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		MaxIdleConnsPerHost:   4,
	}

	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy.url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retry := opts.RetryMax
	if retry == 0 {
		retry = defaultRetryMax
	}
	if retry < 0 {
		retry = 0
	}

	return &http.Client{
		Transport: &Transport{
			Base:     base,
			RetryMax: retry,
			Backoff:  defaultBackoff,
			ua:       globalUA,
		},
		Timeout: timeout,
	}, nil
}

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = &uaPool{
	rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	uas: []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
	},
}
