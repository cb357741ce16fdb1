package stats

import (
	"errors"
	"fmt"
	"strings"
)

// 阶段名，写入 Error.Stage。
const (
	StageValidate = "validate"
	StageFetch    = "fetch"
	StageParse    = "parse"
)

// ErrInvalidURL 表示调用方给出的选手页 URL 不可用（格式错误或不属于战绩站点）。
var ErrInvalidURL = errors.New("stats: invalid fighter url")

// HTTPStatusError 表示战绩站点返回了非 2xx 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Error 记录失败发生在哪个阶段，便于上层区分“请求参数错”与“上游不可用”。
type Error struct {
	Stage string
	URL   string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("stats ")
	b.WriteString(e.Stage)
	if e.URL != "" {
		b.WriteString(" ")
		b.WriteString(e.URL)
	}
	if e.Err != nil {
		b.WriteString("：")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Stage 返回 err 链上第一个 *Error 的阶段；不存在时返回空串。
func Stage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
