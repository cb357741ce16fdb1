package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// FileName 是 cwd 下自动发现的配置文件名。
const FileName = "fightlink.toml"

// 内置默认值（CLI、环境变量、配置文件都未指定时使用）。
const (
	DefaultCatalog   = "paramount_fights.json"
	DefaultListen    = ":5000"
	DefaultSearchURL = "https://www.paramountplus.com/search/"
	DefaultStatsURL  = "http://ufcstats.com"
	DefaultCacheDir  = "cache"
	DefaultCacheTTL  = 12 * time.Hour
	DefaultLogLevel  = "info"
)

// 环境变量名；同名变量也可以写在 cwd 下的 .env 中（真实环境变量优先）。
const (
	EnvCatalog  = "FIGHTLINK_CATALOG"
	EnvListen   = "FIGHTLINK_LISTEN"
	EnvLogLevel = "FIGHTLINK_LOG_LEVEL"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息，
// 保证 --catalog="" 之类的显式值也能覆盖低优先级来源。
type CLIArgs struct {
	ConfigPath string

	Catalog    string
	CatalogSet bool

	Listen    string
	ListenSet bool

	LogLevel    string
	LogLevelSet bool
}

// FileConfig 对应 fightlink.toml 的解析结构；未知字段视为错误。
type FileConfig struct {
	Catalog   string       `toml:"catalog"`
	Listen    string       `toml:"listen"`
	SearchURL string       `toml:"search_url"`
	StatsURL  string       `toml:"stats_url"`
	CacheDir  *string      `toml:"cache_dir"`
	CacheTTL  string       `toml:"cache_ttl"`
	LogLevel  string       `toml:"log_level"`
	LogFile   string       `toml:"log_file"`
	Proxy     *ProxyConfig `toml:"proxy"`
}

type ProxyConfig struct {
	URL string `toml:"url"`
}

// EffectiveConfig 是合并并规范化后的最终配置；相对路径已转为绝对路径。
type EffectiveConfig struct {
	ConfigPath string // 实际读取的配置文件；未读取时为空

	Catalog   string
	Listen    string
	SearchURL string
	StatsURL  string
	CacheDir  string // 空表示禁用页面缓存
	CacheTTL  time.Duration
	LogLevel  string
	LogFile   string
	ProxyURL  string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LookupFunc 与 os.LookupEnv 签名一致。
type LookupFunc func(key string) (string, bool)

// Environ 返回“真实环境变量 > <cwd>/.env”的查找函数。.env 不存在时只看真实环境变量。
func Environ(cwd string) (LookupFunc, error) {
	dotenv := map[string]string{}
	p := filepath.Join(cwd, ".env")
	if _, err := os.Stat(p); err == nil {
		m, err := godotenv.Read(p)
		if err != nil {
			return nil, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		dotenv = m
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

// LoadEffective 发现并读取配置文件，再与环境变量、CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 给了 --config：必须存在，否则 config_not_found
// 2) 否则尝试 <cwd>/fightlink.toml（可选）
//
// 覆盖优先级（catalog/listen/log_level）：CLI > 环境变量 > 配置文件 > 默认。
// 其他字段只由配置文件控制。
//
// 相对路径：来自配置文件的相对于配置文件所在目录；来自 CLI/环境变量的相对于 cwd。
func LoadEffective(cwd string, cli CLIArgs, env LookupFunc) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	if env == nil {
		env = func(string) (string, bool) { return "", false }
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwdAbs, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	fileBase := cwdAbs
	if exists {
		fileBase = filepath.Dir(cfgPath)
	} else {
		cfgPath = ""
	}
	return merge(cwdAbs, fileBase, cfgPath, cli, env, fc)
}

func merge(cwd, fileBase, cfgPath string, cli CLIArgs, env LookupFunc, fc FileConfig) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		p := cfgPath
		if p == "" {
			p = cwd
		}
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
	}

	// catalog：CLI > env > config > 默认
	catalog := absCleanFrom(fileBase, DefaultCatalog)
	if cli.CatalogSet {
		catalog = absCleanFrom(cwd, cli.Catalog)
	} else if v, ok := env(EnvCatalog); ok && strings.TrimSpace(v) != "" {
		catalog = absCleanFrom(cwd, v)
	} else if strings.TrimSpace(fc.Catalog) != "" {
		catalog = absCleanFrom(fileBase, fc.Catalog)
	}

	listen := pick(cli.Listen, cli.ListenSet, env, EnvListen, fc.Listen, DefaultListen)
	if listen == "" {
		return invalid(errors.New("listen 不能为空"))
	}

	logLevel := strings.ToLower(pick(cli.LogLevel, cli.LogLevelSet, env, EnvLogLevel, fc.LogLevel, DefaultLogLevel))
	if _, err := zerolog.ParseLevel(logLevel); err != nil || logLevel == "" {
		return invalid(fmt.Errorf("log_level 无效：%q", logLevel))
	}

	searchURL := strings.TrimSpace(fc.SearchURL)
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if err := validateHTTPURL("search_url", searchURL); err != nil {
		return invalid(err)
	}

	statsURL := strings.TrimSpace(fc.StatsURL)
	if statsURL == "" {
		statsURL = DefaultStatsURL
	}
	if err := validateHTTPURL("stats_url", statsURL); err != nil {
		return invalid(err)
	}

	// cache_dir 显式写成空串表示禁用缓存。
	cacheDir := absCleanFrom(fileBase, DefaultCacheDir)
	if fc.CacheDir != nil {
		cacheDir = absCleanFrom(fileBase, *fc.CacheDir)
	}

	cacheTTL := DefaultCacheTTL
	if s := strings.TrimSpace(fc.CacheTTL); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return invalid(fmt.Errorf("cache_ttl 无效：%q", s))
		}
		cacheTTL = d
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid(fmt.Errorf("proxy.url 无效：%q", proxyURL))
		}
	}

	return EffectiveConfig{
		ConfigPath: cfgPath,
		Catalog:    catalog,
		Listen:     listen,
		SearchURL:  searchURL,
		StatsURL:   strings.TrimRight(statsURL, "/"),
		CacheDir:   cacheDir,
		CacheTTL:   cacheTTL,
		LogLevel:   logLevel,
		LogFile:    absCleanFrom(fileBase, fc.LogFile),
		ProxyURL:   proxyURL,
	}, nil
}

// pick 按 CLI > env > config > 默认 取第一个有效值（空白视为未设置，CLI 显式值除外）。
func pick(cliVal string, cliSet bool, env LookupFunc, envKey, fileVal, def string) string {
	if cliSet {
		return strings.TrimSpace(cliVal)
	}
	if v, ok := env(envKey); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(fileVal); v != "" {
		return v
	}
	return def
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", field, raw)
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute；p 为空时返回空串。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件；exists 表示文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
