package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadEffective_Defaults(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{}, noEnv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ConfigPath != "" {
		t.Fatalf("期望未读取配置文件，实际 %q", eff.ConfigPath)
	}
	if eff.Catalog != filepath.Join(cwd, DefaultCatalog) {
		t.Fatalf("期望默认目录文件在 cwd 下，实际 %q", eff.Catalog)
	}
	if eff.Listen != DefaultListen || eff.LogLevel != DefaultLogLevel {
		t.Fatalf("默认值不一致：listen=%q log_level=%q", eff.Listen, eff.LogLevel)
	}
	if eff.SearchURL != DefaultSearchURL || eff.StatsURL != DefaultStatsURL {
		t.Fatalf("默认 URL 不一致：%q %q", eff.SearchURL, eff.StatsURL)
	}
	if eff.CacheDir != filepath.Join(cwd, DefaultCacheDir) || eff.CacheTTL != DefaultCacheTTL {
		t.Fatalf("默认缓存配置不一致：%q %s", eff.CacheDir, eff.CacheTTL)
	}
}

func TestLoadEffective_ExplicitConfigNotFound(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{ConfigPath: "missing.toml"}, noEnv)
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_FileValuesRelativeToConfigDir(t *testing.T) {
	cwd := t.TempDir()
	dir := filepath.Join(cwd, "etc")
	writeFile(t, filepath.Join(dir, "custom.toml"), []byte(`
catalog    = "data/fights.csv"
listen     = "127.0.0.1:8080"
search_url = "https://mirror.example/search"
stats_url  = "http://stats.example/"
cache_dir  = ""
cache_ttl  = "30m"
log_level  = "DEBUG"
log_file   = "logs/fightlink.log"

[proxy]
url = "http://127.0.0.1:7890"
`))

	eff, err := LoadEffective(cwd, CLIArgs{ConfigPath: "etc/custom.toml"}, noEnv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := EffectiveConfig{
		ConfigPath: filepath.Join(dir, "custom.toml"),
		Catalog:    filepath.Join(dir, "data", "fights.csv"),
		Listen:     "127.0.0.1:8080",
		SearchURL:  "https://mirror.example/search",
		StatsURL:   "http://stats.example",
		CacheDir:   "",
		CacheTTL:   30 * time.Minute,
		LogLevel:   "debug",
		LogFile:    filepath.Join(dir, "logs", "fightlink.log"),
		ProxyURL:   "http://127.0.0.1:7890",
	}
	if eff != want {
		t.Fatalf("配置不一致：\n期望 %+v\n实际 %+v", want, eff)
	}
}

func TestLoadEffective_MergeOrder(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`
catalog   = "from-file.json"
listen    = ":7000"
log_level = "warn"
`))

	// 仅配置文件
	eff, err := LoadEffective(cwd, CLIArgs{}, noEnv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Listen != ":7000" || eff.LogLevel != "warn" || eff.Catalog != filepath.Join(cwd, "from-file.json") {
		t.Fatalf("期望配置文件生效，实际 %+v", eff)
	}

	// 环境变量覆盖配置文件
	env := envOf(map[string]string{EnvListen: ":6000", EnvCatalog: "from-env.json", EnvLogLevel: "error"})
	eff, err = LoadEffective(cwd, CLIArgs{}, env)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Listen != ":6000" || eff.LogLevel != "error" || eff.Catalog != filepath.Join(cwd, "from-env.json") {
		t.Fatalf("期望环境变量生效，实际 %+v", eff)
	}

	// CLI 覆盖环境变量
	eff, err = LoadEffective(cwd, CLIArgs{
		Listen: ":5555", ListenSet: true,
		LogLevel: "trace", LogLevelSet: true,
		Catalog: "from-cli.csv", CatalogSet: true,
	}, env)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Listen != ":5555" || eff.LogLevel != "trace" || eff.Catalog != filepath.Join(cwd, "from-cli.csv") {
		t.Fatalf("期望 CLI 生效，实际 %+v", eff)
	}
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":        `catalog = `,
		"unknown field": `provider = "javbus"`,
		"log level":     `log_level = "loud"`,
		"search url":    `search_url = "ftp://example.com"`,
		"stats url":     `stats_url = "not a url"`,
		"cache ttl":     `cache_ttl = "soon"`,
		"negative ttl":  `cache_ttl = "-1h"`,
		"proxy":         "[proxy]\nurl = \"127.0.0.1\"",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cwd := t.TempDir()
			writeFile(t, filepath.Join(cwd, FileName), []byte(body))

			_, err := LoadEffective(cwd, CLIArgs{}, noEnv)
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
		})
	}
}

func TestLoadEffective_EmptyListenFromCLI(t *testing.T) {
	_, err := LoadEffective(t.TempDir(), CLIArgs{Listen: " ", ListenSet: true}, noEnv)
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v", ErrCodeInvalid, err)
	}
}

func TestEnviron_DotEnvLowerThanProcessEnv(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, ".env"), []byte("FIGHTLINK_LISTEN=:9000\nFIGHTLINK_LOG_LEVEL=debug\n"))
	t.Setenv(EnvLogLevel, "error")

	env, err := Environ(cwd)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if v, _ := env(EnvListen); v != ":9000" {
		t.Fatalf("期望读取 .env，实际 %q", v)
	}
	if v, _ := env(EnvLogLevel); v != "error" {
		t.Fatalf("期望真实环境变量优先，实际 %q", v)
	}
}

func TestEnviron_NoDotEnv(t *testing.T) {
	env, err := Environ(t.TempDir())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, ok := env("FIGHTLINK_TEST_SURELY_UNSET"); ok {
		t.Fatalf("未设置的变量不应存在")
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll 失败：%v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("WriteFile 失败：%v", err)
	}
}
