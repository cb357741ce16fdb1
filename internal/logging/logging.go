// Package logging 配置全局 zerolog logger。
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options 描述日志输出。
//
// 约束：
// - Console 为 nil 时使用 os.Stderr
// - Console 是终端时输出彩色可读格式，否则输出 JSON 行（便于采集）
// - File 非空时额外写入滚动日志文件（JSON 行）
type Options struct {
	Level   string
	File    string
	Console io.Writer
}

// Setup 替换全局 logger，返回用于关闭日志文件的函数（无文件时是空操作）。
func Setup(opts Options) (func() error, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return nil, err
		}
		level = l
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	if IsTerminal(console) {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
	}

	writers := []io.Writer{console}
	closeFn := func() error { return nil }
	if f := strings.TrimSpace(opts.File); f != "" {
		if err := os.MkdirAll(filepath.Dir(f), 0o750); err != nil {
			return nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   f,
			MaxSize:    5, // MB
			MaxBackups: 3,
		}
		writers = append(writers, lj)
		closeFn = lj.Close
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(io.MultiWriter(writers...)).
		With().Timestamp().Logger()
	return closeFn, nil
}

// IsTerminal 判断 w 是否是终端（*os.File 且是 tty）。
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
