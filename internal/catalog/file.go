package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/infra/fsx"
)

// FileFormat 由文件扩展名决定：.csv 为 CSV（带表头），其它一律按 JSON 数组处理。
type FileFormat int

const (
	FormatJSON FileFormat = iota
	FormatCSV
)

func FormatOf(path string) FileFormat {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// FileError 表示目录文件无法读取或格式不合法。
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("目录文件 %q 无效：%v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ReadFile 严格读取目录文件：文件不存在、无法解析都返回错误（*FileError）。
func ReadFile(path string) ([]domain.FightRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	recs, err := Decode(b, FormatOf(path))
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return recs, nil
}

// Decode 解析目录内容。空 JSON 数组与只有表头的 CSV 都是合法的空目录。
func Decode(b []byte, format FileFormat) ([]domain.FightRecord, error) {
	recs := []domain.FightRecord{}
	switch format {
	case FormatCSV:
		if len(bytes.TrimSpace(b)) == 0 {
			return recs, nil
		}
		if err := gocsv.UnmarshalBytes(b, &recs); err != nil {
			if errors.Is(err, gocsv.ErrEmptyCSVFile) {
				return []domain.FightRecord{}, nil
			}
			return nil, err
		}
	default:
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, err
		}
		if recs == nil {
			// 文件内容为 null
			return nil, errors.New("期望 JSON 数组")
		}
	}
	return recs, nil
}

// Encode 按格式序列化目录；JSON 使用两空格缩进，便于人工审阅 diff。
func Encode(recs []domain.FightRecord, format FileFormat) ([]byte, error) {
	if recs == nil {
		recs = []domain.FightRecord{}
	}
	switch format {
	case FormatCSV:
		return gocsv.MarshalBytes(&recs)
	default:
		b, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
}

// WriteFile 原子替换写入目录文件；正在读取旧文件的进程不会看到半截内容。
func WriteFile(path string, recs []domain.FightRecord) error {
	b, err := Encode(recs, FormatOf(path))
	if err != nil {
		return &FileError{Path: path, Err: err}
	}
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	return fsx.WriteFileAtomic(dir, name, b)
}

// Load 是启动时的宽松加载：文件缺失、不可读或格式错误时记录警告并返回空目录，不会失败。
func Load(path string) *Index {
	if strings.TrimSpace(path) == "" {
		log.Warn().Msg("未配置目录文件，目录为空，所有匹配都将走兜底搜索链接")
		return New(nil)
	}
	recs, err := ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("目录加载失败，使用空目录")
		return New(nil)
	}
	idx := New(recs)
	log.Info().
		Str("path", path).
		Int("records", len(recs)).
		Int("indexed", idx.Len()).
		Msg("目录已加载")
	return idx
}
