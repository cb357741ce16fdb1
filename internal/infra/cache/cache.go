package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/John-Robertt/fightlink/internal/infra/fsx"
)

// Store 提供 <root>/pages/<bucket>/ 下的页面缓存读写。
//
// 约束：
// - Root 为空表示禁用缓存：读永远 miss，写直接忽略
// - ReadOnly=true 时只读，写返回 ErrReadOnly
// - 过期判断只看文件 mtime；ttl<=0 表示永不过期
type Store struct {
	Root     string
	ReadOnly bool

	now func() time.Time
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	root = strings.TrimSpace(root)
	if root != "" {
		root = filepath.Clean(root)
	}
	return Store{Root: root, ReadOnly: readOnly}
}

func (s Store) Enabled() bool { return s.Root != "" }

// PagePath 返回 bucket 下某个 URL 对应的缓存文件路径（URL 取 sha256，避免路径穿越）。
func (s Store) PagePath(bucket, rawURL string) (string, error) {
	b, err := cleanBucket(bucket)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("url 不能为空")
	}
	return filepath.Join(s.Root, "pages", b, pageName(rawURL)), nil
}

// ReadPage 读取未过期的缓存页面；miss 或过期返回 ok=false。
func (s Store) ReadPage(bucket, rawURL string, ttl time.Duration) ([]byte, bool, error) {
	if !s.Enabled() {
		return nil, false, nil
	}
	path, err := s.PagePath(bucket, rawURL)
	if err != nil {
		return nil, false, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if ttl > 0 && s.clock().Sub(fi.ModTime()) > ttl {
		return nil, false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WritePage(bucket, rawURL string, body []byte) error {
	if !s.Enabled() {
		return nil
	}
	if s.ReadOnly {
		return ErrReadOnly
	}
	b, err := cleanBucket(bucket)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("url 不能为空")
	}
	dir := filepath.Join(s.Root, "pages", b)
	return fsx.WriteFileAtomic(dir, pageName(rawURL), body)
}

func (s Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func pageName(rawURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(rawURL)))
	return hex.EncodeToString(sum[:16]) + ".html"
}

var bucketNameRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func cleanBucket(b string) (string, error) {
	b = strings.ToLower(strings.TrimSpace(b))
	if b == "" {
		return "", fmt.Errorf("bucket 不能为空")
	}
	if !bucketNameRE.MatchString(b) {
		return "", fmt.Errorf("非法 bucket：%q", b)
	}
	return b, nil
}
