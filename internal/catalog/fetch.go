package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	cacheKey        = "catalog"
	maxDocumentSize = 8 << 20
)

// Fetcher downloads catalog documents from an ordered list of mirrors.
type Fetcher struct {
	Sources []string
	Client  *http.Client
	Logger  logrus.FieldLogger

	ttl   time.Duration
	cache *gocache.Cache
}

// NewFetcher creates a Fetcher. A ttl of zero or less disables caching.
// A zero Fetcher with Sources set is usable too, without caching.
func NewFetcher(sources []string, timeout, ttl time.Duration, logger logrus.FieldLogger) *Fetcher {
	return &Fetcher{
		Sources: sources,
		Client:  &http.Client{Timeout: timeout},
		Logger:  logger,
		ttl:     ttl,
		cache:   gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Fetch tries each source in order and returns the first document that
// parses as a valid catalog. When every source fails the errors are joined.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	if f.cache != nil && f.ttl > 0 {
		if cached, ok := f.cache.Get(cacheKey); ok {
			f.logger().Debug("使用缓存的补丁配置")
			return cached.([]byte), nil
		}
	}
	if len(f.Sources) == 0 {
		return nil, errors.New("未配置补丁下载地址")
	}

	var errs []error
	for _, source := range f.Sources {
		data, err := f.fetchOne(ctx, source)
		if err == nil {
			_, err = Load(data)
		}
		if err != nil {
			f.logger().WithError(err).WithField("source", source).Warn("获取补丁配置失败")
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		f.logger().WithField("source", source).Info("已获取最新补丁配置")
		if f.cache != nil && f.ttl > 0 {
			f.cache.Set(cacheKey, data, f.ttl)
		}
		return data, nil
	}
	return nil, fmt.Errorf("所有补丁下载地址均失败: %w", errors.Join(errs...))
}

// Invalidate drops the cached document so the next Fetch hits the network.
func (f *Fetcher) Invalidate() {
	if f.cache != nil {
		f.cache.Delete(cacheKey)
	}
}

func (f *Fetcher) logger() logrus.FieldLogger {
	if f.Logger != nil {
		return f.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (f *Fetcher) fetchOne(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP状态码 %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return data, nil
}
