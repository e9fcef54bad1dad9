package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"CineSync/internal/config"
	"CineSync/internal/interfaces"
	"CineSync/internal/model"
	"CineSync/internal/utils/httpclient"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

// Adapter TMDB风格内容提供方适配器（搜索/热门/高分/分类taxonomy）
type Adapter struct {
	cfg        *config.ProviderConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewAdapter(cfg *config.ProviderConfig, logger *logrus.Logger) interfaces.CatalogProvider {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// NewAdapterWithClient 注入自定义http.Client（测试用）
func NewAdapterWithClient(cfg *config.ProviderConfig, httpc *http.Client, logger *logrus.Logger) interfaces.CatalogProvider {
	return &Adapter{cfg: cfg, httpClient: httpc, logger: logger}
}

func (a *Adapter) GetName() string {
	return "TMDB"
}

// apiPath 本地内容类型映射到提供方路径段：movie→movie，drama→tv
func apiPath(kind model.ContentKind) string {
	if kind == model.KindDrama {
		return "tv"
	}
	return "movie"
}

func (a *Adapter) SearchByTitle(ctx context.Context, kind model.ContentKind, query string, page int) (*model.ProviderPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var result model.ProviderPage
	endpoint := fmt.Sprintf("%s/search/%s", a.cfg.BaseURL, apiPath(kind))
	if err := a.getJSON(ctx, endpoint, params, &result); err != nil {
		return nil, fmt.Errorf("搜索%s失败: %w", kind, err)
	}
	return &result, nil
}

func (a *Adapter) ListPopular(ctx context.Context, kind model.ContentKind, page int) (*model.ProviderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var result model.ProviderPage
	endpoint := fmt.Sprintf("%s/%s/popular", a.cfg.BaseURL, apiPath(kind))
	if err := a.getJSON(ctx, endpoint, params, &result); err != nil {
		return nil, fmt.Errorf("拉取%s热门列表失败: %w", kind, err)
	}
	return &result, nil
}

func (a *Adapter) ListTopRated(ctx context.Context, kind model.ContentKind, page int) (*model.ProviderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var result model.ProviderPage
	endpoint := fmt.Sprintf("%s/%s/top_rated", a.cfg.BaseURL, apiPath(kind))
	if err := a.getJSON(ctx, endpoint, params, &result); err != nil {
		return nil, fmt.Errorf("拉取%s高分列表失败: %w", kind, err)
	}
	return &result, nil
}

func (a *Adapter) ListGenres(ctx context.Context, kind model.ContentKind) ([]model.ProviderGenre, error) {
	var result model.ProviderGenreList
	endpoint := fmt.Sprintf("%s/genre/%s/list", a.cfg.BaseURL, apiPath(kind))
	if err := a.getJSON(ctx, endpoint, url.Values{}, &result); err != nil {
		return nil, fmt.Errorf("拉取%s分类失败: %w", kind, err)
	}
	return result.Genres, nil
}

// getJSON 带重试的GET+JSON解析。4xx不重试（参数/鉴权问题重试无意义），5xx与网络错误按配置重试。
func (a *Adapter) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("api_key", a.cfg.APIKey)
	params.Set("language", a.cfg.Language)
	fullURL := endpoint + "?" + params.Encode()

	attempts := uint(a.cfg.RetryCount) + 1
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := a.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				_, _ = io.Copy(io.Discard, resp.Body)
				err := fmt.Errorf("提供方返回状态码 %d", resp.StatusCode)
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return json.NewDecoder(resp.Body).Decode(out)
		},
		retry.Attempts(attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			a.logger.WithError(err).WithFields(logrus.Fields{
				"attempt": n + 1,
				"url":     endpoint,
			}).Warn("提供方请求失败，准备重试")
		}),
	)
}
