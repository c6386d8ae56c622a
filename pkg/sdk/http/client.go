package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/matchscreener/pkg/ratelimit"
)

type Client struct {
	client  *resty.Client
	limiter *ratelimit.Manager
}

type Options struct {
	BaseURL string
	Token   string // optional bearer token
	Timeout time.Duration
}

func NewClient(opt Options) *Client {
	host := strings.TrimSuffix(opt.BaseURL, "/")
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY）
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// 如果遇到 429 限流，使用 Retry-After 头
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	if opt.Token != "" {
		client.SetAuthToken(opt.Token)
	}

	return &Client{client: client, limiter: ratelimit.NewManager()}
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	return r
}

// Get performs a GET against endpoint and decodes the JSON response into out.
// Query params with empty values are dropped.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return errors.Wrapf(err, "rate limit %s", endpoint)
	}

	r := c.newRequest(ctx)
	for k, v := range params {
		if v == "" {
			continue
		}
		r.SetQueryParam(k, v)
	}

	resp, err := r.Get(endpoint)
	if err != nil {
		return errors.Wrapf(err, "GET %s", endpoint)
	}
	if resp.IsError() {
		return errors.Errorf("GET %s: status %d: %s", endpoint, resp.StatusCode(), truncate(resp.String(), 256))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, "decode %s response", endpoint)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
