// Package fetch 封装对外请求：接口与详情页走 net/http，列表页走 colly。
// 不做重试，超时由 Client 的配置决定。
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/LJTian/FeedHub/internal/normalize"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "FeedHubBot/1.0"
	maxResponseBytes = 8 << 20 // 8MB，防止超大页面
)

// Request 描述一次请求；Method 为空时为 GET
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
}

func Get(u string) Request {
	return Request{URL: u}
}

func Post(u string) Request {
	return Request{URL: u, Method: http.MethodPost}
}

// ErrTooLarge 响应体超过大小上限
var ErrTooLarge = errors.New("fetch: response too large")

// StatusError 非 2xx 响应
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
}

type Client struct {
	HTTP      *http.Client
	UserAgent string
	Timeout   time.Duration
}

func New(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
		Timeout:   timeout,
	}
}

// Bytes 以原始字节返回响应体，供需要自行解码编码的来源使用
func (c *Client) Bytes(ctx context.Context, r Request) ([]byte, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: build request: %w", r.URL, err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: r.URL, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", r.URL, err)
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("fetch %s: %w", r.URL, ErrTooLarge)
	}
	return data, nil
}

func (c *Client) Text(ctx context.Context, r Request) (string, error) {
	b, err := c.Bytes(ctx, r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// JSON 请求并将响应体解码到 v
func (c *Client) JSON(ctx context.Context, r Request, v any) error {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	if _, ok := r.Headers["Accept"]; !ok {
		r.Headers["Accept"] = "application/json"
	}
	b, err := c.Bytes(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("fetch %s: decode json: %w", r.URL, err)
	}
	return nil
}

// HTML 请求详情页并解析；charset 非空时先按该编码转码再解析
func (c *Client) HTML(ctx context.Context, r Request, charset string) (*Page, error) {
	b, err := c.Bytes(ctx, r)
	if err != nil {
		return nil, err
	}
	text, err := normalize.DecodeCharset(b, charset)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.URL, err)
	}
	return NewPage(r.URL, text)
}

// Page 使用 colly 抓取列表页。每次调用新建 collector，避免 colly 的重复访问过滤。
func (c *Client) Page(ctx context.Context, r Request) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	col := colly.NewCollector(colly.UserAgent(c.UserAgent))
	col.SetRequestTimeout(c.Timeout)
	col.OnRequest(func(req *colly.Request) {
		for k, v := range r.Headers {
			req.Headers.Set(k, v)
		}
	})

	var (
		body     []byte
		finalURL string
		status   int
	)
	col.OnResponse(func(resp *colly.Response) {
		body = resp.Body
		finalURL = resp.Request.URL.String()
	})
	col.OnError(func(resp *colly.Response, err error) {
		if resp != nil {
			status = resp.StatusCode
		}
	})

	var err error
	if r.Method == "" || r.Method == http.MethodGet {
		err = col.Visit(r.URL)
	} else {
		err = col.Request(r.Method, r.URL, bytes.NewReader(r.Body), nil, nil)
	}
	if err != nil {
		if status >= 300 {
			return nil, &StatusError{URL: r.URL, Code: status}
		}
		return nil, fmt.Errorf("fetch %s: %w", r.URL, err)
	}
	if finalURL == "" {
		finalURL = r.URL
	}
	return NewPage(finalURL, string(body))
}

// Page 一个已解析的 HTML 文档及其地址
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

func NewPage(rawURL, html string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse url %q: %w", rawURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: parse html: %w", rawURL, err)
	}
	return &Page{URL: u, Doc: doc}, nil
}

// Base 返回解析相对链接用的基准地址，页面声明了 <base href> 时以其为准
func (p *Page) Base() *url.URL {
	if href, ok := p.Doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := url.Parse(strings.TrimSpace(href)); err == nil {
			return p.URL.ResolveReference(b)
		}
	}
	return p.URL
}

// Resolve 将相对链接转为绝对地址；无法解析时返回空字符串
func (p *Page) Resolve(href string) string {
	return ResolveURL(p.Base(), href)
}

// ResolveURL 以 base 解析 href
func ResolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// IsStatus 判断 err 是否为指定状态码的 StatusError
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
