package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmcdole/gofeed"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/route"
)

type stubAdapter struct {
	meta route.Metadata
	err  error
}

func (s stubAdapter) Meta() route.Metadata {
	return s.meta
}

func (s stubAdapter) Run(_ context.Context, params route.Params) (*feed.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	pub := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return feed.Assemble(feed.Channel{
		Title:       "school " + params["id"],
		Link:        "https://example.com",
		Description: "demo",
	}, []*feed.Item{
		{Title: "first", Link: "https://example.com/1", Description: "<p>one</p>", PubDate: &pub},
		{Title: "second", Link: "https://example.com/2", Description: "点击标题查看详情"},
	}), nil
}

func newTestEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	reg := route.NewRegistry(
		stubAdapter{meta: route.Metadata{Namespace: "demo", Path: "/:id", Example: "/demo/1"}},
		stubAdapter{meta: route.Metadata{Namespace: "down", Path: "/list", Example: "/down/list"}, err: errors.New("list: unexpected status 500")},
	)
	NewServer(reg).RegisterRoutes(r)
	return r
}

func do(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestServeFeedRSS(t *testing.T) {
	w := do(newTestEngine(), "/feeds/demo/7")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Fatalf("content-type=%q", ct)
	}
	parsed, err := gofeed.NewParser().ParseString(w.Body.String())
	if err != nil {
		t.Fatalf("rss does not parse: %v\n%s", err, w.Body.String())
	}
	if parsed.Title != "school 7" || len(parsed.Items) != 2 {
		t.Fatalf("title=%q items=%d", parsed.Title, len(parsed.Items))
	}
	if parsed.Items[0].Title != "first" || parsed.Items[1].Title != "second" {
		t.Fatalf("order broken: %q, %q", parsed.Items[0].Title, parsed.Items[1].Title)
	}
	if parsed.Items[1].PublishedParsed != nil {
		t.Fatalf("item without date should have no pubDate")
	}
}

func TestServeFeedJSON(t *testing.T) {
	w := do(newTestEngine(), "/feeds/demo/9?format=json")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var doc struct {
		Title string `json:"title"`
		Item  []struct {
			Title   string  `json:"title"`
			PubDate *string `json:"pubDate"`
		} `json:"item"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if doc.Title != "school 9" || len(doc.Item) != 2 || doc.Item[1].PubDate != nil {
		t.Fatalf("unexpected json %s", w.Body.String())
	}
}

func TestServeFeedErrors(t *testing.T) {
	r := newTestEngine()

	if w := do(r, "/feeds/nope/x"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route status=%d", w.Code)
	}

	w := do(r, "/feeds/down/list")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("list failure status=%d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if body["code"] != "upstream_error" || !strings.Contains(body["message"], "500") {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestListRoutes(t *testing.T) {
	w := do(newTestEngine(), "/routes")
	var body struct {
		Data []route.Metadata `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(body.Data) != 2 || body.Data[0].Example != "/demo/1" {
		t.Fatalf("unexpected routes %+v", body.Data)
	}
}

func TestBasicAuth(t *testing.T) {
	r := newTestEngine(BasicAuth("admin", "secret"))

	if w := do(r, "/health"); w.Code != http.StatusOK {
		t.Fatalf("health should skip auth, status=%d", w.Code)
	}
	if w := do(r, "/routes"); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing credentials status=%d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/routes", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid credentials status=%d", w.Code)
	}
}
