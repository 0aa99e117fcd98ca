package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/list/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "yes" {
			http.Error(w, "missing header", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><ul><li><a href="../detail/1.html">一</a></li></ul></body></html>`))
	})
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":7,"title":"通知"}}`))
	})
	mux.HandleFunc("/gbk", func(w http.ResponseWriter, r *http.Request) {
		b, _ := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(`<div id="t">精华帖</div>`))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(b)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPageResolvesRelativeLinks(t *testing.T) {
	srv := newTestServer(t)
	c := New(5*time.Second, "")

	page, err := c.Page(context.Background(), Request{URL: srv.URL + "/list/", Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Page error: %v", err)
	}
	href, _ := page.Doc.Find("li a").Attr("href")
	if got, want := page.Resolve(href), srv.URL+"/detail/1.html"; got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestPageReportsStatus(t *testing.T) {
	srv := newTestServer(t)
	_, err := New(5*time.Second, "").Page(context.Background(), Get(srv.URL+"/gone"))
	if err == nil {
		t.Fatalf("expected error for 404 page")
	}
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestJSONPost(t *testing.T) {
	srv := newTestServer(t)
	var out struct {
		Data struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	if err := New(5*time.Second, "").JSON(context.Background(), Post(srv.URL+"/api"), &out); err != nil {
		t.Fatalf("JSON error: %v", err)
	}
	if out.Data.ID != 7 || out.Data.Title != "通知" {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestHTMLDecodesCharset(t *testing.T) {
	srv := newTestServer(t)
	page, err := New(5*time.Second, "").HTML(context.Background(), Get(srv.URL+"/gbk"), "gbk")
	if err != nil {
		t.Fatalf("HTML error: %v", err)
	}
	if got := page.Doc.Find("#t").Text(); got != "精华帖" {
		t.Fatalf("decoded text = %q", got)
	}
}

func TestBytesStatusError(t *testing.T) {
	srv := newTestServer(t)
	_, err := New(5*time.Second, "").Bytes(context.Background(), Get(srv.URL+"/gone"))
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected StatusError 404, got %v", err)
	}
}

func TestPageBaseHref(t *testing.T) {
	page, err := NewPage("https://example.com/a/b.html", `<html><head><base href="https://cdn.example.com/x/"></head><body></body></html>`)
	if err != nil {
		t.Fatalf("NewPage error: %v", err)
	}
	if got := page.Resolve("c.html"); got != "https://cdn.example.com/x/c.html" {
		t.Fatalf("Resolve with base = %q", got)
	}
}

func TestBytesRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, maxResponseBytes+1))
	}))
	defer srv.Close()

	_, err := New(5*time.Second, "").Bytes(context.Background(), Get(srv.URL))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
