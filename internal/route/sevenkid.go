package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const (
	sevenKidAPIBase  = "https://kidcms.7kid.com/api/javaphpcms/v1/no-auth"
	sevenKidSite     = "https://kidcms.7kid.com"
	sevenKidEmptyMsg = "内容为空，无法解压。"
)

type sevenKidArticle struct {
	ID          json.Number     `json:"id"`
	Title       string          `json:"title"`
	PublishTime json.RawMessage `json:"publishTime"`
}

type sevenKidCategory struct {
	ArticleList []sevenKidArticle `json:"articleList"`
}

type sevenKidListResp struct {
	Data []sevenKidCategory `json:"data"`
}

type sevenKidDetailResp struct {
	Data struct {
		// content 为 gzip 后的有符号字节数组，可能被再包一层 JSON 字符串
		Content json.RawMessage `json:"content"`
	} `json:"data"`
}

// SevenKid 7kid 校园 CMS 的分类文章。列表与详情都是 POST 接口。
type SevenKid struct {
	env *Env
	// APIBase 与 LinkBase 可在测试中替换
	APIBase  string
	LinkBase string
}

func NewSevenKid(env *Env) Adapter {
	return &SevenKid{env: env, APIBase: sevenKidAPIBase, LinkBase: sevenKidSite}
}

func (s *SevenKid) Meta() Metadata {
	return Metadata{
		Namespace:   "7kid",
		Path:        "/:schoolId",
		Name:        "文章列表",
		URL:         sevenKidSite,
		Categories:  []string{"education"},
		Example:     "/7kid/718336990898551810",
		Parameters:  map[string]string{"schoolId": "学校 ID"},
		Maintainers: []string{"c71an"},
	}
}

func (s *SevenKid) Run(ctx context.Context, params Params) (*feed.Document, error) {
	schoolID := params["schoolId"]
	p := &feed.Pipeline{
		Source: func(ctx context.Context) (feed.Channel, []feed.Descriptor, error) {
			return s.list(ctx, schoolID)
		},
		Detail:   s.detail,
		Resolver: s.env.resolver("7kid", s.fallback, false),
	}
	return p.Run(ctx)
}

func (s *SevenKid) list(ctx context.Context, schoolID string) (feed.Channel, []feed.Descriptor, error) {
	ch := feed.Channel{
		Title:       fmt.Sprintf("7kid - School ID: %s", schoolID),
		Link:        sevenKidSite,
		Description: fmt.Sprintf("7kid CMS School ID %s 最新文章", schoolID),
	}

	var resp sevenKidListResp
	u := s.APIBase + "/home/category-list?schoolId=" + url.QueryEscape(schoolID)
	if err := s.env.Fetch.JSON(ctx, fetch.Post(u), &resp); err != nil {
		return feed.Channel{}, nil, err
	}

	articles := feed.Flatten(resp.Data, func(c sevenKidCategory) []sevenKidArticle { return c.ArticleList })
	descs := make([]feed.Descriptor, 0, len(articles))
	for _, a := range articles {
		descs = append(descs, feed.Descriptor{
			ID:     a.ID.String(),
			Title:  a.Title,
			Link:   s.link(a.ID.String()),
			Inline: a.PublishTime,
		})
	}
	return ch, descs, nil
}

// link 前端是 hash 路由，文章 id 放在 fragment 中
func (s *SevenKid) link(id string) string {
	return s.LinkBase + "/#/detail?content_id=" + id
}

func (s *SevenKid) detail(ctx context.Context, d feed.Descriptor) (feed.Item, error) {
	var resp sevenKidDetailResp
	u := s.APIBase + "/get-detail?articleId=" + url.QueryEscape(d.ID)
	if err := s.env.Fetch.JSON(ctx, fetch.Post(u), &resp); err != nil {
		return feed.Item{}, err
	}
	html, err := normalize.DecodeCompressedContent(resp.Data.Content)
	if err != nil {
		return feed.Item{}, fmt.Errorf("7kid: article %s: %w", d.ID, err)
	}
	return feed.Item{
		Title:       d.Title,
		Link:        d.Link,
		Description: html,
		PubDate:     normalize.DateFromJSON(d.Inline),
	}, nil
}

// fallback 失败条目保留发布时间；内容为空与其它失败使用不同提示
func (s *SevenKid) fallback(d feed.Descriptor, err error) (feed.Item, bool) {
	desc := feed.DefaultFallback
	if errors.Is(err, normalize.ErrEmptyContent) {
		desc = sevenKidEmptyMsg
	}
	return feed.Item{
		Title:       d.Title,
		Link:        d.Link,
		Description: desc,
		PubDate:     normalize.DateFromJSON(d.Inline),
	}, true
}
