package route

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const (
	zaixsListBase   = "https://share.zaixs.com"
	zaixsThreadBase = "https://www.zaixs.com"
	zaixsLimit      = 10
	zaixsUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"
)

// 移动端帖子链接 /wap/thread/view-thread/tid/{id}
var reZaixsTID = regexp.MustCompile(`tid/(\d+)`)

// zaixsSanitizer 清洗首帖：去掉图片提示浮层，还原懒加载图片
var zaixsSanitizer = &normalize.Sanitizer{
	Remove: []normalize.Marker{
		{Tag: "div", Class: "tip"},
		{Tag: "div", Class: "aimg_tip"},
		{Class: "xs0"},
		{Class: "tip_horn"},
	},
}

// Zaixs 萧内网 社区板块精华帖。列表取移动端页面，详情取 GBK 编码的 PC 端帖子页。
type Zaixs struct {
	env        *Env
	ListBase   string
	ThreadBase string
}

func NewZaixs(env *Env) Adapter {
	return &Zaixs{env: env, ListBase: zaixsListBase, ThreadBase: zaixsThreadBase}
}

func (z *Zaixs) Meta() Metadata {
	return Metadata{
		Namespace:   "zaixs",
		Path:        "/:fid",
		Name:        "社区板块精华帖",
		URL:         zaixsListBase,
		Categories:  []string{"bbs"},
		Example:     "/zaixs/112",
		Parameters:  map[string]string{"fid": "板块 ID"},
		Maintainers: []string{"c71an"},
	}
}

func (z *Zaixs) Run(ctx context.Context, params Params) (*feed.Document, error) {
	listURL := z.ListBase + "/wap/community/list?fid=" + url.QueryEscape(params["fid"]) + "&digest=1"
	req := fetch.Get(listURL)
	req.Headers = map[string]string{"User-Agent": zaixsUserAgent}

	rule := feed.ListRule{Selector: "#news li", Limit: zaixsLimit, Map: z.descriptor}
	channel := func(page *fetch.Page) feed.Channel {
		name := strings.TrimSpace(page.Doc.Find("body > div:nth-of-type(2) > div > p:nth-of-type(1)").Text())
		return feed.Channel{
			Title:       "萧内网 " + name,
			Link:        listURL,
			Description: "萧内网 " + name + " 精华列表",
		}
	}

	p := &feed.Pipeline{
		Source:   feed.HTMLSource(z.env.Fetch, req, rule, feed.Channel{}, channel),
		Detail:   z.detail,
		Resolver: z.env.resolver("zaixs", feed.DropFailed, true),
	}
	return p.Run(ctx)
}

// descriptor 移动端链接改写为 PC 端帖子地址
func (z *Zaixs) descriptor(page *fetch.Page, s *goquery.Selection) (feed.Descriptor, bool) {
	title := strings.TrimSpace(s.Find("a div h6").Text())
	href, _ := s.Find("a").First().Attr("href")
	link := page.Resolve(href)
	if m := reZaixsTID.FindStringSubmatch(href); m != nil {
		link = z.ThreadBase + "/thread-" + m[1] + "-1-1.html"
	}
	if link == "" {
		return feed.Descriptor{}, false
	}
	return feed.Descriptor{Title: title, Link: link}, true
}

func (z *Zaixs) detail(ctx context.Context, d feed.Descriptor) (feed.Item, error) {
	req := fetch.Get(d.Link)
	req.Headers = map[string]string{"User-Agent": zaixsUserAgent}
	page, err := z.env.Fetch.HTML(ctx, req, "gbk")
	if err != nil {
		return feed.Item{}, err
	}

	it := feed.Item{Title: d.Title, Link: d.Link}
	// 首帖作者栏 span 的 title 属性是完整发帖时间
	if v, ok := page.Doc.Find(`[id^="authorposton"] span[title]`).First().Attr("title"); ok {
		it.PubDate = normalize.ParseDatePtr(v)
	}

	s := *zaixsSanitizer
	s.Base = page.Base()
	content, err := s.SanitizeSelection(page.Doc.Find("div.t_fsz table").First())
	if err != nil {
		return feed.Item{}, err
	}
	it.Description = strings.TrimSpace(content)
	return it, nil
}
