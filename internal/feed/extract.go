package feed

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/LJTian/FeedHub/internal/fetch"
)

// ListRule 描述如何从列表页取出条目
type ListRule struct {
	// Selector 命中的每个元素对应一条
	Selector string
	// Limit 最多保留的条数，<=0 表示不限
	Limit int
	// Map 自定义字段提取；为空时按锚点元素处理：优先 title 属性，其次文本，链接取 href
	Map func(page *fetch.Page, s *goquery.Selection) (Descriptor, bool)
}

// ExtractHTML 按规则提取条目，选择器无命中时返回空切片而非错误
func ExtractHTML(page *fetch.Page, rule ListRule) []Descriptor {
	mapper := rule.Map
	if mapper == nil {
		mapper = AnchorDescriptor
	}

	out := make([]Descriptor, 0)
	page.Doc.Find(rule.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if rule.Limit > 0 && len(out) >= rule.Limit {
			return false
		}
		if d, ok := mapper(page, s); ok {
			out = append(out, d)
		}
		return true
	})
	return out
}

// AnchorDescriptor 默认的锚点映射
func AnchorDescriptor(page *fetch.Page, s *goquery.Selection) (Descriptor, bool) {
	title, ok := s.Attr("title")
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		title = strings.TrimSpace(s.Text())
	}
	href, _ := s.Attr("href")
	link := page.Resolve(href)
	if link == "" {
		return Descriptor{}, false
	}
	return Descriptor{Title: title, Link: link}, true
}

// TextDescriptor 只取锚点文本作为标题，忽略 title 属性
func TextDescriptor(page *fetch.Page, s *goquery.Selection) (Descriptor, bool) {
	href, _ := s.Attr("href")
	link := page.Resolve(href)
	if link == "" {
		return Descriptor{}, false
	}
	return Descriptor{Title: strings.TrimSpace(s.Text()), Link: link}, true
}

// Flatten 将分组结构展开为一个有序列表，跳过空分组，组内与组间顺序保持不变
func Flatten[G, T any](groups []G, members func(G) []T) []T {
	nonEmpty := lo.Filter(groups, func(g G, _ int) bool {
		return len(members(g)) > 0
	})
	return lo.FlatMap(nonEmpty, func(g G, _ int) []T {
		return members(g)
	})
}

// Truncate 截取前 n 条，n<=0 时原样返回
func Truncate[T any](list []T, n int) []T {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}

// HTMLSource 抓取列表页并按规则提取；channel 为空时使用固定频道信息 static
func HTMLSource(client *fetch.Client, req fetch.Request, rule ListRule, static Channel, channel func(*fetch.Page) Channel) SourceFunc {
	return func(ctx context.Context) (Channel, []Descriptor, error) {
		page, err := client.Page(ctx, req)
		if err != nil {
			return Channel{}, nil, err
		}
		ch := static
		if channel != nil {
			ch = channel(page)
		}
		return ch, ExtractHTML(page, rule), nil
	}
}
