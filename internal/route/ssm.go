package route

import (
	"context"
	"fmt"
	"strings"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const (
	ssmURL   = "https://www.ssm.gov.mo/apps1/statistics/%E6%B5%81%E6%84%9F%E6%A8%A3%E7%96%BE%E7%97%85%E5%92%8C%E6%96%B0%E5%86%A0%E7%97%85%E6%AF%92%E6%84%9F%E6%9F%93%E7%9B%A3%E6%B8%AC"
	ssmTitle = "流感樣疾病和新冠病毒感染監測"

	// 统计表的第二行是最新一期
	ssmRow      = "body > div:nth-of-type(3) > div:nth-of-type(2) > div > div > table:nth-of-type(1) > tbody > tr:nth-of-type(2)"
	ssmDateCell = ssmRow + " > td:nth-of-type(1)"
	ssmLinkCell = ssmRow + " > td:nth-of-type(2) > a"
)

// SSMWeek 澳门卫生局 流感样疾病和新冠病毒感染监测，只取最新一期
type SSMWeek struct {
	env *Env
	URL string
}

func NewSSMWeek(env *Env) Adapter {
	return &SSMWeek{env: env, URL: ssmURL}
}

func (s *SSMWeek) Meta() Metadata {
	return Metadata{
		Namespace:   "ssm",
		Path:        "/week",
		Name:        ssmTitle,
		URL:         ssmURL,
		Categories:  []string{"government", "health"},
		Example:     "/ssm/week",
		Maintainers: []string{"c71an"},
	}
}

func (s *SSMWeek) Run(ctx context.Context, _ Params) (*feed.Document, error) {
	page, err := s.env.Fetch.Page(ctx, fetch.Get(s.URL))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	dateText := strings.TrimSpace(page.Doc.Find(ssmDateCell).Text())
	link := s.URL
	if href, ok := page.Doc.Find(ssmLinkCell).Attr("href"); ok && strings.TrimSpace(href) != "" {
		if abs := page.Resolve(href); abs != "" {
			link = abs
		}
	}

	ch := feed.Channel{
		Title:       ssmTitle + " - 澳門特別行政區政府衛生局",
		Link:        s.URL,
		Description: "澳門特別行政區政府衛生局 " + ssmTitle + "數據",
	}
	item := &feed.Item{
		Title:       ssmTitle + " " + dateText,
		Link:        link,
		Description: "澳門特別行政區政府衛生局公佈的 " + dateText + " 監測報告，請點擊查看詳情。",
		PubDate:     normalize.ParseDatePtr(dateText),
		GUID:        "ssm_monitoring_" + dateText,
	}
	return feed.Assemble(ch, []*feed.Item{item}), nil
}
