package feed

import (
	"context"
	"fmt"
)

// Assemble 组装最终文档，跳过 nil 条目；没有条目时仍返回合法文档
func Assemble(ch Channel, items []*Item) *Document {
	doc := &Document{Channel: ch, Items: make([]Item, 0, len(items))}
	for _, it := range items {
		if it == nil {
			continue
		}
		doc.Items = append(doc.Items, *it)
	}
	return doc
}

// SourceFunc 抓取列表并给出频道信息与条目；出错时整个请求失败
type SourceFunc func(ctx context.Context) (Channel, []Descriptor, error)

// Pipeline 列表 → 详情 → 组装
type Pipeline struct {
	Source SourceFunc
	// Detail 为空时直接用列表中的标题与链接
	Detail   DetailFunc
	Resolver *Resolver
}

func (p *Pipeline) Run(ctx context.Context) (*Document, error) {
	ch, descs, err := p.Source(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	if p.Detail == nil {
		items := make([]*Item, len(descs))
		for i, d := range descs {
			items[i] = &Item{Title: d.Title, Link: d.Link}
		}
		return Assemble(ch, items), nil
	}

	r := p.Resolver
	if r == nil {
		r = &Resolver{}
	}
	return Assemble(ch, r.Resolve(ctx, descs, p.Detail)), nil
}
