package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node 是清洗规则依赖的最小树节点抽象，与具体的 HTML 解析库无关
type Node interface {
	Tag() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	Children() []Node
	Remove()
}

// Marker 用标签名与 class 描述需要整体删除的装饰性节点，二者为空表示不限制
type Marker struct {
	Tag   string
	Class string
}

func (m Marker) Match(n Node) bool {
	if m.Tag == "" && m.Class == "" {
		return false
	}
	if m.Tag != "" && !strings.EqualFold(n.Tag(), m.Tag) {
		return false
	}
	if m.Class == "" {
		return true
	}
	class, _ := n.Attr("class")
	for _, c := range strings.Fields(class) {
		if c == m.Class {
			return true
		}
	}
	return false
}

// DefaultImageSources 图片真实地址的候选属性，按优先级排列
var DefaultImageSources = []string{"zoomfile", "file", "data-src", "data-original", "src"}

// DefaultPlaceholder 匹配占位图（none.gif 等）
var DefaultPlaceholder = regexp.MustCompile(`(?i)none\.gif$`)

// Sanitizer 清洗论坛/文章正文：删除装饰节点，修正图片地址，去掉占位图
type Sanitizer struct {
	Remove       []Marker
	ImageSources []string
	Placeholder  *regexp.Regexp
	// Base 非空时，相对图片地址按其解析为绝对地址
	Base *url.URL
}

// Apply 原地清洗以 root 为根的子树（root 本身不会被删除）
func (s *Sanitizer) Apply(root Node) {
	for _, child := range root.Children() {
		s.walk(child)
	}
}

func (s *Sanitizer) walk(n Node) {
	for _, m := range s.Remove {
		if m.Match(n) {
			n.Remove()
			return
		}
	}
	if strings.EqualFold(n.Tag(), "img") {
		s.fixImage(n)
		return
	}
	for _, child := range n.Children() {
		s.walk(child)
	}
}

func (s *Sanitizer) fixImage(img Node) {
	sources := s.ImageSources
	if len(sources) == 0 {
		sources = DefaultImageSources
	}
	placeholder := s.Placeholder
	if placeholder == nil {
		placeholder = DefaultPlaceholder
	}

	src := ""
	for _, attr := range sources {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
			src = strings.TrimSpace(v)
			break
		}
	}
	if src == "" || placeholder.MatchString(src) {
		img.Remove()
		return
	}
	if s.Base != nil {
		if ref, err := url.Parse(src); err == nil {
			src = s.Base.ResolveReference(ref).String()
		}
	}
	img.SetAttr("src", src)
}

// SelectionNode 用 goquery 实现 Node
type SelectionNode struct {
	Sel *goquery.Selection
}

func (n SelectionNode) Tag() string {
	return goquery.NodeName(n.Sel)
}

func (n SelectionNode) Attr(name string) (string, bool) {
	return n.Sel.Attr(name)
}

func (n SelectionNode) SetAttr(name, value string) {
	n.Sel.SetAttr(name, value)
}

func (n SelectionNode) Children() []Node {
	kids := n.Sel.Children()
	out := make([]Node, 0, kids.Length())
	kids.Each(func(_ int, s *goquery.Selection) {
		out = append(out, SelectionNode{Sel: s})
	})
	return out
}

func (n SelectionNode) Remove() {
	n.Sel.Remove()
}

// SanitizeSelection 清洗 sel 下的内容并返回其内部 HTML
func (s *Sanitizer) SanitizeSelection(sel *goquery.Selection) (string, error) {
	if sel.Length() == 0 {
		return "", nil
	}
	s.Apply(SelectionNode{Sel: sel.First()})
	return sel.First().Html()
}
