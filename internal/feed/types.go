package feed

import (
	"encoding/json"
	"time"
)

// Descriptor 列表中的一条，尚未取详情。Link 已是绝对地址。
type Descriptor struct {
	ID    string
	Title string
	Link  string
	// Inline 为接口返回的原始记录，可不经详情请求直接使用
	Inline json.RawMessage
}

// Item 规范化后的条目，产出后不再修改
type Item struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	PubDate     *time.Time `json:"pubDate,omitempty"`
	GUID        string     `json:"guid,omitempty"`
}

// Channel 频道元数据
type Channel struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// Document 一次请求的完整输出
type Document struct {
	Channel
	Items []Item `json:"item"`
}
