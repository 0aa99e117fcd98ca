package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

const generator = "FeedHub"

// RSS 将文档渲染为 RSS 2.0
func RSS(doc *Document, selfLink string) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", doc.Title, 4)
	writeElement(&buf, "link", doc.Link, 4)
	writeElement(&buf, "description", cmp.Or(doc.Description, doc.Title), 4)
	if selfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(selfLink)))
	}

	writeElement(&buf, "lastBuildDate", lastBuildDate(doc.Items, time.Now()).Format(time.RFC1123Z), 4)
	writeElement(&buf, "generator", generator, 4)

	for _, it := range doc.Items {
		writeItem(&buf, it)
	}

	buf.WriteString("  </channel>\n</rss>")
	return buf.String()
}

// lastBuildDate 取条目中最新的发布时间，条目都没有日期时用 now
func lastBuildDate(items []Item, now time.Time) time.Time {
	var latest *time.Time
	for _, it := range items {
		if it.PubDate != nil && (latest == nil || it.PubDate.After(*latest)) {
			latest = it.PubDate
		}
	}
	if latest == nil {
		return now
	}
	return *latest
}

func writeItem(buf *bytes.Buffer, it Item) {
	buf.WriteString("    <item>\n")

	guid := cmp.Or(it.GUID, it.Link)
	if guid != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", guid == it.Link && isURL(guid)))
		_ = xml.EscapeText(buf, []byte(guid))
		buf.WriteString("</guid>\n")
	}
	writeElement(buf, "title", it.Title, 6)
	writeElement(buf, "link", it.Link, 6)
	writeElement(buf, "description", it.Description, 6)
	if it.PubDate != nil {
		writeElement(buf, "pubDate", it.PubDate.Format(time.RFC1123Z), 6)
	}

	buf.WriteString("    </item>\n")
}

func writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<" + tag + ">")
	_ = xml.EscapeText(buf, []byte(content))
	buf.WriteString("</" + tag + ">\n")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

