package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 东八区，未带时区的日期默认按北京时间解释
var locEast8 *time.Location

func init() {
	locEast8, _ = time.LoadLocation("Asia/Shanghai")
	if locEast8 == nil {
		locEast8 = time.FixedZone("CST", 8*3600)
	}
}

// East8 返回东八区时区
func East8() *time.Location {
	return locEast8
}

// 带时区信息的格式直接解析，不再套用默认时区
var zonedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.RFC822Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05-0700",
}

// 匹配文本中的第一个日期：2023-10-20 / 2023/10/20 / 2023.10.20 / 2023年10月20日，
// 日期与时间之间允许空格、T 或多余的连字符（如 2023-10-20-09:00:00）
var reLooseDate = regexp.MustCompile(`(\d{4})\s*[-/.年]\s*(\d{1,2})\s*[-/.月]\s*(\d{1,2})\s*日?(?:[\sT-]*(\d{1,2})[:：时](\d{1,2})(?:[:：分](\d{1,2}))?)?`)

// ParseDate 将各种来源的日期文本规范为时间点；无法识别时 ok=false，
// 调用方应将其视为“无日期”，而不是用当前时间代替。
// hints 为可选的 Go layout，优先尝试。
func ParseDate(s string, hints ...string) (time.Time, bool) {
	return ParseDateIn(s, locEast8, hints...)
}

// ParseDateIn 同 ParseDate，未带时区的文本按 loc 解释
func ParseDateIn(s string, loc *time.Location, hints ...string) (time.Time, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = locEast8
	}

	for _, layout := range hints {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, ok := parseEpochText(s); ok {
		return t, true
	}

	m := reLooseDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	hour, minute, sec := "0", "0", "0"
	if m[4] != "" {
		hour, minute = m[4], m[5]
		if m[6] != "" {
			sec = m[6]
		}
	}
	canonical := m[1] + "-" + m[2] + "-" + m[3] + " " + hour + ":" + minute + ":" + sec
	t, err := time.ParseInLocation("2006-1-2 15:4:5", canonical, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDatePtr 解析失败时返回 nil，便于直接填入可选的发布时间字段
func ParseDatePtr(s string, hints ...string) *time.Time {
	if t, ok := ParseDate(s, hints...); ok {
		return &t
	}
	return nil
}

// StripPrefix 去掉“发布时间：”一类的标签前缀
func StripPrefix(s string, prefixes ...string) string {
	s = strings.TrimSpace(s)
	for _, p := range prefixes {
		s = strings.TrimSpace(strings.TrimPrefix(s, p))
	}
	return s
}

// FromEpoch 将时间戳转换为时间点：小于 1e11 视为秒，否则视为毫秒
func FromEpoch(n int64) time.Time {
	if n < 100_000_000_000 && n > -100_000_000_000 {
		return time.Unix(n, 0)
	}
	return time.UnixMilli(n)
}

func parseEpochText(s string) (time.Time, bool) {
	if len(s) < 9 || len(s) > 13 {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return FromEpoch(n), true
}

// DateFromJSON 处理接口里“时间戳或日期字符串”两种写法的字段；缺失或无法识别时返回 nil
func DateFromJSON(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			t := FromEpoch(i)
			return &t
		}
		if f, err := n.Float64(); err == nil {
			t := FromEpoch(int64(f))
			return &t
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseDatePtr(s)
	}
	return nil
}
