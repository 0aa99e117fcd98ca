package normalize

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeCharset 按声明的编码（如 gbk、gb18030、big5、shift_jis）将原始字节转为 UTF-8 文本。
// 名称使用 WHATWG 编码标签，空字符串或 utf-8 直接按 UTF-8 返回。
func DecodeCharset(b []byte, charset string) (string, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(b), nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("normalize: decode %s: %w", charset, err)
	}
	return string(out), nil
}

func lookupEncoding(charset string) (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "" || name == "utf-8" || name == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("normalize: unknown charset %q: %w", charset, err)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}
