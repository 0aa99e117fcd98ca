package normalize

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	ErrEmptyContent   = errors.New("normalize: empty content")
	ErrInvalidContent = errors.New("normalize: invalid byte array")
	ErrDecompress     = errors.New("normalize: decompress failed")
)

// maxInflated 限制解压后的大小，防止异常数据撑爆内存
const maxInflated = 8 << 20

// DecodeByteArray 将接口返回的字节数组还原为原始字节。
// raw 可以是 JSON 数组（[31,-117,8,...]），也可以是内容为该数组的 JSON 字符串。
// 负数按有符号 8 位处理，加 256 还原为 0-255。
func DecodeByteArray(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrEmptyContent
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		if s == "" {
			return nil, ErrEmptyContent
		}
		raw = json.RawMessage(s)
	}

	var nums []int
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if len(nums) == 0 {
		return nil, ErrEmptyContent
	}
	return SignedToBytes(nums)
}

// SignedToBytes 把 -128..255 的整数序列转为字节
func SignedToBytes(nums []int) ([]byte, error) {
	out := make([]byte, len(nums))
	for i, x := range nums {
		if x < 0 {
			x += 256
		}
		if x < 0 || x > 255 {
			return nil, fmt.Errorf("%w: value %d at %d out of range", ErrInvalidContent, nums[i], i)
		}
		out[i] = byte(x)
	}
	return out, nil
}

// Inflate 解压 gzip / zlib / 裸 DEFLATE 数据并按 UTF-8 返回文本
func Inflate(b []byte) (string, error) {
	if len(b) == 0 {
		return "", ErrEmptyContent
	}

	var r io.ReadCloser
	var err error
	switch {
	case len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b:
		r, err = gzip.NewReader(bytes.NewReader(b))
	case len(b) >= 2 && b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0:
		r, err = zlib.NewReader(bytes.NewReader(b))
	default:
		r = flate.NewReader(bytes.NewReader(b))
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, maxInflated+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	if len(out) > maxInflated {
		return "", fmt.Errorf("%w: inflated size exceeds %d bytes", ErrDecompress, maxInflated)
	}
	if !utf8.Valid(out) {
		out = bytes.ToValidUTF8(out, []byte("\uFFFD"))
	}
	return string(out), nil
}

// DecodeCompressedContent 组合 DecodeByteArray 与 Inflate
func DecodeCompressedContent(raw json.RawMessage) (string, error) {
	b, err := DecodeByteArray(raw)
	if err != nil {
		return "", err
	}
	return Inflate(b)
}
