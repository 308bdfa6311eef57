// Package token 生成公开访问令牌。
package token

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Length 公开令牌长度
	Length = 32
)

// Generator 令牌生成函数，便于测试替换
type Generator func() (string, error)

// NewPublicToken 生成 32 位字母数字随机令牌
func NewPublicToken() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("读取随机数失败: %w", err)
	}
	out := make([]byte, Length)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
