package service

import (
	crand "crypto/rand"
	"fmt"
	"strings"

	"github.com/washpoint-loyalty/internal/constants"
)

// GenerateCouponCode 生成券码，格式 WP-XXXX-XXXX
// 字母表长度 32 可整除 256，按字节取模无偏差
func GenerateCouponCode() (string, error) {
	size := constants.CouponCodeGroupSize * constants.CouponCodeGroupCount
	buf := make([]byte, size)
	if _, err := crand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	alphabet := constants.CouponCodeAlphabet
	var b strings.Builder
	b.Grow(len(constants.CouponCodePrefix) + size + constants.CouponCodeGroupCount)
	b.WriteString(constants.CouponCodePrefix)
	for i, v := range buf {
		if i%constants.CouponCodeGroupSize == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(alphabet[int(v)%len(alphabet)])
	}
	return b.String(), nil
}

// NormalizeCouponCode 规范化用户输入的券码
func NormalizeCouponCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
