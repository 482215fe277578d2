package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExtractEmail 验证邮箱匹配与首个命中优先
func TestExtractEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"基本邮箱", "Contact: maulik@x.com", "maulik@x.com"},
		{"带点和加号的本地部分", "mail me at first.last+jobs@sub.example.co.in", "first.last+jobs@sub.example.co.in"},
		{"顶级域名单字母不匹配", "bad@host.c", ""},
		{"多个邮箱取第一个", "a@one.com\nb@two.com", "a@one.com"},
		{"无邮箱", "no contact info here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractEmail(NormalizeText(tt.input)))
		})
	}
}

// TestExtractMobile 验证手机号的各种写法
func TestExtractMobile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"十位连号", "Mobile: 9898989898", "9898989898"},
		{"五五分组", "Phone 98989 89898", "98989 89898"},
		{"带国家码", "Call +91 98989 89898 anytime", "+91 98989 89898"},
		{"国家码连写", "+919898989898", "+919898989898"},
		{"嵌在长数字串中不匹配", "ID 123456789012345", ""},
		{"年份不被过滤", "Since 2019202020 ok", "2019202020"},
		{"无号码", "no phone", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMobile(NormalizeText(tt.input)))
		})
	}
}
