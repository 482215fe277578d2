package extractor

import (
	"regexp"
	"strings"
)

// emailRe 标准邮箱模式，顶级域名至少 2 个字母
var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// mobileRe 手机号模式：可选国家码前缀 + 10 位连号或 5+5 分组
// Go 的正则不支持环视，这里用消耗型边界保证号码不落在更长的数字串内部，
// 号码本身取捕获组。已知限制：不过滤形似年份的串（上游如此约定）。
var mobileRe = regexp.MustCompile(`(?:^|[^0-9])((?:\+\d{1,3}[\s\-]?)?(?:\d{5}[\s\-]\d{5}|\d{10}))(?:[^0-9]|$)`)

// extractEmail 返回全文中第一个邮箱，未命中返回空串
func extractEmail(text ResumeText) string {
	return emailRe.FindString(text.Joined())
}

// extractMobile 返回全文中第一个手机号，未命中返回空串
func extractMobile(text ResumeText) string {
	m := mobileRe.FindStringSubmatch(text.Joined())
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
