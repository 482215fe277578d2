package extractor

import (
	"regexp"
	"strings"
)

// currentLocLabelRe 当前所在地的显式标签行
var currentLocLabelRe = regexp.MustCompile(`(?i)^\s*(?:current\s+location|location|address|city|residing\s+at|place)\s*[:\-]\s*(.+)$`)

// currentLocLooseRe 宽松兜底：关键词出现在行内任意位置
var currentLocLooseRe = regexp.MustCompile(`(?i)\b(?:current\s+location|residing\s+at|location|address|city)\b\s*[:\-]?\s*(.+)$`)

// preferredLocLabelRe 期望工作地的显式标签行
var preferredLocLabelRe = regexp.MustCompile(`(?i)^\s*(?:preferred\s+location|location\s+preference|work\s+location|(?:willing\s+to\s+)?relocate(?:\s+to)?)\s*[:\-]\s*(.+)$`)

// preferredLocLooseRe 宽松兜底：关键短语出现在行内任意位置
var preferredLocLooseRe = regexp.MustCompile(`(?i)\b(?:preferred\s+location|location\s+preference|work\s+location|relocate(?:\s+to)?)\b\s*[:\-]?\s*(.*)$`)

// preferredLocKeywordRe 用于在提取当前所在地时跳过期望地行
var preferredLocKeywordRe = regexp.MustCompile(`(?i)\b(?:preferred\s+location|location\s+preference|work\s+location|relocate)\b`)

// addressPartSplitRe 地址切分：逗号，或两侧留空格的独立短横/长横
var addressPartSplitRe = regexp.MustCompile(`\s+[-–—]\s+|,`)

// placeSegmentRe 地点片段允许的字符集：字母/数字/空格/./-/'/()
var placeSegmentRe = regexp.MustCompile(`^[A-Za-z0-9 .\-'()]+$`)

// postalRunRe 4 到 6 位的独立数字串，视为邮编予以拒绝
var postalRunRe = regexp.MustCompile(`\b\d{4,6}\b`)

// shortAddrRe 短地址兜底允许的字符集
var shortAddrRe = regexp.MustCompile(`^[A-Za-z,.\s\-]+$`)

// maxPlaceSegmentLen 单个地点片段的长度上限
const maxPlaceSegmentLen = 45

// maxShortAddrLen 短地址兜底的输入长度上限
const maxShortAddrLen = 60

// extractCurrentLocation 在头部窗口内查找当前所在地
// 一旦遇到章节边界行立即停止：边界之后的 Location/Address 标签
// 属于项目或雇主信息，不能当作候选人所在地。
func extractCurrentLocation(text ResumeText) string {
	var scannable []string
	for _, line := range text.Header() {
		if isSectionBoundary(line) {
			break
		}
		scannable = append(scannable, line)
	}

	for _, line := range scannable {
		m := currentLocLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v := normalizeLocationToCityState(m[1]); v != "" {
			return v
		}
	}
	for _, line := range scannable {
		if preferredLocKeywordRe.MatchString(line) {
			continue
		}
		m := currentLocLooseRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v := normalizeLocationToCityState(m[1]); v != "" {
			return v
		}
	}
	return ""
}

// extractPreferredLocation 在全文查找期望工作地（不限于头部窗口）
func extractPreferredLocation(text ResumeText) string {
	for _, line := range text.Lines() {
		m := preferredLocLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v := normalizeLocationToCityState(m[1]); v != "" {
			return v
		}
	}
	for _, line := range text.Lines() {
		if len(line) < 5 || len(line) > 200 {
			continue
		}
		m := preferredLocLooseRe.FindStringSubmatch(line)
		if m == nil || strings.TrimSpace(m[1]) == "" {
			continue
		}
		if v := normalizeLocationToCityState(m[1]); v != "" {
			return v
		}
	}
	return ""
}

// normalizeLocationToCityState 把原始地址串压缩为至多两个地点片段
// 输出形如 "City, State"，绝不返回完整街道地址：
//  1. 先按逗号/独立横线切分；
//  2. 从尾部向前收集至多 2 个合法片段（长度 ≤45、非邮编、字符集受限），
//     城市/省份信息在真实地址里总在尾部，门牌和街道在头部；
//  3. 命中的片段按原文从左到右顺序拼接；
//  4. 一个都没有时，仅对短的纯字母地址做逗号兜底；
//  5. 仍然没有则返回空串，宁缺毋滥。
func normalizeLocationToCityState(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parts := splitAddressParts(raw)

	var picked []string
	for i := len(parts) - 1; i >= 0 && len(picked) < 2; i-- {
		seg := parts[i]
		if isPlaceSegment(seg) {
			// 头插保持原文顺序
			picked = append([]string{seg}, picked...)
		}
	}

	switch len(picked) {
	case 2:
		return strings.Join(picked, ", ")
	case 1:
		return picked[0]
	}

	// 短地址兜底：无邮编噪声的 "City, State" 类输入
	if len(raw) <= maxShortAddrLen && shortAddrRe.MatchString(raw) {
		var kept []string
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" || postalRunRe.MatchString(p) {
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) > 2 {
			kept = kept[len(kept)-2:]
		}
		if len(kept) > 0 {
			return strings.Join(kept, ", ")
		}
	}
	return ""
}

// splitAddressParts 切分地址并去除空片段
func splitAddressParts(raw string) []string {
	var parts []string
	for _, p := range addressPartSplitRe.Split(raw, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// isPlaceSegment 片段是否像一个城市/省份/国家 token
func isPlaceSegment(seg string) bool {
	if seg == "" || len(seg) > maxPlaceSegmentLen {
		return false
	}
	if postalRunRe.MatchString(seg) {
		return false
	}
	return placeSegmentRe.MatchString(seg)
}
