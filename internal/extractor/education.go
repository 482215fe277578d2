package extractor

import (
	"regexp"
	"strings"
)

// educationLabelRe 显式学历标签行
var educationLabelRe = regexp.MustCompile(`(?i)^\s*(?:education(?:al)?(?:\s+qualifications?)?|qualifications?|academics?(?:\s+details?)?|degree)\s*[:\-]\s*(.+)$`)

// educationSectionWordRe 学历行开头的章节词，命中后剥离再取剩余内容
var educationSectionWordRe = regexp.MustCompile(`(?i)^(?:education(?:al)?|qualifications?|academics?)\s*[:\-]?\s*`)

// institutionRe 机构兜底：若干大写开头词 + 机构关键词
var institutionRe = regexp.MustCompile(`([A-Z][A-Za-z.&'\-]*(?:\s+[A-Z][A-Za-z.&'\-]*){0,5}\s+(?:University|College|Institute|Vidyapith)\b[A-Za-z\s.&'\-]*)`)

// educationRule 学历抽取规则，按声明顺序求值，首个非空结果生效
type educationRule struct {
	name string
	fn   func(ResumeText) string
}

var educationRules = []educationRule{
	{"explicit_label", educationFromLabel},
	{"degree_keyword", educationFromDegreeKeyword},
	{"institution_fallback", educationFromInstitution},
}

// extractEducation 依次尝试学历规则
func extractEducation(text ResumeText) string {
	for _, rule := range educationRules {
		if v := rule.fn(text); v != "" {
			return v
		}
	}
	return ""
}

// educationFromLabel 规则一：显式标签行，取标签后的文本
// 过短（不足 4 字符）或过长（250 字符及以上）的取值视为噪声丢弃。
func educationFromLabel(text ResumeText) string {
	for _, line := range text.Lines() {
		m := educationLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if len(v) >= 4 && len(v) < 250 {
			return v
		}
	}
	return ""
}

// educationFromDegreeKeyword 规则二：按学位词表扫描全文
// 命中行先剥离行首章节词；剩余不足 5 字符说明学位名被换行截断，
// 此时拼接下一行补全（下一行本身是新章节时除外）。
func educationFromDegreeKeyword(text ResumeText) string {
	lines := text.Lines()
	for i, line := range lines {
		if !HasDegreeKeyword(line) {
			continue
		}
		v := strings.TrimSpace(educationSectionWordRe.ReplaceAllString(line, ""))
		if len(v) < 5 && i+1 < len(lines) {
			next := lines[i+1]
			if !startsNewSection(next) {
				v = strings.TrimSpace(v + " " + next)
			}
		}
		if len(v) >= 3 {
			return v
		}
	}
	return ""
}

// educationFromInstitution 规则三：机构名兜底
func educationFromInstitution(text ResumeText) string {
	for _, line := range text.Lines() {
		m := institutionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if v != "" {
			return v
		}
	}
	return ""
}
