package extractor

import (
	"regexp"
	"strings"
)

// salaryLabeledRe 带标签的薪资模式，取值允许数字、分隔符和常见单位后缀
var salaryLabeledRe = regexp.MustCompile(`(?i)\b(?:current\s+ctc|expected\s+salary|ctc|salary|package|compensation)\s*[:\-]\s*((?:INR|Rs\.?)?\s*\d[\d.,\s]*(?:\s*(?:LPA|Lacs?|Lakhs?|K|Thousand|Per\s+Annum))?)`)

// salaryLooseRe 宽松兜底：标签与数字相隔不超过 20 个非数字字符
var salaryLooseRe = regexp.MustCompile(`(?i)\b(?:ctc|salary|package|compensation)\b[^\d\n]{0,20}(\d[\d.,]*(?:\s*(?:LPA|Lacs?|Lakhs?|K|Thousand|Per\s+Annum))?)`)

// maxSalaryValueLen 取值长度上限，超过视为把无关文本卷了进来
const maxSalaryValueLen = 50

type salaryRule struct {
	name string
	fn   func(ResumeText) string
}

var salaryRules = []salaryRule{
	{"labeled", salaryFromLabeled},
	{"loose", salaryFromLoose},
}

// extractSalary 依次尝试薪资规则
func extractSalary(text ResumeText) string {
	for _, rule := range salaryRules {
		if v := rule.fn(text); v != "" {
			return v
		}
	}
	return ""
}

func salaryFromLabeled(text ResumeText) string {
	return salaryFromPattern(text, salaryLabeledRe)
}

func salaryFromLoose(text ResumeText) string {
	return salaryFromPattern(text, salaryLooseRe)
}

func salaryFromPattern(text ResumeText, re *regexp.Regexp) string {
	for _, line := range text.Lines() {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if len(v) > 0 && len(v) < maxSalaryValueLen {
			return v
		}
	}
	return ""
}
