package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 姓名抽取是整个引擎里分支最多的部分：简历头部版式千奇百怪，
// 这里把观察到的版式编码为按置信度降序排列的策略表，
// 首个产出合法姓名的策略即为最终结果，不做打分排序。

const (
	// nameLabelScanLines 纯标签行策略的扫描范围
	nameLabelScanLines = 12
	// nameScanLines 职位标记与模式级联策略的扫描范围
	nameScanLines = 15
	// maxNameLen 合法姓名的长度上限
	maxNameLen = 60
	// maxFirstLineNameLen 首行姓名启发式的行长上限
	maxFirstLineNameLen = 50
)

// nameLabelRe 同行标签：标签后跟姓名文本
var nameLabelRe = regexp.MustCompile(`(?i)^\s*(?:candidate\s*name|full\s*name|name)\s*[:\-]\s*(.+)$`)

// nameLabelOnlyRe 纯标签行：整行只有标签，姓名在下一行
var nameLabelOnlyRe = regexp.MustCompile(`(?i)^\s*(?:candidate\s*name|full\s*name|name)\s*[:\-]?\s*$`)

// nameCharsetRe 姓名允许的字符集：字母/空格/./-/撇号
var nameCharsetRe = regexp.MustCompile(`^[A-Za-z .\-']+$`)

// digitRe 任意数字
var digitRe = regexp.MustCompile(`\d`)

// namePatterns 模式级联，按置信度降序排列
var namePatterns = []*regexp.Regexp{
	// 首字母大写的 2~4 个词，允许逗号后缀
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})(?:\s*,.*)?$`),
	// 全大写的 2~4 个词
	regexp.MustCompile(`^([A-Z][A-Z.\-']+(?:\s+[A-Z][A-Z.\-']+){1,3})$`),
	// 宽松的 2~5 个纯字母词
	regexp.MustCompile(`^([A-Za-z][A-Za-z.\-']*(?:\s+[A-Za-z][A-Za-z.\-']*){1,4})$`),
	// 单个字母词，2~30 字符
	regexp.MustCompile(`^([A-Za-z]{2,30})$`),
}

// nameRule 姓名抽取策略，严格按声明顺序求值
type nameRule struct {
	name string
	fn   func(ResumeText) string
}

var nameRules = []nameRule{
	{"same_line_label", nameFromSameLineLabel},
	{"label_then_next_line", nameFromLabelNextLine},
	{"first_line_heuristic", nameFromFirstLine},
	{"before_job_title", nameBeforeJobTitle},
	{"pattern_cascade", nameFromPatternCascade},
}

// extractFullName 依次尝试姓名策略，全部落空时返回空串
func extractFullName(text ResumeText) string {
	for _, rule := range nameRules {
		if v := rule.fn(text); v != "" {
			return v
		}
	}
	return ""
}

// isValidName 姓名合法性谓词：长度 2~60，不含 @ 和数字
func isValidName(s string) bool {
	if len(s) < 2 || len(s) > maxNameLen {
		return false
	}
	if strings.Contains(s, "@") || digitRe.MatchString(s) {
		return false
	}
	return true
}

// titleCaseName 统一转为 Title Case，"JOHN SMITH" -> "John Smith"
func titleCaseName(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// nameFromSameLineLabel 策略一：同行标签，标签后的文本即姓名
func nameFromSameLineLabel(text ResumeText) string {
	for _, line := range text.Header() {
		m := nameLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if isValidName(v) {
			return v
		}
	}
	return ""
}

// nameFromLabelNextLine 策略二：前 12 行内的纯标签行，姓名在下一行
// 下一行像学历行或章节头时放弃，避免 "Name" 标签下紧跟 "B.Tech ..." 的误读。
func nameFromLabelNextLine(text ResumeText) string {
	lines := text.Top(nameLabelScanLines)
	for i, line := range lines {
		if !nameLabelOnlyRe.MatchString(line) {
			continue
		}
		if i+1 >= text.Len() {
			continue
		}
		next := strings.TrimSpace(text.Lines()[i+1])
		if isValidName(next) && !HasDegreeKeyword(next) && !hasHeaderKeyword(next) {
			return next
		}
	}
	return ""
}

// nameFromFirstLine 策略三：首行即姓名
// 大量简历把姓名放在第一行，条件全部满足时按 Title Case 返回。
func nameFromFirstLine(text ResumeText) string {
	if text.IsEmpty() {
		return ""
	}
	first := text.Lines()[0]
	if len(first) > maxFirstLineNameLen {
		return ""
	}
	if strings.Contains(first, "@") || digitRe.MatchString(first) {
		return ""
	}
	if hasHeaderKeyword(first) {
		return ""
	}
	if _, idx := hasJobTitleMarker(first); idx >= 0 {
		return ""
	}
	if !nameCharsetRe.MatchString(first) {
		return ""
	}
	words := strings.Fields(first)
	if len(words) < 1 || len(words) > 5 {
		return ""
	}
	return titleCaseName(first)
}

// nameBeforeJobTitle 策略四：同行里职位标记之前的文本
// 职位标记按长短语优先匹配，防止在 "FULL STACK DEVELOPER" 的
// "DEVELOPER" 处错误截断。
func nameBeforeJobTitle(text ResumeText) string {
	for _, line := range text.Top(nameScanLines) {
		_, idx := hasJobTitleMarker(line)
		if idx <= 0 {
			continue
		}
		prefix := strings.TrimRight(strings.TrimSpace(line[:idx]), ",-–|:")
		prefix = strings.TrimSpace(prefix)
		if !isValidName(prefix) || HasDegreeKeyword(prefix) || hasHeaderKeyword(prefix) {
			continue
		}
		words := strings.Fields(prefix)
		if len(words) < 1 || len(words) > 4 {
			continue
		}
		return titleCaseName(prefix)
	}
	return ""
}

// nameFromPatternCascade 策略五：对未被屏蔽的前 15 行逐行做模式级联
func nameFromPatternCascade(text ResumeText) string {
	for _, line := range text.Top(nameScanLines) {
		if len(line) > 80 {
			continue
		}
		if strings.Contains(line, "@") || digitRe.MatchString(line) {
			continue
		}
		if hasHeaderKeyword(line) || HasDegreeKeyword(line) {
			continue
		}
		for _, re := range namePatterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			v := strings.TrimSpace(m[1])
			if isValidName(v) {
				return titleCaseName(v)
			}
		}
	}
	return ""
}
