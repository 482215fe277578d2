package extractor

import (
	"regexp"
	"strings"
)

// 本文件集中维护各抽取器共享的词表与正则。
// 词表以命名数据表的形式存在，便于单独测试和跨抽取器复用，
// 不要在抽取器内部再写内联字面量。

// headerKeywords 简历头部常见的非姓名关键词（全大写比较）
// 首行命中任一关键词时不得将该行当作姓名。
var headerKeywords = []string{
	"RESUME",
	"CURRICULUM",
	"VITAE",
	"BIODATA",
	"BIO-DATA",
	"OBJECTIVE",
	"SUMMARY",
	"PROFILE",
	"CONTACT",
	"ADDRESS",
	"PHONE",
	"MOBILE",
	"EMAIL",
	"APPLICATION",
}

// jobTitleMarkers 常见职位标记，按短语长度降序排列
// 匹配时必须保持此顺序：先匹配 "FULL STACK DEVELOPER"，再匹配 "DEVELOPER"，
// 否则 "JOHN FULL STACK DEVELOPER" 会在错误的位置截断。
var jobTitleMarkers = []string{
	"FULL STACK DEVELOPER",
	"SOFTWARE DEVELOPMENT ENGINEER",
	"FRONTEND DEVELOPER",
	"FRONT END DEVELOPER",
	"BACKEND DEVELOPER",
	"BACK END DEVELOPER",
	"SOFTWARE DEVELOPER",
	"SOFTWARE ENGINEER",
	"BUSINESS ANALYST",
	"GRAPHIC DESIGNER",
	"PROJECT MANAGER",
	"PRODUCT MANAGER",
	"DATA SCIENTIST",
	"WEB DEVELOPER",
	"DATA ANALYST",
	"ADMINISTRATOR",
	"ARCHITECT",
	"CONSULTANT",
	"DEVELOPER",
	"DESIGNER",
	"ENGINEER",
	"ANALYST",
	"MANAGER",
	"INTERN",
}

// degreeKeywords 学位/学历关键词表
// EducationExtractor 用它定位学历行，NameExtractor 用它排除学历行。
var degreeKeywords = []string{
	"B.TECH", "BTECH", "B TECH",
	"M.TECH", "MTECH", "M TECH",
	"B.E.", "B.E", "M.E.", "M.E",
	"B.SC", "BSC", "M.SC", "MSC",
	"B.COM", "BCOM", "M.COM", "MCOM",
	"B.C.A", "BCA", "M.C.A", "MCA",
	"BBA", "MBA", "PGDM",
	"PH.D", "PHD",
	"DIPLOMA",
	"BACHELOR",
	"MASTER",
	"POST GRADUATE",
	"GRADUATE",
	"UNDERGRADUATE",
}

// sectionBoundaryKeywords 章节边界关键词
// 头部窗口内一旦出现这些词，说明已进入正文章节，
// 之后的 Location/Address 标签属于项目地点而非候选人所在地。
var sectionBoundaryKeywords = []string{
	"PROJECT",
	"EXPERIENCE",
	"WORK HISTORY",
	"EMPLOYMENT",
	"CAREER",
}

// newSectionKeywords 学历行的下一行若以这些词开头，视为新章节开始，不做拼接
var newSectionKeywords = []string{
	"EXPERIENCE",
	"SKILL",
	"PROJECT",
	"WORK",
	"EMPLOYMENT",
	"CERTIFICATION",
	"ACHIEVEMENT",
	"HOBBIES",
	"DECLARATION",
}

// degreeKeywordRe 由 degreeKeywords 生成的单词边界正则
var degreeKeywordRe = buildKeywordRe(degreeKeywords)

// buildKeywordRe 把关键词表编译为大小写不敏感、带词边界的备选正则
func buildKeywordRe(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// HasDegreeKeyword 行内是否出现学位关键词（共享谓词）
func HasDegreeKeyword(line string) bool {
	return degreeKeywordRe.MatchString(line)
}

// hasHeaderKeyword 行内是否出现头部关键词
func hasHeaderKeyword(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range headerKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// hasJobTitleMarker 行内是否出现职位标记，返回标记在原始行中的起始字节位置
// 未命中时返回 ("", -1)。遍历顺序即 jobTitleMarkers 的优先顺序。
// 必须在原始行上做扫描，不能先ToUpper再取下标：个别字符（如土耳其语的ı）
// 大写映射后字节长度会变，下标会错位导致截取出错误的前缀。
func hasJobTitleMarker(line string) (string, int) {
	for _, marker := range jobTitleMarkers {
		if idx := indexFoldASCII(line, marker); idx >= 0 {
			return marker, idx
		}
	}
	return "", -1
}

// indexFoldASCII 在s中查找substr首次出现的字节下标，ASCII字母忽略大小写
// 非ASCII字节逐字节原样比较，保证返回的下标可直接用于切分s。
func indexFoldASCII(s, substr string) int {
	if len(substr) == 0 {
		return 0
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if asciiEqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

// asciiEqualFold 等长字符串的ASCII大小写不敏感比较
func asciiEqualFold(a, b string) bool {
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// isSectionBoundary 行是否标志正文章节的开始
func isSectionBoundary(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range sectionBoundaryKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// startsNewSection 行是否以新章节关键词开头
func startsNewSection(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, kw := range newSectionKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}
