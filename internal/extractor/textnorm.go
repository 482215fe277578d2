package extractor

import "strings"

// headerWindowSize 头部窗口行数
// 简历的姓名/联系方式/所在地信息基本集中在正文前 25 个非空行内，
// 之后通常进入工作经历、项目经历等正文章节。
const headerWindowSize = 25

// ResumeText 归一化后的简历文本：按原始顺序排列的非空去空白行序列。
// 构造后不可变，所有抽取器共享同一份视图。
type ResumeText struct {
	lines []string
}

// NormalizeText 将原始文本切分为去空白的非空行序列
// 空输入或全空白输入产生空序列，不报错。
func NormalizeText(raw string) ResumeText {
	rawLines := strings.Split(raw, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return ResumeText{lines: lines}
}

// Lines 返回全部行（只读视图，调用方不得修改）
func (t ResumeText) Lines() []string {
	return t.lines
}

// Header 返回头部窗口内的行，即前 headerWindowSize 行
func (t ResumeText) Header() []string {
	if len(t.lines) <= headerWindowSize {
		return t.lines
	}
	return t.lines[:headerWindowSize]
}

// Top 返回前 n 行，n 超出总行数时返回全部
func (t ResumeText) Top(n int) []string {
	if len(t.lines) <= n {
		return t.lines
	}
	return t.lines[:n]
}

// Len 行数
func (t ResumeText) Len() int {
	return len(t.lines)
}

// IsEmpty 没有任何非空行时为真
func (t ResumeText) IsEmpty() bool {
	return len(t.lines) == 0
}

// Joined 以换行符重新拼接全部行，供全文正则匹配使用
func (t ResumeText) Joined() string {
	return strings.Join(t.lines, "\n")
}
