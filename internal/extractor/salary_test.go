package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSalaryFromLabeled 验证带标签的薪资模式
func TestSalaryFromLabeled(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"CTC加LPA", "CTC: 8.5 LPA", "8.5 LPA"},
		{"CurrentCTC", "Current CTC - 12,50,000 Per Annum", "12,50,000 Per Annum"},
		{"ExpectedSalary", "Expected Salary: 15 Lakhs", "15 Lakhs"},
		{"Package带K", "Package: 800 K", "800 K"},
		{"纯数字", "Salary: 950000", "950000"},
		{"无标签不匹配", "I earn well", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, salaryFromLabeled(NormalizeText(tt.input)))
		})
	}
}

// TestSalaryFromLoose 验证宽松兜底
func TestSalaryFromLoose(t *testing.T) {
	assert.Equal(t, "9 LPA", salaryFromLoose(NormalizeText("current salary is around 9 LPA")))
	assert.Empty(t, salaryFromLoose(NormalizeText("salary negotiable")))
}

// TestSalaryValueLengthBound 验证取值长度上限
func TestSalaryValueLengthBound(t *testing.T) {
	long := "CTC: 1" + strings.Repeat("2", 60)
	assert.Empty(t, extractSalary(NormalizeText(long)), "超过 50 字符的取值必须丢弃")
}

// TestSalaryRulePriority 验证带标签模式优先于宽松兜底
func TestSalaryRulePriority(t *testing.T) {
	input := "salary around 5 figures\nCTC: 8.5 LPA"
	assert.Equal(t, "5", salaryFromLoose(NormalizeText(input)), "宽松规则自身先命中第一行")
	assert.Equal(t, "8.5 LPA", extractSalary(NormalizeText("CTC: 8.5 LPA\nsalary around 5 figures")))
}
