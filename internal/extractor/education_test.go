package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEducationFromLabel 验证显式标签规则
func TestEducationFromLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Education标签", "Education: B.Tech in Computer Science", "B.Tech in Computer Science"},
		{"Qualification标签", "Qualification - MBA Finance", "MBA Finance"},
		{"Academic标签", "Academic Details: M.Sc Physics, Pune University", "M.Sc Physics, Pune University"},
		{"Degree标签", "Degree: BCA", ""},
		{"取值过短被拒绝", "Education: NA", ""},
		{"取值过长被拒绝", "Education: " + strings.Repeat("x", 250), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, educationFromLabel(NormalizeText(tt.input)))
		})
	}
}

// TestEducationFromDegreeKeyword 验证学位词表扫描与下一行拼接
func TestEducationFromDegreeKeyword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"独立学历行", "Skills: Go, SQL\nB.Tech Computer Science 2019", "B.Tech Computer Science 2019"},
		{"剥离章节词", "EDUCATION: MBA from IIM Ahmedabad", "MBA from IIM Ahmedabad"},
		{"短学位拼接下一行", "Qualification:\nMBA\nFinance and Marketing", "MBA Finance and Marketing"},
		{"下一行是新章节不拼接", "MBA\nEXPERIENCE: 5 years", "MBA"},
		{"无学位词", "worked at three companies", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, educationFromDegreeKeyword(NormalizeText(tt.input)))
		})
	}
}

// TestEducationFromInstitution 验证机构名兜底
func TestEducationFromInstitution(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"University结尾", "Studied at Gujarat Technological University", "Gujarat Technological University"},
		{"Vidyapith机构", "Alumnus of Gujarat Vidyapith", "Gujarat Vidyapith"},
		{"College机构", "St. Xavier's College Mumbai", "St. Xavier's College Mumbai"},
		{"无机构词", "worked remotely for years", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, educationFromInstitution(NormalizeText(tt.input)))
		})
	}
}

// TestHasDegreeKeyword 验证共享学位谓词（NameExtractor 复用它排除学历行）
func TestHasDegreeKeyword(t *testing.T) {
	assert.True(t, HasDegreeKeyword("B.Tech Computer Science"))
	assert.True(t, HasDegreeKeyword("mba finance"), "匹配必须大小写不敏感")
	assert.True(t, HasDegreeKeyword("Post Graduate Diploma"))
	assert.False(t, HasDegreeKeyword("Jane Doe"))
	assert.False(t, HasDegreeKeyword("COMBAT trainer"), "词边界必须生效，COMBAT 不含 MBA")
}
