package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNameLabelBeatsFirstLine 验证策略优先级：标签行必须压过貌似姓名的首行
func TestNameLabelBeatsFirstLine(t *testing.T) {
	text := NormalizeText("Rahul Sharma\nSenior Consultant\nName: Jane Doe\njane@corp.io")

	assert.Equal(t, "Jane Doe", extractFullName(text), "同行标签策略的优先级高于首行启发式")
}

// TestNameFromSameLineLabel 验证同行标签的各种写法
func TestNameFromSameLineLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"基本标签", "Name: Maulik Limbani", "Maulik Limbani"},
		{"完整标签", "Full Name: Priya Patel", "Priya Patel"},
		{"候选人标签", "Candidate Name - Amit Kumar", "Amit Kumar"},
		{"含数字的取值非法", "Name: Agent 47", ""},
		{"含邮箱的取值非法", "Name: jane@corp.io", ""},
		{"超长取值非法", "Name: Aaaaaaaaaa Bbbbbbbbbb Cccccccccc Dddddddddd Eeeeeeeeee Ffffffffff Gggg", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nameFromSameLineLabel(NormalizeText(tt.input)))
		})
	}
}

// TestNameFromLabelNextLine 验证纯标签行 + 下一行姓名
func TestNameFromLabelNextLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"标签在上姓名在下", "Name\nMaulik Limbani\nmaulik@x.com", "Maulik Limbani"},
		{"带冒号的纯标签", "Name:\nPriya Patel", "Priya Patel"},
		{"下一行是学历行时放弃", "Name\nB.Tech Computer Science", ""},
		{"下一行是头部关键词时放弃", "Name\nCONTACT DETAILS", ""},
		{"标签是最后一行", "Name", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nameFromLabelNextLine(NormalizeText(tt.input)))
		})
	}
}

// TestNameFromFirstLine 验证首行姓名启发式的各项守卫条件
func TestNameFromFirstLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"全大写姓名转TitleCase", "JOHN SMITH\nSoftware Developer", "John Smith"},
		{"普通大小写姓名", "Maulik Limbani\nAhmedabad", "Maulik Limbani"},
		{"文档标题被屏蔽", "CURRICULUM VITAE\nJohn Smith", ""},
		{"RESUME被屏蔽", "RESUME\nJohn Smith", ""},
		{"含数字被屏蔽", "John Smith 2024", ""},
		{"含邮箱被屏蔽", "john@test.com", ""},
		{"职位行被屏蔽", "SOFTWARE ENGINEER", ""},
		{"词数超限被屏蔽", "One Two Three Four Five Six", ""},
		{"带点号缩写的姓名", "A. P. J. Abdul Kalam", "A. P. J. Abdul Kalam"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nameFromFirstLine(NormalizeText(tt.input)))
		})
	}
}

// TestNameBeforeJobTitle 验证职位标记前缀策略与长短语优先
func TestNameBeforeJobTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"姓名加职位同行", "CURRICULUM VITAE\nRavi Verma - Software Engineer", "Ravi Verma"},
		{"长短语优先截断", "OBJECTIVE\nAnita Desai FULL STACK DEVELOPER", "Anita Desai"},
		{"非ASCII姓名不被错位截断", "OBJECTIVE\nDılan Çelik – Software Engineer", "Dılan Çelik"},
		{"行首即职位无前缀", "RESUME\nSoftware Engineer with 5 years", ""},
		{"前缀是学历时放弃", "SUMMARY\nMBA Manager", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nameBeforeJobTitle(NormalizeText(tt.input)))
		})
	}
}

// TestNameFromPatternCascade 验证模式级联与屏蔽词
func TestNameFromPatternCascade(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"大写开头双词", "CURRICULUM VITAE\nMaulik Limbani", "Maulik Limbani"},
		{"全大写多词", "RESUME\nJOHN SMITH", "John Smith"},
		{"单词姓名", "RESUME\nMadonna", "Madonna"},
		{"学历行被屏蔽", "RESUME\nBachelor of Engineering", ""},
		{"含数字行被屏蔽", "RESUME\nPlot 42 Nehru Nagar", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nameFromPatternCascade(NormalizeText(tt.input)))
		})
	}
}

// TestIsValidName 验证姓名合法性谓词
func TestIsValidName(t *testing.T) {
	assert.True(t, isValidName("Jane Doe"))
	assert.True(t, isValidName("Li"))
	assert.False(t, isValidName("J"), "单字符过短")
	assert.False(t, isValidName("jane@corp.io"), "含 @ 非法")
	assert.False(t, isValidName("Agent 47"), "含数字非法")
}
