package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeLocationToCityState 验证地址归一化的边界约束
func TestNormalizeLocationToCityState(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"标准城市省份", "Ahmedabad, Gujarat", "Ahmedabad, Gujarat"},
		{"带门牌的完整地址取尾部两段", "Flat 12, Green Residency, Baner Road, Pune, Maharashtra", "Pune, Maharashtra"},
		{"尾部邮编被拒绝", "Pune, Maharashtra, 411001", "Pune, Maharashtra"},
		{"单个片段", "Bangalore", "Bangalore"},
		{"横线分隔", "Mumbai - Maharashtra", "Mumbai, Maharashtra"},
		{"片段超45字符被拒绝", strings.Repeat("a", 46) + ", Gujarat", "Gujarat"},
		{"纯邮编输入", "411001", ""},
		{"空输入", "", ""},
		{"无法切分的长地址", strings.Repeat("Flat No 42 Building Seven Long Street Name ", 3), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeLocationToCityState(tt.raw))
		})
	}
}

// TestNormalizeLocationBound 验证输出永远不超过两个片段、单段不超过 45 字符
func TestNormalizeLocationBound(t *testing.T) {
	inputs := []string{
		"A, B, C, D, E, F",
		"House 9, Lane 3, Sector Two, Navi Mumbai, Maharashtra, India",
		"Hyderabad - Telangana - India",
		"Some Place, " + strings.Repeat("x", 44),
	}
	for _, in := range inputs {
		got := normalizeLocationToCityState(in)
		if got == "" {
			continue
		}
		segs := strings.Split(got, ", ")
		assert.LessOrEqual(t, len(segs), 2, "输入 %q 产生了超过两个片段", in)
		for _, s := range segs {
			assert.LessOrEqual(t, len(s), maxPlaceSegmentLen, "输入 %q 产生了超长片段 %q", in, s)
		}
	}
}

// TestNormalizeLocationShortFallback 验证短地址的逗号兜底
func TestNormalizeLocationShortFallback(t *testing.T) {
	// 片段字符集合法时走主路径；此处构造主路径拒绝但兜底接受的输入不现实，
	// 退而验证兜底对纯字母短输入的行为与主路径一致
	assert.Equal(t, "Surat, Gujarat", normalizeLocationToCityState("Surat, Gujarat"))
}

// TestExtractCurrentLocationSectionBoundary 验证章节边界之后的地点标签被忽略
func TestExtractCurrentLocationSectionBoundary(t *testing.T) {
	input := "Name: Jane Doe\nEXPERIENCE\nLocation: Client Site, Chennai"
	text := NormalizeText(input)

	assert.Empty(t, extractCurrentLocation(text), "EXPERIENCE 之后的 Location 属于项目信息，必须忽略")
}

// TestExtractCurrentLocationHeaderOnly 验证当前所在地只在头部窗口内查找
func TestExtractCurrentLocationHeaderOnly(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("filler line without keywords\n")
	}
	b.WriteString("Location: Ahmedabad, Gujarat\n")
	text := NormalizeText(b.String())

	assert.Empty(t, extractCurrentLocation(text), "第 25 行之后的地点标签不在头部窗口内")
}

// TestExtractCurrentLocationLabels 验证各类标签写法
func TestExtractCurrentLocationLabels(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Location标签", "Location: Ahmedabad, Gujarat", "Ahmedabad, Gujarat"},
		{"CurrentLocation标签", "Current Location: Pune", "Pune"},
		{"Address标签", "Address: 12 MG Road, Kochi, Kerala", "Kochi, Kerala"},
		{"City标签", "City - Jaipur", "Jaipur"},
		{"ResidingAt宽松匹配", "Presently residing at Indore, MP", "Indore, MP"},
		{"无地点信息", "Name: Jane Doe\njane@corp.io", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCurrentLocation(NormalizeText(tt.input)))
		})
	}
}

// TestExtractPreferredLocation 验证期望工作地在全文范围查找
func TestExtractPreferredLocation(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("filler line without keywords\n")
	}
	b.WriteString("Preferred Location: Bangalore, Karnataka\n")
	text := NormalizeText(b.String())

	assert.Equal(t, "Bangalore, Karnataka", extractPreferredLocation(text), "期望工作地不受头部窗口限制")
}

// TestPreferredLocationNotMistakenAsCurrent 验证期望地标签不会污染当前所在地
func TestPreferredLocationNotMistakenAsCurrent(t *testing.T) {
	text := NormalizeText("Name: Jane Doe\nPreferred Location: Bangalore")

	assert.Empty(t, extractCurrentLocation(text))
	assert.Equal(t, "Bangalore", extractPreferredLocation(text))
}
