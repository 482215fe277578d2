package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeText 验证行切分与去空白
func TestNormalizeText(t *testing.T) {
	text := NormalizeText("  Jane Doe  \n\n\t\njane@corp.io\n   \nPune")

	assert.Equal(t, []string{"Jane Doe", "jane@corp.io", "Pune"}, text.Lines(), "空行和空白行必须被剔除，顺序保持")
	assert.Equal(t, 3, text.Len())
	assert.False(t, text.IsEmpty())
}

// TestNormalizeTextEmpty 验证空输入
func TestNormalizeTextEmpty(t *testing.T) {
	assert.True(t, NormalizeText("").IsEmpty())
	assert.True(t, NormalizeText(" \n \t \n ").IsEmpty())
	assert.Empty(t, NormalizeText("").Lines())
}

// TestHeaderWindow 验证头部窗口为前 25 行
func TestHeaderWindow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("line\n")
	}
	text := NormalizeText(b.String())

	assert.Len(t, text.Header(), headerWindowSize)
	assert.Len(t, NormalizeText("one\ntwo").Header(), 2, "行数不足时返回全部行")
}

// TestTop 验证前 n 行视图
func TestTop(t *testing.T) {
	text := NormalizeText("a\nb\nc")

	assert.Equal(t, []string{"a", "b"}, text.Top(2))
	assert.Equal(t, []string{"a", "b", "c"}, text.Top(10))
}
