package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractFullScenario 验证典型标签式简历的完整抽取
func TestExtractFullScenario(t *testing.T) {
	engine := NewEngine()
	input := "Name: Maulik Limbani\nEmail: maulik@x.com\nMobile: 9898989898\nEducation: B.Tech in Computer Science\nLocation: Ahmedabad, Gujarat"

	record := engine.Extract(input)

	assert.Equal(t, "Maulik Limbani", record.FullName, "标签行姓名应原样返回")
	assert.Equal(t, "maulik@x.com", record.Email)
	assert.Equal(t, "9898989898", record.Mobile)
	assert.Equal(t, "B.Tech in Computer Science", record.Education)
	assert.Equal(t, "Ahmedabad, Gujarat", record.CurrentLocation)
	assert.Empty(t, record.Salary, "无薪资信息时该字段应缺失")
	assert.Empty(t, record.PreferredLocation)
}

// TestExtractFirstLineNameScenario 验证首行姓名 + 职位行的版式
func TestExtractFirstLineNameScenario(t *testing.T) {
	engine := NewEngine()
	input := "JOHN SMITH\nSoftware Developer\njohn@test.com"

	record := engine.Extract(input)

	assert.Equal(t, "John Smith", record.FullName, "全大写首行应转为 Title Case")
	assert.Equal(t, "john@test.com", record.Email)
}

// TestExtractNoNameScenario 验证无法识别姓名时字段缺失而非报错
func TestExtractNoNameScenario(t *testing.T) {
	engine := NewEngine()
	record := engine.Extract("CURRICULUM VITAE")

	assert.Empty(t, record.FullName, "首行是文档标题时不得误认为姓名")
}

// TestExtractSalaryScenario 验证 CTC 标签薪资
func TestExtractSalaryScenario(t *testing.T) {
	engine := NewEngine()
	record := engine.Extract("CTC: 8.5 LPA")

	assert.Equal(t, "8.5 LPA", record.Salary)
}

// TestExtractLongAddressRejected 验证超长街道地址被整体拒绝
func TestExtractLongAddressRejected(t *testing.T) {
	engine := NewEngine()
	// 无逗号、无法切出合法尾部片段的 120 字符地址
	longAddr := "Address: " + strings.Repeat("Flat No 42 Building 7 Some Very Long Street Name ", 3)
	record := engine.Extract(longAddr)

	assert.Empty(t, record.CurrentLocation, "无界地址串必须返回缺失而不是原样输出")
}

// TestExtractDeterminism 验证同一输入重复抽取结果逐字节一致
func TestExtractDeterminism(t *testing.T) {
	engine := NewEngine()
	input := "Name: Jane Doe\nEmail: jane@corp.io\nMobile: +91 98989 89898\nEducation: MBA Finance\nLocation: Pune, Maharashtra\nCTC: 12 LPA\nPreferred Location: Bangalore"

	first := engine.Extract(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Extract(input), "第 %d 次抽取结果与首次不一致", i+1)
	}
}

// TestExtractFieldIndependence 验证删除无关章节不影响其他字段
func TestExtractFieldIndependence(t *testing.T) {
	withEducation := "Name: Jane Doe\njane@corp.io\n9898989898\nEducation: B.Tech in IT\nLocation: Pune, Maharashtra"
	withoutEducation := "Name: Jane Doe\njane@corp.io\n9898989898\nLocation: Pune, Maharashtra"

	engine := NewEngine()
	r1 := engine.Extract(withEducation)
	r2 := engine.Extract(withoutEducation)

	require.Equal(t, "B.Tech in IT", r1.Education)
	assert.Empty(t, r2.Education)
	// 其余字段必须不受学历章节增删的影响
	assert.Equal(t, r1.FullName, r2.FullName)
	assert.Equal(t, r1.Email, r2.Email)
	assert.Equal(t, r1.Mobile, r2.Mobile)
	assert.Equal(t, r1.CurrentLocation, r2.CurrentLocation)
}

// TestExtractEmptyInput 验证空输入与全空白输入返回全缺失记录
func TestExtractEmptyInput(t *testing.T) {
	engine := NewEngine()

	assert.True(t, engine.Extract("").IsEmpty())
	assert.True(t, engine.Extract("   \n\t\n  ").IsEmpty())
}

// TestExtractConcurrent 验证同一引擎可被并发调用
func TestExtractConcurrent(t *testing.T) {
	engine := NewEngine()
	input := "Name: Jane Doe\njane@corp.io"

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				r := engine.Extract(input)
				if r.FullName != "Jane Doe" {
					t.Errorf("并发抽取结果异常: %+v", r)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
