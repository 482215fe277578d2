package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHasJobTitleMarker 返回的下标必须落在原始行上
// 尤其是行内含大写映射后字节长度会变的字符（如土耳其语的ı）时。
func TestHasJobTitleMarker(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantMarker string
	}{
		{"小写职位", "ravi verma - software engineer", "SOFTWARE ENGINEER"},
		{"长短语优先", "Anita Desai Full Stack Developer", "FULL STACK DEVELOPER"},
		{"非ASCII前缀不影响下标", "Dılan Çelik – Software Engineer", "SOFTWARE ENGINEER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker, idx := hasJobTitleMarker(tt.line)
			assert.Equal(t, tt.wantMarker, marker)
			require.GreaterOrEqual(t, idx, 0)
			// 用返回的下标切原始行，必须正好切到标记本身
			assert.True(t, strings.EqualFold(tt.line[idx:idx+len(marker)], marker))
		})
	}

	t.Run("无职位标记", func(t *testing.T) {
		marker, idx := hasJobTitleMarker("Maulik Limbani")
		assert.Equal(t, "", marker)
		assert.Equal(t, -1, idx)
	})
}

func TestIndexFoldASCII(t *testing.T) {
	assert.Equal(t, 0, indexFoldASCII("developer", "DEVELOPER"))
	assert.Equal(t, 5, indexFoldASCII("lead developer", "DEVELOPER"))
	assert.Equal(t, -1, indexFoldASCII("designer", "DEVELOPER"))
	// 非ASCII字节逐字节比较，ı不会被折叠成I
	assert.Equal(t, -1, indexFoldASCII("ıntern", "INTERN"))
	assert.Equal(t, 0, indexFoldASCII("anything", ""))
}
