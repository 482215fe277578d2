package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"空字符串", "", ""},
		{"单字符", "a", "*"},
		{"两字符姓名", "张三", "张*"},
		{"三字符姓名", "王小明", "王*明"},
		{"邮箱保留首尾两位", "myemail@example.com", "my***************om"},
		{"手机号保留首尾两位", "13812345678", "13*******78"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskPII(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	t.Run("短于上限保持原样", func(t *testing.T) {
		assert.Equal(t, "hello", TruncateString("hello", 10))
	})

	t.Run("超长字符串首尾保留中间省略", func(t *testing.T) {
		got := TruncateString("abcdefghijklmnopqrstuvwxyz", 11)
		assert.Equal(t, "abcd...wxyz", got)
		assert.LessOrEqual(t, len(got), 11)
	})

	t.Run("极小上限直接截断", func(t *testing.T) {
		assert.Equal(t, "ab", TruncateString("abcdef", 2))
	})
}

func TestSafeAttributeValue(t *testing.T) {
	t.Run("敏感字段名触发掩码", func(t *testing.T) {
		got := SafeAttributeValue("Redis.CheckAndAddSenderEmail", "someone@example.com", MaxRedisLength)
		assert.NotContains(t, got, "someone@example.com")
		assert.Contains(t, got, "*")
	})

	t.Run("普通字段名只做截断", func(t *testing.T) {
		assert.Equal(t, "md5-value", SafeAttributeValue("db.redis.key", "md5-value", MaxRedisLength))
	})
}
