package storage

import (
	"testing"

	"resume-extract-go/internal/constants"
	"resume-extract-go/internal/storage/models"
	"resume-extract-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewCandidateRecordNoContact 两份都没有联系方式的简历必须能各自建档
// 邮箱落NULL而不是空串，否则第二条插入会在邮箱唯一索引上冲突。
func TestNewCandidateRecordNoContact(t *testing.T) {
	first, err := newCandidateRecord(types.FieldRecord{}, "")
	require.NoError(t, err)
	second, err := newCandidateRecord(types.FieldRecord{}, "")
	require.NoError(t, err)

	// 缺失的邮箱是NULL，唯一索引不会把两条记录判为重复
	assert.Nil(t, first.Email)
	assert.Nil(t, second.Email)
	assert.NotEqual(t, first.CandidateID, second.CandidateID)

	// 姓名兜底
	assert.Equal(t, constants.UnknownCandidateName, first.FullName)
}

func TestNewCandidateRecordWithFields(t *testing.T) {
	record := types.FieldRecord{
		FullName: "Priya Sharma",
		Email:    "priya@example.com",
		Mobile:   "9876543210",
	}
	candidate, err := newCandidateRecord(record, "sender@example.com")
	require.NoError(t, err)

	require.NotNil(t, candidate.Email)
	assert.Equal(t, "priya@example.com", *candidate.Email)
	assert.Equal(t, "Priya Sharma", candidate.FullName)
	assert.Equal(t, "9876543210", candidate.Mobile)
	assert.Equal(t, "sender@example.com", candidate.SourceEmail)
	assert.NotEmpty(t, candidate.CandidateID)
}

func TestMergeCandidateUpdates(t *testing.T) {
	email := "old@example.com"

	tests := []struct {
		name     string
		existing models.Candidate
		record   types.FieldRecord
		want     map[string]interface{}
	}{
		{
			name:     "NULL邮箱可被补全",
			existing: models.Candidate{FullName: "Priya Sharma"},
			record:   types.FieldRecord{Email: "new@example.com"},
			want:     map[string]interface{}{"email": "new@example.com"},
		},
		{
			name:     "已有邮箱不被覆盖",
			existing: models.Candidate{FullName: "Priya Sharma", Email: &email},
			record:   types.FieldRecord{Email: "new@example.com"},
			want:     map[string]interface{}{},
		},
		{
			name:     "Unknown姓名可被真实姓名替换",
			existing: models.Candidate{FullName: constants.UnknownCandidateName},
			record:   types.FieldRecord{FullName: "Rahul Verma"},
			want:     map[string]interface{}{"full_name": "Rahul Verma"},
		},
		{
			name:     "非空字段只补空列",
			existing: models.Candidate{FullName: "Priya Sharma", Mobile: "9876543210"},
			record:   types.FieldRecord{Mobile: "1112223334", Salary: "12 LPA"},
			want:     map[string]interface{}{"salary": "12 LPA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeCandidateUpdates(&tt.existing, tt.record)
			assert.Equal(t, tt.want, got)
		})
	}
}
