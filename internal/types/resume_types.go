package types

// FieldKey 字段键名，与候选人表列名保持一致
type FieldKey string

const (
	// FieldFullName 候选人姓名
	FieldFullName FieldKey = "full_name"
	// FieldEmail 邮箱地址
	FieldEmail FieldKey = "email"
	// FieldMobile 手机号码
	FieldMobile FieldKey = "mobile"
	// FieldEducation 教育背景
	FieldEducation FieldKey = "education"
	// FieldCurrentLocation 当前所在地
	FieldCurrentLocation FieldKey = "current_location"
	// FieldSalary 薪资信息
	FieldSalary FieldKey = "salary"
	// FieldPreferredLocation 期望工作地
	FieldPreferredLocation FieldKey = "preferred_location"
)

// AllFieldKeys 按固定顺序列出全部字段键，供序列化和测试使用
var AllFieldKeys = []FieldKey{
	FieldFullName,
	FieldEmail,
	FieldMobile,
	FieldEducation,
	FieldCurrentLocation,
	FieldSalary,
	FieldPreferredLocation,
}

// FieldRecord 一次抽取调用的完整输出
// 空字符串表示"未提取到"，序列化和持久化时一律跳过空字段，
// full_name 的 "Unknown" 兜底由持久化方负责，引擎本身不做替换。
type FieldRecord struct {
	FullName          string `json:"full_name,omitempty"`
	Email             string `json:"email,omitempty"`
	Mobile            string `json:"mobile,omitempty"`
	Education         string `json:"education,omitempty"`
	CurrentLocation   string `json:"current_location,omitempty"`
	Salary            string `json:"salary,omitempty"`
	PreferredLocation string `json:"preferred_location,omitempty"`
}

// Get 按字段键取值，未知键返回空串
func (r FieldRecord) Get(key FieldKey) string {
	switch key {
	case FieldFullName:
		return r.FullName
	case FieldEmail:
		return r.Email
	case FieldMobile:
		return r.Mobile
	case FieldEducation:
		return r.Education
	case FieldCurrentLocation:
		return r.CurrentLocation
	case FieldSalary:
		return r.Salary
	case FieldPreferredLocation:
		return r.PreferredLocation
	}
	return ""
}

// ToMap 转换为 map，跳过空字段
func (r FieldRecord) ToMap() map[string]string {
	m := make(map[string]string, len(AllFieldKeys))
	for _, key := range AllFieldKeys {
		if v := r.Get(key); v != "" {
			m[string(key)] = v
		}
	}
	return m
}

// IsEmpty 所有字段均未提取到时为真
func (r FieldRecord) IsEmpty() bool {
	for _, key := range AllFieldKeys {
		if r.Get(key) != "" {
			return false
		}
	}
	return true
}

// SubmissionBrief 提交查询接口返回的简要视图
type SubmissionBrief struct {
	SubmissionUUID string            `json:"submission_uuid"`
	Status         string            `json:"status"`
	SenderEmail    string            `json:"sender_email,omitempty"`
	SourceFilename string            `json:"source_filename,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}
