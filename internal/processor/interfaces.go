package processor

import (
	"context"
	"io"

	"resume-extract-go/internal/types"
)

//
// 附件文本提取相关接口
//

// TextExtractor 附件文本提取器接口
// 与parser包中的定义一致，在这里重复声明以便测试时注入mock。
type TextExtractor interface {
	// ExtractFromFile 从本地文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

//
// 字段抽取相关接口
//

// FieldExtractionEngine 字段抽取引擎接口
// 引擎是纯函数式的：同样的文本永远产出同样的字段记录，且从不返回错误。
type FieldExtractionEngine interface {
	// Extract 在纯文本上执行全部字段抽取规则
	Extract(raw string) types.FieldRecord
}
