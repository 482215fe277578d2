package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"resume-extract-go/internal/extractor"
	"resume-extract-go/internal/parser"

	"github.com/spf13/pflag"
)

// extractctl 对本地简历文件运行字段抽取引擎并输出JSON结果
// 纯文本文件直接读取，其余格式经Tika或本地PDF解析器转成纯文本。
func main() {
	var (
		filePath string
		tikaURL  string
		pretty   bool
		debug    bool
	)
	pflag.StringVarP(&filePath, "file", "f", "", "简历文件路径 (.txt/.pdf/.docx等)")
	pflag.StringVar(&tikaURL, "tika", "", "Tika服务器地址，留空时PDF用本地解析器")
	pflag.BoolVar(&pretty, "pretty", false, "缩进输出JSON")
	pflag.BoolVar(&debug, "debug", false, "打印抽取过程日志到stderr")
	pflag.Parse()

	if filePath == "" {
		pflag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	text, err := loadText(ctx, filePath, tikaURL)
	if err != nil {
		log.Fatalf("读取简历文本失败: %v", err)
	}

	var opts []extractor.Option
	if debug {
		opts = append(opts, extractor.WithLogger(log.New(os.Stderr, "[字段抽取] ", log.LstdFlags)))
	}
	engine := extractor.NewEngine(opts...)
	record := engine.Extract(text)

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(record, "", "  ")
	} else {
		out, err = json.Marshal(record)
	}
	if err != nil {
		log.Fatalf("序列化抽取结果失败: %v", err)
	}
	fmt.Println(string(out))
}

// loadText 把输入文件转成纯文本
func loadText(ctx context.Context, filePath, tikaURL string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == ".txt" || ext == "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	if tikaURL != "" {
		te := parser.NewTikaTextExtractor(tikaURL, parser.WithMinimalMetadata(true))
		text, _, err := te.ExtractFromFile(ctx, filePath)
		return text, err
	}

	if ext != ".pdf" {
		return "", fmt.Errorf("本地解析仅支持PDF，%s 需要指定 --tika", ext)
	}
	te, err := parser.NewEinoPDFTextExtractor(ctx)
	if err != nil {
		return "", err
	}
	text, _, err := te.ExtractFromFile(ctx, filePath)
	return text, err
}
