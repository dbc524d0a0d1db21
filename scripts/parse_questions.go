// 离线解析题目文本，输出题目和分段报告，便于排查导入失败的原因。
//
// 用法: go run scripts/parse_questions.go -in questions.txt [-format json|yaml] [-policy default_first|reject]
//
// 未指定 -policy 时读取 configs/config.yaml 中的 parser.missing_answer_policy。

package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"studytest_backend/internal/config"
	"studytest_backend/internal/parser"
	"studytest_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Parser struct {
		MissingAnswerPolicy string `yaml:"missing_answer_policy"`
	} `yaml:"parser"`
}

func loadPolicy(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("无法读取配置文件，使用默认策略: %v", err)
		return config.PolicyDefaultFirst
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}
	if cfg.Parser.MissingAnswerPolicy == "" {
		return config.PolicyDefaultFirst
	}
	return cfg.Parser.MissingAnswerPolicy
}

func main() {
	in := flag.String("in", "-", "题目文本文件，- 表示标准输入")
	format := flag.String("format", "json", "输出格式 json|yaml")
	policy := flag.String("policy", "", "缺少答案时的策略")
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 日志写到 stderr，stdout 只输出解析结果
	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logger.Log = zl
	defer logger.Log.Sync()

	var src io.Reader = os.Stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("无法打开输入文件: %v", err)
		}
		defer f.Close()
		src = f
	}
	text, err := io.ReadAll(src)
	if err != nil {
		log.Fatalf("读取输入失败: %v", err)
	}

	if *policy == "" {
		*policy = loadPolicy(*configPath)
	}

	res := parser.New(parser.PolicyFromString(*policy)).ParseDetailed(string(text))
	logger.Log.Info("parsed",
		zap.Int("questions", len(res.Questions)),
		zap.Int("segments", len(res.Segments)),
		zap.String("convention", res.Convention))

	switch *format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			log.Fatalf("输出失败: %v", err)
		}
		enc.Close()
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatalf("输出失败: %v", err)
		}
	}

	if len(res.Questions) == 0 {
		os.Exit(1)
	}
}
