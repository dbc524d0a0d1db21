package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 导入相关常量
const (
	MimeText = "text/plain"
	// 单次导入文本上限 1MB
	MaxImportBytes = 1 << 20
	// 原始导入文本归档目录
	ImportArchiveDir = "imports"
)

var (
	AllowedImportExtensions = []string{".txt", ".md"}
)
