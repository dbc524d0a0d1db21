package util

import (
	"strconv"
)

// ParseIntDefault 解析查询参数，失败或小于 min 时返回默认值
func ParseIntDefault(s string, def, min int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < min {
		return def
	}
	return v
}
