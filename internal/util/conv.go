package util

import (
	"strconv"
)

const DateFormat = "2006-01-02"

// ParseLimit 解析 limit 查询参数，缺失或非法时返回默认值
func ParseLimit(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
