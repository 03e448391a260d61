// Package utils provides path and amount utility functions.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath 展开路径开头的 ~ 为用户主目录
//
// 主目录不可用或路径不以 ~ 开头时原样返回。
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// EnsureDir 确保目录存在，如果不存在则创建
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
