package input

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"gopkg.in/yaml.v2"
)

// loadFile 从YAML文件读取记录列表
func loadFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res []T
	if err := yaml.UnmarshalStrict(data, &res); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return res, nil
}

// cachePath 缓存文件路径：<cacheDir>/<db>.<col>.yaml
func cachePath(cacheDir string, path config.InputPath) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%s.%s.yaml", path.DB, path.Col))
}

func loadCache[T any](cacheDir string, path config.InputPath) ([]T, bool) {
	if cacheDir == "" {
		return nil, false
	}
	file := cachePath(cacheDir, path)
	if _, err := os.Stat(file); err != nil {
		return nil, false
	}
	res, err := loadFile[T](file)
	if err != nil {
		log.Warnf("ignore broken cache %s: %v", file, err)
		return nil, false
	}
	log.Infof("load %s.%s from cache %s", path.DB, path.Col, file)
	return res, true
}

func saveCache[T any](cacheDir string, path config.InputPath, data []T) {
	if cacheDir == "" {
		return
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		log.Warnf("failed to encode cache: %v", err)
		return
	}
	if err := os.WriteFile(cachePath(cacheDir, path), out, 0o644); err != nil {
		log.Warnf("failed to write cache: %v", err)
	}
}

// preCheckCache 预检查缓存目录
// 功能：验证输入缓存目录的有效性，决定是否启用缓存功能
// 参数：cacheDir-缓存目录路径
// 返回：true表示启用缓存，false表示禁用缓存
func preCheckCache(cacheDir string) bool {
	if cacheDir == "" {
		log.Debug("disable input cache")
		return false
	}
	if stat, err := os.Stat(cacheDir); err == nil && stat.IsDir() {
		log.Infof("enable input cache at %s", cacheDir)
		return true
	}
	log.Errorf("disable input cache because invalid dir %s (not exist or file)", cacheDir)
	return false
}
