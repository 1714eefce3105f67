package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile 从 JSON 文件加载配置
//
// 文件中未出现的字段保留 base 中的值；未知字段视为错误。
func LoadFile(path string, base HostConfig) (HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, base)
}

// Parse 解析 JSON 配置
func Parse(data []byte, base HostConfig) (HostConfig, error) {
	cfg := base
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return base, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}
