package config

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration 是支持文本解析的 time.Duration 包装类型
//
// JSON 中支持两种格式:
//   - 字符串: "30s", "500ms", "1m30s"，或纯数字字符串 "5"（按秒）
//   - 数字: 纳秒数
//
// Duration 同时实现 flag.Value，可直接绑定到命令行参数。
type Duration time.Duration

// maxSeconds time.Duration 可表示的最大整秒数
const maxSeconds = math.MaxInt64 / int64(time.Second)

// ParseDuration 解析时长文本
//
// 纯整数按秒解析（与启动参数 -timeout 的秒语义一致），其余交给 time.ParseDuration。
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > maxSeconds || n < -maxSeconds {
			return 0, fmt.Errorf("invalid duration %q: out of range", s)
		}
		return Duration(time.Duration(n) * time.Second), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return Duration(d), nil
}

// Seconds 以秒构造 Duration
func Seconds(n int) Duration {
	return Duration(time.Duration(n) * time.Second)
}

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseDuration(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Duration(n)
		return nil
	}

	return fmt.Errorf("duration must be a string (e.g., \"30s\") or number (nanoseconds)")
}

// MarshalJSON 输出可读字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Set 实现 flag.Value 接口
func (d *Duration) Set(s string) error {
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Duration 返回底层 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 返回字符串表示
func (d Duration) String() string {
	return time.Duration(d).String()
}
