package workerhost

import (
	"time"
)

// DialOption Dial 选项函数
type DialOption func(*dialOptions)

// dialOptions 内部选项结构
type dialOptions struct {
	// 管道套接字目录，需与宿主一致
	pipeDir string

	// 建立连接超时
	dialTimeout time.Duration

	// 单次调用超时，0 不限
	callTimeout time.Duration
}

func defaultDialOptions() dialOptions {
	return dialOptions{
		dialTimeout: 10 * time.Second,
	}
}

// WithPipeDir 设置管道套接字目录
func WithPipeDir(dir string) DialOption {
	return func(o *dialOptions) {
		o.pipeDir = dir
	}
}

// WithDialTimeout 设置建立连接超时
func WithDialTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) {
		if d > 0 {
			o.dialTimeout = d
		}
	}
}

// WithCallTimeout 设置单次调用超时
func WithCallTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) {
		if d >= 0 {
			o.callTimeout = d
		}
	}
}
