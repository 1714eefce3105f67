package owner

// Prober 进程存活探测
type Prober interface {
	// Alive 返回进程是否仍在运行
	Alive(pid int) (bool, error)
}

// ProberFunc 将函数适配为 Prober
type ProberFunc func(pid int) (bool, error)

// Alive 实现 Prober 接口
func (f ProberFunc) Alive(pid int) (bool, error) {
	return f(pid)
}

// DefaultProber 返回当前平台的默认探测器
func DefaultProber() Prober {
	return systemProber{}
}
