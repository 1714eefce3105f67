// Package registry 实现每通道的服务注册表
//
// 注册通常在启动时一次性完成，之后由各分派 goroutine 并发查询（读多写少）。
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// Registry 服务名 → 服务对象映射
//
// 服务名区分大小写；每个名称在一个通道实例内至多注册一次。
type Registry struct {
	mu       sync.RWMutex
	services map[string]interfaces.Service
}

// New 创建空注册表
func New() *Registry {
	return &Registry{
		services: make(map[string]interfaces.Service),
	}
}

// Register 注册服务
func (r *Registry) Register(name string, svc interfaces.Service) error {
	if name == "" {
		return types.ErrEmptyServiceName
	}
	if svc == nil {
		return fmt.Errorf("%w: %s", types.ErrNilService, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		return fmt.Errorf("%w: %s", types.ErrServiceExists, name)
	}
	r.services[name] = svc
	return nil
}

// Unregister 注销服务，返回是否存在
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; !exists {
		return false
	}
	delete(r.services, name)
	return true
}

// Lookup 查询服务
func (r *Registry) Lookup(name string) (interfaces.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	return svc, ok
}

// Names 返回所有已注册服务名（字典序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len 返回已注册服务数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}
