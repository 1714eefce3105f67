package pipe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("core/transport/pipe")

// maxSocketPath Unix 域套接字路径上限（sun_path 含结尾 NUL）
const maxSocketPath = 104

// socketPrefix 非绝对路径管道名的文件名前缀
const socketPrefix = "workerhost-"

// maxLockAttempts 锁文件被并发替换时的最大重试次数
const maxLockAttempts = 5

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport 本地管道传输
type Transport struct {
	dir string
}

// 确保实现 interfaces.Transport 接口
var _ interfaces.Transport = (*Transport)(nil)

// Option 传输选项
type Option func(*Transport)

// WithDir 设置非绝对路径管道名对应的套接字目录
func WithDir(dir string) Option {
	return func(t *Transport) {
		t.dir = dir
	}
}

// NewTransport 创建本地管道传输
func NewTransport(opts ...Option) *Transport {
	t := &Transport{dir: os.TempDir()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Kind 返回传输类型
func (t *Transport) Kind() types.TransportKind {
	return types.TransportPipe
}

// SocketPath 返回管道名对应的套接字路径
func (t *Transport) SocketPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty pipe name", types.ErrInvalidAddress)
	}

	var path string
	if filepath.IsAbs(name) {
		path = filepath.Clean(name)
	} else {
		if strings.ContainsRune(name, filepath.Separator) {
			return "", fmt.Errorf("%w: pipe name %q must not contain path separators", types.ErrInvalidAddress, name)
		}
		path = filepath.Join(t.dir, socketPrefix+name+".sock")
	}

	if len(path) >= maxSocketPath {
		return "", fmt.Errorf("%w: socket path %q too long", types.ErrInvalidAddress, path)
	}
	return path, nil
}

// Listen 在管道地址上监听
func (t *Transport) Listen(addr types.Address) (interfaces.Listener, error) {
	if addr.Kind != types.TransportPipe {
		return nil, fmt.Errorf("%w: pipe transport cannot listen on %s", types.ErrInvalidAddress, addr)
	}
	path, err := t.SocketPath(addr.Name)
	if err != nil {
		return nil, err
	}
	return newLockedListener(addr, path)
}

// Dial 连接到管道地址
func (t *Transport) Dial(ctx context.Context, addr types.Address) (net.Conn, error) {
	if addr.Kind != types.TransportPipe {
		return nil, fmt.Errorf("%w: pipe transport cannot dial %s", types.ErrInvalidAddress, addr)
	}
	path, err := t.SocketPath(addr.Name)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

// ============================================================================
//                              lockedListener
// ============================================================================

// lockedListener 持有 flock 锁文件的 Unix 域套接字监听器
type lockedListener struct {
	net.Listener

	addr     types.Address
	path     string
	lockPath string
	lock     *os.File

	closeOnce sync.Once
	closeErr  error
}

func newLockedListener(addr types.Address, path string) (*lockedListener, error) {
	l := &lockedListener{
		addr:     addr,
		path:     path,
		lockPath: path + ".lock",
	}

	info, err := os.Lstat(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info != nil && info.Mode()&os.ModeSocket == 0 {
		return nil, fmt.Errorf("%w: %s exists and is not a socket", types.ErrAddressInUse, path)
	}

	lockFile, err := acquireLock(l.lockPath)
	if err != nil {
		if errors.Is(err, errLocked) {
			return nil, fmt.Errorf("%w: %s (lockfile held)", types.ErrAddressInUse, addr)
		}
		return nil, err
	}
	l.lock = lockFile

	// 锁已获取，残留的套接字文件属于已退出的宿主
	if info != nil {
		logger.Debug("删除残留套接字", "path", path)
		if err := os.Remove(path); err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	if ul, ok := ln.(*net.UnixListener); ok {
		// 由 Close 统一删除套接字文件，顺序必须在释放锁之前
		ul.SetUnlinkOnClose(false)
	}
	l.Listener = ln

	logger.Debug("管道监听已建立", "addr", addr.String(), "path", path)
	return l, nil
}

// acquireLock 创建并锁定锁文件
//
// 加锁成功后路径上的文件必须仍是所持有的 inode；否则说明前一持有者在
// 打开与加锁之间删除了它，重新打开重试。
func acquireLock(lockPath string) (*os.File, error) {
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open lockfile %s: %w", lockPath, err)
		}
		if err := tryLock(f); err != nil {
			_ = f.Close()
			if errors.Is(err, errLocked) {
				return nil, err
			}
			return nil, fmt.Errorf("lock %s: %w", lockPath, err)
		}

		current, err := isCurrentLock(f, lockPath)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if current {
			return f, nil
		}
		logger.Debug("锁文件已被替换，重试", "path", lockPath)
		_ = f.Close()
	}
	return nil, fmt.Errorf("lock %s: lockfile replaced repeatedly", lockPath)
}

// isCurrentLock 判断已打开的锁文件是否仍是路径上的文件
func isCurrentLock(f *os.File, lockPath string) (bool, error) {
	held, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat lockfile %s: %w", lockPath, err)
	}
	onDisk, err := os.Stat(lockPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat lockfile %s: %w", lockPath, err)
	}
	return os.SameFile(held, onDisk), nil
}

// Bound 返回绑定地址
func (l *lockedListener) Bound() types.Address {
	return l.addr
}

// Close 关闭监听器并释放锁文件，幂等
func (l *lockedListener) Close() error {
	l.closeOnce.Do(func() {
		var closeErr error
		if l.Listener != nil {
			closeErr = l.Listener.Close()
			_ = os.Remove(l.path)
		}
		if l.lock != nil {
			// 先删除锁文件再解锁；在旧 inode 上加锁成功的绑定者由 isCurrentLock 识别并重试
			_ = os.Remove(l.lockPath)
			if err := unlock(l.lock); err != nil && closeErr == nil {
				closeErr = err
			}
			if err := l.lock.Close(); err != nil && closeErr == nil {
				closeErr = err
			}
		}
		l.closeErr = closeErr
	})
	return l.closeErr
}
