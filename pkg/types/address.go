package types

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ============================================================================
//                              Address - 通道端点地址
// ============================================================================

// Address 通道端点地址
//
// 由传输类型和连接参数组成，通道构造后不可变：
//   - pipe: Name（本机范围的名称，或绝对路径）
//   - tcp:  Host + Port
//
// 文本形式：
//
//	pipe://worker-1
//	pipe:///tmp/worker.sock
//	tcp://127.0.0.1:4711
type Address struct {
	Kind TransportKind
	Name string
	Host string
	Port int
}

// PipeAddress 创建管道地址
func PipeAddress(name string) Address {
	return Address{Kind: TransportPipe, Name: name}
}

// TCPAddress 创建 TCP 地址
func TCPAddress(host string, port int) Address {
	return Address{Kind: TransportTCP, Host: host, Port: port}
}

// String 返回地址的文本形式
func (a Address) String() string {
	switch a.Kind {
	case TransportPipe:
		return "pipe://" + a.Name
	case TransportTCP:
		return "tcp://" + a.HostPort()
	default:
		return "unknown://"
	}
}

// HostPort 返回 host:port 形式（仅对 TCP 有意义）
func (a Address) HostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Validate 验证地址
//
// TCP 允许端口 0（由系统分配），但不允许拨号到端口 0，见 ValidateDial。
func (a Address) Validate() error {
	switch a.Kind {
	case TransportPipe:
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: empty pipe name", ErrInvalidAddress)
		}
	case TransportTCP:
		if a.Port < 0 || a.Port > 65535 {
			return fmt.Errorf("%w: port %d out of range", ErrInvalidAddress, a.Port)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTransport, a.Kind)
	}
	return nil
}

// ValidateDial 验证地址可用于拨号
func (a Address) ValidateDial() error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Kind == TransportTCP && a.Port == 0 {
		return fmt.Errorf("%w: cannot dial port 0", ErrInvalidAddress)
	}
	return nil
}

// ParseAddress 解析地址文本
//
// 支持 pipe://<name>、unix://<path>、tcp://<host>:<port>。
func ParseAddress(s string) (Address, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(s), "://")
	if !ok {
		return Address{}, fmt.Errorf("%w: missing scheme in %q", ErrInvalidAddress, s)
	}

	kind, err := ParseTransportKind(scheme)
	if err != nil {
		return Address{}, err
	}

	var addr Address
	switch kind {
	case TransportPipe:
		addr = PipeAddress(rest)
	case TransportTCP:
		host, portStr, err := net.SplitHostPort(rest)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Address{}, fmt.Errorf("%w: invalid port %q", ErrInvalidAddress, portStr)
		}
		addr = TCPAddress(host, port)
	}

	if err := addr.Validate(); err != nil {
		return Address{}, err
	}
	return addr, nil
}
