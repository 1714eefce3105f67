package workerhost

import "github.com/dep2p/go-workerhost/internal/hostcmd"

// Version 当前版本
const Version = hostcmd.Version

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	return hostcmd.VersionInfo()
}
