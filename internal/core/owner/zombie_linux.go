//go:build linux

package owner

import (
	"bytes"
	"os"
	"strconv"
)

// isZombie 读取 /proc/<pid>/stat 判断进程是否为僵尸
//
// stat 格式为 "pid (comm) state ..."，comm 可能包含括号，取最后一个 ')' 之后的字段。
func isZombie(pid int) bool {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return false
	}
	i := bytes.LastIndexByte(data, ')')
	if i < 0 || i+2 >= len(data) {
		return false
	}
	return data[i+2] == 'Z'
}
