// Package config 提供宿主配置
//
// 宿主配置在启动时构造一次，之后只读。来源按优先级从低到高：
//
//  1. DefaultHostConfig() 默认值
//  2. JSON 配置文件（LoadFile）
//  3. WORKERHOST_* 环境变量（ApplyEnv）
//  4. 命令行参数
//
// 配置文件示例：
//
//	{
//	  "transport": "tcp",
//	  "host": "127.0.0.1",
//	  "port": 0,
//	  "watchdog_timeout": "5s",
//	  "owner_pid": 4242
//	}
package config
