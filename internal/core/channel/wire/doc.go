// Package wire 实现通道 RPC 信封的二进制编码
//
// 两种传输（pipe、TCP）使用完全相同的编码，客户端写出的字节
// 与服务端读取的字节逐字节一致。
//
// # 帧格式
//
//	+----------------+---------------------------+
//	| length (4B BE) | payload (protobuf wire)   |
//	+----------------+---------------------------+
//
// # 消息
//
//	Request  { 1: call_id varint, 2: service string, 3: method string, 4: args repeated Value }
//	Response { 1: call_id varint, 2: ok bool, 3: result Value, 4: error_kind string, 5: error_message string }
//	Value    { 1: null | 2: bool | 3: sint64 | 4: double | 5: string | 6: bytes | 7: List }
//	List     { 1: items repeated Value }
//
// 使用 google.golang.org/protobuf/encoding/protowire 直接编解码，
// 不需要生成代码；未知字段在解码时跳过。
package wire
