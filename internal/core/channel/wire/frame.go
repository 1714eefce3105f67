package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize 单帧最大负载
const MaxFrameSize = 16 << 20

// 帧相关错误
var (
	// ErrFrameTooLarge 帧超过 MaxFrameSize
	ErrFrameTooLarge = errors.New("frame too large")
)

// WriteFrame 写出一帧：4 字节大端长度 + 负载
//
// 长度与负载合并为一次 Write，避免并发写者交错（调用方仍需串行化写）。
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame 读取一帧负载
//
// 对端在帧边界处关闭返回 io.EOF；帧内截断返回 io.ErrUnexpectedEOF。
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
