package wire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Value 字段号
const (
	valueNull   protowire.Number = 1
	valueBool   protowire.Number = 2
	valueInt    protowire.Number = 3
	valueDouble protowire.Number = 4
	valueString protowire.Number = 5
	valueBytes  protowire.Number = 6
	valueList   protowire.Number = 7

	listItem protowire.Number = 1
)

// maxNesting 列表最大嵌套深度
const maxNesting = 32

// 编解码错误
var (
	// ErrUnsupportedValue 值类型不受支持
	ErrUnsupportedValue = errors.New("unsupported value type")

	// ErrMalformed 负载格式错误
	ErrMalformed = errors.New("malformed payload")
)

// appendValue 追加一个 Value 消息体（不含外层 tag）
func appendValue(b []byte, v any, depth int) ([]byte, error) {
	if depth > maxNesting {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrUnsupportedValue, maxNesting)
	}

	switch x := v.(type) {
	case nil:
		b = protowire.AppendTag(b, valueNull, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	case bool:
		b = protowire.AppendTag(b, valueBool, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(x))
	case int:
		b = appendInt(b, int64(x))
	case int32:
		b = appendInt(b, int64(x))
	case int64:
		b = appendInt(b, x)
	case uint32:
		b = appendInt(b, int64(x))
	case float64:
		b = protowire.AppendTag(b, valueDouble, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(x))
	case string:
		b = protowire.AppendTag(b, valueString, protowire.BytesType)
		b = protowire.AppendString(b, x)
	case []byte:
		b = protowire.AppendTag(b, valueBytes, protowire.BytesType)
		b = protowire.AppendBytes(b, x)
	case []any:
		if x == nil {
			b = protowire.AppendTag(b, valueNull, protowire.VarintType)
			b = protowire.AppendVarint(b, 1)
			break
		}
		var list []byte
		for _, item := range x {
			body, err := appendValue(nil, item, depth+1)
			if err != nil {
				return nil, err
			}
			list = protowire.AppendTag(list, listItem, protowire.BytesType)
			list = protowire.AppendBytes(list, body)
		}
		b = protowire.AppendTag(b, valueList, protowire.BytesType)
		b = protowire.AppendBytes(b, list)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return b, nil
}

func appendInt(b []byte, v int64) []byte {
	b = protowire.AppendTag(b, valueInt, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

// consumeValue 解析一个 Value 消息体
//
// 整数统一解码为 int64；空 Value 视为 nil。
func consumeValue(b []byte, depth int) (any, error) {
	if depth > maxNesting {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrMalformed, maxNesting)
	}

	var out any
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed(n)
		}
		b = b[n:]

		switch {
		case num == valueNull && typ == protowire.VarintType:
			_, n = protowire.ConsumeVarint(b)
			out = nil
		case num == valueBool && typ == protowire.VarintType:
			var x uint64
			x, n = protowire.ConsumeVarint(b)
			out = protowire.DecodeBool(x)
		case num == valueInt && typ == protowire.VarintType:
			var x uint64
			x, n = protowire.ConsumeVarint(b)
			out = protowire.DecodeZigZag(x)
		case num == valueDouble && typ == protowire.Fixed64Type:
			var x uint64
			x, n = protowire.ConsumeFixed64(b)
			out = math.Float64frombits(x)
		case num == valueString && typ == protowire.BytesType:
			var x string
			x, n = protowire.ConsumeString(b)
			out = x
		case num == valueBytes && typ == protowire.BytesType:
			var x []byte
			x, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				out = append([]byte{}, x...)
			}
		case num == valueList && typ == protowire.BytesType:
			var x []byte
			x, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				list, err := consumeList(x, depth+1)
				if err != nil {
					return nil, err
				}
				out = list
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, malformed(n)
		}
		b = b[n:]
	}
	return out, nil
}

func consumeList(b []byte, depth int) ([]any, error) {
	items := []any{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed(n)
		}
		b = b[n:]

		if num != listItem || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed(n)
			}
			b = b[n:]
			continue
		}

		body, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, malformed(n)
		}
		item, err := consumeValue(body, depth)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		b = b[n:]
	}
	return items, nil
}

func malformed(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
}

// EncodeValue 编码单个值（用于测试与调试）
func EncodeValue(v any) ([]byte, error) {
	return appendValue(nil, v, 0)
}

// DecodeValue 解码单个值
func DecodeValue(b []byte) (any, error) {
	return consumeValue(b, 0)
}
