package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Request/Response 字段号
const (
	reqCallID  protowire.Number = 1
	reqService protowire.Number = 2
	reqMethod  protowire.Number = 3
	reqArg     protowire.Number = 4

	respCallID  protowire.Number = 1
	respOK      protowire.Number = 2
	respResult  protowire.Number = 3
	respErrKind protowire.Number = 4
	respErrMsg  protowire.Number = 5
)

// ============================================================================
//                              Request
// ============================================================================

// Request 调用请求信封
type Request struct {
	CallID  uint64
	Service string
	Method  string
	Args    []any
}

// EncodeRequest 编码请求
func EncodeRequest(req *Request) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, reqCallID, protowire.VarintType)
	b = protowire.AppendVarint(b, req.CallID)
	b = protowire.AppendTag(b, reqService, protowire.BytesType)
	b = protowire.AppendString(b, req.Service)
	b = protowire.AppendTag(b, reqMethod, protowire.BytesType)
	b = protowire.AppendString(b, req.Method)

	for i, arg := range req.Args {
		body, err := appendValue(nil, arg, 0)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		b = protowire.AppendTag(b, reqArg, protowire.BytesType)
		b = protowire.AppendBytes(b, body)
	}
	return b, nil
}

// DecodeRequest 解码请求
//
// 出错时仍返回已解析出的部分请求（至少可能含 CallID），便于应答 bad_request。
func DecodeRequest(b []byte) (*Request, error) {
	req := &Request{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return req, malformed(n)
		}
		b = b[n:]

		switch {
		case num == reqCallID && typ == protowire.VarintType:
			req.CallID, n = protowire.ConsumeVarint(b)
		case num == reqService && typ == protowire.BytesType:
			req.Service, n = protowire.ConsumeString(b)
		case num == reqMethod && typ == protowire.BytesType:
			req.Method, n = protowire.ConsumeString(b)
		case num == reqArg && typ == protowire.BytesType:
			var body []byte
			body, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				arg, err := consumeValue(body, 0)
				if err != nil {
					return req, fmt.Errorf("arg %d: %w", len(req.Args), err)
				}
				req.Args = append(req.Args, arg)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return req, malformed(n)
		}
		b = b[n:]
	}
	return req, nil
}

// ============================================================================
//                              Response
// ============================================================================

// Response 调用响应信封
//
// OK 为 true 时 Result 有效；否则 ErrorKind/ErrorMessage 描述远端错误。
type Response struct {
	CallID       uint64
	OK           bool
	Result       any
	ErrorKind    string
	ErrorMessage string
}

// EncodeResponse 编码响应
func EncodeResponse(resp *Response) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, respCallID, protowire.VarintType)
	b = protowire.AppendVarint(b, resp.CallID)
	b = protowire.AppendTag(b, respOK, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(resp.OK))

	if resp.OK {
		body, err := appendValue(nil, resp.Result, 0)
		if err != nil {
			return nil, fmt.Errorf("result: %w", err)
		}
		b = protowire.AppendTag(b, respResult, protowire.BytesType)
		b = protowire.AppendBytes(b, body)
		return b, nil
	}

	b = protowire.AppendTag(b, respErrKind, protowire.BytesType)
	b = protowire.AppendString(b, resp.ErrorKind)
	b = protowire.AppendTag(b, respErrMsg, protowire.BytesType)
	b = protowire.AppendString(b, resp.ErrorMessage)
	return b, nil
}

// DecodeResponse 解码响应
func DecodeResponse(b []byte) (*Response, error) {
	resp := &Response{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed(n)
		}
		b = b[n:]

		switch {
		case num == respCallID && typ == protowire.VarintType:
			resp.CallID, n = protowire.ConsumeVarint(b)
		case num == respOK && typ == protowire.VarintType:
			var x uint64
			x, n = protowire.ConsumeVarint(b)
			resp.OK = protowire.DecodeBool(x)
		case num == respResult && typ == protowire.BytesType:
			var body []byte
			body, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				v, err := consumeValue(body, 0)
				if err != nil {
					return nil, err
				}
				resp.Result = v
			}
		case num == respErrKind && typ == protowire.BytesType:
			resp.ErrorKind, n = protowire.ConsumeString(b)
		case num == respErrMsg && typ == protowire.BytesType:
			resp.ErrorMessage, n = protowire.ConsumeString(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, malformed(n)
		}
		b = b[n:]
	}
	return resp, nil
}

// ErrorResponse 构造错误响应
func ErrorResponse(callID uint64, kind, message string) *Response {
	return &Response{CallID: callID, ErrorKind: kind, ErrorMessage: message}
}
