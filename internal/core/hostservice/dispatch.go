package hostservice

import (
	"context"
	"fmt"

	"github.com/dep2p/go-workerhost/pkg/types"
)

// Invoke 按方法名静态分派远程调用
func (s *Service) Invoke(_ context.Context, method string, args []any) (any, error) {
	switch method {
	case MethodPing:
		switch len(args) {
		case 0:
			s.Ping("")
			return nil, nil
		case 1:
			if args[0] == nil {
				s.Ping("")
				return nil, nil
			}
			token, ok := args[0].(string)
			if !ok {
				return nil, badRequest("%s token must be a string, got %T", method, args[0])
			}
			return s.Ping(token), nil
		default:
			return nil, badRequest("%s takes at most 1 argument, got %d", method, len(args))
		}

	case MethodShutdown:
		if len(args) != 0 {
			return nil, badRequest("%s takes no arguments, got %d", method, len(args))
		}
		s.Shutdown()
		return nil, nil

	default:
		return nil, &types.RemoteError{
			Kind:    types.RemoteKindUnknownMethod,
			Message: fmt.Sprintf("%s has no method %q", ServiceName, method),
		}
	}
}

func badRequest(format string, args ...any) error {
	return &types.RemoteError{Kind: types.RemoteKindBadRequest, Message: fmt.Sprintf(format, args...)}
}
