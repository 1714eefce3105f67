package types

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    Address
		wantErr error
	}{
		{"pipe://worker-1", PipeAddress("worker-1"), nil},
		{"unix:///tmp/w.sock", PipeAddress("/tmp/w.sock"), nil},
		{"tcp://127.0.0.1:4711", TCPAddress("127.0.0.1", 4711), nil},
		{"tcp://[::1]:80", TCPAddress("::1", 80), nil},
		{"tcp://localhost:0", TCPAddress("localhost", 0), nil},
		{"pipe://", Address{}, ErrInvalidAddress},
		{"tcp://127.0.0.1", Address{}, ErrInvalidAddress},
		{"tcp://127.0.0.1:x", Address{}, ErrInvalidAddress},
		{"tcp://127.0.0.1:70000", Address{}, ErrInvalidAddress},
		{"worker-1", Address{}, ErrInvalidAddress},
		{"quic://1.2.3.4:1", Address{}, ErrUnknownTransport},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAddress(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddress_StringRoundTrip(t *testing.T) {
	for _, a := range []Address{
		PipeAddress("w"),
		TCPAddress("127.0.0.1", 9000),
		TCPAddress("::1", 9000),
	} {
		parsed, err := ParseAddress(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}
}

func TestAddress_ValidateDial(t *testing.T) {
	assert.NoError(t, TCPAddress("127.0.0.1", 0).Validate())
	assert.ErrorIs(t, TCPAddress("127.0.0.1", 0).ValidateDial(), ErrInvalidAddress)
	assert.NoError(t, PipeAddress("x").ValidateDial())
	assert.ErrorIs(t, Address{}.Validate(), ErrUnknownTransport)
}

func TestTypedErrors(t *testing.T) {
	bindErr := &TransportBindError{Address: PipeAddress("w"), Err: ErrAddressInUse}
	assert.ErrorIs(t, bindErr, ErrTransportBind)
	assert.ErrorIs(t, bindErr, ErrAddressInUse)
	assert.Contains(t, bindErr.Error(), "pipe://w")

	callErr := &TransportCallError{Service: "WorkerHost", Method: "Ping", Err: io.EOF}
	assert.ErrorIs(t, callErr, ErrTransportCall)
	assert.ErrorIs(t, callErr, io.EOF)
	assert.Equal(t, "call WorkerHost.Ping: EOF", callErr.Error())

	var remote error = &RemoteError{Kind: RemoteKindUnknownMethod, Message: "Foo"}
	assert.ErrorIs(t, remote, ErrRemote)
	assert.False(t, errors.Is(remote, ErrTransportCall))
}
