package dnscache

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	net.Conn
	remote string
}

func (f fakeConn) RemoteAddr() net.Addr { return fakeAddr(f.remote) }

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

func TestDialCachesSuccessfulResolution(t *testing.T) {
	calls := 0
	wrapped := func(network, addr string) (net.Conn, error) {
		calls++
		return fakeConn{remote: "93.184.216.34:443"}, nil
	}

	dial, err := Dial(wrapped, 10)
	assert.NoError(t, err)

	_, err = dial("tcp", "example.com:443")
	assert.NoError(t, err)
	_, err = dial("tcp", "example.com:443")
	assert.NoError(t, err)

	assert.Equal(t, 2, calls, "cache hit still dials the resolved address, but skips re-resolving within the TTL")
}

func TestDialCachesFailure(t *testing.T) {
	wantErr := errors.New("boom")
	wrapped := func(network, addr string) (net.Conn, error) {
		return nil, wantErr
	}

	dial, err := Dial(wrapped, 10)
	assert.NoError(t, err)

	_, err = dial("tcp", "bad.example.com:443")
	assert.ErrorIs(t, err, wantErr)

	_, err = dial("tcp", "bad.example.com:443")
	assert.ErrorIs(t, err, wantErr)
}

func TestDialDefaultsToNetDial(t *testing.T) {
	dial, err := Dial(nil, 10)
	assert.NoError(t, err)
	assert.NotNil(t, dial)
}
