package notify

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgcd/core"
)

func TestTCPSendsLine(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	lines := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		lines <- line
	}()

	s, err := NewTCP(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, s.Send(core.EventPowerUp))
	assert.Equal(t, "POWERUP\n", <-lines)
}

func TestTCPTarget(t *testing.T) {
	t.Parallel()

	s, err := NewTCP("")
	require.NoError(t, err)
	assert.NoError(t, s.Send(core.EventAck), "no target means no delivery")

	require.NoError(t, s.SetTarget("192.168.0.10:2701"))
	assert.Equal(t, "192.168.0.10:2701", s.Target())

	assert.Error(t, s.SetTarget("no-port"))
	assert.Equal(t, "192.168.0.10:2701", s.Target(), "invalid target keeps the old one")

	_, err = NewTCP("bad")
	assert.Error(t, err)
}

func TestTCPUnreachable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s, err := NewTCP(addr)
	require.NoError(t, err)
	assert.Error(t, s.Send(core.EventReset))
}
