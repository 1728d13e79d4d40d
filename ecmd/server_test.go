package ecmd

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestServer(t *testing.T) {
	r, _, _ := newSGC()
	s := NewServer(r)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))

	rd := bufio.NewReader(conn)
	send := func(line string) string {
		_, err := conn.Write([]byte(line + "\n"))
		require.NoError(t, err)
		reply, err := rd.ReadString('\n')
		require.NoError(t, err)
		return reply
	}

	assert.Equal(t, "SHUTDOWN\n", send("sgc_pwr"))
	assert.Equal(t, "OK\n", send("sgc_contrast 7"))
	assert.Contains(t, send("bogus"), "error: unknown command")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestExec(t *testing.T) {
	r, _, _ := newSGC()
	s := NewServer(r)
	assert.Equal(t, "SHUTDOWN", s.Exec("sgc_pwr"))
	assert.Equal(t, "error: usage: sgc_pwr [0|1]", s.Exec("sgc_pwr 1 2"))
}
