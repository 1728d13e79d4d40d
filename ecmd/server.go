package ecmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// maxLine bounds a single command line
const maxLine = 512

// Server answers commands over TCP, one command per line
type Server struct {
	reg *Registry
}

// NewServer creates a server for reg
func NewServer(reg *Registry) *Server {
	return &Server{reg: reg}
}

// Serve accepts connections on ln until ctx is cancelled. ln and every open
// connection are closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				return fmt.Errorf("ecmd: accept: %w", err)
			}
			log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("ecmd: connection")
			g.Go(func() error {
				s.handle(ctx, conn)
				return nil
			})
		}
	})

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, maxLine), maxLine)
	w := bufio.NewWriter(conn)

	for scanner.Scan() {
		reply := s.Exec(scanner.Text())
		if _, err := w.WriteString(reply + "\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Debug().Err(err).Msg("ecmd: connection closed")
	}
}

// Exec runs one line and renders the reply, errors prefixed "error: "
func (s *Server) Exec(line string) string {
	reply, err := s.reg.Dispatch(line)
	if err != nil {
		log.Debug().Err(err).Str("line", line).Msg("ecmd: command failed")
		return "error: " + err.Error()
	}
	return reply
}
