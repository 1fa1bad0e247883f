package jsonrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// Transport carries newline-delimited JSON messages over a byte stream.
// Writes are serialized so notifications can interleave with responses.
type Transport struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
}

func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{reader: bufio.NewReader(r), writer: w}
}

// ReadRequest decodes the next line. The raw bytes are returned so the
// server can tell a missing id from an explicit null.
func (t *Transport) ReadRequest() (*Request, []byte, error) {
	line, err := t.reader.ReadBytes('\n')
	if err != nil {
		return nil, nil, err
	}
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &req, line, nil
}

func (t *Transport) WriteResponse(resp *Response) error { return t.writeLine(resp) }

// WriteNotification sends a server-initiated message such as catalog.reloaded.
func (t *Transport) WriteNotification(n *Notification) error { return t.writeLine(n) }

func (t *Transport) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err = t.writer.Write(append(data, '\n'))
	return err
}

// TCPListener listens for TCP connections and serves each with the given server.
type TCPListener struct {
	listener net.Listener
	server   *Server

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewTCPListener creates a TCP listener on the given address.
func NewTCPListener(addr string, server *Server) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &TCPListener{listener: ln, server: server, conns: make(map[net.Conn]struct{})}, nil
}

// Addr returns the listener's network address.
func (tl *TCPListener) Addr() net.Addr {
	return tl.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed. Open connections are closed and drained before it returns.
func (tl *TCPListener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { tl.Close() }) //nolint:errcheck
	defer stop()
	defer tl.wg.Wait()

	for {
		conn, err := tl.listener.Accept()
		if err != nil {
			tl.closeConns()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		tl.track(conn, true)
		tl.wg.Add(1)
		go func() {
			defer tl.wg.Done()
			defer tl.track(conn, false)
			defer conn.Close() //nolint:errcheck
			tl.server.ServeTransport(ctx, NewTransport(conn, conn))
		}()
	}
}

func (tl *TCPListener) track(conn net.Conn, add bool) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if add {
		tl.conns[conn] = struct{}{}
	} else {
		delete(tl.conns, conn)
	}
}

func (tl *TCPListener) closeConns() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	for c := range tl.conns {
		c.Close() //nolint:errcheck
	}
}

// Close shuts down the TCP listener.
func (tl *TCPListener) Close() error {
	return tl.listener.Close()
}
