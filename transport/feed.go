package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"sync"
	"time"

	"shop-lab/domain/event"
	"shop-lab/runtime"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

const writeTimeout = 5 * time.Second

// FeedServer is the realtime push endpoint: newline-delimited JSON over
// TCP. The client sends one hello line carrying its credential, then
// only receives. Each accepted connection goes through the full
// lifecycle: authenticate, register, announce presence, stream events,
// unregister on close.
//
// FeedServer implements contract.Worker and runs under the supervisor.
type FeedServer struct {
	log       *slog.Logger
	lifecycle *runtime.ConnectionLifecycle
	address   string

	mu    sync.Mutex
	bound net.Addr
}

func NewFeedServer(log *slog.Logger, lifecycle *runtime.ConnectionLifecycle, address string) *FeedServer {
	return &FeedServer{log: log, lifecycle: lifecycle, address: address}
}

// hello is the first line a client writes after dialing, mirroring the
// metadata a browser or API client would attach to its handshake.
type hello struct {
	Authentication string `json:"authentication"`
	Cookie         string `json:"cookie"`
}

func (s *FeedServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.bound = listener.Addr()
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()
	s.log.Info("realtime feed listening", "address", s.address)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handle(ctx, conn)
	}
}

// Addr reports the bound listener address, nil while Run has not
// started listening yet. Lets callers bind port 0.
func (s *FeedServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

func (s *FeedServer) handle(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	connectionID := uuid.NewString()
	reader := bufio.NewReader(conn)

	line, err := reader.ReadBytes('\n')
	if err != nil {
		return
	}
	var h hello
	if err := json.Unmarshal(line, &h); err != nil {
		// Malformed handshake gets the same silent teardown as a bad
		// credential: the peer learns nothing.
		return
	}

	md := metadata.New(map[string]string{
		"authentication": h.Authentication,
		"cookie":         h.Cookie,
	})
	connection, err := s.lifecycle.OnConnect(ctx, connectionID, md)
	if err != nil {
		return
	}
	defer s.lifecycle.OnDisconnect(connectionID)

	// Any further read (or EOF) means the peer hung up.
	peerClosed := make(chan struct{})
	go func() {
		_, _ = reader.ReadByte()
		close(peerClosed)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-peerClosed:
			return
		case e := <-connection.Events:
			payload, err := event.Encode(e)
			if err != nil {
				s.log.Error("event encoding failed", "event", e.EventName(), "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := conn.Write(append(payload, '\n')); err != nil {
				s.log.Debug("peer write failed, dropping connection",
					"connection_id", connectionID, "error", err)
				return
			}
		}
	}
}
