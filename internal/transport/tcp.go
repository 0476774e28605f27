package transport

import (
	"bufio"
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"
)

const outboundQueueCap = 100

// TCPStreamSender implements Mode G: a persistent TCP connection
// carrying the same tagged-JSON envelope as Mode L, fronted by a
// bounded outbound channel so senders never block on network I/O. When
// the channel is full the oldest queued message is dropped to make
// room, per spec §4.4. A background goroutine drains the queue onto
// the wire and a second reads inbound monitor messages.
//
// This stands in for the spec's protobuf/gRPC bidi-stream: no
// grpc/protobuf dependency is available anywhere in this module's
// retrieval pack (see SPEC_FULL.md), so the same message shapes travel
// over a plain TCP connection instead.
type TCPStreamSender struct {
	addr    string
	verbose bool

	mu      sync.Mutex
	conn    net.Conn
	outbound chan envelope
	done     chan struct{}

	Inbound chan InboundMessage
}

// NewTCPStreamSender dials addr and starts the background sender/
// reader goroutines. Dial failure is returned so the caller can treat
// it as the "offline tolerance" non-fatal case (spec §4.4).
func NewTCPStreamSender(addr string, verbose bool) (*TCPStreamSender, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return nil, err
	}
	s := &TCPStreamSender{
		addr:     addr,
		verbose:  verbose,
		conn:     conn,
		outbound: make(chan envelope, outboundQueueCap),
		done:     make(chan struct{}),
		Inbound:  make(chan InboundMessage, 16),
	}
	go s.writeLoop()
	go s.readLoop()
	return s, nil
}

func (s *TCPStreamSender) logf(format string, args ...interface{}) {
	if s.verbose {
		log.Printf(format, args...)
	}
}

// enqueue drops the oldest queued message when the outbound channel is
// full, so senders never block.
func (s *TCPStreamSender) enqueue(env envelope) {
	select {
	case s.outbound <- env:
		return
	default:
	}
	select {
	case <-s.outbound:
	default:
	}
	select {
	case s.outbound <- env:
	default:
	}
}

func (s *TCPStreamSender) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case env := <-s.outbound:
			data, err := json.Marshal(env)
			if err != nil {
				s.logf("transport: marshal %s: %v", env.Type, err)
				continue
			}
			data = append(data, '\n')
			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				continue
			}
			if _, err := conn.Write(data); err != nil {
				s.logf("transport: tcp write: %v", err)
			}
		}
	}
}

func (s *TCPStreamSender) readLoop() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	r := bufio.NewReader(conn)
	for {
		env, err := readEnvelopes(r)
		if err != nil {
			return
		}
		msg := decodeInbound(env)
		select {
		case s.Inbound <- msg:
		case <-s.done:
			return
		default:
			s.logf("transport: inbound queue full, dropping %s", env.Type)
		}
		if env.Type == "ConnectResponse" {
			s.logf("transport: connect response received")
		}
	}
}

func decodeInbound(env envelope) InboundMessage {
	raw, _ := json.Marshal(env.Data)
	switch env.Type {
	case "ConnectResponse":
		var v ConnectResponse
		json.Unmarshal(raw, &v)
		return InboundMessage{ConnectResponse: &v}
	case "RequestReconnect":
		var v RequestReconnect
		json.Unmarshal(raw, &v)
		return InboundMessage{RequestReconnect: &v}
	case "Ping":
		var v Ping
		json.Unmarshal(raw, &v)
		return InboundMessage{Ping: &v}
	default:
		return InboundMessage{}
	}
}

func (s *TCPStreamSender) SendConnect(launcherID string, project *string, tool CliToolType, args []string, workingDir string, ts time.Time) {
	s.enqueue(envelope{Type: "Connect", Timestamp: ts, Data: connectData{
		LauncherID: launcherID, Project: project, ToolType: tool, ToolArgs: args, WorkingDir: workingDir,
	}})
}

func (s *TCPStreamSender) SendStateUpdate(launcherID, sessionID string, status SessionStatus, uiAboveText *string, ts time.Time) {
	s.enqueue(envelope{Type: "StateUpdate", Timestamp: ts, Data: stateUpdateData{
		LauncherID: launcherID, SessionID: sessionID, Status: status, UIAboveText: uiAboveText,
	}})
}

func (s *TCPStreamSender) SendContextUpdate(launcherID, sessionID string, uiAboveText *string, ts time.Time) {
	s.enqueue(envelope{Type: "ContextUpdate", Timestamp: ts, Data: contextUpdateData{
		LauncherID: launcherID, SessionID: sessionID, UIAboveText: uiAboveText,
	}})
}

func (s *TCPStreamSender) SendDisconnect(launcherID string, ts time.Time) {
	s.enqueue(envelope{Type: "Disconnect", Timestamp: ts, Data: disconnectData{LauncherID: launcherID}})
}

func (s *TCPStreamSender) Close() {
	close(s.done)
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
}
