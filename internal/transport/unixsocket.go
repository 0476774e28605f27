package transport

import (
	"bufio"
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"
)

// UnixSocketSender implements Mode L: newline-delimited JSON over a
// local stream socket. It dials lazily, retries once on a write
// failure, and drops the message otherwise (verbose-logged only),
// per spec §4.4.
type UnixSocketSender struct {
	path    string
	verbose bool

	mu   sync.Mutex // single-writer: every Send* serializes through here
	conn net.Conn
}

// NewUnixSocketSender constructs a sender for the given socket path.
// It does not dial immediately; the first send establishes the
// connection lazily, matching Mode L's "if no cached connection, dial"
// behavior.
func NewUnixSocketSender(path string, verbose bool) *UnixSocketSender {
	return &UnixSocketSender{path: path, verbose: verbose}
}

func (s *UnixSocketSender) logf(format string, args ...interface{}) {
	if s.verbose {
		log.Printf(format, args...)
	}
}

func (s *UnixSocketSender) dial() (net.Conn, error) {
	return net.DialTimeout("unix", s.path, 2*time.Second)
}

func (s *UnixSocketSender) send(env envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		s.logf("transport: marshal %s: %v", env.Type, err)
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, err := s.dial()
		if err != nil {
			s.logf("transport: dial %s: %v", s.path, err)
			return
		}
		s.conn = conn
	}

	if _, err := s.conn.Write(data); err == nil {
		return
	}
	s.conn.Close()
	s.conn = nil

	conn, err := s.dial()
	if err != nil {
		s.logf("transport: redial %s: %v", s.path, err)
		return
	}
	if _, err := conn.Write(data); err != nil {
		s.logf("transport: redial write %s: %v", s.path, err)
		conn.Close()
		return
	}
	s.conn = conn
}

func (s *UnixSocketSender) SendConnect(launcherID string, project *string, tool CliToolType, args []string, workingDir string, ts time.Time) {
	s.send(envelope{Type: "Connect", Timestamp: ts, Data: connectData{
		LauncherID: launcherID, Project: project, ToolType: tool, ToolArgs: args, WorkingDir: workingDir,
	}})
}

func (s *UnixSocketSender) SendStateUpdate(launcherID, sessionID string, status SessionStatus, uiAboveText *string, ts time.Time) {
	s.send(envelope{Type: "StateUpdate", Timestamp: ts, Data: stateUpdateData{
		LauncherID: launcherID, SessionID: sessionID, Status: status, UIAboveText: uiAboveText,
	}})
}

func (s *UnixSocketSender) SendContextUpdate(launcherID, sessionID string, uiAboveText *string, ts time.Time) {
	s.send(envelope{Type: "ContextUpdate", Timestamp: ts, Data: contextUpdateData{
		LauncherID: launcherID, SessionID: sessionID, UIAboveText: uiAboveText,
	}})
}

func (s *UnixSocketSender) SendDisconnect(launcherID string, ts time.Time) {
	s.send(envelope{Type: "Disconnect", Timestamp: ts, Data: disconnectData{LauncherID: launcherID}})
}

func (s *UnixSocketSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// readEnvelopes is shared scaffolding for tests and the Mode G inbound
// reader: decodes newline-delimited JSON envelopes from r.
func readEnvelopes(r *bufio.Reader) (envelope, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return envelope{}, err
	}
	var env envelope
	if jerr := json.Unmarshal(line, &env); jerr != nil {
		return envelope{}, jerr
	}
	return env, nil
}
