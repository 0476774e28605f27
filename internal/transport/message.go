// Package transport delivers session lifecycle and state events to an
// external monitor process, with two interchangeable wire modes. It
// never blocks the PTY pipeline on transport health: every send is
// best-effort.
package transport

import (
	"encoding/json"
	"fmt"
	"time"
)

// CliToolType is the stable, case-sensitive identifier for which child
// tool family a session is running. Ordinal values are fixed per the
// wire contract (spec §6) so a future binary encoding stays compatible.
type CliToolType int

const (
	ToolClaude CliToolType = 0
	ToolGemini CliToolType = 1
)

func (t CliToolType) String() string {
	if t == ToolGemini {
		return "Gemini"
	}
	return "Claude"
}

// MarshalJSON encodes the literal enum string spec.md §6 mandates on
// the wire, not the underlying ordinal.
func (t CliToolType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the same literal strings MarshalJSON emits.
func (t *CliToolType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Gemini":
		*t = ToolGemini
	case "Claude":
		*t = ToolClaude
	default:
		return fmt.Errorf("transport: unknown tool_type %q", s)
	}
	return nil
}

// SessionStatus mirrors detect.SessionState on the wire; kept as a
// distinct type so internal/transport has no compile-time dependency
// on internal/detect.
type SessionStatus int

const (
	StatusConnected SessionStatus = iota
	StatusBusy
	StatusWaitingInput
	StatusIdle
	StatusError
)

func (s SessionStatus) String() string {
	switch s {
	case StatusBusy:
		return "Busy"
	case StatusWaitingInput:
		return "WaitingInput"
	case StatusIdle:
		return "Idle"
	case StatusError:
		return "Error"
	default:
		return "Connected"
	}
}

// MarshalJSON encodes the literal enum string spec.md §6 mandates on
// the wire, not the underlying ordinal.
func (s SessionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the same literal strings MarshalJSON emits.
func (s *SessionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "Busy":
		*s = StatusBusy
	case "WaitingInput":
		*s = StatusWaitingInput
	case "Idle":
		*s = StatusIdle
	case "Error":
		*s = StatusError
	case "Connected":
		*s = StatusConnected
	default:
		return fmt.Errorf("transport: unknown status %q", str)
	}
	return nil
}

// envelope is the tagged-union JSON shape written to the wire, one
// object per line. Mirrors the teacher's eventstore envelope
// ({type, timestamp, data}) rather than a Rust-style externally
// tagged enum, since Go has no enum-with-payload construct.
type envelope struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type connectData struct {
	LauncherID string      `json:"launcher_id"`
	Project    *string     `json:"project,omitempty"`
	ToolType   CliToolType `json:"tool_type"`
	ToolArgs   []string    `json:"claude_args"`
	WorkingDir string      `json:"working_dir"`
}

type stateUpdateData struct {
	LauncherID  string        `json:"launcher_id"`
	SessionID   string        `json:"session_id"`
	Status      SessionStatus `json:"status"`
	UIAboveText *string       `json:"ui_above_text,omitempty"`
}

type contextUpdateData struct {
	LauncherID  string  `json:"launcher_id"`
	SessionID   string  `json:"session_id"`
	UIAboveText *string `json:"ui_above_text,omitempty"`
}

type disconnectData struct {
	LauncherID string `json:"launcher_id"`
}

// ConnectResponse/RequestReconnect/Ping are the monitor→launcher
// messages Mode G's inbound reader decodes. Only ConnectResponse is
// required for interop (spec §6); the others are logged and otherwise
// inert.
type ConnectResponse struct {
	LauncherID string  `json:"launcher_id"`
	Success    bool    `json:"success"`
	Message    *string `json:"message,omitempty"`
}

type RequestReconnect struct {
	Reason string `json:"reason"`
}

type Ping struct {
	Sequence int64 `json:"sequence"`
}

// InboundMessage is the decoded variant of whichever monitor→launcher
// message the inbound reader just received.
type InboundMessage struct {
	ConnectResponse  *ConnectResponse
	RequestReconnect *RequestReconnect
	Ping             *Ping
}

// MessageSender is the contract both wire modes satisfy. All methods
// are best-effort: failures are swallowed (verbose-logged by the
// implementation) rather than returned, because the user-visible
// session must be identical with or without a working monitor.
type MessageSender interface {
	SendConnect(launcherID string, project *string, tool CliToolType, args []string, workingDir string, ts time.Time)
	SendStateUpdate(launcherID, sessionID string, status SessionStatus, uiAboveText *string, ts time.Time)
	SendContextUpdate(launcherID, sessionID string, uiAboveText *string, ts time.Time)
	SendDisconnect(launcherID string, ts time.Time)
	Close()
}
