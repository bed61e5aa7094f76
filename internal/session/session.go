package session

import "context"

// Status is the connection state of the conversational session.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Mode is the remote agent's current audio mode.
type Mode string

const (
	ModeSpeaking  Mode = "speaking"
	ModeListening Mode = "listening"
)

// MessageSource identifies who produced a transcript message.
type MessageSource string

const (
	MessageSourceAI   MessageSource = "ai"
	MessageSourceUser MessageSource = "user"
)

// StartSessionOptions carries the resolved identity for a new
// conversation.
type StartSessionOptions struct {
	AgentID       string
	TokenFetchURL string
	UserID        string
}

// RemoteSession is the command surface of the remote conversational
// service. Commands are asynchronous: implementations must not block
// beyond registering continuation work, and failures surface through
// the Callbacks, not through these methods, except for immediate
// command-issue errors.
type RemoteSession interface {
	StartSession(ctx context.Context, opts StartSessionOptions) error
	EndSession(reason string) error
	SendUserMessage(text string)
	SendFeedback(positive bool)
	SetMicMuted(muted bool)
	SendContextualUpdate(text string)
}

// Callbacks are the event notifications a remote session delivers back
// into the orchestration core. Any nil callback is skipped.
type Callbacks struct {
	OnConnect               func(conversationID string)
	OnDisconnect            func()
	OnStatusChange          func(status Status)
	OnMessage               func(message string, source MessageSource)
	OnModeChange            func(mode Mode)
	OnError                 func(message string)
	OnCanSendFeedbackChange func(canSendFeedback bool)
	OnUnhandledToolCall     func(toolName string)
}

// ToolDispatcher is the slice of the tool registry a remote session
// needs: resolve a named tool call into a string result or an error.
type ToolDispatcher interface {
	Has(name string) bool
	Dispatch(ctx context.Context, name string, raw interface{}) (string, error)
}

// State is a snapshot of the session's externally visible fields.
type State struct {
	Status          Status `json:"status"`
	ConversationID  string `json:"conversation_id,omitempty"`
	IsSpeaking      bool   `json:"is_speaking"`
	IsMicMuted      bool   `json:"is_mic_muted"`
	CanSendFeedback bool   `json:"can_send_feedback"`
	LastError       string `json:"last_error,omitempty"`
}
