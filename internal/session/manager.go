package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"voicedesk-agent/internal/activity"
	"voicedesk-agent/internal/config"
	"voicedesk-agent/internal/nav"
)

// ErrAgentNotConfigured is returned by Start when no agent id could be
// resolved from the override, environment, or config file.
var ErrAgentNotConfigured = errors.New(
	"missing agent id; set " + config.EnvAgentID + " or pass an agent id override")

// StartOptions let a caller override the configured identity for one
// session.
type StartOptions struct {
	AgentID       string
	TokenFetchURL string
	UserID        string
}

// Manager owns the session state machine. It issues commands to the
// remote session and consumes its callbacks; every state mutation is a
// single atomic step under the mutex, so reads observe either the pre-
// or post-mutation state.
//
// Start and Stop are not serialized against their async completions.
// Re-entrant calls are tolerated (the remote layer treats repeated
// start/stop as idempotent); suppressing them is left to the caller's
// busy affordance.
type Manager struct {
	remote RemoteSession
	log    *activity.Log
	agent  config.AgentConfig

	mu            sync.Mutex
	state         State
	currentScreen string
}

// NewManager wires the lifecycle manager to the remote session, the
// shared activity log, and the agent configuration. When no agent id is
// resolvable it appends the setup notice the console shows to first-run
// users.
func NewManager(remote RemoteSession, log *activity.Log, agent config.AgentConfig) *Manager {
	m := &Manager{
		remote: remote,
		log:    log,
		agent:  agent,
		state:  State{Status: StatusDisconnected},
	}

	if !agent.IsAgentConfigured() {
		log.Append(activity.SourceSystem,
			"Set "+config.EnvAgentID+" to enable voice agent connectivity.")
	}

	return m
}

// SetRemote binds the remote session after construction. The manager
// and the transport reference each other (commands one way, callbacks
// the other), so wiring happens in two phases; SetRemote must be called
// before any command or callback flows.
func (m *Manager) SetRemote(remote RemoteSession) {
	m.remote = remote
}

// State returns a snapshot of the session fields.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentScreen returns the screen most recently reported by the host.
func (m *Manager) CurrentScreen() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentScreen
}

// Start begins a new conversation. It fails fast without contacting the
// remote session when no agent id is configured; that failure is logged
// exactly once and leaves the state machine disconnected.
func (m *Manager) Start(ctx context.Context, opts StartOptions) error {
	agentID := m.agent.ResolveAgentID(opts.AgentID)
	if agentID == "" {
		m.mu.Lock()
		m.state.LastError = ErrAgentNotConfigured.Error()
		m.mu.Unlock()
		m.log.Append(activity.SourceSystem, ErrAgentNotConfigured.Error())
		return ErrAgentNotConfigured
	}

	m.mu.Lock()
	m.state.LastError = ""
	m.state.Status = StatusConnecting
	m.state.IsMicMuted = false
	m.mu.Unlock()

	m.log.Append(activity.SourceSystem, "Attempting to connect to voice agent...")

	err := m.remote.StartSession(ctx, StartSessionOptions{
		AgentID:       agentID,
		TokenFetchURL: m.agent.ResolveTokenFetchURL(opts.TokenFetchURL),
		UserID:        m.agent.ResolveUserID(opts.UserID),
	})
	if err != nil {
		m.mu.Lock()
		m.state.Status = StatusDisconnected
		m.state.LastError = err.Error()
		m.mu.Unlock()
		m.log.Append(activity.SourceSystem, fmt.Sprintf("Error: %v", err))
		return err
	}

	m.remote.SetMicMuted(false)
	return nil
}

// Stop issues a disconnect command regardless of current state. The
// state machine transitions when the remote session reports the
// disconnect.
func (m *Manager) Stop() error {
	m.mu.Lock()
	m.state.IsMicMuted = false
	m.mu.Unlock()
	return m.remote.EndSession("user")
}

// SendUserMessage forwards a typed prompt to the agent. Blank input is
// a silent no-op; the remote session is responsible for rejecting sends
// while disconnected.
func (m *Manager) SendUserMessage(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	m.remote.SendUserMessage(text)
	m.log.Append(activity.SourceUser, text)
}

// SendFeedback rates the most recent agent turn. It is a silent no-op
// unless the remote session has granted feedback eligibility, and that
// eligibility is consumed immediately so a double-tap sends at most one
// rating.
func (m *Manager) SendFeedback(positive bool) {
	m.mu.Lock()
	if !m.state.CanSendFeedback {
		m.mu.Unlock()
		return
	}
	m.state.CanSendFeedback = false
	m.mu.Unlock()

	m.remote.SendFeedback(positive)

	sentiment := "positive"
	if !positive {
		sentiment = "negative"
	}
	m.log.Append(activity.SourceSystem, fmt.Sprintf("Sent %s feedback.", sentiment))
}

// ToggleMic flips the mute flag, or sets it when explicit is non-nil.
// The resulting value is always forwarded to the remote session
// regardless of connection status.
func (m *Manager) ToggleMic(explicit *bool) {
	m.mu.Lock()
	next := !m.state.IsMicMuted
	if explicit != nil {
		next = *explicit
	}
	m.state.IsMicMuted = next
	m.mu.Unlock()

	m.remote.SetMicMuted(next)
}

// SetCurrentScreen records the screen the user is viewing and, while
// connected, tells the remote agent about it. Fire-and-forget.
func (m *Manager) SetCurrentScreen(screen string) {
	m.mu.Lock()
	if m.currentScreen == screen {
		m.mu.Unlock()
		return
	}
	m.currentScreen = screen
	connected := m.state.Status == StatusConnected
	m.mu.Unlock()

	if connected {
		m.remote.SendContextualUpdate(describeScreenUpdate(screen))
	}
}

func describeScreenUpdate(screen string) string {
	return fmt.Sprintf("User is viewing the %s screen.", nav.DescribeScreen(screen))
}

// Callbacks returns the event handlers the remote session should
// invoke. Each handler applies its state change atomically and drives
// the activity log.
func (m *Manager) Callbacks() Callbacks {
	return Callbacks{
		OnConnect:               m.handleConnect,
		OnDisconnect:            m.handleDisconnect,
		OnStatusChange:          m.handleStatusChange,
		OnMessage:               m.handleMessage,
		OnModeChange:            m.handleModeChange,
		OnError:                 m.handleError,
		OnCanSendFeedbackChange: m.handleCanSendFeedbackChange,
		OnUnhandledToolCall:     m.handleUnhandledToolCall,
	}
}

func (m *Manager) handleConnect(conversationID string) {
	m.mu.Lock()
	wasConnected := m.state.Status == StatusConnected
	m.state.Status = StatusConnected
	m.state.ConversationID = conversationID
	screen := m.currentScreen
	m.mu.Unlock()

	m.log.Append(activity.SourceSystem,
		fmt.Sprintf("Connected to conversation %s.", conversationID))

	if !wasConnected {
		m.remote.SendContextualUpdate(describeScreenUpdate(screen))
	}
}

func (m *Manager) handleDisconnect() {
	m.mu.Lock()
	m.state.Status = StatusDisconnected
	m.state.ConversationID = ""
	m.state.CanSendFeedback = false
	m.state.IsSpeaking = false
	m.state.IsMicMuted = false
	m.mu.Unlock()

	m.log.Append(activity.SourceSystem, "Conversation ended.")
}

func (m *Manager) handleStatusChange(status Status) {
	m.mu.Lock()
	wasConnected := m.state.Status == StatusConnected
	m.state.Status = status
	screen := m.currentScreen
	m.mu.Unlock()

	if status == StatusConnected && !wasConnected {
		m.remote.SendContextualUpdate(describeScreenUpdate(screen))
	}
}

func (m *Manager) handleMessage(message string, source MessageSource) {
	logSource := activity.SourceUser
	if source == MessageSourceAI {
		logSource = activity.SourceAgent
	}
	m.log.Append(logSource, message)
}

func (m *Manager) handleModeChange(mode Mode) {
	m.mu.Lock()
	m.state.IsSpeaking = mode == ModeSpeaking
	m.mu.Unlock()
}

func (m *Manager) handleError(message string) {
	m.mu.Lock()
	m.state.LastError = message
	m.mu.Unlock()

	m.log.Append(activity.SourceSystem, fmt.Sprintf("Error: %s", message))
}

func (m *Manager) handleCanSendFeedbackChange(canSendFeedback bool) {
	m.mu.Lock()
	m.state.CanSendFeedback = canSendFeedback
	m.mu.Unlock()
}

func (m *Manager) handleUnhandledToolCall(toolName string) {
	m.log.Append(activity.SourceSystem,
		fmt.Sprintf("Unhandled client tool: %s", toolName))
}
