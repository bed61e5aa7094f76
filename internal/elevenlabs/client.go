// Package elevenlabs implements the remote conversation contract over a
// websocket transport. Audio capture and playback are out of scope; the
// client speaks the text-side of the conversation protocol: init
// metadata, transcripts, client tool calls, feedback, and contextual
// updates.
package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voicedesk-agent/internal/session"
)

// Options configure the websocket client.
type Options struct {
	// Endpoint is the conversation websocket URL.
	Endpoint string
	// DialTimeout bounds the websocket handshake.
	DialTimeout time.Duration
	// HTTPClient is used for token fetches; defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client is a RemoteSession backed by a single websocket connection per
// conversation. Commands never block the orchestration core: the dial
// runs on its own goroutine and failures surface via callbacks.
type Client struct {
	opts      Options
	callbacks session.Callbacks
	tools     session.ToolDispatcher

	mu       sync.Mutex
	conn     *websocket.Conn
	writeMu  sync.Mutex
	micMuted bool
}

// NewClient builds a client delivering events to callbacks and routing
// client tool calls through the dispatcher.
func NewClient(opts Options, callbacks session.Callbacks, tools session.ToolDispatcher) *Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Client{opts: opts, callbacks: callbacks, tools: tools}
}

type clientEvent struct {
	Type string `json:"type"`

	ConversationID  string          `json:"conversation_id,omitempty"`
	AgentResponse   string          `json:"agent_response,omitempty"`
	UserTranscript  string          `json:"user_transcript,omitempty"`
	Mode            string          `json:"mode,omitempty"`
	Message         string          `json:"message,omitempty"`
	CanSendFeedback *bool           `json:"can_send_feedback,omitempty"`
	ToolName        string          `json:"tool_name,omitempty"`
	ToolCallID      string          `json:"tool_call_id,omitempty"`
	Parameters      json.RawMessage `json:"parameters,omitempty"`
}

// StartSession dials the conversation endpoint and begins the read
// loop. It returns immediately; connect and error outcomes arrive via
// the callbacks.
func (c *Client) StartSession(ctx context.Context, opts session.StartSessionOptions) error {
	if opts.AgentID == "" {
		return fmt.Errorf("agent id is required")
	}

	go c.dialAndRun(ctx, opts)
	return nil
}

func (c *Client) dialAndRun(ctx context.Context, opts session.StartSessionOptions) {
	target, err := c.conversationURL(ctx, opts)
	if err != nil {
		c.emitError(err.Error())
		c.emitStatus(session.StatusDisconnected)
		return
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.opts.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		c.emitError(fmt.Sprintf("connecting to agent: %v", err))
		c.emitStatus(session.StatusDisconnected)
		return
	}

	c.mu.Lock()
	// A racing start replaces the previous connection.
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = conn
	c.mu.Unlock()

	c.send(map[string]interface{}{
		"type":     "conversation_initiation_client_data",
		"agent_id": opts.AgentID,
		"user_id":  opts.UserID,
	})

	c.readLoop(conn)
}

// conversationURL resolves the websocket target, exchanging the token
// fetch URL for a signed token when one is configured.
func (c *Client) conversationURL(ctx context.Context, opts session.StartSessionOptions) (string, error) {
	target, err := url.Parse(c.opts.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}

	query := target.Query()
	query.Set("agent_id", opts.AgentID)

	if opts.TokenFetchURL != "" {
		token, err := c.fetchToken(ctx, opts.TokenFetchURL, opts.AgentID)
		if err != nil {
			return "", fmt.Errorf("fetching conversation token: %w", err)
		}
		query.Set("conversation_signature", token)
	}

	target.RawQuery = query.Encode()
	return target.String(), nil
}

func (c *Client) fetchToken(ctx context.Context, tokenURL, agentID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL+"?agent_id="+url.QueryEscape(agentID), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}
	return body.Token, nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	connected := false

	for {
		var event clientEvent
		if err := conn.ReadJSON(&event); err != nil {
			break
		}

		switch event.Type {
		case "conversation_initiation_metadata":
			connected = true
			c.emitStatus(session.StatusConnected)
			if c.callbacks.OnConnect != nil {
				c.callbacks.OnConnect(event.ConversationID)
			}
		case "agent_response":
			c.emitMessage(event.AgentResponse, session.MessageSourceAI)
		case "user_transcript":
			c.emitMessage(event.UserTranscript, session.MessageSourceUser)
		case "mode_change":
			if c.callbacks.OnModeChange != nil {
				c.callbacks.OnModeChange(session.Mode(event.Mode))
			}
		case "can_send_feedback_update":
			if c.callbacks.OnCanSendFeedbackChange != nil && event.CanSendFeedback != nil {
				c.callbacks.OnCanSendFeedbackChange(*event.CanSendFeedback)
			}
		case "client_tool_call":
			c.handleToolCall(event)
		case "error":
			c.emitError(event.Message)
		case "ping":
			c.send(map[string]interface{}{"type": "pong"})
		}
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	if connected {
		c.emitStatus(session.StatusDisconnected)
	}
	if c.callbacks.OnDisconnect != nil {
		c.callbacks.OnDisconnect()
	}
}

// handleToolCall dispatches a named tool and reports the string result
// or failure back over the wire. Tools the registry does not know are
// reported through OnUnhandledToolCall instead of failing the session.
func (c *Client) handleToolCall(event clientEvent) {
	if c.tools == nil || !c.tools.Has(event.ToolName) {
		if c.callbacks.OnUnhandledToolCall != nil {
			c.callbacks.OnUnhandledToolCall(event.ToolName)
		}
		return
	}

	var raw interface{}
	if len(event.Parameters) > 0 {
		if err := json.Unmarshal(event.Parameters, &raw); err != nil {
			raw = string(event.Parameters)
		}
	}

	result, err := c.tools.Dispatch(context.Background(), event.ToolName, raw)
	response := map[string]interface{}{
		"type":         "client_tool_result",
		"tool_call_id": event.ToolCallID,
		"is_error":     err != nil,
	}
	if err != nil {
		response["result"] = err.Error()
	} else {
		response["result"] = result
	}
	c.send(response)
}

// EndSession closes the active connection. The read loop's exit drives
// the disconnect callback.
func (c *Client) EndSession(reason string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	c.send(map[string]interface{}{"type": "end_session", "reason": reason})

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), deadline)
	return conn.Close()
}

// SendUserMessage forwards a typed prompt. Dropped when no connection
// is active; rejecting sends while disconnected is this layer's job.
func (c *Client) SendUserMessage(text string) {
	c.send(map[string]interface{}{"type": "user_message", "text": text})
}

// SendFeedback rates the last agent turn.
func (c *Client) SendFeedback(positive bool) {
	score := "like"
	if !positive {
		score = "dislike"
	}
	c.send(map[string]interface{}{"type": "feedback", "score": score})
}

// SetMicMuted records and forwards the microphone state.
func (c *Client) SetMicMuted(muted bool) {
	c.mu.Lock()
	c.micMuted = muted
	c.mu.Unlock()

	c.send(map[string]interface{}{"type": "mic_state", "muted": muted})
}

// SendContextualUpdate tells the agent what the user is looking at.
// Fire-and-forget by contract.
func (c *Client) SendContextualUpdate(text string) {
	c.send(map[string]interface{}{"type": "contextual_update", "text": text})
}

func (c *Client) emitStatus(status session.Status) {
	if c.callbacks.OnStatusChange != nil {
		c.callbacks.OnStatusChange(status)
	}
}

func (c *Client) emitError(message string) {
	if c.callbacks.OnError != nil {
		c.callbacks.OnError(message)
	}
}

func (c *Client) emitMessage(text string, source session.MessageSource) {
	if c.callbacks.OnMessage != nil {
		c.callbacks.OnMessage(text, source)
	}
}

// send writes one JSON frame, serialized against concurrent writers.
// Messages issued without an active connection are dropped.
func (c *Client) send(payload map[string]interface{}) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.WriteJSON(payload)
}
