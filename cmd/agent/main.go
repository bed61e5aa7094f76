package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"voicedesk-agent/internal/activity"
	"voicedesk-agent/internal/config"
	"voicedesk-agent/internal/console"
	"voicedesk-agent/internal/elevenlabs"
	"voicedesk-agent/internal/intake"
	"voicedesk-agent/internal/nav"
	"voicedesk-agent/internal/session"
	"voicedesk-agent/internal/tools"
)

// router tracks the active screen and feeds screen changes into the
// lifecycle manager so the remote agent stays aware of UI context.
type router struct {
	mu      sync.Mutex
	current string
	manager *session.Manager
}

func (r *router) Go(path string) {
	screen := screenForPath(path)

	r.mu.Lock()
	r.current = screen
	r.mu.Unlock()

	r.manager.SetCurrentScreen(screen)
}

func (r *router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Next rotates through the screen set in display order.
func (r *router) Next() {
	screens := nav.ValidScreens()

	r.mu.Lock()
	current := r.current
	r.mu.Unlock()

	for i, s := range screens {
		if s == current {
			r.Go(screens[(i+1)%len(screens)])
			return
		}
	}
	r.Go(screens[0])
}

func screenForPath(path string) string {
	switch {
	case strings.Contains(path, "services"):
		return "services"
	case strings.Contains(path, "intake"):
		return "intake"
	default:
		return "home"
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the VoiceDesk agent config file")
	agentID := flag.String("agent-id", "", "Agent id override (beats env and config)")
	mcpStdio := flag.Bool("mcp", false, "Serve the client tools over MCP stdio instead of the console")
	ssePort := flag.Int("sse-port", 0, "Optional MCP SSE port override (falls back to config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *agentID != "" {
		cfg.Agent.AgentID = *agentID
	}
	if *ssePort != 0 {
		cfg.MCP.SSEPort = *ssePort
	}

	// Redirect logging to file for stdio mode (stderr interferes with
	// the MCP protocol) and for the TUI (stderr corrupts the screen).
	if cfg.Server.LogFile != "" {
		logFile, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		} else {
			log.SetOutput(io.Discard)
		}
	}

	form := intake.NewStore()
	actLog := activity.NewLog()

	manager := session.NewManager(nil, actLog, cfg.Agent)
	r := &router{manager: manager}

	bridge := nav.NewBridge(r.Go, actLog)
	registry := tools.NewRegistry(form, bridge, actLog)

	remote := elevenlabs.NewClient(elevenlabs.Options{
		Endpoint:    cfg.Agent.Endpoint,
		DialTimeout: cfg.Agent.GetDialTimeout(),
	}, manager.Callbacks(), registry)
	manager.SetRemote(remote)

	r.Go("/")

	var runErr error
	switch {
	case cfg.MCP.SSEPort > 0:
		log.Printf("starting VoiceDesk MCP SSE server on port %d", cfg.MCP.SSEPort)
		srv := tools.NewMCPServer(cfg.Server.Name, cfg.Server.Version, registry)
		runErr = srv.StartSSE(ctx, cfg.MCP.SSEPort)
	case *mcpStdio || !cfg.Console.IsEnabled():
		log.Printf("starting VoiceDesk MCP stdio server")
		srv := tools.NewMCPServer(cfg.Server.Name, cfg.Server.Version, registry)
		runErr = srv.Start(ctx)
	default:
		program := tea.NewProgram(console.New(console.Deps{
			Manager:      manager,
			Log:          actLog,
			Form:         form,
			Screen:       r.Current,
			NavigateNext: r.Next,
		}), tea.WithAltScreen(), tea.WithContext(ctx))
		_, runErr = program.Run()
	}

	_ = manager.Stop()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Fatalf("agent exited with error: %v", runErr)
	}
}
