// Package service wires MCP transports to the battle tools.
//
// It knows how to run MCP over stdio or streamable HTTP and delegates
// tool meaning to the handlers in the domain package.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/louisbranch/pocketduel/internal/platform/timeouts"
	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	"github.com/louisbranch/pocketduel/internal/services/battle/content"
	"github.com/louisbranch/pocketduel/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "pocketduel"
	serverVersion = "0.1.0"
	// defaultHTTPAddr binds to localhost unless configured otherwise.
	defaultHTTPAddr = "localhost:8081"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr defaults to localhost:8081 for the HTTP transport.
	HTTPAddr string
	Service  *app.Service
	Content  *content.Provider
}

// Server owns the MCP server and its registered battle tools.
type Server struct {
	mcpServer *mcp.Server
}

type registrationModule struct {
	name     string
	register func(*mcp.Server)
}

func registrationModules(service *app.Service, provider *content.Provider) []registrationModule {
	return []registrationModule{
		{name: "battle-tools", register: func(s *mcp.Server) {
			mcp.AddTool(s, domain.BattleSimulateTool(), domain.BattleSimulateHandler(service, provider))
			mcp.AddTool(s, domain.BattleBatchTool(), domain.BattleBatchHandler(service, provider))
			mcp.AddTool(s, domain.BattleGetTool(), domain.BattleGetHandler(service))
			mcp.AddTool(s, domain.BattleListTool(), domain.BattleListHandler(service))
		}},
		{name: "content-tools", register: func(s *mcp.Server) {
			mcp.AddTool(s, domain.RosterListTool(), domain.RosterListHandler(provider))
			mcp.AddTool(s, domain.TypeEffectivenessTool(), domain.TypeEffectivenessHandler(service))
		}},
		{name: "battle-resources", register: func(s *mcp.Server) {
			s.AddResourceTemplate(domain.BattleLogResourceTemplate(), domain.BattleLogResourceHandler(service))
		}},
	}
}

// New creates an MCP server exposing the battle tools.
func New(service *app.Service, provider *content.Provider) (*Server, error) {
	if service == nil {
		return nil, errors.New("battle service is required")
	}
	if provider == nil {
		return nil, errors.New("content provider is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	for _, module := range registrationModules(service, provider) {
		module.register(mcpServer)
	}
	return &Server{mcpServer: mcpServer}, nil
}

// Run is the service entrypoint for MCP and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	server, err := New(cfg.Service, cfg.Content)
	if err != nil {
		return err
	}
	switch cfg.Transport {
	case TransportStdio:
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		addr := cfg.HTTPAddr
		if addr == "" {
			addr = defaultHTTPAddr
		}
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return server.serveHTTP(ctx, listener)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// serveWithTransport runs the MCP session until the transport closes or
// ctx ends. Cancellation is a clean stop.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Handler returns the streamable HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

func (s *Server) serveHTTP(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("mcp http listening at %v", listener.Addr())
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown mcp http: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve mcp http: %w", err)
	}
}
