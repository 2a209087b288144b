package mcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/internal/service/memory"
	"github.com/sandevgo/lobug/pkg/log"
)

const (
	ToolRetrieve = "memory_retrieve"
	ToolBase     = "memory_base"
	ToolRemember = "memory_remember"
)

type MemoryTools interface {
	RetrieveContext(ctx context.Context, query string) core.MemoryContext
	Remember(ctx context.Context, text string, factType core.FactType) (memory.FactOutcome, error)
}

// Server exposes the memory over MCP so other assistants can read and feed it.
type Server struct {
	mcp    *server.MCPServer
	memory MemoryTools
	base   core.BaseMemoryStore
	in     io.Reader
	out    io.Writer
}

func NewServer(memory MemoryTools, base core.BaseMemoryStore) *Server {
	s := &Server{
		mcp:    server.NewMCPServer(core.AppName, core.AppVersion, server.WithToolCapabilities(false), server.WithRecovery()),
		memory: memory,
		base:   base,
		in:     os.Stdin,
		out:    os.Stdout,
	}
	s.registerTools()
	return s
}

// MCP returns the underlying server, for in-process clients.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Start serves stdio until ctx is cancelled or stdin closes.
func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("serving memory over mcp stdio")

	stdio := server.NewStdioServer(s.mcp)
	if err := stdio.Listen(ctx, s.in, s.out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(context.Context) error {
	return nil
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(ToolRetrieve,
		mcp.WithDescription("Look up what is remembered about the user that is relevant to a query. Returns the base memory and matching facts as Markdown."),
		mcp.WithString("query", mcp.Required(), mcp.Description("What the conversation is about right now")),
	), s.handleRetrieve)

	s.mcp.AddTool(mcp.NewTool(ToolBase,
		mcp.WithDescription("Return the long-term base memory document about the user."),
	), s.handleBase)

	s.mcp.AddTool(mcp.NewTool(ToolRemember,
		mcp.WithDescription("Store a durable fact about the user. Near-duplicates replace the older fact."),
		mcp.WithString("fact", mcp.Required(), mcp.Description("One self-contained sentence")),
		mcp.WithString("type",
			mcp.Description("Kind of fact"),
			mcp.Enum(string(core.FactPersonal), string(core.FactPreference), string(core.FactKnowledge), string(core.FactEvent)),
		),
	), s.handleRemember)
}

func (s *Server) handleRetrieve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mc := s.memory.RetrieveContext(ctx, query)
	if mc.Formatted == "" {
		return mcp.NewToolResultText("Nothing relevant is remembered."), nil
	}
	return mcp.NewToolResultText(mc.Formatted), nil
}

func (s *Server) handleBase(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := s.base.GetBaseMemory(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to read base memory")
		return mcp.NewToolResultError("base memory is unavailable"), nil
	}
	if content == "" {
		return mcp.NewToolResultText("(empty)"), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) handleRemember(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fact, err := req.RequireString("fact")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	factType := core.NormalizeFactType(req.GetString("type", string(core.FactKnowledge)))

	out, err := s.memory.Remember(ctx, fact, factType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not store fact: %v", err)), nil
	}
	if out.Replaced() {
		return mcp.NewToolResultText(fmt.Sprintf("Stored fact #%d, replacing #%d.", out.ID, out.ReplacedID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stored fact #%d.", out.ID)), nil
}
