package reminder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "medimind"
	serverVersion = "1.0.0"
)

// PreviewFunc returns what an evaluation pass at now would deliver, without
// persisting anything.
type PreviewFunc func(now time.Time) []Reminder

// ExtractFunc reads a medicine name from an image.
type ExtractFunc func(ctx context.Context, image []byte, mimeType string) string

// ServerOption configures optional tools.
type ServerOption func(*Server)

// WithPreview enables the preview_due tool.
func WithPreview(fn PreviewFunc) ServerOption {
	return func(s *Server) { s.preview = fn }
}

// WithExtractor enables the extract_medicine_name tool.
func WithExtractor(fn ExtractFunc) ServerOption {
	return func(s *Server) { s.extract = fn }
}

// Server is the MCP server for medication reminder management.
type Server struct {
	mcpServer *server.MCPServer
	store     *Store
	preview   PreviewFunc
	extract   ExtractFunc
	now       func() time.Time
}

// NewServer creates a new reminder MCP server backed by the given store.
func NewServer(store *Store, opts ...ServerOption) *Server {
	s := &Server{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// add_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a recurring medication reminder"),
			mcp.WithString("medicine_name", mcp.Required(), mcp.Description("Medicine name and dosage, e.g. Aspirin 81mg")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Time of day as HH:MM (24h, local time)")),
			mcp.WithString("days", mcp.Description("Comma separated weekdays (mon,wed,fri), \"daily\" or \"none\" (default: daily)")),
			mcp.WithString("image_url", mcp.Description("Optional photo of the packaging")),
		),
		s.handleAddReminder,
	)

	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all medication reminders ordered by time of day"),
		),
		s.handleListReminders,
	)

	// update_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder's fields (medicine_name, time, days, image_url)"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("medicine_name", mcp.Description("New medicine name")),
			mcp.WithString("time", mcp.Description("New time as HH:MM")),
			mcp.WithString("days", mcp.Description("New weekdays; \"none\" deactivates the reminder")),
			mcp.WithString("image_url", mcp.Description("New image URL")),
		),
		s.handleUpdateReminder,
	)

	// delete_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	if s.preview != nil {
		s.mcpServer.AddTool(
			mcp.NewTool("preview_due",
				mcp.WithDescription("Show which reminders a check right now would deliver, without delivering them"),
			),
			s.handlePreviewDue,
		)
	}

	if s.extract != nil {
		s.mcpServer.AddTool(
			mcp.NewTool("extract_medicine_name",
				mcp.WithDescription("Read the medicine name and dosage from a photo of its packaging"),
				mcp.WithString("image_path", mcp.Description("Path to an image file")),
				mcp.WithString("image_base64", mcp.Description("Base64 encoded image, used when image_path is empty")),
				mcp.WithString("mime_type", mcp.Description("MIME type of image_base64 (default: detected)")),
			),
			s.handleExtractMedicineName,
		)
	}
}

func (s *Server) handleAddReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("medicine_name", "")
	clock := req.GetString("time", "")

	if name == "" {
		return mcp.NewToolResultError("medicine_name is required"), nil
	}
	if clock == "" {
		return mcp.NewToolResultError("time is required"), nil
	}

	days, err := ParseDays(req.GetString("days", "daily"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid days: %v", err)), nil
	}

	added, err := s.store.Add(Reminder{
		MedicineName: name,
		Time:         clock,
		Days:         days,
		ImageURL:     req.GetString("image_url", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	output, _ := json.MarshalIndent(added, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleListReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders := s.store.GetAll()
	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	output, _ := json.MarshalIndent(reminders, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleUpdateReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	r, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}

	if v := req.GetString("medicine_name", ""); v != "" {
		r.MedicineName = v
	}
	if v := req.GetString("time", ""); v != "" {
		r.Time = v
		r.TimeSlot = "" // recomputed from the new time
	}
	if v := req.GetString("days", ""); v != "" {
		days, err := ParseDays(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid days: %v", err)), nil
		}
		r.Days = days
	}
	if v := req.GetString("image_url", ""); v != "" {
		r.ImageURL = v
	}

	if err := s.store.Put(r); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}
	updated, _ := s.store.Get(id)

	output, _ := json.MarshalIndent(updated, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleDeleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := s.store.Delete(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

type duePreview struct {
	Reminder
	DueAt time.Time `json:"dueAt"`
}

func (s *Server) handlePreviewDue(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := s.now()
	due := s.preview(now)
	if len(due) == 0 {
		return mcp.NewToolResultText("No reminders due."), nil
	}

	out := make([]duePreview, 0, len(due))
	for _, r := range due {
		p := duePreview{Reminder: r}
		if h, m, err := r.Clock(); err == nil {
			p.DueAt = time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
		}
		out = append(out, p)
	}

	output, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleExtractMedicineName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var image []byte
	mimeType := req.GetString("mime_type", "")

	if path := req.GetString("image_path", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read image: %v", err)), nil
		}
		image = data
	} else if encoded := req.GetString("image_base64", ""); encoded != "" {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid image_base64: %v", err)), nil
		}
		image = data
	} else {
		return mcp.NewToolResultError("image_path or image_base64 is required"), nil
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	return mcp.NewToolResultText(s.extract(ctx, image, mimeType)), nil
}
