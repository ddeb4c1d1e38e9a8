package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) programsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	programs, err := h.ds.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]programSummary, 0, len(programs))
	for _, p := range programs {
		out = append(out, summarize(p))
	}
	return jsonContents(req.Params.URI, out)
}

func (h *handlers) attendanceResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	summary, err := h.ds.AttendanceSummary(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := h.ds.AttendanceEntries(ctx)
	if err != nil {
		h.log.Warn("attendance resource: entries failed", "error", err)
	}

	return jsonContents(req.Params.URI, map[string]any{
		"summary":  summary,
		"checkIns": entries,
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
