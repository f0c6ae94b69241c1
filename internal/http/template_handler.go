package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Notifuse/mailblocks/internal/domain"
	"github.com/Notifuse/mailblocks/pkg/blocks"
	"github.com/Notifuse/mailblocks/pkg/logger"
)

// maxBodySize bounds request bodies, documents with embedded HTML blocks included
const maxBodySize = 4 << 20

type TemplateHandler struct {
	service    domain.TemplateService
	logger     logger.Logger
	renderWrap func(http.Handler) http.Handler
}

type TemplateHandlerOption func(*TemplateHandler)

// WithRenderMiddleware wraps the preview, source and export routes, e.g. with a rate limit
func WithRenderMiddleware(mw func(http.Handler) http.Handler) TemplateHandlerOption {
	return func(h *TemplateHandler) {
		h.renderWrap = mw
	}
}

func NewTemplateHandler(service domain.TemplateService, logger logger.Logger, opts ...TemplateHandlerOption) *TemplateHandler {
	h := &TemplateHandler{
		service: service,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux) {
	// Register RPC-style endpoints with dot notation
	mux.HandleFunc("/api/templates.list", h.handleList)
	mux.HandleFunc("/api/templates.get", h.handleGet)
	mux.HandleFunc("/api/templates.create", h.handleCreate)
	mux.HandleFunc("/api/templates.update", h.handleUpdate)
	mux.HandleFunc("/api/templates.delete", h.handleDelete)

	mux.HandleFunc("/api/templates.insertBlock", h.handleInsertBlock)
	mux.HandleFunc("/api/templates.updateBlock", h.handleUpdateBlock)
	mux.HandleFunc("/api/templates.deleteBlock", h.handleDeleteBlock)
	mux.HandleFunc("/api/templates.duplicateBlock", h.handleDuplicateBlock)
	mux.HandleFunc("/api/templates.moveBlock", h.handleMoveBlock)

	mux.HandleFunc("/api/templates.addSection", h.handleAddSection)
	mux.HandleFunc("/api/templates.removeSection", h.handleRemoveSection)
	mux.HandleFunc("/api/templates.moveBlockBetweenSections", h.handleMoveBetweenSections)

	mux.Handle("/api/templates.preview", h.wrapRender(h.renderHandler(blocks.ModePreview)))
	mux.Handle("/api/templates.source", h.wrapRender(h.renderHandler(blocks.ModeSource)))
	mux.Handle("/api/templates.export", h.wrapRender(h.renderHandler(blocks.ModeExport)))

	mux.HandleFunc("/api/blocks.defaults", h.handleBlockDefaults)
}

func (h *TemplateHandler) wrapRender(handler http.HandlerFunc) http.Handler {
	if h.renderWrap == nil {
		return handler
	}
	return h.renderWrap(handler)
}

// writeServiceError reports err with its mapped status. Unexpected errors are logged
// and replaced with a generic message.
func (h *TemplateHandler) writeServiceError(w http.ResponseWriter, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithField("error", err.Error()).Error("Failed to " + action)
		WriteJSONError(w, "Failed to "+action, status)
		return
	}
	WriteJSONError(w, err.Error(), status)
}

// decodeBody decodes a POST body into v, writing the error response itself
func (h *TemplateHandler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if domain.IsValidationError(err) {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return false
		}
		h.logger.WithField("error", err.Error()).Error("Failed to decode request body")
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *TemplateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ListTemplatesRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	templates, err := h.service.ListTemplates(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "list templates")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
	})
}

func (h *TemplateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.GetTemplateRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.GetTemplate(r.Context(), req.ID)
	if err != nil {
		h.writeServiceError(w, err, "get template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTemplateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	template, err := req.Validate()
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.CreateTemplate(r.Context(), template); err != nil {
		h.writeServiceError(w, err, "create template")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTemplateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.UpdateTemplateSettings(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "update template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.DeleteTemplateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), req.ID); err != nil {
		h.writeServiceError(w, err, "delete template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (h *TemplateHandler) handleInsertBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.InsertBlockRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.InsertBlock(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "insert block")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
		"block":    req.Block,
	})
}

func (h *TemplateHandler) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateBlockRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.UpdateBlock(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "update block")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.DeleteBlockRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.DeleteBlock(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "delete block")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleDuplicateBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.DuplicateBlockRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.DuplicateBlock(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "duplicate block")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleMoveBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.MoveBlockRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.MoveBlock(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "move block")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleAddSection(w http.ResponseWriter, r *http.Request) {
	var req domain.AddSectionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, section, err := h.service.AddSection(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "add section")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
		"section":  section,
	})
}

func (h *TemplateHandler) handleRemoveSection(w http.ResponseWriter, r *http.Request) {
	var req domain.RemoveSectionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.RemoveSection(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "remove section")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleMoveBetweenSections(w http.ResponseWriter, r *http.Request) {
	var req domain.MoveBetweenSectionsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := h.service.MoveBlockBetweenSections(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "move block between sections")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

// renderHandler serves one serialization mode. With download=true an export is sent as
// a file: the standalone HTML page, or the MJML source for format=mjml.
func (h *TemplateHandler) renderHandler(mode blocks.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		req := domain.RenderRequest{Mode: mode}
		if err := req.FromURLParams(r.URL.Query()); err != nil {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := h.service.Render(r.Context(), req)
		if err != nil {
			h.writeServiceError(w, err, "render template")
			return
		}

		if mode == blocks.ModeExport && req.Download {
			body, contentType, ext := result.Markup, "text/html; charset=utf-8", "html"
			if result.Format == domain.ExportFormatMJML {
				body, contentType, ext = result.MJML, "application/xml; charset=utf-8", "mjml"
			}
			w.Header().Set("Content-Type", contentType)
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, result.TemplateID, ext))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(body))
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// handleBlockDefaults returns the default block for ?type=, or one of each type
func (h *TemplateHandler) handleBlockDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if t := r.URL.Query().Get("type"); t != "" {
		block, err := blocks.NewBlock(blocks.BlockType(t))
		if err != nil {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"block": block,
		})
		return
	}

	defaults := make(blocks.BlockList, 0, len(blocks.AllBlockTypes))
	for _, t := range blocks.AllBlockTypes {
		block, err := blocks.NewBlock(t)
		if err != nil {
			h.writeServiceError(w, err, "build default blocks")
			return
		}
		defaults = append(defaults, block)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": defaults,
	})
}
