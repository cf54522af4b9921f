package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pelagos/shoal/core/method"
	"github.com/pelagos/shoal/core/schema"
)

// errorDetail is one attribute-level validation fault.
type errorDetail struct {
	Attribute string `json:"attribute"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
}

// errorBody is the error envelope returned by every failing endpoint.
type errorBody struct {
	Message string        `json:"message"`
	Errors  []errorDetail `json:"errors,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// callRequest is the body of POST /api/methods/{method}.
type callRequest struct {
	Args []any `json:"args"`
}

type callResponse struct {
	Result any `json:"result"`
}

type methodInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Accepts     []map[string]any `json:"accepts"`
	Returns     map[string]any   `json:"returns,omitempty"`
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// ListSchemas returns the JSON schema documents of every registered
// schema, in registration order.
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	reg := h.methods.Schemas()

	docs := make([]map[string]any, 0, reg.Len())
	for _, name := range reg.Names() {
		docs = append(docs, reg.Get(name).ToJSONSchema(nil))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"schemas": docs})
}

// GetSchema returns one schema document by name.
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s := h.methods.Schemas().Get(name)
	if s == nil {
		h.writeError(w, http.StatusNotFound, "schema "+name+" is not registered", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, s.ToJSONSchema(nil))
}

// ListMethods returns every registered method with its argument and
// result schema documents.
func (h *Handler) ListMethods(w http.ResponseWriter, r *http.Request) {
	var out []methodInfo
	for _, m := range h.methods.List() {
		info := methodInfo{
			Name:        m.Name,
			Description: m.Description,
			Accepts:     make([]map[string]any, 0, len(m.Accepts)),
		}
		for _, s := range m.Accepts {
			info.Accepts = append(info.Accepts, s.ToJSONSchema(nil))
		}
		if m.Returns != nil {
			info.Returns = m.Returns.ToJSONSchema(nil)
		}
		out = append(out, info)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"methods": out})
}

// CallMethod dispatches a method call. Validation faults map to 422 with
// attribute detail, unknown methods to 404.
func (h *Handler) CallMethod(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "method")

	var req callRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
			return
		}
	}

	result, err := h.methods.Call(r.Context(), name, req.Args)
	if err != nil {
		h.writeCallError(w, name, err)
		return
	}
	h.writeJSON(w, http.StatusOK, callResponse{Result: result})
}

// ListAlerts returns the active alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"alerts": h.alerts.List()})
}

func (h *Handler) writeCallError(w http.ResponseWriter, name string, err error) {
	var unknown *method.UnknownMethodError
	if errors.As(err, &unknown) {
		h.writeError(w, http.StatusNotFound, unknown.Error(), nil)
		return
	}

	var verrors *schema.ValidationErrors
	if errors.As(err, &verrors) {
		details := make([]errorDetail, 0, len(verrors.Errors))
		for _, e := range verrors.Errors {
			details = append(details, errorDetail{Attribute: e.Attribute, Message: e.Message, Code: e.Code})
		}
		h.writeError(w, http.StatusUnprocessableEntity, "validation failed", details)
		return
	}

	var serr *schema.Error
	if errors.As(err, &serr) {
		h.writeError(w, http.StatusUnprocessableEntity, "validation failed", []errorDetail{
			{Attribute: serr.Attribute, Message: serr.Message, Code: serr.Code},
		})
		return
	}

	h.logger.Error().Err(err).Str("method", name).Msg("method call failed")
	h.writeError(w, http.StatusInternalServerError, "internal error", nil)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, details []errorDetail) {
	h.writeJSON(w, status, errorEnvelope{Error: errorBody{Message: message, Errors: details}})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("encode response")
	}
}
