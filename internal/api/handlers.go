package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lynxprompt/lynxprompt/internal/detect"
	"github.com/lynxprompt/lynxprompt/internal/profile"
	"github.com/lynxprompt/lynxprompt/internal/scan"
	"github.com/lynxprompt/lynxprompt/internal/storage"
	"github.com/lynxprompt/lynxprompt/internal/synth"
	"github.com/lynxprompt/lynxprompt/internal/variables"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

const maxBodySize = 5 << 20 // 5MB

// AppDeps holds dependencies for the HTTP API.
type AppDeps struct {
	Store    *storage.Store
	Profile  *profile.Manager
	Detector *detect.Detector
	Token    string
	Plan     string
}

// NewAppHandler builds the chi router for the local API. Everything but
// /health requires the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/generate", handleGenerate(deps))
		r.Post("/detect", handleDetect(deps))
		r.Post("/scan", handleScan())

		r.Get("/variables", handleListVariables(deps))
		r.Put("/variables/{key}", handleSetVariable(deps))
		r.Delete("/variables/{key}", handleDeleteVariable(deps))

		r.Get("/profile", handleGetProfile(deps))
		r.Patch("/profile", handlePatchProfile(deps))

		r.Get("/blueprints", handleListBlueprints(deps))
		r.Post("/blueprints", handlePublishBlueprint(deps))
		r.Get("/blueprints/{id}", handleGetBlueprint(deps))
		r.Delete("/blueprints/{id}", handleDeleteBlueprint(deps))
		r.Get("/blueprints/{id}/download", handleDownloadBlueprint(deps))
	})

	return r
}

// --- generation ---

func handleGenerate(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg wizard.Config
		if !decodeBody(w, r, &cfg) {
			return
		}

		tier := wizard.TierForPlan(deps.Plan)
		final, err := wizard.FromConfig(cfg).Finalize(tier)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid configuration: %v", err)
			return
		}

		prof, err := deps.Profile.Get()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading profile: %v", err)
			return
		}
		saved, err := deps.Store.GetAllVariables()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading variables: %v", err)
			return
		}

		files, warnings, err := synth.Generate(final, prof, saved)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "generation_error", "generation failed: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"files":    files,
			"warnings": warnings,
		})
	}
}

func handleDetect(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Source string `json:"source"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Source == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "source is required")
			return
		}

		project := deps.Detector.Detect(r.Context(), req.Source)
		if project == nil {
			httpError(w, http.StatusNotFound, "not_found_error", "no project signals detected")
			return
		}
		writeJSON(w, http.StatusOK, project)
	}
}

func handleScan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		matches := scan.Scan(req.Content)
		if matches == nil {
			matches = []scan.Match{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
	}
}

// --- saved variables ---

type variableResponse struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

func handleListVariables(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars, err := deps.Store.ListVariables()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing variables: %v", err)
			return
		}
		out := make([]variableResponse, 0, len(vars))
		for _, v := range vars {
			out = append(out, variableResponse{Key: v.Key, Value: v.Value, UpdatedAt: v.UpdatedAt.Format(time.RFC3339)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleSetVariable(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := variables.Canonical(chi.URLParam(r, "key"))
		if !variables.ValidKey(key) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid variable key %q", key)
			return
		}
		var req struct {
			Value string `json:"value"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := deps.Store.SetVariable(key, req.Value); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving variable: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key})
	}
}

func handleDeleteVariable(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := variables.Canonical(chi.URLParam(r, "key"))
		err := deps.Store.DeleteVariable(key)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "variable %q not found", key)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "deleting variable: %v", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// --- profile ---

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profile.Get()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading profile: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			profile.KeyDisplayName: p.DisplayName,
			profile.KeyPersona:     p.Persona,
			profile.KeySkillLevel:  p.SkillLevel,
		})
	}
}

func handlePatchProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]string
		if !decodeBody(w, r, &fields) {
			return
		}
		for key, value := range fields {
			if err := deps.Profile.Set(key, value); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// --- blueprints ---

type publishRequest struct {
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Content            string            `json:"content"`
	Platform           string            `json:"platform"`
	PriceCents         int               `json:"price_cents"`
	Defaults           map[string]string `json:"defaults"`
	AcknowledgeSecrets bool              `json:"acknowledge_secrets"`
}

func handlePublishBlueprint(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req publishRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Title == "" || req.Content == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "title and content are required")
			return
		}
		if req.Platform != "" {
			if _, ok := synth.ParsePlatform(req.Platform); !ok {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown platform %q", req.Platform)
				return
			}
		}

		// The scan is advisory; publication proceeds only once the author
		// explicitly acknowledges the findings.
		if matches := scan.Scan(req.Content); len(matches) > 0 && !req.AcknowledgeSecrets {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": map[string]any{
					"message": "content may contain secrets; set acknowledge_secrets to publish anyway",
					"type":    "sensitive_content_warning",
				},
				"matches": matches,
			})
			return
		}

		defaults := "{}"
		if len(req.Defaults) > 0 {
			b, err := json.Marshal(req.Defaults)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid defaults: %v", err)
				return
			}
			defaults = string(b)
		}

		prof, err := deps.Profile.Get()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading profile: %v", err)
			return
		}

		bp := storage.Blueprint{
			ID:          uuid.New().String(),
			Title:       req.Title,
			Description: req.Description,
			Content:     req.Content,
			Platform:    req.Platform,
			Author:      prof.DisplayName,
			Defaults:    defaults,
			PriceCents:  req.PriceCents,
			Published:   true,
		}
		if err := deps.Store.SaveBlueprint(bp); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving blueprint: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": bp.ID})
	}
}

func handleListBlueprints(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 50)
		offset := queryInt(r, "offset", 0)
		bps, err := deps.Store.ListBlueprints(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing blueprints: %v", err)
			return
		}
		type summary struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Description string `json:"description,omitempty"`
			Platform    string `json:"platform,omitempty"`
			Author      string `json:"author,omitempty"`
			PriceCents  int    `json:"price_cents"`
			CreatedAt   string `json:"created_at"`
		}
		out := make([]summary, 0, len(bps))
		for _, bp := range bps {
			out = append(out, summary{
				ID:          bp.ID,
				Title:       bp.Title,
				Description: bp.Description,
				Platform:    bp.Platform,
				Author:      bp.Author,
				PriceCents:  bp.PriceCents,
				CreatedAt:   bp.CreatedAt.Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetBlueprint(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bp, err := deps.Store.GetBlueprint(chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "blueprint not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading blueprint: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          bp.ID,
			"title":       bp.Title,
			"description": bp.Description,
			"content":     bp.Content,
			"platform":    bp.Platform,
			"author":      bp.Author,
			"price_cents": bp.PriceCents,
			"variables":   variables.Extract(bp.Content),
			"created_at":  bp.CreatedAt.Format(time.RFC3339),
		})
	}
}

func handleDeleteBlueprint(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Store.DeleteBlueprint(chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "blueprint not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "deleting blueprint: %v", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleDownloadBlueprint resolves variable placeholders against the
// caller's saved variables and the author's defaults, in that priority.
func handleDownloadBlueprint(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bp, err := deps.Store.GetBlueprint(chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "blueprint not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading blueprint: %v", err)
			return
		}

		saved, err := deps.Store.GetAllVariables()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading variables: %v", err)
			return
		}

		var authorDefaults map[string]string
		if bp.Defaults != "" {
			if err := json.Unmarshal([]byte(bp.Defaults), &authorDefaults); err != nil {
				authorDefaults = nil
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":       bp.ID,
			"title":    bp.Title,
			"platform": bp.Platform,
			"content":  variables.Resolve(bp.Content, saved, authorDefaults),
		})
	}
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
