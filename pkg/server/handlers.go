package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"caliper-hq/dccbridge/pkg/profile/ast"
	"caliper-hq/dccbridge/pkg/profile/store"
)

// convertRequest is the JSON body of POST /v1/convert.
// Either Profile (a registered profile name) or ProfileDocument (an
// inline mapping profile) must be set.
type convertRequest struct {
	// Profile is the name of a registered mapping profile.
	Profile string `json:"profile,omitempty"`

	// ProfileDocument is an inline mapping profile document.
	ProfileDocument json.RawMessage `json:"profileDocument,omitempty"`

	// Source is the source certificate XML.
	Source string `json:"source"`
}

// convertResponse is the JSON response of POST /v1/convert.
type convertResponse struct {
	ID         string         `json:"id"`
	Profile    string         `json:"profile"`
	DCC        map[string]any `json:"dcc"`
	XML        string         `json:"xml"`
	Warnings   []string       `json:"warnings"`
	RuleErrors []ruleError    `json:"ruleErrors"`
	DurationMS int64          `json:"durationMs"`
}

// ruleError is the JSON shape of one failed rule evaluation.
type ruleError struct {
	Target string `json:"target"`
	Type   string `json:"type"`
	Index  int    `json:"index"`
	Error  string `json:"error"`
}

// profileSummary is the JSON shape of a registered profile.
type profileSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RootElement string `json:"rootElement,omitempty"`
	Rules       int    `json:"rules"`
	SourceFile  string `json:"sourceFile,omitempty"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// handleConvert converts a source certificate using a registered or
// inline profile and returns DCC-JSON, DCC XML, and warnings.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)

	profile, source, ok := s.readConvertRequest(w, r)
	if !ok {
		return
	}
	if max := s.config.Engine.MaxSourceBytes; max > 0 && int64(len(source)) > max {
		writeError(w, http.StatusRequestEntityTooLarge, "source_too_large",
			"source document exceeds the configured size limit")
		return
	}

	ctx := r.Context()
	if timeout := s.config.Engine.ConversionTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conv, err := s.engine.Convert(ctx, source, profile)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "conversion_failed", err.Error())
		return
	}

	xml, warnings := s.generator.Generate(conv.DCC)
	if s.metrics != nil {
		s.metrics.RecordWarnings(len(warnings))
	}

	resp := convertResponse{
		ID:         conv.ID,
		Profile:    conv.Profile,
		DCC:        conv.DCC,
		XML:        xml,
		Warnings:   warnings,
		RuleErrors: make([]ruleError, 0, len(conv.RuleErrors)),
		DurationMS: conv.Duration.Milliseconds(),
	}
	for _, re := range conv.RuleErrors {
		resp.RuleErrors = append(resp.RuleErrors, ruleError{
			Target: re.Target,
			Type:   string(re.Type),
			Index:  re.Index,
			Error:  re.Err.Error(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// readConvertRequest extracts the profile and source from the request.
// JSON bodies carry both; XML bodies carry the source directly and name
// the profile in the query string.
func (s *Server) readConvertRequest(w http.ResponseWriter, r *http.Request) (*ast.Profile, []byte, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		var req convertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
			return nil, nil, false
		}
		if req.Source == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "source is required")
			return nil, nil, false
		}

		profile, ok := s.resolveProfile(w, req.Profile, req.ProfileDocument)
		if !ok {
			return nil, nil, false
		}
		return profile, []byte(req.Source), true
	}

	// Raw XML body with the profile named in the query string.
	source, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "reading request body: "+err.Error())
		return nil, nil, false
	}
	profile, ok := s.resolveProfile(w, r.URL.Query().Get("profile"), nil)
	if !ok {
		return nil, nil, false
	}
	return profile, source, true
}

// resolveProfile looks up a named profile or parses an inline one.
func (s *Server) resolveProfile(w http.ResponseWriter, name string, inline json.RawMessage) (*ast.Profile, bool) {
	if len(inline) > 0 {
		profile, err := s.profiles.Parse(inline)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_profile", err.Error())
			return nil, false
		}
		return profile, true
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "profile name or inline profile document is required")
		return nil, false
	}
	profile, ok := s.profiles.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "profile_not_found", "no profile named "+name)
		return nil, false
	}
	return profile, true
}

// handleListProfiles returns summaries of all registered profiles.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := s.profiles.List()
	summaries := make([]profileSummary, 0, len(profiles))
	for _, p := range profiles {
		summaries = append(summaries, summarize(p))
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleGetProfile returns the summary of one registered profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	profile, ok := s.profiles.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "profile_not_found", "no profile named "+name)
		return
	}
	writeJSON(w, http.StatusOK, summarize(profile))
}

// handlePutProfile registers or replaces a profile from the request body.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "reading request body: "+err.Error())
		return
	}

	profile, err := s.profiles.Upsert(r.Context(), data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_profile", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, summarize(profile))
}

// handleDeleteProfile removes a registered profile.
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.profiles.Delete(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile_not_found", "no profile named "+name)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealthz is the liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz is the readiness probe. The service is ready once the
// profile registry has been populated.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"profiles": s.profiles.Count(),
	})
}

func summarize(p *ast.Profile) profileSummary {
	return profileSummary{
		Name:        p.Name,
		Description: p.Description,
		RootElement: p.RootElement,
		Rules:       p.RuleCount(),
		SourceFile:  p.SourceFile,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Type: errType, Message: message}})
}
