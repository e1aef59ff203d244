package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tasks"
	"github.com/desertthunder/islandtune/internal/tune"
	"github.com/gorilla/mux"
)

var _ Handler = (*TuneHandler)(nil)

const maxBodyBytes = 64 << 10

// TuneHandler serves the catalog, compiler and MIDI renderer.
type TuneHandler struct {
	catalog func() *tune.Catalog
	render  tasks.RenderOpts
	logger  *log.Logger
}

// NewTuneHandler serves tunes from catalog, which is called per request so saved tunes show up
// without a restart. render.Duration is the default base duration.
func NewTuneHandler(catalog func() *tune.Catalog, render tasks.RenderOpts, logger *log.Logger) *TuneHandler {
	if render.Duration <= 0 {
		render.Duration = tune.DefaultDuration
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	render.Logger = logger
	return &TuneHandler{catalog: catalog, render: render, logger: logger}
}

type eventJSON struct {
	Pitch    string  `json:"pitch"`
	Key      uint8   `json:"key,omitempty"`
	Duration float64 `json:"duration"`
	Offset   int     `json:"offset"`
	Span     int     `json:"span"`
}

type tuneJSON struct {
	Index    int         `json:"index,omitempty"`
	Name     string      `json:"name,omitempty"`
	Notation string      `json:"notation"`
	Length   float64     `json:"length,omitempty"`
	Events   []eventJSON `json:"events,omitempty"`
}

// CompileRequest is the body of POST /api/compile. Duration is the base note length in seconds.
type CompileRequest struct {
	Notation string  `json:"notation"`
	Duration float64 `json:"duration,omitempty"`
}

func (h *TuneHandler) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/api/tunes", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/tunes/{tune}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/tunes/{tune}/midi", h.midi).Methods(http.MethodGet)
	r.HandleFunc("/api/compile", h.compile).Methods(http.MethodPost)
}

func (h *TuneHandler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TuneHandler) list(w http.ResponseWriter, r *http.Request) {
	c := h.catalog()
	tunes := make([]tuneJSON, 0, c.Len())
	for i, name := range c.Names() {
		notation, _ := c.Get(name)
		tunes = append(tunes, tuneJSON{Index: i + 1, Name: name, Notation: notation})
	}
	h.writeJSON(w, http.StatusOK, tunes)
}

func (h *TuneHandler) get(w http.ResponseWriter, r *http.Request) {
	name, notation, err := h.catalog().Resolve(mux.Vars(r)["tune"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	out, err := h.compileTune(notation, h.render.Duration)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out.Name = name
	h.writeJSON(w, http.StatusOK, out)
}

func (h *TuneHandler) midi(w http.ResponseWriter, r *http.Request) {
	name, notation, err := h.catalog().Resolve(mux.Vars(r)["tune"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if _, err := tasks.RenderTune(name, notation, &buf, h.render); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", shared.Slugify(name)+".mid"))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write midi", "tune", name, "error", err)
	}
}

func (h *TuneHandler) compile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}

	var req CompileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, fmt.Errorf("%w: request body must be JSON: %w", shared.ErrInvalidInput, err))
		return
	}

	base := h.render.Duration
	if req.Duration != 0 {
		d, err := tune.ParseSeconds(req.Duration)
		if err != nil {
			h.writeError(w, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
			return
		}
		base = d
	}

	out, err := h.compileTune(req.Notation, base)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *TuneHandler) compileTune(notation string, base time.Duration) (tuneJSON, error) {
	compiler, err := tune.NewCompiler(base)
	if err != nil {
		return tuneJSON{}, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	events, err := compiler.Compile(notation)
	if err != nil {
		return tuneJSON{}, err
	}

	out := tuneJSON{
		Notation: notation,
		Length:   tune.TotalDuration(events).Seconds(),
		Events:   make([]eventJSON, 0, len(events)),
	}
	for _, ev := range events {
		out.Events = append(out.Events, eventJSON{
			Pitch:    ev.Pitch.String(),
			Key:      ev.Pitch.Key(),
			Duration: ev.Duration.Seconds(),
			Offset:   ev.Offset,
			Span:     ev.Span,
		})
	}
	return out, nil
}

func (h *TuneHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto status codes.
func (h *TuneHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tune.ErrUnknownTune):
		status = http.StatusNotFound
	case errors.Is(err, tune.ErrInvalidTune):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, tune.ErrInvalidDuration):
		status = http.StatusBadRequest
	default:
		h.logger.Error("request failed", "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
