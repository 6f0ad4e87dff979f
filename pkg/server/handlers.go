package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/hypertile/pkg/buildinfo"
	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/navigate"
	"github.com/matzehuels/hypertile/pkg/pipeline"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/render"
)

// maxReduceWords caps the words of one reduce request.
const maxReduceWords = 1000

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ProfileResponse is the body of GET /v1/profile.
type ProfileResponse struct {
	geom.Profile
	Name      string  `json:"name"`
	RootScale float64 `json:"root_scale"`
}

// ReduceRequest is the body of POST /v1/reduce.
type ReduceRequest struct {
	Words []string        `json:"words"`
	Trace bool            `json:"trace,omitempty"`
	Rules *reduce.RuleSet `json:"rules,omitempty"`
}

// ReduceResult is the canonical form of one word.
type ReduceResult struct {
	Word      string        `json:"word"`
	Canonical string        `json:"canonical"`
	Steps     []reduce.Step `json:"steps,omitempty"`
}

// ReduceResponse is the body answering POST /v1/reduce.
type ReduceResponse struct {
	RuleSet string         `json:"rule_set"`
	Results []ReduceResult `json:"results"`
}

// TilesResponse is the body answering POST /v1/tiles.
type TilesResponse struct {
	RunID    string          `json:"run_id"`
	Words    int             `json:"words"`
	Cached   bool            `json:"cached"`
	Document json.RawMessage `json:"document"`
}

// WalkRequest is the body of POST /v1/walk. Either Script or Commands is
// used; Script wins if both are set.
type WalkRequest struct {
	TilesPerVertex int                `json:"tiles_per_vertex,omitempty"`
	Script         string             `json:"script,omitempty"`
	Commands       []navigate.Command `json:"commands,omitempty"`

	// Depth, if set, enumerates tiles so the response names the tile the
	// viewer ends on.
	Depth *int `json:"depth,omitempty"`
}

// WalkResponse is the body answering POST /v1/walk.
type WalkResponse struct {
	Frames  []navigate.Frame       `json:"frames"`
	Globals navigate.RenderGlobals `json:"globals"`
	Nearest *string                `json:"nearest,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	n := pipeline.DefaultTilesPerVertex
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "n must be an integer, got %q", q))
			return
		}
		n = v
	}
	p, err := geom.NewProfile(n)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidConfig, err, "profile"))
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: p, Name: p.Name(), RootScale: p.RootScale()})
}

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	var req ReduceRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Words) == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "words is required"))
		return
	}
	if len(req.Words) > maxReduceWords {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "at most %d words per request", maxReduceWords))
		return
	}

	rs := reduce.DefaultRuleSet()
	if req.Rules != nil {
		rs = *req.Rules
	}
	reducer, err := reduce.New(rs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ReduceResponse{RuleSet: rs.Name, Results: make([]ReduceResult, len(req.Words))}
	for i, word := range req.Words {
		if err := reduce.Validate(word); err != nil {
			writeError(w, r, err)
			return
		}
		res := ReduceResult{Word: word}
		if req.Trace {
			res.Canonical, res.Steps, err = reducer.Trace(word)
		} else {
			res.Canonical, err = reducer.Reduce(word)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Results[i] = res
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.VizType = pipeline.VizDisk
	opts.Formats = []render.Format{render.FormatJSON}

	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TilesResponse{
		RunID:    result.RunID,
		Words:    result.Stats.WordCount,
		Cached:   result.CacheInfo.TilingHit,
		Document: result.Artifacts[render.FormatJSON],
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := s.options(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []render.Format{format}

	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Run-ID", result.RunID)
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleWalk(w http.ResponseWriter, r *http.Request) {
	var req WalkRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TilesPerVertex == 0 {
		req.TilesPerVertex = pipeline.DefaultTilesPerVertex
	}
	p, err := geom.NewProfile(req.TilesPerVertex)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidConfig, err, "tiles_per_vertex"))
		return
	}

	cmds := req.Commands
	if req.Script != "" {
		if cmds, err = navigate.ParseScript(strings.NewReader(req.Script)); err != nil {
			writeError(w, r, err)
			return
		}
	}
	for _, c := range cmds {
		if err := navigate.ValidateCommand(c); err != nil {
			writeError(w, r, err)
			return
		}
	}

	v := navigate.New(p)
	resp := WalkResponse{Frames: v.Run(cmds)}
	resp.Globals = v.Globals()

	if req.Depth != nil {
		if err := s.checkDepth(*req.Depth); err != nil {
			writeError(w, r, err)
			return
		}
		opts := pipeline.Options{TilesPerVertex: req.TilesPerVertex, Depth: req.Depth, Logger: loggerFrom(r.Context())}
		res, _, _, err := s.cfg.Runner.EnumerateWithCacheInfo(r.Context(), opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		tiles, err := s.cfg.Runner.Place(r.Context(), p, res)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if tile, _, ok := v.Nearest(tiles); ok {
			resp.Nearest = &tile.Word
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// options decodes pipeline options and applies the server's limits.
func (s *Server) options(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	if err := s.decode(w, r, &opts); err != nil {
		return opts, err
	}
	if opts.Depth != nil {
		if err := s.checkDepth(*opts.Depth); err != nil {
			return opts, err
		}
	}
	if opts.MaxTiles == 0 || opts.MaxTiles > pipeline.DefaultMaxTiles {
		opts.MaxTiles = pipeline.DefaultMaxTiles
	}
	opts.Logger = loggerFrom(r.Context())
	return opts, nil
}

func (s *Server) checkDepth(d int) error {
	if d > s.cfg.MaxDepth {
		return errors.New(errors.ErrCodeInvalidInput, "depth %d exceeds the server limit of %d", d, s.cfg.MaxDepth)
	}
	return nil
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !stderrors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", s.cfg.MaxBodyBytes)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func cacheHeader(ci pipeline.CacheInfo) string {
	switch {
	case ci.RenderHit:
		return "HIT"
	case ci.TilingHit:
		return "PARTIAL"
	default:
		return "MISS"
	}
}

func errNotFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status derived from err's code. Context
// errors map to 504 (deadline) or 499 (client went away).
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, string(errors.ErrCodeTimeout)
	case stderrors.Is(err, context.Canceled):
		status = 499
	}
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}

	logger := loggerFrom(r.Context())
	if status >= 500 {
		logger.Error("request failed", "error", err)
	} else {
		logger.Debug("request rejected", "error", err)
	}

	msg := errors.UserMessage(err)
	if status >= 500 && status != http.StatusGatewayTimeout && status != http.StatusNotImplemented {
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, RequestID: RequestID(r.Context())})
}
