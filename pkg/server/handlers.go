package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matzehuels/pipemerge/pkg/align"
	"github.com/matzehuels/pipemerge/pkg/buildinfo"
	"github.com/matzehuels/pipemerge/pkg/engine"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
	graphio "github.com/matzehuels/pipemerge/pkg/io"
	"github.com/matzehuels/pipemerge/pkg/pipeline"
)

// Request is the body of every /v1 endpoint.
type Request struct {
	Pipelines []pipeline.Pipeline `json:"pipelines"`
	Options   engine.Options      `json:"options"`
}

// AlignResponse is the body returned by POST /v1/align.
type AlignResponse struct {
	G1         string            `json:"g1"`
	G2         string            `json:"g2"`
	G1ToG2     map[string]string `json:"g1_to_g2"`
	G2ToG1     map[string]string `json:"g2_to_g1"`
	Degenerate bool              `json:"degenerate"`
	Rejected   []align.Pair      `json:"rejected"`
	CacheHit   bool              `json:"cache_hit"`
}

// MergeResponse is the body returned by POST /v1/merge. Graph is the merged
// graph in node-link layout.
type MergeResponse struct {
	RunID string             `json:"run_id"`
	Steps []engine.MergeStep `json:"steps"`
	Graph json.RawMessage    `json:"graph"`
}

// CompareResponse is the body returned by POST /v1/compare.
type CompareResponse struct {
	Comparisons []engine.Comparison `json:"comparisons"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	if len(req.Pipelines) != 2 {
		s.fail(w, r, perrors.New(perrors.ErrCodeInvalidInput, "align needs exactly two pipelines, got %d", len(req.Pipelines)))
		return
	}

	graphs, err := s.runner.Build(r.Context(), req.Pipelines)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Align(r.Context(), graphs[0], graphs[1], req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	rejected := res.Rejected
	if rejected == nil {
		rejected = []align.Pair{}
	}
	writeJSON(w, http.StatusOK, AlignResponse{
		G1:         graphs[0].Name(),
		G2:         graphs[1].Name(),
		G1ToG2:     res.G1ToG2,
		G2ToG1:     res.G2ToG1,
		Degenerate: res.Degenerate,
		Rejected:   rejected,
		CacheHit:   res.CacheHit,
	})
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	graphs, err := s.runner.Build(r.Context(), req.Pipelines)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Merge(r.Context(), graphs, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := graphio.WriteNodeLink(res.Graph, &buf); err != nil {
		s.fail(w, r, perrors.Wrap(perrors.ErrCodeInternal, err, "encode merged graph"))
		return
	}
	steps := res.Steps
	if steps == nil {
		steps = []engine.MergeStep{}
	}
	writeJSON(w, http.StatusOK, MergeResponse{
		RunID: res.RunID,
		Steps: steps,
		Graph: json.RawMessage(bytes.TrimSpace(buf.Bytes())),
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	graphs, err := s.runner.Build(r.Context(), req.Pipelines)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.runner.Compare(r.Context(), graphs, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CompareResponse{Comparisons: out})
}

// decode reads the request body on top of the server defaults. On failure
// it writes the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	req := Request{Options: s.defaults}
	req.Options.Logger = nil

	// Pipeline documents carry many fields the engine ignores, so unknown
	// keys are allowed.
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, string(perrors.ErrCodeInvalidInput),
				"request body exceeds limit")
			return req, false
		}
		s.fail(w, r, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode request"))
		return req, false
	}
	return req, true
}
