package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/config"
	"github.com/san-kum/geartrain/internal/design"
	"github.com/san-kum/geartrain/internal/export"
	"github.com/san-kum/geartrain/internal/materials"
	"github.com/san-kum/geartrain/internal/motors"
	"github.com/san-kum/geartrain/internal/problem"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

var errBadRequest = errors.New("bad request")

// EvaluateRequest selects a design either by configuration (Config or
// Preset, default configuration when both are empty) or by design vector X
// for the named problem.
type EvaluateRequest struct {
	Config  *config.Config `json:"config,omitempty"`
	Preset  string         `json:"preset,omitempty"`
	Problem string         `json:"problem,omitempty"`
	X       []float64      `json:"x,omitempty"`
	// Curve is the number of speed-torque samples, zero for none.
	Curve int  `json:"curve,omitempty"`
	Save  bool `json:"save,omitempty"`
}

type EvaluateResponse struct {
	export.Document
	RunID string `json:"run_id,omitempty"`
}

type ProblemInfo struct {
	Name        string    `json:"name"`
	Stages      int       `json:"stages"`
	NVar        int       `json:"n_var"`
	Objectives  []string  `json:"objectives"`
	Constraints []string  `json:"constraints"`
	Weights     []float64 `json:"weights"`
	CWeights    []float64 `json:"c_weights"`
	Lower       []float64 `json:"lower"`
	Upper       []float64 `json:"upper"`
	Ref         []float64 `json:"ref"`
}

type BatchRequest struct {
	X [][]float64 `json:"x"`
}

// BatchResult holds minimized objectives F and constraints G, feasible when
// every G is non-positive.
type BatchResult struct {
	F        []float64 `json:"f,omitempty"`
	G        []float64 `json:"g,omitempty"`
	Feasible bool      `json:"feasible"`
	Error    string    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, problem.ErrUnknownProblem),
		errors.Is(err, motors.ErrUnknownMotor),
		errors.Is(err, materials.ErrUnknownMaterial),
		errors.Is(err, design.ErrShortVector),
		errors.Is(err, config.ErrNoConditions),
		errors.Is(err, actuator.ErrChainOrder),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listMotors(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]motors.MotorData)
	for _, name := range motors.Names() {
		out[name], _ = motors.Data(name)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listMaterials(w http.ResponseWriter, r *http.Request) {
	out := make([]*materials.Material, 0)
	for _, name := range materials.Names() {
		out = append(out, materials.MustGet(name))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.ListPresets())
}

func (s *Server) getPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	cfg := config.GetPreset(name)
	if cfg == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no preset %q", name)})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) listProblems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"objective_sets":  problem.ObjectiveSets(),
		"constraint_sets": problem.ConstraintSets(),
		"op_sets":         opSetNames(),
		"default_stages":  problem.DefaultStages,
	})
}

func opSetNames() []string {
	names := make([]string, 0, len(problem.OpSets))
	for name := range problem.OpSets {
		names = append(names, name)
	}
	return names
}

func termNames(terms []problem.Term) []string {
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = t.Name
	}
	return names
}

func (s *Server) getProblem(w http.ResponseWriter, r *http.Request) {
	p, err := problem.Get(mux.Vars(r)["name"], nil)
	if err != nil {
		writeError(w, err)
		return
	}
	lower, upper := p.Bounds()
	writeJSON(w, http.StatusOK, ProblemInfo{
		Name:        p.Name,
		Stages:      p.Stages,
		NVar:        len(lower),
		Objectives:  termNames(p.Objectives),
		Constraints: termNames(p.Constraints),
		Weights:     p.Weights(),
		CWeights:    p.ConstraintWeights(),
		Lower:       lower,
		Upper:       upper,
		Ref:         p.Ref(),
	})
}

func (s *Server) evaluateBatch(w http.ResponseWriter, r *http.Request) {
	p, err := problem.Get(mux.Vars(r)["name"], nil)
	if err != nil {
		writeError(w, err)
		return
	}
	var req BatchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	results := p.EvaluateBatch(r.Context(), req.X, s.opts.Workers)
	out := make([]BatchResult, len(results))
	for i, res := range results {
		if res.Err != nil {
			out[i].Error = res.Err.Error()
			continue
		}
		out[i].F, out[i].G = p.Minimized(res.Evaluation)
		out[i].Feasible = p.Feasible(res.Evaluation)
	}
	writeJSON(w, http.StatusOK, out)
}

// Resolve builds and evaluates the design a request describes.
func Resolve(req *EvaluateRequest) (*export.Report, error) {
	name := req.Problem
	var (
		p   *problem.Problem
		e   *problem.Evaluation
		err error
	)

	if req.X != nil {
		if name == "" {
			name = config.DefaultProblem
		}
		if p, err = problem.Get(name, nil); err != nil {
			return nil, err
		}
		if e, err = p.Evaluate(req.X); err != nil {
			return nil, err
		}
		name = p.Name
	} else {
		cfg := req.Config
		if req.Preset != "" {
			if cfg = config.GetPreset(req.Preset); cfg == nil {
				return nil, fmt.Errorf("%w: no preset %q", errBadRequest, req.Preset)
			}
			name = req.Preset
		}
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
		if name == "" {
			name = "custom"
		}

		conds, err := cfg.OperatingConditions()
		if err != nil {
			return nil, err
		}
		a, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		if e, err = problem.Analyze(a, conds); err != nil {
			return nil, err
		}

		probName := cfg.Problem
		if req.Problem != "" {
			probName = req.Problem
		}
		if probName != "" {
			if p, err = problem.Get(probName, conds); err != nil {
				return nil, err
			}
			if err := p.Score(e); err != nil {
				return nil, err
			}
		}
	}

	rep := &export.Report{Name: name, Problem: p, Eval: e}
	if req.Curve > 0 {
		if rep.Curve, err = e.Curve(req.Curve); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	rep, err := Resolve(&req)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := EvaluateResponse{Document: export.NewDocument(rep)}
	if req.Save && s.opts.Store != nil {
		if resp.RunID, err = s.opts.Store.Save(rep.Name, rep.Problem, rep.Eval); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

var contentTypes = map[string]string{
	"json": "application/json",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"html": "text/html; charset=utf-8",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"svg":  "image/svg+xml",
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(mux.Vars(r)["format"])
	ct, ok := contentTypes[format]
	if !ok {
		writeError(w, fmt.Errorf("%w: %q", export.ErrUnknownFormat, format))
		return
	}

	var req EvaluateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if format == "png" && req.Curve == 0 {
		req.Curve = 50
	}
	rep, err := Resolve(&req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Name+"."+format))
	if err := export.Write(w, format, rep); err != nil {
		log.Printf("export %s: %v", format, err)
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.opts.Store.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	meta, err := s.opts.Store.Load(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	writeJSON(w, http.StatusOK, meta)
}
