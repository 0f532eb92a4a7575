package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/problem"
	"github.com/san-kum/geartrain/internal/storage"
)

type Document struct {
	Name        string                  `json:"name"`
	Problem     string                  `json:"problem,omitempty"`
	Feasible    *bool                   `json:"feasible,omitempty"`
	Ratio       float64                 `json:"ratio"`
	GearRatio   float64                 `json:"gear_ratio"`
	Volume      float64                 `json:"volume"`
	Collisions  float64                 `json:"collisions"`
	Components  []storage.ComponentMeta `json:"components"`
	Evaluation  *problem.Evaluation     `json:"evaluation"`
	Curve       []actuator.CurvePoint   `json:"curve,omitempty"`
	Objectives  map[string]float64      `json:"objective_terms,omitempty"`
	Constraints map[string]float64      `json:"constraint_terms,omitempty"`
}

// NewDocument flattens r into its JSON form.
func NewDocument(r *Report) Document {
	a := r.Eval.Actuator
	doc := Document{
		Name:       r.Name,
		Ratio:      a.Ratio(),
		GearRatio:  a.GearRatio(),
		Volume:     a.Volume(),
		Collisions: a.InternalCollisions(),
		Evaluation: r.Eval,
		Curve:      r.Curve,
	}
	for _, c := range a.Components() {
		doc.Components = append(doc.Components, storage.ComponentMeta{
			Kind:   c.Kind().String(),
			Ratio:  c.Ratio(),
			Cost:   c.Cost(),
			Volume: c.Volume(),
		})
	}

	if p := r.Problem; p != nil {
		doc.Problem = p.Name
		feasible := p.Feasible(r.Eval)
		doc.Feasible = &feasible
		doc.Objectives = namedTerms(p.Objectives, r.Eval.Objectives)
		doc.Constraints = namedTerms(p.Constraints, r.Eval.Constraints)
	}
	return doc
}

func namedTerms(terms []problem.Term, values []float64) map[string]float64 {
	if len(values) != len(terms) {
		return nil
	}
	m := make(map[string]float64, len(terms))
	for i, t := range terms {
		m[t.Name] = values[i]
	}
	return m
}

func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}
