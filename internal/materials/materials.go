package materials

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownMaterial = errors.New("materials: unknown material")

// Material stores the properties used by the stress and cost models.
// Values are shared by pointer and must not be modified.
type Material struct {
	Name      string  `yaml:"name" json:"name"`
	E         float64 `yaml:"e" json:"e"`
	Rho       float64 `yaml:"rho" json:"rho"`
	Nu        float64 `yaml:"nu" json:"nu"`
	Cost      float64 `yaml:"cost" json:"cost"`
	SigmaFLim float64 `yaml:"sigma_f_lim" json:"sigma_f_lim"`
	SigmaHLim float64 `yaml:"sigma_h_lim" json:"sigma_h_lim"`
}

const (
	Steel = "steel"
	POM   = "POM"
)

var table = map[string]*Material{
	Steel: {
		Name:      Steel,
		E:         210e9,
		Nu:        0.3,
		SigmaHLim: 400e6,
		SigmaFLim: 200e6,
		Cost:      0.4,
		Rho:       7800,
	},
	POM: {
		Name:      POM,
		E:         2.85e9,
		Nu:        0.44,
		Cost:      2.20,
		Rho:       1400,
		SigmaFLim: 90e6,
		SigmaHLim: 90e6,
	},
}

func Get(name string) (*Material, error) {
	m, ok := table[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return m, nil
}

// MustGet is Get for names known at compile time.
func MustGet(name string) *Material {
	m, err := Get(name)
	if err != nil {
		panic(err)
	}
	return m
}

func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
