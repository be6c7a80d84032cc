package fossil

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed species.yaml
var speciesRaw []byte

// Species is one entry of the embedded reference database.
type Species struct {
	Name   string     `yaml:"name" json:"name"`
	Type   Type       `yaml:"type" json:"type"`
	Period string     `yaml:"period" json:"period"`
	Age    [2]float64 `yaml:"age_million_years" json:"age_million_years"`
}

var (
	speciesOnce sync.Once
	speciesAll  []Species
)

func loadSpecies() []Species {
	speciesOnce.Do(func() {
		if err := yaml.Unmarshal(speciesRaw, &speciesAll); err != nil {
			// The database is embedded at build time, a parse failure is a
			// programming error.
			panic("fossil: embedded species database is invalid: " + err.Error())
		}
	})
	return speciesAll
}

// AllSpecies returns the full reference database sorted by name.
func AllSpecies() []Species {
	all := loadSpecies()
	out := make([]Species, len(all))
	copy(out, all)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SpeciesFor returns the reference species known for a fossil type, in
// database order.
func SpeciesFor(t Type) []Species {
	var out []Species
	for _, s := range loadSpecies() {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// SearchSpecies returns entries whose name or period contains the query,
// case-insensitive.
func SearchSpecies(query string) []Species {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Species
	for _, s := range loadSpecies() {
		if strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Period), q) {
			out = append(out, s)
		}
	}
	return out
}
