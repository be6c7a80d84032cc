package fossil

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type is the fossil category assigned by a classifier.
type Type string

const (
	PermineralizedBone Type = "permineralized_bone"
	PetrifiedWood      Type = "petrified_wood"
	ShellFragment      Type = "shell_fragment"
	TraceFossil        Type = "trace_fossil"
	AmberInclusion     Type = "amber_inclusion"
	Unknown            Type = "unknown"
)

// Types lists all categories a classifier may assign, excluding Unknown.
var Types = []Type{
	PermineralizedBone,
	PetrifiedWood,
	ShellFragment,
	TraceFossil,
	AmberInclusion,
}

// ParseType maps a label to a known fossil type, Unknown if unrecognized.
func ParseType(s string) Type {
	for _, t := range Types {
		if string(t) == s {
			return t
		}
	}
	return Unknown
}

// AgeRange is an estimated age interval in million years, Low <= High.
type AgeRange struct {
	Low  float64
	High float64
}

// MarshalJSON encodes the range as a two-element array [low, high].
func (a AgeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{a.Low, a.High})
}

func (a *AgeRange) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if pair[0] > pair[1] {
		return fmt.Errorf("age range: low %g exceeds high %g", pair[0], pair[1])
	}
	a.Low, a.High = pair[0], pair[1]
	return nil
}

func (a AgeRange) String() string {
	return fmt.Sprintf("%g-%g", a.Low, a.High)
}

// SpeciesCandidate is one suggested species with its confidence in [0,1].
type SpeciesCandidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Result is the analysis outcome for one specimen image. Every field is
// populated on success; a failed item keeps zeroed scores, Unknown type and a
// non-empty Error so batch output stays rectangular.
type Result struct {
	SourcePath          string             `json:"source_path"`
	Classification      Type               `json:"classification"`
	GeologicalPeriod    string             `json:"geological_period"`
	AgeRange            AgeRange           `json:"age_range_million_years"`
	PreservationQuality float64            `json:"preservation_quality"`
	SpeciesCandidates   []SpeciesCandidate `json:"species_candidates"`
	Confidence          float64            `json:"confidence"`
	AnalyzedAt          time.Time          `json:"analyzed_at"`
	ImageWidth          int                `json:"image_width"`
	ImageHeight         int                `json:"image_height"`
	Error               string             `json:"error,omitempty"`
}

// Failed reports whether the result is an error marker rather than a
// successful classification.
func (r Result) Failed() bool {
	return r.Error != ""
}

// FailedResult builds the error marker entry recorded for a specimen that
// could not be loaded or classified.
func FailedResult(path string, err error) Result {
	return Result{
		SourcePath:        path,
		Classification:    Unknown,
		GeologicalPeriod:  "unknown",
		SpeciesCandidates: []SpeciesCandidate{},
		AnalyzedAt:        time.Now().UTC(),
		Error:             err.Error(),
	}
}
