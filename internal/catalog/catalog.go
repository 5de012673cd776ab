// Package catalog holds the static COR element reference data: 14 regulatory
// elements, each with a relative weight and a set of required-evidence rules.
// The catalog is embedded at build time and immutable at runtime.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

const (
	KindForm          = "form"
	KindDocument      = "document"
	KindCertification = "certification"
	KindInspection    = "inspection"
	KindTraining      = "training"
)

// Requirement is one required-evidence rule on an element. MinCount of zero
// marks an informational rule: always satisfied, full points, no gap.
type Requirement struct {
	ID            string   `yaml:"id"`
	ElementNumber int      `yaml:"-"`
	Category      string   `yaml:"category"`
	Description   string   `yaml:"description"`
	MinCount      int      `yaml:"min_count"`
	Frequency     string   `yaml:"frequency"`
	Mandatory     bool     `yaml:"mandatory"`
	Severity      Severity `yaml:"severity"`
}

type Element struct {
	Number       int           `yaml:"number"`
	Name         string        `yaml:"name"`
	Weight       float64       `yaml:"weight"`
	Requirements []Requirement `yaml:"requirements"`
}

type document struct {
	Elements []Element `yaml:"elements"`
}

//go:embed elements.yaml
var rawCatalog []byte

var (
	elements       []Element
	elementsByNum  map[int]Element
	requirementIdx map[string]Requirement
)

func init() {
	var doc document
	if err := yaml.Unmarshal(rawCatalog, &doc); err != nil {
		panic(fmt.Sprintf("catalog: parse embedded elements.yaml: %v", err))
	}
	if len(doc.Elements) == 0 {
		panic("catalog: embedded elements.yaml has no elements")
	}
	elementsByNum = make(map[int]Element, len(doc.Elements))
	requirementIdx = make(map[string]Requirement)
	for i := range doc.Elements {
		el := &doc.Elements[i]
		if el.Number < 1 {
			panic(fmt.Sprintf("catalog: element %q has invalid number %d", el.Name, el.Number))
		}
		if _, dup := elementsByNum[el.Number]; dup {
			panic(fmt.Sprintf("catalog: duplicate element number %d", el.Number))
		}
		if el.Weight == 0 {
			el.Weight = 1.0
		}
		for j := range el.Requirements {
			req := &el.Requirements[j]
			req.ElementNumber = el.Number
			if req.ID == "" {
				panic(fmt.Sprintf("catalog: element %d has a requirement without an id", el.Number))
			}
			if _, dup := requirementIdx[req.ID]; dup {
				panic(fmt.Sprintf("catalog: duplicate requirement id %q", req.ID))
			}
			requirementIdx[req.ID] = *req
		}
		elementsByNum[el.Number] = *el
	}
	elements = doc.Elements
	sort.Slice(elements, func(i, j int) bool { return elements[i].Number < elements[j].Number })
}

// Get returns the element with the given number.
func Get(number int) (Element, bool) {
	el, ok := elementsByNum[number]
	return el, ok
}

// All returns every element ordered by number. Callers get a copy; the
// catalog itself is never mutated.
func All() []Element {
	out := make([]Element, len(elements))
	copy(out, elements)
	return out
}

// RequirementByID resolves a requirement id back to its rule.
func RequirementByID(id string) (Requirement, bool) {
	req, ok := requirementIdx[id]
	return req, ok
}

// ValidElementNumber reports whether a number maps to a catalog element.
func ValidElementNumber(number int) bool {
	_, ok := elementsByNum[number]
	return ok
}
