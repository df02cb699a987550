package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	ResourceTypeValueSet = "ValueSet"
	ResourceTypeBundle   = "Bundle"

	defaultValueSetStatus = "draft"
)

var (
	ErrNotValueSet     = errors.New("document is not a FHIR ValueSet")
	ErrMissingResource = errors.New("FHIR resource has no id")
)

type FHIRMeta struct {
	LastUpdated string `json:"lastUpdated,omitempty"`
}

type FHIRConcept struct {
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

type FHIRInclude struct {
	System  string        `json:"system,omitempty"`
	Version string        `json:"version,omitempty"`
	Concept []FHIRConcept `json:"concept,omitempty"`
}

type FHIRCompose struct {
	Include []FHIRInclude `json:"include"`
}

// FHIRValueSet is the JSON representation of a ValueSet resource
type FHIRValueSet struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id"`
	Meta         *FHIRMeta    `json:"meta,omitempty"`
	URL          string       `json:"url,omitempty"`
	Version      string       `json:"version,omitempty"`
	Name         string       `json:"name,omitempty"`
	Title        string       `json:"title,omitempty"`
	Status       string       `json:"status"`
	Experimental *bool        `json:"experimental,omitempty"`
	Date         string       `json:"date,omitempty"`
	Publisher    string       `json:"publisher,omitempty"`
	Description  string       `json:"description,omitempty"`
	Compose      *FHIRCompose `json:"compose,omitempty"`
}

type FHIRBundleLink struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

type FHIRBundleEntry struct {
	FullURL  string      `json:"fullUrl"`
	Resource interface{} `json:"resource"`
}

// FHIRBundle is a searchset Bundle
type FHIRBundle struct {
	ResourceType string            `json:"resourceType"`
	Type         string            `json:"type"`
	Total        int64             `json:"total"`
	Link         []FHIRBundleLink  `json:"link,omitempty"`
	Entry        []FHIRBundleEntry `json:"entry"`
}

// NewSearchBundle creates an empty searchset Bundle
func NewSearchBundle(selfURL string, total int64) *FHIRBundle {
	b := &FHIRBundle{
		ResourceType: ResourceTypeBundle,
		Type:         "searchset",
		Total:        total,
		Entry:        []FHIRBundleEntry{},
	}
	if selfURL != "" {
		b.Link = []FHIRBundleLink{{Relation: "self", URL: selfURL}}
	}
	return b
}

// FHIR renders the value set as a FHIR ValueSet resource.
// Concepts are grouped into compose.include entries by system and version,
// keeping position order within and across groups.
func (vs *ValueSet) FHIR() *FHIRValueSet {
	out := &FHIRValueSet{
		ResourceType: ResourceTypeValueSet,
		ID:           vs.ResourceID,
		URL:          vs.URL,
		Version:      vs.Version,
		Name:         vs.Name,
		Title:        vs.Title,
		Status:       vs.Status,
		Experimental: vs.Experimental,
		Date:         vs.Date,
		Publisher:    vs.Publisher,
		Description:  vs.Description,
	}
	if out.Status == "" {
		out.Status = defaultValueSetStatus
	}
	if !vs.UpdatedAt.IsZero() {
		out.Meta = &FHIRMeta{LastUpdated: vs.UpdatedAt.UTC().Format(time.RFC3339)}
	}

	if len(vs.Concepts) == 0 {
		return out
	}

	concepts := make([]ValueSetConcept, len(vs.Concepts))
	copy(concepts, vs.Concepts)
	sort.SliceStable(concepts, func(i, j int) bool {
		return concepts[i].Position < concepts[j].Position
	})

	compose := &FHIRCompose{}
	index := map[string]int{}
	for _, c := range concepts {
		key := c.System + "|" + c.Version
		i, ok := index[key]
		if !ok {
			i = len(compose.Include)
			index[key] = i
			compose.Include = append(compose.Include, FHIRInclude{System: c.System, Version: c.Version})
		}
		compose.Include[i].Concept = append(compose.Include[i].Concept, FHIRConcept{Code: c.Code, Display: c.Display})
	}
	out.Compose = compose
	return out
}

// Summary renders the value set without its concepts
func (vs *ValueSet) Summary() *FHIRValueSet {
	s := *vs
	s.Concepts = nil
	return s.FHIR()
}

// ParseFHIRValueSet converts a FHIR ValueSet JSON document into a ValueSet
func ParseFHIRValueSet(data []byte) (*ValueSet, error) {
	var doc FHIRValueSet
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding ValueSet: %w", err)
	}
	if doc.ResourceType != ResourceTypeValueSet {
		return nil, fmt.Errorf("%w: resourceType is %q", ErrNotValueSet, doc.ResourceType)
	}
	doc.ID = strings.TrimSpace(doc.ID)
	if doc.ID == "" {
		return nil, ErrMissingResource
	}

	vs := &ValueSet{
		ResourceID:   doc.ID,
		URL:          doc.URL,
		Version:      doc.Version,
		Name:         doc.Name,
		Title:        doc.Title,
		Status:       doc.Status,
		Experimental: doc.Experimental,
		Publisher:    doc.Publisher,
		Description:  doc.Description,
		Date:         doc.Date,
	}
	if vs.Status == "" {
		vs.Status = defaultValueSetStatus
	}

	if doc.Compose != nil {
		position := 0
		for _, inc := range doc.Compose.Include {
			for _, c := range inc.Concept {
				vs.Concepts = append(vs.Concepts, ValueSetConcept{
					System:   inc.System,
					Version:  inc.Version,
					Code:     c.Code,
					Display:  c.Display,
					Position: position,
				})
				position++
			}
		}
	}
	return vs, nil
}
