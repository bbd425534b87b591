package iiif

import (
	"bytes"
	"encoding/json"
)

// PresentationContext is the IIIF Presentation 3 JSON-LD context. Every
// served manifest carries it; additional contexts from an asset source are
// propagated alongside it.
const PresentationContext = "http://iiif.io/api/presentation/3/context.json"

const (
	TypeManifest       = "Manifest"
	TypeCanvas         = "Canvas"
	TypeAnnotationPage = "AnnotationPage"
	TypeAnnotation     = "Annotation"
	MotivationPainting = "painting"
)

// LanguageMap is a IIIF label: language code to list of values.
type LanguageMap map[string][]string

// Lang builds a single-language LanguageMap.
func Lang(language string, values ...string) LanguageMap {
	return LanguageMap{language: values}
}

// Equal reports whether two language maps carry the same values.
func (lm LanguageMap) Equal(other LanguageMap) bool {
	if len(lm) != len(other) {
		return false
	}
	for lang, values := range lm {
		theirs, ok := other[lang]
		if !ok || len(theirs) != len(values) {
			return false
		}
		for i, v := range values {
			if theirs[i] != v {
				return false
			}
		}
	}
	return true
}

// Contexts is the @context entry: a bare string in JSON when there is a
// single context, an array otherwise.
type Contexts []string

func (c Contexts) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

func (c *Contexts) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var single string
		if err := json.Unmarshal(b, &single); err != nil {
			return err
		}
		*c = Contexts{single}
		return nil
	}
	var many []json.RawMessage
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	out := make(Contexts, 0, len(many))
	for _, entry := range many {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			out = append(out, s)
			continue
		}
		// Object-valued context entries are kept verbatim.
		out = append(out, string(entry))
	}
	*c = out
	return nil
}

// Contains reports whether the context list already carries the given entry.
func (c Contexts) Contains(entry string) bool {
	for _, e := range c {
		if e == entry {
			return true
		}
	}
	return false
}

// Manifest is the subset of a IIIF Presentation 3 manifest this service
// reads and writes. Unrelated top-level fields live in the stored document
// and are not round-tripped through this model.
type Manifest struct {
	Context   Contexts          `json:"@context,omitempty"`
	ID        string            `json:"id,omitempty"`
	Type      string            `json:"type,omitempty"`
	Label     LanguageMap       `json:"label,omitempty"`
	Thumbnail []ContentResource `json:"thumbnail,omitempty"`
	Items     []*Canvas         `json:"items,omitempty"`
}

// Canvas is one surface with zero or more painted resources.
type Canvas struct {
	ID        string            `json:"id,omitempty"`
	Type      string            `json:"type,omitempty"`
	Label     LanguageMap       `json:"label,omitempty"`
	Width     *int              `json:"width,omitempty"`
	Height    *int              `json:"height,omitempty"`
	Duration  *float64          `json:"duration,omitempty"`
	Thumbnail []ContentResource `json:"thumbnail,omitempty"`
	Behavior  []string          `json:"behavior,omitempty"`
	Rendering []ContentResource `json:"rendering,omitempty"`
	Items     []*AnnotationPage `json:"items,omitempty"`
}

// FirstPaintingAnnotation returns the first painting annotation on the
// canvas, or nil when it has none.
func (c *Canvas) FirstPaintingAnnotation() *PaintingAnnotation {
	for _, page := range c.Items {
		for _, anno := range page.Items {
			if anno.Motivation == "" || anno.Motivation == MotivationPainting {
				return anno
			}
		}
	}
	return nil
}

// AnnotationPage groups painting annotations on a canvas.
type AnnotationPage struct {
	ID    string                `json:"id,omitempty"`
	Type  string                `json:"type,omitempty"`
	Items []*PaintingAnnotation `json:"items,omitempty"`
}

// PaintingAnnotation associates a body with a region of a canvas.
type PaintingAnnotation struct {
	ID         string        `json:"id,omitempty"`
	Type       string        `json:"type,omitempty"`
	Motivation string        `json:"motivation,omitempty"`
	Label      LanguageMap   `json:"label,omitempty"`
	Body       *PaintingBody `json:"body,omitempty"`
	Target     *Target       `json:"target,omitempty"`
}

// Target is a painting annotation target: a bare identifier string, or a
// structured specific-resource object carrying a selector.
type Target struct {
	ID  string
	Raw json.RawMessage
}

// NewTarget builds an identifier target.
func NewTarget(id string) *Target {
	return &Target{ID: id}
}

func (t Target) MarshalJSON() ([]byte, error) {
	if t.ID != "" {
		return json.Marshal(t.ID)
	}
	if len(t.Raw) > 0 {
		return t.Raw, nil
	}
	return []byte("null"), nil
}

func (t *Target) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &t.ID)
	}
	t.Raw = append(t.Raw[:0], b...)
	return nil
}

// Serialize flattens the target to the string form stored on a canvas
// painting record: the identifier itself, or the compact JSON of the
// structured target.
func (t *Target) Serialize() string {
	if t == nil {
		return ""
	}
	if t.ID != "" {
		return t.ID
	}
	if len(t.Raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, t.Raw); err != nil {
		return string(t.Raw)
	}
	return buf.String()
}
