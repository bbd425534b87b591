package iiif

import "encoding/json"

// BodyType tags the closed set of painting body variants.
type BodyType string

const (
	BodyImage  BodyType = "Image"
	BodyVideo  BodyType = "Video"
	BodySound  BodyType = "Sound"
	BodyChoice BodyType = "Choice"
)

// IsContentType reports whether the type is a directly paintable resource.
func (bt BodyType) IsContentType() bool {
	return bt == BodyImage || bt == BodyVideo || bt == BodySound
}

// ContentResource is a single paintable resource: an image, video or sound.
type ContentResource struct {
	ID       string            `json:"id,omitempty"`
	Type     BodyType          `json:"type,omitempty"`
	Format   string            `json:"format,omitempty"`
	Label    LanguageMap       `json:"label,omitempty"`
	Width    *int              `json:"width,omitempty"`
	Height   *int              `json:"height,omitempty"`
	Duration *float64          `json:"duration,omitempty"`
	Service  []json.RawMessage `json:"service,omitempty"`
}

// ServiceSize reports spatial dimensions declared by the resource's service
// descriptors, used as a fallback when the resource itself carries none.
func (r *ContentResource) ServiceSize() (width, height int, ok bool) {
	for _, svc := range r.Service {
		var desc struct {
			Width  *int `json:"width"`
			Height *int `json:"height"`
		}
		if err := json.Unmarshal(svc, &desc); err != nil {
			continue
		}
		if desc.Width != nil && desc.Height != nil {
			return *desc.Width, *desc.Height, true
		}
	}
	return 0, 0, false
}

// PaintingBody is the body of a painting annotation: one of the content
// resource variants, or a Choice of them. Any other type parses but is
// rejected wherever a body is consumed.
type PaintingBody struct {
	Type     BodyType
	Resource *ContentResource // set when Type is Image/Video/Sound
	Items    []ContentResource
}

// NewBody wraps a single content resource.
func NewBody(r ContentResource) *PaintingBody {
	return &PaintingBody{Type: r.Type, Resource: &r}
}

// NewChoice wraps choice members in source order.
func NewChoice(members []ContentResource) *PaintingBody {
	return &PaintingBody{Type: BodyChoice, Items: members}
}

func (b PaintingBody) MarshalJSON() ([]byte, error) {
	if b.Type == BodyChoice {
		return json.Marshal(struct {
			Type  BodyType          `json:"type"`
			Items []ContentResource `json:"items"`
		}{BodyChoice, b.Items})
	}
	if b.Resource != nil {
		r := *b.Resource
		if r.Type == "" {
			r.Type = b.Type
		}
		return json.Marshal(r)
	}
	return json.Marshal(struct {
		Type BodyType `json:"type,omitempty"`
	}{b.Type})
}

func (b *PaintingBody) UnmarshalJSON(data []byte) error {
	var head struct {
		Type BodyType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	b.Type = head.Type
	b.Resource = nil
	b.Items = nil

	switch {
	case head.Type == BodyChoice:
		var choice struct {
			Items []ContentResource `json:"items"`
		}
		if err := json.Unmarshal(data, &choice); err != nil {
			return err
		}
		b.Items = choice.Items
	case head.Type.IsContentType():
		var r ContentResource
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		b.Resource = &r
	}
	// Unknown types keep the tag only; the consumer decides whether that is
	// fatal.
	return nil
}
