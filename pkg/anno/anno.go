// Package anno converts flat annotation records, as stored by a labeling
// backend, into the nested per-frame, per-job json response structure that
// labeling clients and exporters consume. The conversion is a pure function
// of the annotation set (plus the project interface for video projects):
// no state is held across calls, and inputs are never mutated.
package anno

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/labelforge/labelforge/pkg/geom"
)

var (
	// ErrUnsupportedKind means an annotation's kind does not belong to the
	// current conversion mode (classic vs video). This indicates a schema
	// or version mismatch upstream and is never retried.
	ErrUnsupportedKind = errors.New("unsupported annotation kind")

	// ErrNoKeyAnnotations means a video annotation carries no key annotations,
	// so there is no value to hold or interpolate from.
	ErrNoKeyAnnotations = errors.New("video annotation has no key annotations")
)

// Kind is the closed set of annotation kinds.
// Every switch over Kind lists all six values; anything else is routed to
// ErrUnsupportedKind, so a new kind fails loudly until handled everywhere.
type Kind int

const (
	KindClassification Kind = iota
	KindTranscription
	KindRanking
	KindVideoClassification
	KindVideoTranscription
	KindVideoObjectDetection
)

var kindNames = map[Kind]string{
	KindClassification:       "ClassificationAnnotation",
	KindTranscription:        "TranscriptionAnnotation",
	KindRanking:              "RankingAnnotation",
	KindVideoClassification:  "VideoClassificationAnnotation",
	KindVideoTranscription:   "VideoTranscriptionAnnotation",
	KindVideoObjectDetection: "VideoObjectDetectionAnnotation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%v)", int(k))
}

func (k Kind) MarshalJSON() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, int(k))
	}
	return json.Marshal(name)
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for kind, kn := range kindNames {
		if kn == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
}

// PathElement is one step of a child annotation's back-reference: the
// ancestor annotation it is scoped under, and the category within that
// ancestor's job.
type PathElement struct {
	AnnotationID string `json:"annotationId"`
	Category     string `json:"category"`
}

// FrameInterval is a closed range of frame indices during which a video
// annotation is present. Within one annotation, intervals are disjoint and
// sorted ascending.
type FrameInterval struct {
	Start int `json:"start"`
	End   int `json:"end"` // inclusive
}

// AnnotationValue is the kind-specific payload of a key annotation.
type AnnotationValue struct {
	Categories []string         `json:"categories,omitempty"` // classification
	Text       string           `json:"text,omitempty"`       // transcription
	Vertices   [][][]geom.Point `json:"vertices,omitempty"`   // object detection: [polygon-group][ring][point]
}

// KeyAnnotation is an explicit value snapshot at one frame. Values between
// key annotations are reconstructed by interpolation or holdover.
type KeyAnnotation struct {
	Frame int             `json:"frame"`
	Value AnnotationValue `json:"annotationValue"`
}

// RankingOrder is one entry of a ranking annotation's value.
type RankingOrder struct {
	Rank     int      `json:"rank"`
	Elements []string `json:"elements"`
}

// Annotation is one flat record from the labeling backend. Which fields are
// populated depends on Kind. Path is empty for a top-level (parent)
// annotation, and for a child annotation its last element names the direct
// parent's ID and the category the child is scoped under.
type Annotation struct {
	ID   string        `json:"id"`
	Kind Kind          `json:"kind"`
	Job  string        `json:"job"`
	Path []PathElement `json:"path,omitempty"`

	// Classic payloads
	Categories []string       `json:"categories,omitempty"`
	Text       string         `json:"text,omitempty"`
	Orders     []RankingOrder `json:"orders,omitempty"`

	// Video payloads
	Frames         []FrameInterval `json:"frames,omitempty"`
	KeyAnnotations []KeyAnnotation `json:"keyAnnotations,omitempty"`
	Category       string          `json:"category,omitempty"` // object detection only
	MID            string          `json:"mid,omitempty"`      // stable rendering identifier
}

// IsChild reports whether the annotation is scoped under a parent.
func (a *Annotation) IsChild() bool {
	return len(a.Path) > 0
}

// ParentID returns the direct parent's annotation ID, or "" for a parent.
func (a *Annotation) ParentID() string {
	if len(a.Path) == 0 {
		return ""
	}
	return a.Path[len(a.Path)-1].AnnotationID
}

// ParentCategory returns the parent category the annotation is scoped under.
func (a *Annotation) ParentCategory() string {
	if len(a.Path) == 0 {
		return ""
	}
	return a.Path[len(a.Path)-1].Category
}

// Tool names, as declared in a job's interface. The first tool of a job
// determines the rendered annotation type.
const (
	ToolMarker    = "marker"
	ToolRectangle = "rectangle"
	ToolPolygon   = "polygon"
	ToolSemantic  = "semantic"
)

// Interface is the project's json interface: the set of declared jobs.
type Interface struct {
	Jobs map[string]JobInterface `json:"jobs"`
}

// JobInterface describes one declared job.
type JobInterface struct {
	Tools   []string   `json:"tools,omitempty"`
	Content JobContent `json:"content"`
}

type JobContent struct {
	Categories map[string]CategoryDef `json:"categories,omitempty"`
}

type CategoryDef struct {
	Name     string   `json:"name,omitempty"`
	Children []string `json:"children,omitempty"`
}

// FirstTool returns the job's first declared tool, or "".
func (i *Interface) FirstTool(job string) string {
	if i == nil {
		return ""
	}
	j, ok := i.Jobs[job]
	if !ok || len(j.Tools) == 0 {
		return ""
	}
	return j.Tools[0]
}
