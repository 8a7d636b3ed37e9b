package anno

import (
	"github.com/labelforge/labelforge/pkg/geom"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Output structures. These marshal to the external json response format:
// classic projects produce {jobName: fragment}, video projects produce
// {"<frameIndex>": {jobName: fragment}} with a decimal-string key for every
// frame from 0 to the maximum key-annotation frame.

// jobMap maps a job name to its response fragment.
type jobMap = map[string]any

// FrameObject is one frame's response: job name -> fragment. An empty
// FrameObject marshals as {}.
type FrameObject map[string]any

// VideoResponse preserves ascending integer frame order when marshaling.
// A plain map would marshal "10" before "2".
type VideoResponse = orderedmap.OrderedMap[string, FrameObject]

// CategoryEntry is one chosen category. Children is attached only when at
// least one child annotation is scoped under this category.
type CategoryEntry struct {
	Name     string         `json:"name"`
	Children map[string]any `json:"children,omitempty"`
}

// Classic fragments (one per job kind)

type CategoriesFragment struct {
	Categories []CategoryEntry `json:"categories"`
}

type TextFragment struct {
	Text string `json:"text"`
}

type OrdersFragment struct {
	Orders []RankingOrder `json:"orders"`
}

// Video fragments carry an isKeyFrame flag on every frame entry.

type VideoCategoriesFragment struct {
	Categories []CategoryEntry `json:"categories"`
	IsKeyFrame bool            `json:"isKeyFrame"`
}

type VideoTextFragment struct {
	IsKeyFrame bool   `json:"isKeyFrame"`
	Text       string `json:"text"`
}

// ObjectEntry is one rendered object on one frame of an object detection job.
// Exactly one of Point or BoundingPoly is set, selected by the job's tool.
type ObjectEntry struct {
	MID          string          `json:"mid"`
	Type         string          `json:"type"`
	Categories   []CategoryEntry `json:"categories"`
	IsKeyFrame   bool            `json:"isKeyFrame"`
	Children     map[string]any  `json:"children"`
	Point        *geom.Point     `json:"point,omitempty"`
	BoundingPoly []BoundingPoly  `json:"boundingPoly,omitempty"`
}

type BoundingPoly struct {
	NormalizedVertices []geom.Point `json:"normalizedVertices"`
}

// ObjectsFragment collects all objects of one detection job on one frame.
type ObjectsFragment struct {
	Annotations []ObjectEntry `json:"annotations"`
}
