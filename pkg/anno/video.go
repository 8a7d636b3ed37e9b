package anno

import (
	"fmt"
	"strconv"

	"github.com/labelforge/labelforge/pkg/gen"
	"github.com/labelforge/labelforge/pkg/geom"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// convertVideo builds the per-frame response of a video label. Every parent
// annotation contributes to the frames its windows cover; afterwards every
// frame index from 0 to the maximum key-annotation frame gets an entry, {}
// if nothing touched it, and the map is emitted in ascending frame order.
func convertVideo(parents []*Annotation, children childIndex, iface *Interface) (*VideoResponse, error) {
	frames := map[int]FrameObject{}
	maxFrame := 0
	for _, parent := range parents {
		var err error
		switch parent.Kind {
		case KindVideoClassification:
			err = addVideoClassification(frames, parent, children)
		case KindVideoTranscription:
			err = addVideoTranscription(frames, parent)
		case KindVideoObjectDetection:
			err = addVideoObjectDetection(frames, parent, children, iface)
		case KindClassification, KindTranscription, KindRanking:
			err = fmt.Errorf("%w: %v in video conversion", ErrUnsupportedKind, parent.Kind)
		default:
			err = fmt.Errorf("%w: %v", ErrUnsupportedKind, parent.Kind)
		}
		if err != nil {
			return nil, err
		}
		maxFrame = gen.Max(maxFrame, maxKeyFrame(parent.KeyAnnotations))
	}
	for f := range frames {
		maxFrame = gen.Max(maxFrame, f)
	}

	out := orderedmap.New[string, FrameObject]()
	if len(parents) == 0 {
		return out, nil
	}
	for f := 0; f <= maxFrame; f++ {
		fo := frames[f]
		if fo == nil {
			fo = FrameObject{}
		}
		out.Set(strconv.Itoa(f), fo)
	}
	return out, nil
}

func frameObject(frames map[int]FrameObject, f int) FrameObject {
	fo := frames[f]
	if fo == nil {
		fo = FrameObject{}
		frames[f] = fo
	}
	return fo
}

func addVideoClassification(frames map[int]FrameObject, parent *Annotation, children childIndex) error {
	childJobs, err := children.resolveByCategory(parent)
	if err != nil {
		return err
	}
	windows, err := frameWindows(parent.Frames, parent.KeyAnnotations)
	if err != nil {
		return err
	}
	for w := range windows {
		entries := categoryEntries(w.key.Value.Categories, childJobs)
		for f := w.start; f < w.end; f++ {
			frameObject(frames, f)[parent.Job] = VideoCategoriesFragment{
				Categories: entries,
				IsKeyFrame: f == w.key.Frame,
			}
		}
	}
	return nil
}

func addVideoTranscription(frames map[int]FrameObject, parent *Annotation) error {
	windows, err := frameWindows(parent.Frames, parent.KeyAnnotations)
	if err != nil {
		return err
	}
	for w := range windows {
		for f := w.start; f < w.end; f++ {
			frameObject(frames, f)[parent.Job] = VideoTextFragment{
				IsKeyFrame: f == w.key.Frame,
				Text:       w.key.Value.Text,
			}
		}
	}
	return nil
}

func addVideoObjectDetection(frames map[int]FrameObject, parent *Annotation, children childIndex, iface *Interface) error {
	tool := iface.FirstTool(parent.Job)
	if tool == "" {
		return fmt.Errorf("object detection job %q declares no tool", parent.Job)
	}
	childJobs, err := children.resolveMerged(parent)
	if err != nil {
		return err
	}
	windows, err := frameWindows(parent.Frames, parent.KeyAnnotations)
	if err != nil {
		return err
	}
	for w := range windows {
		for f := w.start; f < w.end; f++ {
			entry := ObjectEntry{
				MID:        parent.MID,
				Type:       tool,
				Categories: []CategoryEntry{{Name: parent.Category}},
				IsKeyFrame: f == w.key.Frame,
				Children:   childJobs,
			}
			if err := setShape(&entry, tool, w, f); err != nil {
				return err
			}
			fo := frameObject(frames, f)
			objects, ok := fo[parent.Job].(*ObjectsFragment)
			if !ok {
				objects = &ObjectsFragment{}
				fo[parent.Job] = objects
			}
			objects.Annotations = append(objects.Annotations, entry)
		}
	}
	return nil
}

// setShape fills the entry's point or boundingPoly for one frame. The raw
// key-annotation shape is used at the key frame itself and whenever there is
// no following key annotation; otherwise marker and rectangle tools
// interpolate toward the next key annotation's shape. Polygon and semantic
// shapes are never interpolated: the governing shape holds until the next
// key frame.
func setShape(entry *ObjectEntry, tool string, w frameWindow, f int) error {
	cur := w.key.Value.Vertices
	blend := f != w.key.Frame && w.next != nil
	var weight float32
	if blend {
		weight = float32(f-w.key.Frame) / float32(w.next.Frame-w.key.Frame)
	}

	switch tool {
	case ToolMarker:
		p, ok := firstVertex(cur)
		if !ok {
			return nil
		}
		if blend {
			if np, ok := firstVertex(w.next.Value.Vertices); ok {
				p = geom.InterpolatePoint(p, np, weight)
			}
		}
		entry.Point = &p
	case ToolRectangle:
		ring := firstRing(cur)
		if blend {
			out, err := geom.InterpolateRectangle(ring, firstRing(w.next.Value.Vertices), weight)
			if err != nil {
				return err
			}
			ring = out
		} else if len(ring) != 4 {
			return fmt.Errorf("%w (got %v)", geom.ErrMalformedRectangle, len(ring))
		}
		entry.BoundingPoly = []BoundingPoly{{NormalizedVertices: ring}}
	default:
		// polygon, semantic: hold every ring of the governing shape
		for _, group := range cur {
			for _, ring := range group {
				entry.BoundingPoly = append(entry.BoundingPoly, BoundingPoly{NormalizedVertices: ring})
			}
		}
	}
	return nil
}

func firstRing(vertices [][][]geom.Point) []geom.Point {
	if len(vertices) == 0 || len(vertices[0]) == 0 {
		return nil
	}
	return vertices[0][0]
}

func firstVertex(vertices [][][]geom.Point) (geom.Point, bool) {
	ring := firstRing(vertices)
	if len(ring) == 0 {
		return geom.Point{}, false
	}
	return ring[0], true
}
