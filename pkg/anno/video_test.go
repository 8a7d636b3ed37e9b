package anno

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/labelforge/labelforge/pkg/geom"
	"github.com/stretchr/testify/require"
)

func videoFrames(t *testing.T, resp any) *VideoResponse {
	t.Helper()
	out, ok := resp.(*VideoResponse)
	require.True(t, ok)
	return out
}

func frameAt(t *testing.T, resp *VideoResponse, frame int) FrameObject {
	t.Helper()
	fo, ok := resp.Get(strconv.Itoa(frame))
	require.True(t, ok, "missing frame %v", frame)
	return fo
}

func TestConvertVideoClassificationCoverage(t *testing.T) {
	annotations := []Annotation{{
		ID: "a1", Kind: KindVideoClassification, Job: "WEATHER",
		Frames: []FrameInterval{{Start: 0, End: 5}},
		KeyAnnotations: []KeyAnnotation{
			keyAtFrame(0, "SUNNY"),
			keyAtFrame(3, "RAINY"),
		},
	}}
	resp, err := Convert(InputTypeVideo, annotations, nil, nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	// Exactly the frames 0..5, in ascending order
	require.Equal(t, 6, out.Len())
	i := 0
	for pair := out.Oldest(); pair != nil; pair = pair.Next() {
		require.Equal(t, strconv.Itoa(i), pair.Key)
		i++
	}

	for f := 0; f <= 5; f++ {
		frag := frameAt(t, out, f)["WEATHER"].(VideoCategoriesFragment)
		want := "SUNNY"
		if f >= 3 {
			want = "RAINY"
		}
		require.Equal(t, want, frag.Categories[0].Name, "frame %v", f)
		require.Equal(t, f == 0 || f == 3, frag.IsKeyFrame, "frame %v", f)
	}
}

func TestConvertVideoFillsEmptyFrames(t *testing.T) {
	annotations := []Annotation{{
		ID: "a1", Kind: KindVideoClassification, Job: "WEATHER",
		Frames: []FrameInterval{{Start: 0, End: 1}, {Start: 4, End: 5}},
		KeyAnnotations: []KeyAnnotation{
			keyAtFrame(0, "SUNNY"),
			keyAtFrame(8, "RAINY"),
		},
	}}
	resp, err := Convert(InputTypeVideo, annotations, nil, nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	// Coverage runs to the maximum key annotation frame, even past the
	// last frame interval
	require.Equal(t, 9, out.Len())
	for _, f := range []int{2, 3, 6, 7, 8} {
		require.Empty(t, frameAt(t, out, f), "frame %v should be empty", f)
	}
	for _, f := range []int{0, 1, 4, 5} {
		require.Contains(t, frameAt(t, out, f), "WEATHER")
	}
}

func TestConvertVideoResponseMarshalsInFrameOrder(t *testing.T) {
	annotations := []Annotation{{
		ID: "a1", Kind: KindVideoClassification, Job: "WEATHER",
		Frames:         []FrameInterval{{Start: 0, End: 11}},
		KeyAnnotations: []KeyAnnotation{keyAtFrame(0, "SUNNY")},
	}}
	resp, err := Convert(InputTypeVideo, annotations, nil, nil)
	require.NoError(t, err)
	b, err := json.Marshal(videoFrames(t, resp))
	require.NoError(t, err)
	s := string(b)
	require.True(t, strings.HasPrefix(s, `{"0":`))
	require.Less(t, strings.Index(s, `"9":`), strings.Index(s, `"10":`))
}

func TestConvertVideoTranscription(t *testing.T) {
	annotations := []Annotation{{
		ID: "a1", Kind: KindVideoTranscription, Job: "SUBTITLE",
		Frames: []FrameInterval{{Start: 0, End: 3}},
		KeyAnnotations: []KeyAnnotation{
			{Frame: 0, Value: AnnotationValue{Text: "hello"}},
			{Frame: 2, Value: AnnotationValue{Text: "world"}},
		},
	}}
	resp, err := Convert(InputTypeVideo, annotations, nil, nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	require.Equal(t, VideoTextFragment{IsKeyFrame: true, Text: "hello"}, frameAt(t, out, 0)["SUBTITLE"])
	require.Equal(t, VideoTextFragment{IsKeyFrame: false, Text: "hello"}, frameAt(t, out, 1)["SUBTITLE"])
	require.Equal(t, VideoTextFragment{IsKeyFrame: true, Text: "world"}, frameAt(t, out, 2)["SUBTITLE"])
	require.Equal(t, VideoTextFragment{IsKeyFrame: false, Text: "world"}, frameAt(t, out, 3)["SUBTITLE"])
}

func rectVertices(ring []geom.Point) [][][]geom.Point {
	return [][][]geom.Point{{ring}}
}

func detectionInterface(job, tool string) *Interface {
	return &Interface{Jobs: map[string]JobInterface{job: {Tools: []string{tool}}}}
}

func TestConvertVideoObjectDetectionRectangle(t *testing.T) {
	prev := []geom.Point{
		{X: 0.40, Y: 0.35},
		{X: 0.40, Y: 0.65},
		{X: 0.60, Y: 0.65},
		{X: 0.60, Y: 0.35},
	}
	theta := float32(math32.Pi / 6)
	cx, cy := float32(0.5), float32(0.5)
	c, s := math32.Cos(theta), math32.Sin(theta)
	next := make([]geom.Point, 4)
	for i, p := range prev {
		dx, dy := p.X-cx, p.Y-cy
		next[i] = geom.Point{X: cx + dx*c - dy*s, Y: cy + dx*s + dy*c}
	}

	annotations := []Annotation{{
		ID: "a1", Kind: KindVideoObjectDetection, Job: "OBJECTS",
		Category: "CAR", MID: "mid-1",
		Frames: []FrameInterval{{Start: 0, End: 10}},
		KeyAnnotations: []KeyAnnotation{
			{Frame: 0, Value: AnnotationValue{Vertices: rectVertices(prev)}},
			{Frame: 10, Value: AnnotationValue{Vertices: rectVertices(next)}},
		},
	}}
	resp, err := Convert(InputTypeVideo, annotations, detectionInterface("OBJECTS", ToolRectangle), nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	entryAt := func(f int) ObjectEntry {
		frag := frameAt(t, out, f)["OBJECTS"].(*ObjectsFragment)
		require.Len(t, frag.Annotations, 1)
		return frag.Annotations[0]
	}

	// Key frames reproduce the raw vertices exactly
	first := entryAt(0)
	require.True(t, first.IsKeyFrame)
	require.Equal(t, "mid-1", first.MID)
	require.Equal(t, "rectangle", first.Type)
	require.Equal(t, []CategoryEntry{{Name: "CAR"}}, first.Categories)
	require.Equal(t, prev, first.BoundingPoly[0].NormalizedVertices)

	last := entryAt(10)
	require.True(t, last.IsKeyFrame)
	require.Equal(t, next, last.BoundingPoly[0].NormalizedVertices)

	// Frame 5 sits at the angular midpoint
	mid := entryAt(5)
	require.False(t, mid.IsKeyFrame)
	props, err := geom.RectangleProperties(mid.BoundingPoly[0].NormalizedVertices)
	require.NoError(t, err)
	require.InDelta(t, theta/2, props.Angle, 1e-5)
}

func TestConvertVideoObjectDetectionMarker(t *testing.T) {
	annotations := []Annotation{{
		ID: "a1", Kind: KindVideoObjectDetection, Job: "POINTS",
		Category: "BALL", MID: "mid-2",
		Frames: []FrameInterval{{Start: 0, End: 4}},
		KeyAnnotations: []KeyAnnotation{
			{Frame: 0, Value: AnnotationValue{Vertices: rectVertices([]geom.Point{{X: 0.2, Y: 0.2}})}},
			{Frame: 4, Value: AnnotationValue{Vertices: rectVertices([]geom.Point{{X: 0.6, Y: 0.4}})}},
		},
	}}
	resp, err := Convert(InputTypeVideo, annotations, detectionInterface("POINTS", ToolMarker), nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	mid := frameAt(t, out, 2)["POINTS"].(*ObjectsFragment).Annotations[0]
	require.NotNil(t, mid.Point)
	require.InDelta(t, 0.4, mid.Point.X, 1e-6)
	require.InDelta(t, 0.3, mid.Point.Y, 1e-6)
	require.Nil(t, mid.BoundingPoly)

	end := frameAt(t, out, 4)["POINTS"].(*ObjectsFragment).Annotations[0]
	require.True(t, end.IsKeyFrame)
	require.Equal(t, geom.Point{X: 0.6, Y: 0.4}, *end.Point)
}

func TestConvertVideoObjectDetectionPolygonHolds(t *testing.T) {
	ringA := []geom.Point{{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.1}, {X: 0.15, Y: 0.3}}
	ringB := []geom.Point{{X: 0.5, Y: 0.5}, {X: 0.6, Y: 0.5}, {X: 0.55, Y: 0.7}}
	annotations := []Annotation{{
		ID: "a1", Kind: KindVideoObjectDetection, Job: "SHAPES",
		Category: "ZONE", MID: "mid-3",
		Frames: []FrameInterval{{Start: 0, End: 6}},
		KeyAnnotations: []KeyAnnotation{
			{Frame: 0, Value: AnnotationValue{Vertices: [][][]geom.Point{{ringA}}}},
			{Frame: 6, Value: AnnotationValue{Vertices: [][][]geom.Point{{ringB}}}},
		},
	}}
	resp, err := Convert(InputTypeVideo, annotations, detectionInterface("SHAPES", ToolPolygon), nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	// No interpolation for polygons: the initial shape holds until frame 6
	for f := 0; f < 6; f++ {
		entry := frameAt(t, out, f)["SHAPES"].(*ObjectsFragment).Annotations[0]
		require.Equal(t, ringA, entry.BoundingPoly[0].NormalizedVertices, "frame %v", f)
	}
	entry := frameAt(t, out, 6)["SHAPES"].(*ObjectsFragment).Annotations[0]
	require.Equal(t, ringB, entry.BoundingPoly[0].NormalizedVertices)
}

func TestConvertVideoObjectDetectionMultipleObjects(t *testing.T) {
	ann := func(id, mid string, x float32) Annotation {
		return Annotation{
			ID: id, Kind: KindVideoObjectDetection, Job: "POINTS",
			Category: "BALL", MID: mid,
			Frames: []FrameInterval{{Start: 0, End: 1}},
			KeyAnnotations: []KeyAnnotation{
				{Frame: 0, Value: AnnotationValue{Vertices: rectVertices([]geom.Point{{X: x, Y: 0.5}})}},
			},
		}
	}
	annotations := []Annotation{ann("a1", "mid-a", 0.1), ann("a2", "mid-b", 0.9)}
	resp, err := Convert(InputTypeVideo, annotations, detectionInterface("POINTS", ToolMarker), nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	frag := frameAt(t, out, 0)["POINTS"].(*ObjectsFragment)
	require.Len(t, frag.Annotations, 2)
	require.Equal(t, "mid-a", frag.Annotations[0].MID)
	require.Equal(t, "mid-b", frag.Annotations[1].MID)
}

func TestConvertVideoObjectDetectionChildren(t *testing.T) {
	annotations := []Annotation{
		{
			ID: "a1", Kind: KindVideoObjectDetection, Job: "POINTS",
			Category: "BALL", MID: "mid-1",
			Frames: []FrameInterval{{Start: 0, End: 1}},
			KeyAnnotations: []KeyAnnotation{
				{Frame: 0, Value: AnnotationValue{Vertices: rectVertices([]geom.Point{{X: 0.5, Y: 0.5}})}},
			},
		},
		{
			ID: "c1", Kind: KindTranscription, Job: "NOTE", Text: "blurred",
			Path: []PathElement{{AnnotationID: "a1", Category: "BALL"}},
		},
	}
	resp, err := Convert(InputTypeVideo, annotations, detectionInterface("POINTS", ToolMarker), nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	for f := 0; f <= 1; f++ {
		entry := frameAt(t, out, f)["POINTS"].(*ObjectsFragment).Annotations[0]
		require.Equal(t, TextFragment{Text: "blurred"}, entry.Children["NOTE"], "frame %v", f)
	}
}

func TestConvertVideoClassificationChildren(t *testing.T) {
	annotations := []Annotation{
		{
			ID: "a1", Kind: KindVideoClassification, Job: "WEATHER",
			Frames:         []FrameInterval{{Start: 0, End: 1}},
			KeyAnnotations: []KeyAnnotation{keyAtFrame(0, "SUNNY", "WINDY")},
		},
		{
			ID: "c1", Kind: KindTranscription, Job: "NOTE", Text: "gusty",
			Path: []PathElement{{AnnotationID: "a1", Category: "WINDY"}},
		},
	}
	resp, err := Convert(InputTypeVideo, annotations, nil, nil)
	require.NoError(t, err)
	out := videoFrames(t, resp)

	frag := frameAt(t, out, 0)["WEATHER"].(VideoCategoriesFragment)
	require.Nil(t, frag.Categories[0].Children)
	require.Equal(t, TextFragment{Text: "gusty"}, frag.Categories[1].Children["NOTE"])
}

func TestConvertVideoRejectsClassicKinds(t *testing.T) {
	annotations := []Annotation{{ID: "a1", Kind: KindRanking, Job: "RANK"}}
	_, err := Convert(InputTypeVideo, annotations, nil, nil)
	require.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestConvertVideoObjectDetectionNeedsTool(t *testing.T) {
	annotations := []Annotation{{
		ID: "a1", Kind: KindVideoObjectDetection, Job: "POINTS",
		Frames:         []FrameInterval{{Start: 0, End: 1}},
		KeyAnnotations: []KeyAnnotation{{Frame: 0}},
	}}
	_, err := Convert(InputTypeVideo, annotations, nil, nil)
	require.Error(t, err)
}

func TestKindJSONRoundTrip(t *testing.T) {
	for kind, name := range kindNames {
		b, err := json.Marshal(kind)
		require.NoError(t, err)
		require.Equal(t, `"`+name+`"`, string(b))
		var back Kind
		require.NoError(t, json.Unmarshal(b, &back))
		require.Equal(t, kind, back)
	}
	var k Kind
	require.ErrorIs(t, json.Unmarshal([]byte(`"MysteryAnnotation"`), &k), ErrUnsupportedKind)
}
