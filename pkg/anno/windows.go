package anno

import (
	"iter"
	"slices"

	"github.com/labelforge/labelforge/pkg/gen"
)

// frameWindow is a contiguous run of frames governed by one key annotation.
// start is inclusive, end exclusive. next is the following key annotation
// (used for shape interpolation), or nil if the governing key annotation is
// the last one, in which case its value is held unchanged.
type frameWindow struct {
	key   *KeyAnnotation
	start int
	end   int
	next  *KeyAnnotation
}

// frameWindows produces the ordered, lazy sequence of frame windows for one
// video annotation. It is the single routine shared by all three video
// converters.
//
// Key annotations are sorted by frame (input order is not guaranteed), then
// each frame interval is walked in order:
//   - frames before the first key annotation inside the interval are governed
//     by the nearest strictly-earlier key annotation (holdover), never a later
//     one. The exception is the very start of the annotation, where no earlier
//     key annotation exists and the first one governs (values held backward in
//     time, with no interpolation);
//   - each key annotation inside the interval governs from its own frame to
//     the next key annotation's frame or the end of the interval;
//   - an interval with no key annotation at all is one holdover window.
func frameWindows(frames []FrameInterval, keys []KeyAnnotation) (iter.Seq[frameWindow], error) {
	if len(keys) == 0 {
		return nil, ErrNoKeyAnnotations
	}
	sorted := slices.Clone(keys)
	slices.SortStableFunc(sorted, func(a, b KeyAnnotation) int { return a.Frame - b.Frame })

	keyAt := func(i int) *KeyAnnotation {
		if i < 0 || i >= len(sorted) {
			return nil
		}
		return &sorted[i]
	}

	return func(yield func(frameWindow) bool) {
		ki := 0
		prev := -1 // index of the last key annotation at or before the emit position
		for _, iv := range frames {
			// Keys strictly before this interval become the holdover source
			for ki < len(sorted) && sorted[ki].Frame < iv.Start {
				prev = ki
				ki++
			}
			cur := iv.Start
			for ki < len(sorted) && sorted[ki].Frame <= iv.End {
				if cur < sorted[ki].Frame {
					// Holdover run before the first visible key frame
					w := frameWindow{start: cur, end: sorted[ki].Frame}
					if prev >= 0 {
						w.key = keyAt(prev)
						w.next = keyAt(prev + 1)
					} else {
						// Frame range precedes the whole annotation's first
						// key annotation: hold the first value, no blending
						w.key = keyAt(ki)
					}
					if !yield(w) {
						return
					}
				}
				end := iv.End + 1
				if n := keyAt(ki + 1); n != nil && n.Frame <= iv.End {
					end = n.Frame
				}
				if !yield(frameWindow{key: keyAt(ki), start: sorted[ki].Frame, end: end, next: keyAt(ki + 1)}) {
					return
				}
				prev = ki
				cur = end
				ki++
			}
			if cur <= iv.End {
				// No key annotation in the remainder of this interval
				w := frameWindow{start: cur, end: iv.End + 1}
				if prev >= 0 {
					w.key = keyAt(prev)
					w.next = keyAt(prev + 1)
				} else {
					w.key = keyAt(0)
				}
				if !yield(w) {
					return
				}
			}
		}
	}, nil
}

// maxKeyFrame returns the highest frame index of any key annotation.
func maxKeyFrame(keys []KeyAnnotation) int {
	m := 0
	for _, k := range keys {
		m = gen.Max(m, k.Frame)
	}
	return m
}
