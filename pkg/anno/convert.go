package anno

// Top-level assembler: dispatches on the project's input type and drives the
// per-job converters across all annotations of one label.

// Project input types. Anything other than VIDEO converts in classic mode.
const (
	InputTypeVideo = "VIDEO"
)

// Convert rebuilds a label's json response from its flat annotation records.
//
// existing is the label's current response (nil if it has none). If the
// annotation set is empty but the existing response already carries data for
// a job declared in iface, the existing response is returned untouched:
// an annotation source that returns nothing must not silently erase a
// previously computed or autosaved response.
//
// The returned value is a map[string]any for classic projects and a
// *VideoResponse for video projects.
func Convert(inputType string, annotations []Annotation, iface *Interface, existing map[string]any) (any, error) {
	if RetainsExisting(annotations, iface, existing) {
		return existing, nil
	}
	parents, children := buildChildIndex(annotations)
	if inputType == InputTypeVideo {
		return convertVideo(parents, children, iface)
	}
	return convertClassic(parents, children)
}

// RetainsExisting reports whether Convert would return existing untouched:
// an empty annotation set combined with an existing response that already
// carries data for a declared job. Callers holding the serialized form of
// existing should keep serving those bytes rather than re-marshal the map,
// which would not preserve frame order.
func RetainsExisting(annotations []Annotation, iface *Interface, existing map[string]any) bool {
	return len(annotations) == 0 && hasDeclaredJobResponse(existing, iface)
}

// hasDeclaredJobResponse reports whether existing carries response data for
// any job declared in iface. Classic responses key jobs at the top level;
// video responses key frames at the top level with jobs one level down.
func hasDeclaredJobResponse(existing map[string]any, iface *Interface) bool {
	if len(existing) == 0 || iface == nil {
		return false
	}
	for key, value := range existing {
		if _, ok := iface.Jobs[key]; ok {
			return true
		}
		frame, ok := value.(map[string]any)
		if !ok {
			continue
		}
		for job := range frame {
			if _, ok := iface.Jobs[job]; ok {
				return true
			}
		}
	}
	return false
}
