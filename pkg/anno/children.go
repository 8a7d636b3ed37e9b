package anno

// childIndex is the parent -> direct children adjacency map, built once per
// conversion call so that resolving children is not a rescan of the flat list
// for every parent.
type childIndex map[string][]*Annotation

func buildChildIndex(annotations []Annotation) ([]*Annotation, childIndex) {
	parents := []*Annotation{}
	children := childIndex{}
	for i := range annotations {
		a := &annotations[i]
		if a.IsChild() {
			children[a.ParentID()] = append(children[a.ParentID()], a)
		} else {
			parents = append(parents, a)
		}
	}
	return parents, children
}

// resolveByCategory converts the direct children of parent and groups their
// job fragments by the category each child is scoped under.
// The merge is a union at the job-name level: a sibling child job's output is
// never dropped, whatever order the children arrive in.
func (idx childIndex) resolveByCategory(parent *Annotation) (map[string]jobMap, error) {
	out := map[string]jobMap{}
	for _, child := range idx[parent.ID] {
		frag, err := idx.convertClassicAnnotation(child)
		if err != nil {
			return nil, err
		}
		category := child.ParentCategory()
		if out[category] == nil {
			out[category] = jobMap{}
		}
		for job, payload := range frag {
			out[category][job] = payload
		}
	}
	return out, nil
}

// resolveMerged converts the direct children of parent and unions all their
// job fragments into a single map, regardless of category. Object detection
// annotations carry a single category, so their children are not split.
// The result is never nil: an object entry's children field marshals as {}.
func (idx childIndex) resolveMerged(parent *Annotation) (jobMap, error) {
	out := jobMap{}
	for _, child := range idx[parent.ID] {
		frag, err := idx.convertClassicAnnotation(child)
		if err != nil {
			return nil, err
		}
		for job, payload := range frag {
			out[job] = payload
		}
	}
	return out, nil
}

// categoryEntries builds the category list for a classification value,
// attaching children only to the categories that actually have any.
func categoryEntries(names []string, childJobs map[string]jobMap) []CategoryEntry {
	entries := make([]CategoryEntry, 0, len(names))
	for _, name := range names {
		entry := CategoryEntry{Name: name}
		if m := childJobs[name]; len(m) > 0 {
			entry.Children = m
		}
		entries = append(entries, entry)
	}
	return entries
}
