package anno

import (
	"fmt"
	"slices"
)

// convertClassic builds the response of a non-video label: a flat
// {jobName: fragment} map over all parent annotations.
func convertClassic(parents []*Annotation, children childIndex) (map[string]any, error) {
	out := map[string]any{}
	for _, parent := range parents {
		frag, err := children.convertClassicAnnotation(parent)
		if err != nil {
			return nil, err
		}
		for job, payload := range frag {
			out[job] = payload
		}
	}
	return out, nil
}

// convertClassicAnnotation produces one annotation's {jobName: fragment}
// contribution. Child annotations are themselves classic annotations, so this
// is also the recursion step of the child resolver; nesting depth is
// unbounded but shallow in practice.
func (idx childIndex) convertClassicAnnotation(a *Annotation) (jobMap, error) {
	switch a.Kind {
	case KindClassification:
		childJobs, err := idx.resolveByCategory(a)
		if err != nil {
			return nil, err
		}
		return jobMap{a.Job: CategoriesFragment{Categories: categoryEntries(a.Categories, childJobs)}}, nil
	case KindTranscription:
		// Transcription jobs never have children
		return jobMap{a.Job: TextFragment{Text: a.Text}}, nil
	case KindRanking:
		orders := slices.Clone(a.Orders)
		slices.SortStableFunc(orders, func(x, y RankingOrder) int { return x.Rank - y.Rank })
		return jobMap{a.Job: OrdersFragment{Orders: orders}}, nil
	case KindVideoClassification, KindVideoTranscription, KindVideoObjectDetection:
		return nil, fmt.Errorf("%w: %v in classic conversion", ErrUnsupportedKind, a.Kind)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, a.Kind)
	}
}
