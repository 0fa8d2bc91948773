package availability

import "time"

// Interval is an absolute time range. Start must not be after End;
// construction from validated inputs guarantees this, and the algebra below
// assumes it. Endpoints behave half-open: two intervals that merely share a
// boundary do not overlap.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Within reports whether iv lies entirely inside outer.
func (iv Interval) Within(outer Interval) bool {
	return !iv.Start.Before(outer.Start) && !iv.End.After(outer.End)
}

// Subtract removes cut from source and returns the 0, 1, or 2 remaining
// pieces. A cut that only touches a boundary of source removes nothing.
func Subtract(source, cut Interval) []Interval {
	switch {
	case !cut.End.After(source.Start), !source.End.After(cut.Start):
		// No overlap.
		return []Interval{source}
	case !cut.Start.After(source.Start) && !source.End.After(cut.End):
		// Cut swallows the source whole.
		return nil
	case !cut.Start.After(source.Start):
		// Cut removes the head.
		return []Interval{{Start: cut.End, End: source.End}}
	case !source.End.After(cut.End):
		// Cut removes the tail.
		return []Interval{{Start: source.Start, End: cut.Start}}
	default:
		// Cut is strictly inside; the source splits in two.
		return []Interval{
			{Start: source.Start, End: cut.Start},
			{Start: cut.End, End: source.End},
		}
	}
}

// SubtractAll removes every cut from source. Cuts are an unordered set: a
// cut that splits a fragment leaves both halves on the worklist for the
// remaining cuts, so the result does not depend on cut order. The worklist
// keeps the implementation iterative regardless of how many cuts apply.
func SubtractAll(source Interval, cuts []Interval) []Interval {
	fragments := []Interval{source}
	for _, cut := range cuts {
		next := make([]Interval, 0, len(fragments))
		for _, frag := range fragments {
			next = append(next, Subtract(frag, cut)...)
		}
		fragments = next
		if len(fragments) == 0 {
			break
		}
	}
	return fragments
}

// SubtractAllFromAll applies SubtractAll to each source independently and
// concatenates the results in source order. Sources are assumed mutually
// disjoint, which Expand guarantees for its output.
func SubtractAllFromAll(sources, cuts []Interval) []Interval {
	var out []Interval
	for _, source := range sources {
		out = append(out, SubtractAll(source, cuts)...)
	}
	return out
}
