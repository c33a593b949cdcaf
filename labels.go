package cel

import "sort"

// Label is a named alias for a frame position, used for seek-by-name.
type Label struct {
	Name  string
	Frame int
}

// LabelIndex is an ordered registry of labels, kept ascending by frame.
// Names need not be unique in storage; lookup by name returns the first
// match in frame order.
type LabelIndex struct {
	labels []Label
}

// newLabelIndex builds an index from a name-to-frame map. Map order is
// unspecified, so entries are sorted by frame (name as tie-break) to keep
// construction deterministic.
func newLabelIndex(m map[string]int) LabelIndex {
	var idx LabelIndex
	if len(m) == 0 {
		return idx
	}
	idx.labels = make([]Label, 0, len(m))
	for name, frame := range m {
		idx.labels = append(idx.labels, Label{Name: name, Frame: frame})
	}
	sort.Slice(idx.labels, func(i, j int) bool {
		a, b := idx.labels[i], idx.labels[j]
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Name < b.Name
	})
	return idx
}

// Add inserts a label, preserving ascending frame order.
func (idx *LabelIndex) Add(name string, frame int) {
	i := sort.Search(len(idx.labels), func(i int) bool {
		return idx.labels[i].Frame > frame
	})
	idx.labels = append(idx.labels, Label{})
	copy(idx.labels[i+1:], idx.labels[i:])
	idx.labels[i] = Label{Name: name, Frame: frame}
}

// Labels returns the ordered label sequence. The returned slice MUST NOT be
// mutated by the caller.
func (idx *LabelIndex) Labels() []Label {
	return idx.labels
}

// Frame returns the frame of the first label with the given name.
func (idx *LabelIndex) Frame(name string) (int, bool) {
	for _, l := range idx.labels {
		if l.Name == name {
			return l.Frame, true
		}
	}
	return 0, false
}

// Current returns the name of the last label whose frame is at or before the
// given frame, or false if no label has been reached yet.
func (idx *LabelIndex) Current(frame int) (string, bool) {
	name := ""
	found := false
	for _, l := range idx.labels {
		if l.Frame > frame {
			break
		}
		name = l.Name
		found = true
	}
	return name, found
}
