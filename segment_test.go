package groundseg

import "testing"

// line3 builds a 3-vertex path graph 0-1-2 with the given edge weights.
func line3(w01, w12 float64) *DEMGraph {
	return &DEMGraph{
		NumVertices: 3,
		Edges: []DEMEdge{
			{U: 0, V: 1, Weight: w01},
			{U: 1, V: 2, Weight: w12},
		},
		Adjacency: [][]int{{0}, {0, 1}, {1}},
	}
}

func TestSegmentRejectsNonPositiveK(t *testing.T) {
	g := line3(0, 0)
	if _, err := Segment(g, 0, 0); !IsKind(err, Invariant) {
		t.Fatalf("expected Invariant error for k=0, got %v", err)
	}
	if _, err := Segment(g, -1, 0); !IsKind(err, Invariant) {
		t.Fatalf("expected Invariant error for k=-1, got %v", err)
	}
}

func TestSegmentMergesLowWeightEdges(t *testing.T) {
	g := line3(0.1, 0.1)
	seg, err := Segment(g, 300, 0)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if seg.Label[0] != seg.Label[1] || seg.Label[1] != seg.Label[2] {
		t.Errorf("expected all three vertices in one component with a large k, got labels %v", seg.Label)
	}
	if len(seg.Components) != 1 {
		t.Errorf("expected 1 component, got %d", len(seg.Components))
	}
}

func TestSegmentSeparatesHighWeightEdge(t *testing.T) {
	g := line3(0.01, 100)
	seg, err := Segment(g, 1, 0)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if seg.Label[0] != seg.Label[1] {
		t.Errorf("expected 0 and 1 merged across a cheap edge")
	}
	if seg.Label[1] == seg.Label[2] {
		t.Errorf("expected vertex 2 separated by its expensive edge, got labels %v", seg.Label)
	}
}

func TestSegmentEveryVertexLabeled(t *testing.T) {
	g := &DEMGraph{NumVertices: 3, Adjacency: make([][]int, 3)} // isolated vertices, no edges
	seg, err := Segment(g, 1, 0)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(seg.Label) != 3 {
		t.Fatalf("expected a label for every vertex, got %d", len(seg.Label))
	}
	total := 0
	for _, members := range seg.Components {
		total += len(members)
	}
	if total != 3 {
		t.Errorf("expected every vertex to belong to exactly one component, got %d members total", total)
	}
}

func TestSegmentDeterministic(t *testing.T) {
	g := line3(0.2, 0.05)
	seg1, err := Segment(g, 5, 0)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	seg2, err := Segment(g, 5, 0)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	for v := range seg1.Label {
		if (seg1.Label[v] == seg1.Label[0]) != (seg2.Label[v] == seg2.Label[0]) {
			t.Errorf("segmentation partition differs between runs at vertex %d", v)
		}
	}
}

func TestMergeSmallComponentsReducesComponentCount(t *testing.T) {
	// A 1x4 line where every edge is expensive enough to stay split
	// without the merge pass, but the pass should glue any singleton
	// below minComponentSize back onto a neighbor.
	g := &DEMGraph{
		NumVertices: 4,
		Edges: []DEMEdge{
			{U: 0, V: 1, Weight: 100},
			{U: 1, V: 2, Weight: 100},
			{U: 2, V: 3, Weight: 100},
		},
		Adjacency: [][]int{{0}, {0, 1}, {1, 2}, {2}},
	}
	segNoMerge, err := Segment(g, 0.01, 0)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segNoMerge.Components) != 4 {
		t.Fatalf("expected 4 singleton components without a merge pass, got %d", len(segNoMerge.Components))
	}

	segMerged, err := Segment(g, 0.01, 2)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segMerged.Components) >= len(segNoMerge.Components) {
		t.Errorf("expected fewer components after merging undersized ones, got %d vs %d",
			len(segMerged.Components), len(segNoMerge.Components))
	}
}
