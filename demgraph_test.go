package groundseg

import "testing"

func TestBuildDEMGraphSkipsEmptyCells(t *testing.T) {
	d, err := NewDEM(0, 0, 3, 1, 1, 1, 1e-4)
	if err != nil {
		t.Fatalf("NewDEM: %v", err)
	}
	// Only the two end cells receive points; the middle cell stays empty.
	d.Ingest([]Point3{{X: 0.5, Y: 0.5, Z: 1}, {X: 2.5, Y: 0.5, Z: 1}})

	g := BuildDEMGraph(d)
	if len(g.Edges) != 0 {
		t.Errorf("expected no edges between non-adjacent non-empty cells, got %d", len(g.Edges))
	}
}

func TestBuildDEMGraphConnectsNeighbors(t *testing.T) {
	d, err := NewDEM(0, 0, 2, 1, 1, 1, 1e-4)
	if err != nil {
		t.Fatalf("NewDEM: %v", err)
	}
	d.Ingest([]Point3{{X: 0.5, Y: 0.5, Z: 1}, {X: 1.5, Y: 0.5, Z: 1}})

	g := BuildDEMGraph(d)
	if len(g.Edges) != 1 {
		t.Fatalf("expected exactly one edge, got %d", len(g.Edges))
	}
	e := g.Edges[0]
	if e.Weight != 0 {
		t.Errorf("identical posterior means should give weight 0, got %v", e.Weight)
	}
	if e.U == e.V {
		t.Errorf("edge must not be a self-loop")
	}
}

func TestBuildDEMGraphNoDuplicateEdges(t *testing.T) {
	d, err := NewDEM(0, 0, 3, 3, 1, 1, 1e-4)
	if err != nil {
		t.Fatalf("NewDEM: %v", err)
	}
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			d.Ingest([]Point3{{X: float64(i) + 0.5, Y: float64(j) + 0.5, Z: float64(i + j)}})
		}
	}
	g := BuildDEMGraph(d)
	seen := make(map[[2]int]bool)
	for _, e := range g.Edges {
		key := [2]int{e.U, e.V}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seen[key] {
			t.Fatalf("duplicate edge between %d and %d", e.U, e.V)
		}
		seen[key] = true
		if e.Weight < 0 {
			t.Errorf("edge weight must be non-negative, got %v", e.Weight)
		}
	}
	// A fully-dense 3x3 8-connected grid has 20 undirected edges: 12
	// axis-aligned (2*3*2) + 8 diagonal (2*2*2).
	if len(g.Edges) != 20 {
		t.Errorf("len(Edges) = %d, want 20", len(g.Edges))
	}
}

func TestEdgeWeightZeroVarianceSameMean(t *testing.T) {
	u := newCell(0, 1, 5)
	v := newCell(0, 1, 5)
	if w := edgeWeight(&u, &v); w != 0 {
		t.Errorf("edgeWeight with equal means and zero variance = %v, want 0", w)
	}
}
