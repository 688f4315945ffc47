package groundseg

import "testing"

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"zero MaxX", func(c *Config) { c.MaxX = c.MinX }, true},
		{"zero MaxY", func(c *Config) { c.MaxY = c.MinY }, true},
		{"zero CellDx", func(c *Config) { c.CellDx = 0 }, true},
		{"zero CellDy", func(c *Config) { c.CellDy = 0 }, true},
		{"zero SensorVariance", func(c *Config) { c.SensorVariance = 0 }, true},
		{"zero SegmentationK", func(c *Config) { c.SegmentationK = 0 }, true},
		{"zero BPMaxIter", func(c *Config) { c.BPMaxIter = 0 }, true},
		{"zero MLMaxIter", func(c *Config) { c.MLMaxIter = 0 }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			err := cfg.Validate()
			if c.wantErr && !IsKind(err, Invariant) {
				t.Fatalf("expected an Invariant error, got %v", err)
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func flatPlaneCloud(n int) []Point3 {
	var pts []Point3
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pts = append(pts, Point3{X: float64(i) * 0.1, Y: float64(j) * 0.1, Z: 2.0})
		}
	}
	return pts
}

func TestProcessPointCloudFlatPlane(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinX, cfg.MinY, cfg.MaxX, cfg.MaxY = 0, 0, 2, 2
	cfg.CellDx, cfg.CellDy = 0.5, 0.5
	p, err := NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	result, err := p.ProcessPointCloud(flatPlaneCloud(10))
	if err != nil {
		t.Fatalf("ProcessPointCloud: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected a valid result for a dense flat plane")
	}
	if len(result.Mixture.Components) != 1 {
		t.Errorf("expected 1 surviving component for a flat plane, got %d", len(result.Mixture.Components))
	}
	for _, l := range result.Labels {
		if l != UnlabeledVertex && l != 0 {
			t.Errorf("expected every labeled cell to carry label 0, got %d", l)
		}
	}
}

func TestProcessPointCloudEmptyInputIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	p, err := NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	result, err := p.ProcessPointCloud(nil)
	if err != nil {
		t.Fatalf("ProcessPointCloud should not error on empty input, got %v", err)
	}
	if result.Valid {
		t.Errorf("expected Valid=false for empty input")
	}
}

func TestProcessPointCloudOutOfRangePointsAreEmptyInput(t *testing.T) {
	cfg := DefaultConfig()
	p, err := NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	result, err := p.ProcessPointCloud([]Point3{{X: -100, Y: -100, Z: 1}})
	if err != nil {
		t.Fatalf("ProcessPointCloud: %v", err)
	}
	if result.Valid {
		t.Errorf("expected Valid=false when every point falls outside the DEM bounds")
	}
}

func TestProcessPointCloudStepDiscontinuity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinX, cfg.MinY, cfg.MaxX, cfg.MaxY = 0, 0, 2, 2
	cfg.CellDx, cfg.CellDy = 0.1, 1
	cfg.SegmentationK = 0.001
	p, err := NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	var pts []Point3
	for i := 0; i < 10; i++ {
		pts = append(pts, Point3{X: float64(i) * 0.1, Y: 0.5, Z: 0}, Point3{X: float64(i) * 0.1, Y: 1.5, Z: 0})
	}
	for i := 10; i < 20; i++ {
		pts = append(pts, Point3{X: float64(i) * 0.1, Y: 0.5, Z: 5}, Point3{X: float64(i) * 0.1, Y: 1.5, Z: 5}) // a step curb
	}
	result, err := p.ProcessPointCloud(pts)
	if err != nil {
		t.Fatalf("ProcessPointCloud: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected a valid result")
	}
	if len(result.Mixture.Components) < 2 {
		t.Errorf("expected the step discontinuity to split into at least 2 components, got %d",
			len(result.Mixture.Components))
	}
}

func TestProcessPointCloudResetsBetweenCalls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinX, cfg.MinY, cfg.MaxX, cfg.MaxY = 0, 0, 1, 1
	cfg.CellDx, cfg.CellDy = 0.5, 0.5
	p, err := NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.ProcessPointCloud([]Point3{{X: 0.1, Y: 0.1, Z: 1}}); err != nil {
		t.Fatalf("ProcessPointCloud (1st call): %v", err)
	}
	result, err := p.ProcessPointCloud(nil)
	if err != nil {
		t.Fatalf("ProcessPointCloud (2nd call): %v", err)
	}
	if result.Valid {
		t.Errorf("expected the second call's empty input to reset the DEM rather than reuse the first call's points")
	}
}
