package pyramid

import (
	"errors"
	"math"
	"testing"

	"github.com/cytomine/pims/problem"
)

// halvingPyramid builds n tiers, each half the size of the previous one.
func halvingPyramid(t *testing.T, width, height, n int) *Pyramid {
	p := New()
	for i := 0; i < n; i++ {
		_, err := p.InsertTier(max(1, width>>i), max(1, height>>i), 256)
		if err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestTier(t *testing.T) {
	p := New()
	tier, err := p.InsertTier(1000, 2000, 256)
	if err != nil {
		t.Fatal(err)
	}

	if tier.NPixels() != 1000*2000 {
		t.Errorf("NPixels: got %d want %d", tier.NPixels(), 1000*2000)
	}
	if wf, hf := tier.Factor(); wf != 1 || hf != 1 {
		t.Errorf("Factor: got (%v, %v) want (1, 1)", wf, hf)
	}
	if tier.Downsample != 1 {
		t.Errorf("Downsample: got %v want 1", tier.Downsample)
	}
}

func TestInsertTier(t *testing.T) {
	p := New()
	if _, err := p.InsertTier(1000, 2000, 256); err != nil {
		t.Fatal(err)
	}
	if p.NLevels() != 1 || p.MaxLevel() != 0 || p.NZooms() != 1 || p.MaxZoom() != 0 {
		t.Errorf("single tier pyramid: got %d levels, max level %d, %d zooms, max zoom %d",
			p.NLevels(), p.MaxLevel(), p.NZooms(), p.MaxZoom())
	}

	if _, err := p.InsertTier(100, 200, 256); err != nil {
		t.Fatal(err)
	}
	tier, _ := p.TierAtLevel(1)
	if p.NLevels() != 2 || tier.NPixels() != 100*200 || tier.Level != 1 || tier.Zoom != 0 {
		t.Errorf("two tiers pyramid: got %d levels and %v", p.NLevels(), tier)
	}

	// A tier inserted out of order takes its place by size.
	if _, err := p.InsertTier(500, 1000, 256); err != nil {
		t.Fatal(err)
	}
	var tests = []struct {
		level   int
		npixels int
		zoom    int
	}{
		{0, 1000 * 2000, 2},
		{1, 500 * 1000, 1},
		{2, 100 * 200, 0},
	}
	for _, test := range tests {
		tier, err := p.TierAtLevel(test.level)
		if err != nil {
			t.Fatal(err)
		}
		if tier.NPixels() != test.npixels || tier.Level != test.level || tier.Zoom != test.zoom {
			t.Errorf("level %d: got %v", test.level, tier)
		}
	}
}

func TestInsertInvalidTier(t *testing.T) {
	p := New()
	var tests = [][3]int{{0, 10, 256}, {10, -1, 256}, {10, 10, 0}}
	for _, test := range tests {
		if _, err := p.InsertTier(test[0], test[1], test[2]); err == nil {
			t.Errorf("InsertTier%v should fail", test)
		}
	}
	if p.NLevels() != 0 {
		t.Errorf("invalid tiers should not be inserted, got %d levels", p.NLevels())
	}
}

func TestDownsamplePowers(t *testing.T) {
	for _, ratio := range []int{2, 4} {
		p := New()
		width := 1 << 16
		for i := 0; i < 5; i++ {
			if _, err := p.InsertTier(width, width/2, 512); err != nil {
				t.Fatal(err)
			}
			width /= ratio
		}
		for i := 0; i < 5; i++ {
			tier, _ := p.TierAtLevel(i)
			want := math.Pow(float64(ratio), float64(i))
			if tier.Downsample != want {
				t.Errorf("ratio %d level %d: got downsample %v want %v", ratio, i, tier.Downsample, want)
			}
		}
	}
}

func TestTierAtLevelAndZoom(t *testing.T) {
	p := halvingPyramid(t, 1000, 2000, 3)

	for level := 0; level < 3; level++ {
		byLevel, err := p.TierAtLevel(level)
		if err != nil {
			t.Fatal(err)
		}
		byZoom, err := p.TierAtZoom(2 - level)
		if err != nil {
			t.Fatal(err)
		}
		if byLevel != byZoom {
			t.Errorf("level %d and zoom %d should be the same tier: got %v and %v", level, 2-level, byLevel, byZoom)
		}
	}

	for _, index := range []int{-1, 3, 25} {
		if _, err := p.TierAtLevel(index); !errors.Is(err, problem.ErrOutOfBounds) {
			t.Errorf("TierAtLevel(%d): got %v want out of bounds", index, err)
		}
		if _, err := p.TierAtZoom(index); !errors.Is(err, problem.ErrOutOfBounds) {
			t.Errorf("TierAtZoom(%d): got %v want out of bounds", index, err)
		}
	}
}

func TestMostAppropriateTierForDownsample(t *testing.T) {
	// downsamples 1, 2, 4, 8
	p := halvingPyramid(t, 4096, 4096, 4)

	var tests = []struct {
		downsample float64
		level      int
	}{
		{1, 0},
		{1.5, 0},
		{1.99, 0},
		{2, 1},
		{3.9, 1},
		{4, 2},
		{7, 2},
		{8, 3},
		{100, 3},
		// nothing qualifies, the coarsest tier is used
		{0.5, 3},
	}

	for _, test := range tests {
		tier := p.MostAppropriateTierForDownsample(test.downsample)
		if tier.Level != test.level {
			t.Errorf("downsample %v: got level %d want %d", test.downsample, tier.Level, test.level)
		}
	}
}

func TestMostAppropriateTier(t *testing.T) {
	p := halvingPyramid(t, 4096, 4096, 4)

	var tests = []struct {
		region Region
		width  int
		height int
		level  int
	}{
		{NewRegion(0, 0, 4096, 4096), 4096, 4096, 0},
		{NewRegion(0, 0, 4096, 4096), 1024, 1024, 2},
		{NewRegion(0, 0, 4096, 4096), 1000, 1000, 2},
		{NewRegion(0, 0, 4096, 4096), 8192, 8192, 0},
		{Region{0, 0, 512, 512, 4}, 512, 512, 2},
		{Region{0, 0, 512, 512, 4}, 256, 256, 3},
	}

	for _, test := range tests {
		tier := p.MostAppropriateTier(test.region, test.width, test.height)
		if tier.Level != test.level {
			t.Errorf("%v to %dx%d: got level %d want %d", test.region, test.width, test.height, tier.Level, test.level)
		}
	}
}

func TestTierIndexes(t *testing.T) {
	p := New()
	tier, _ := p.InsertTier(1000, 2000, 256)

	if tier.NTilesX() != 4 || tier.NTilesY() != 8 || tier.NTiles() != 32 {
		t.Errorf("tile grid: got %dx%d (%d)", tier.NTilesX(), tier.NTilesY(), tier.NTiles())
	}

	if ti := tier.TxTyToTi(0, 0); ti != 0 {
		t.Errorf("TxTyToTi(0, 0): got %d", ti)
	}
	if ti := tier.TxTyToTi(3, 7); ti != 31 {
		t.Errorf("TxTyToTi(3, 7): got %d", ti)
	}
	if tx, ty := tier.TiToTxTy(0); tx != 0 || ty != 0 {
		t.Errorf("TiToTxTy(0): got (%d, %d)", tx, ty)
	}
	if tx, ty := tier.TiToTxTy(31); tx != 3 || ty != 7 {
		t.Errorf("TiToTxTy(31): got (%d, %d)", tx, ty)
	}

	var tests = []struct {
		got  Region
		want Region
	}{
		{tier.TxTyTile(0, 0), NewRegion(0, 0, 256, 256)},
		{tier.TxTyTile(3, 7), NewRegion(1792, 768, 1000-768, 2000-1792)},
		{tier.TiTile(0), NewRegion(0, 0, 256, 256)},
		{tier.TiTile(31), NewRegion(1792, 768, 1000-768, 2000-1792)},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("tile region: got %v want %v", test.got, test.want)
		}
	}
}

func TestTileAtDeeperTier(t *testing.T) {
	p := halvingPyramid(t, 1000, 2000, 2)
	tier, _ := p.TierAtLevel(1)

	got := tier.TxTyTile(1, 3)
	want := Region{Top: 768, Left: 256, Width: 500 - 256, Height: 1000 - 768, Downsample: 2}
	if got != want {
		t.Errorf("got %v want %v", got, want)
	}
}
