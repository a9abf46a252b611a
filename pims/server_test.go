package pims

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/cytomine/pims/cache"
	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/config"
	"github.com/cytomine/pims/source"
)

// writeSample writes a 600x400 RGB image whose red channel grows with x,
// green channel with y and blue channel is constant.
func writeSample(t *testing.T, dir string) {
	img := image.NewNRGBA(image.Rect(0, 0, 600, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 600; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x % 256), uint8(y % 256), 100, 255})
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "dir"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(img, filepath.Join(dir, "dir", "sample.png")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
}

func newServer(t *testing.T, c *config.Config, responses cache.Cache) *httptest.Server {
	root := t.TempDir()
	writeSample(t, root)
	c.Root = root

	src, err := source.NewDiskSource(root, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if responses == nil {
		responses, err = cache.NewCacheFromConfig("", 0, ResponseLoader)
		if err != nil {
			t.Fatal(err)
		}
	}

	ts := httptest.NewServer(NewHandler(c, src, colormap.NewRegistry(), responses))
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, headers map[string]string) (*http.Response, []byte) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func decodeImage(t *testing.T, body []byte) (image.Image, string) {
	img, name, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("cannot decode response: %v", err)
	}
	return img, name
}

func TestInfo(t *testing.T) {
	ts := newServer(t, config.Default(), nil)

	resp, body := get(t, ts.URL+"/image/dir/sample.png/info", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d: %s", resp.StatusCode, body)
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "application/json" {
		t.Errorf("got %v want application/json", contentType)
	}
	if resp.Header.Get("ETag") == "" || resp.Header.Get("Cache-Control") != "max-age=86400, public" {
		t.Errorf("cache headers: got %v", resp.Header)
	}

	var info ImageInfo
	if err := json.Unmarshal(body, &info); err != nil {
		t.Fatal(err)
	}
	if info.Width != 600 || info.Height != 400 || info.NChannels != 3 || info.SignificantBits != 8 {
		t.Errorf("got %+v", info)
	}
	if info.Pyramid.NTiers != 3 || info.Pyramid.Tiers[2].Width != 150 || info.Pyramid.Tiers[2].Zoom != 0 {
		t.Errorf("pyramid: got %+v", info.Pyramid)
	}
	if len(info.Channels) != 3 || info.Channels[2].Minimum != 100 || info.Channels[0].Maximum != 255 {
		t.Errorf("channels: got %+v", info.Channels)
	}
}

func TestPyramid(t *testing.T) {
	ts := newServer(t, config.Default(), nil)

	resp, body := get(t, ts.URL+"/image/dir%2Fsample.png/pyramid", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d: %s", resp.StatusCode, body)
	}

	var p PyramidInfo
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatal(err)
	}
	base := p.Tiers[0]
	if base.Level != 0 || base.Zoom != 2 || base.NTx != 3 || base.NTy != 2 || base.NTiles != 6 || base.Downsample != 1 {
		t.Errorf("base tier: got %+v", base)
	}
	if p.Tiers[1].Downsample != 2 || p.Tiers[1].TileWidth != 256 {
		t.Errorf("level 1: got %+v", p.Tiers[1])
	}
}

func TestErrors(t *testing.T) {
	ts := newServer(t, config.Default(), nil)

	var tests = []struct {
		url     string
		headers map[string]string
		status  int
	}{
		{"/image/missing.png/info", nil, http.StatusNotFound},
		{"/image/dir/info", nil, http.StatusNotFound},
		{"/image/..%2F..%2Fetc%2Fpasswd/info", nil, http.StatusNotFound},
		{"/image/test.txt/info", nil, http.StatusNotImplemented},
		{"/image/dir/sample.png/thumb", map[string]string{"Accept": "application/json"}, http.StatusNotAcceptable},
		{"/image/dir/sample.png/thumb?format=gif", nil, http.StatusBadRequest},
		{"/image/dir/sample.png/thumb?width=abc", nil, http.StatusBadRequest},
		{"/image/dir/sample.png/thumb?gammas=20", nil, http.StatusBadRequest},
		{"/image/dir/sample.png/thumb?colormaps=nope", nil, http.StatusNotFound},
		{"/image/dir/sample.png/thumb?colormaps=RED,GREEN", nil, http.StatusBadRequest},
		{"/image/dir/sample.png/thumb?log=maybe", nil, http.StatusBadRequest},
		{"/image/dir/sample.png/resized", nil, http.StatusBadRequest},
		{"/nowhere", nil, http.StatusNotFound},
	}

	for _, test := range tests {
		resp, body := get(t, ts.URL+test.url, test.headers)
		if resp.StatusCode != test.status {
			t.Errorf("%s: got %d want %d (%s)", test.url, resp.StatusCode, test.status, body)
			continue
		}

		var e ErrorResponse
		if err := json.Unmarshal(body, &e); err != nil {
			t.Errorf("%s: %v", test.url, err)
			continue
		}
		if e.Status != test.status || e.Detail == "" {
			t.Errorf("%s: got %+v", test.url, e)
		}
	}
}

func TestThumb(t *testing.T) {
	ts := newServer(t, config.Default(), nil)

	var tests = []struct {
		url           string
		accept        string
		width, height int
		format        string
	}{
		{"/image/dir/sample.png/thumb", "", 256, 171, "jpeg"},
		{"/image/dir/sample.png/thumb?length=100", "", 100, 67, "jpeg"},
		{"/image/dir/sample.png/thumb?width=0.5", "image/png", 300, 200, "png"},
		{"/image/dir/sample.png/resized?height=100&format=png", "", 150, 100, "png"},
		{"/image/dir/sample.png/resized?width=60&height=10", "", 15, 10, "jpeg"},
	}

	for _, test := range tests {
		resp, body := get(t, ts.URL+test.url, map[string]string{"Accept": test.accept})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: got %d (%s)", test.url, resp.StatusCode, body)
			continue
		}
		if contentType := resp.Header.Get("Content-Type"); contentType != "image/"+test.format {
			t.Errorf("%s: got %v", test.url, contentType)
		}

		img, name := decodeImage(t, body)
		if b := img.Bounds(); b.Dx() != test.width || b.Dy() != test.height || name != test.format {
			t.Errorf("%s: got %dx%d %s want %dx%d %s", test.url, b.Dx(), b.Dy(), name, test.width, test.height, test.format)
		}
	}
}

func TestThumbChannel(t *testing.T) {
	ts := newServer(t, config.Default(), nil)

	resp, body := get(t, ts.URL+"/image/dir/sample.png/thumb?channels=2&format=png", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d (%s)", resp.StatusCode, body)
	}
	img, _ := decodeImage(t, body)
	r, g, b, _ := img.At(100, 50).RGBA()
	if r>>8 != 100 || g>>8 != 100 || b>>8 != 100 {
		t.Errorf("blue channel in grey levels: got (%d, %d, %d)", r>>8, g>>8, b>>8)
	}

	// The blue channel mapped to red, stretched to its own range.
	url := "/image/dir/sample.png/thumb?channels=2&colormaps=RED&min_intensities=0&max_intensities=100&format=png"
	resp, body = get(t, ts.URL+url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d (%s)", resp.StatusCode, body)
	}
	img, _ = decodeImage(t, body)
	r, g, b, _ = img.At(100, 50).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("red colormap: got (%d, %d, %d)", r>>8, g>>8, b>>8)
	}
}

func TestWindow(t *testing.T) {
	ts := newServer(t, config.Default(), nil)

	var tests = []struct {
		query         string
		status        int
		width, height int
	}{
		{"top=10&left=20&region_width=100&region_height=50", http.StatusOK, 100, 50},
		{"top=10&left=20&region_width=100&region_height=50&tier=1", http.StatusOK, 100, 50},
		{"top=0.5&left=0.5&region_width=0.5&region_height=0.5&tier=2&tier_type=ZOOM", http.StatusOK, 300, 200},
		{"region_width=100&region_height=100&width=50", http.StatusOK, 50, 50},
		{"tier=1&length=100", http.StatusOK, 100, 67},
		{"left=20&region_width=1000&region_height=50", http.StatusBadRequest, 0, 0},
		{"left=20&region_width=1000&region_height=50&silent_oob=true", http.StatusOK, 580, 50},
		{"tier=3", http.StatusBadRequest, 0, 0},
		{"tier_type=SIDEWAYS", http.StatusBadRequest, 0, 0},
		{"left=700", http.StatusBadRequest, 0, 0},
	}

	for _, test := range tests {
		url := ts.URL + "/image/dir/sample.png/window?format=png&" + test.query
		resp, body := get(t, url, nil)
		if resp.StatusCode != test.status {
			t.Errorf("%s: got %d want %d (%s)", test.query, resp.StatusCode, test.status, body)
			continue
		}
		if test.status != http.StatusOK {
			continue
		}
		img, _ := decodeImage(t, body)
		if b := img.Bounds(); b.Dx() != test.width || b.Dy() != test.height {
			t.Errorf("%s: got %dx%d want %dx%d", test.query, b.Dx(), b.Dy(), test.width, test.height)
		}
	}

	resp, _ := get(t, ts.URL+"/image/dir/sample.png/window?format=tiff&region_width=10&region_height=10", nil)
	if contentType := resp.Header.Get("Content-Type"); contentType != "image/tiff" {
		t.Errorf("tiff window: got %v", contentType)
	}
}

func TestTile(t *testing.T) {
	ts := newServer(t, config.Default(), nil)

	var tests = []struct {
		path          string
		status        int
		width, height int
	}{
		{"tile/level/0/ti/0", http.StatusOK, 256, 256},
		{"tile/level/0/ti/5", http.StatusOK, 88, 144},
		{"tile/level/0/tx/2/ty/1", http.StatusOK, 88, 144},
		{"tile/level/1/ti/1", http.StatusOK, 44, 200},
		{"tile/zoom/0/ti/0", http.StatusOK, 150, 100},
		{"tile/zoom/2/tx/1/ty/0", http.StatusOK, 256, 256},
		{"tile/level/0/ti/6", http.StatusBadRequest, 0, 0},
		{"tile/level/0/tx/3/ty/0", http.StatusBadRequest, 0, 0},
		{"tile/level/3/ti/0", http.StatusBadRequest, 0, 0},
		{"tile/zoom/3/ti/0", http.StatusBadRequest, 0, 0},
	}

	for _, test := range tests {
		resp, body := get(t, ts.URL+"/image/dir/sample.png/"+test.path, map[string]string{"Accept": "image/png"})
		if resp.StatusCode != test.status {
			t.Errorf("%s: got %d want %d (%s)", test.path, resp.StatusCode, test.status, body)
			continue
		}
		if test.status != http.StatusOK {
			continue
		}
		img, _ := decodeImage(t, body)
		if b := img.Bounds(); b.Dx() != test.width || b.Dy() != test.height {
			t.Errorf("%s: got %dx%d want %dx%d", test.path, b.Dx(), b.Dy(), test.width, test.height)
		}
	}
}

func TestSafeMode(t *testing.T) {
	c := config.Default()
	c.OutputSizeLimit = 100
	ts := newServer(t, c, nil)
	url := ts.URL + "/image/dir/sample.png/resized?width=600&format=png"

	var tests = []struct {
		mode          string
		status        int
		width, height int
	}{
		{"", http.StatusBadRequest, 0, 0},
		{"SAFE_REJECT", http.StatusBadRequest, 0, 0},
		{"SAFE_RESIZE", http.StatusOK, 100, 66},
		{"UNSAFE", http.StatusOK, 600, 400},
		{"YOLO", http.StatusBadRequest, 0, 0},
	}

	for _, test := range tests {
		resp, body := get(t, url, map[string]string{headerSafety: test.mode})
		if resp.StatusCode != test.status {
			t.Errorf("%#v: got %d want %d (%s)", test.mode, resp.StatusCode, test.status, body)
			continue
		}
		if test.status != http.StatusOK {
			continue
		}
		img, _ := decodeImage(t, body)
		if b := img.Bounds(); b.Dx() != test.width || b.Dy() != test.height {
			t.Errorf("%#v: got %dx%d want %dx%d", test.mode, b.Dx(), b.Dy(), test.width, test.height)
		}
	}
}

func TestResponsesCache(t *testing.T) {
	responses, err := cache.NewCacheFromConfig("pims-test-responses", 1<<20, ResponseLoader)
	if err != nil {
		t.Fatal(err)
	}
	ts := newServer(t, config.Default(), responses)

	url := ts.URL + "/image/dir/sample.png/tile/level/2/ti/0"
	resp, first := get(t, url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d (%s)", resp.StatusCode, first)
	}
	etag := resp.Header.Get("ETag")

	resp, second := get(t, url, nil)
	if !bytes.Equal(first, second) || resp.Header.Get("ETag") != etag {
		t.Error("cached response differs")
	}

	stats := responses.(*cache.GroupCache).Stats()
	if stats.Items != 1 || stats.Hits < 1 {
		t.Errorf("got %+v", stats)
	}

	resp, _ = get(t, url, map[string]string{"If-None-Match": etag})
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional request: got %d", resp.StatusCode)
	}
}

func TestColormaps(t *testing.T) {
	ts := newServer(t, config.Default(), nil)

	list := func() CollectionResponse {
		resp, body := get(t, ts.URL+"/colormaps", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("got %d (%s)", resp.StatusCode, body)
		}
		var c CollectionResponse
		if err := json.Unmarshal(body, &c); err != nil {
			t.Fatal(err)
		}
		return c
	}
	before := list()
	if before.Size == 0 {
		t.Fatal("no colormaps")
	}

	var tests = []struct {
		id       string
		status   int
		expected string
	}{
		{"JET", http.StatusOK, "JET"},
		{"!viridis", http.StatusOK, "!VIRIDIS"},
		{"%23ff0000", http.StatusOK, "RED"},
		{"0x0F0", http.StatusOK, "LIME"},
		{"%23123456", http.StatusOK, "#123456"},
		{"!%23123456", http.StatusOK, "!#123456"},
		{"DEFAULT", http.StatusOK, "WHITE"},
		{"NONE", http.StatusNotFound, ""},
		{"nope", http.StatusNotFound, ""},
	}
	for _, test := range tests {
		resp, body := get(t, ts.URL+"/colormaps/"+test.id, nil)
		if resp.StatusCode != test.status {
			t.Errorf("%s: got %d want %d (%s)", test.id, resp.StatusCode, test.status, body)
			continue
		}
		if test.status != http.StatusOK {
			continue
		}
		var cm ColormapInfo
		if err := json.Unmarshal(body, &cm); err != nil {
			t.Fatal(err)
		}
		if cm.ID != test.expected {
			t.Errorf("%s: got %+v want %s", test.id, cm, test.expected)
		}
	}

	if after := list(); after.Size != before.Size+2 {
		t.Errorf("registering #123456: got %d colormaps want %d", after.Size, before.Size+2)
	}
}
