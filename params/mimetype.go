package params

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cytomine/pims/problem"
)

var extensionError = "%#v is not a supported output extension"

// OutputFormat is an image encoding.
type OutputFormat string

// Output formats.
const (
	NoFormat OutputFormat = ""
	JPEG     OutputFormat = "jpeg"
	PNG      OutputFormat = "png"
	TIFF     OutputFormat = "tiff"
)

// Mimetype pairs a response mimetype with the format producing it.
type Mimetype struct {
	Format OutputFormat
	Type   string
}

// Supported response mimetypes, by order of preference.
var (
	VisualisationMimetypes = []Mimetype{
		{JPEG, "image/jpeg"},
		{PNG, "image/png"},
	}
	ProcessingMimetypes = []Mimetype{
		{PNG, "image/png"},
		{PNG, "image/apng"},
		{TIFF, "image/tiff"},
	}
)

// ParseOutputExtension reads an output extension such as ".jpg" or "png".
// An empty extension gives NoFormat.
func ParseOutputExtension(ext string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")) {
	case "":
		return NoFormat, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return NoFormat, problem.BadRequest(extensionError, ext)
}

type acceptEntry struct {
	mimetype string
	q        float64
}

func parseAccept(accept string) []acceptEntry {
	if strings.TrimSpace(accept) == "" {
		accept = "*/*"
	}

	var entries []acceptEntry
	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(part, ";")
		entry := acceptEntry{
			mimetype: strings.ToLower(strings.TrimSpace(fields[0])),
			q:        1,
		}
		for _, param := range fields[1:] {
			k, v, found := strings.Cut(strings.TrimSpace(param), "=")
			if !found || strings.TrimSpace(k) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				entry.q = q
			}
		}
		if entry.mimetype != "" && entry.q > 0 {
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].q > entries[j].q
	})
	return entries
}

func matchMimetype(pattern, mimetype string) bool {
	if pattern == "*/*" || pattern == "*" {
		return true
	}
	ptype, psub, _ := strings.Cut(pattern, "/")
	mtype, msub, _ := strings.Cut(mimetype, "/")
	return ptype == mtype && (psub == "*" || psub == msub)
}

// GetOutputFormat chooses the response format. An explicit extension wins
// when it is supported, otherwise the Accept header is negotiated against
// the supported mimetypes, highest quality first.
func GetOutputFormat(ext OutputFormat, accept string, supported []Mimetype) (Mimetype, error) {
	if ext != NoFormat {
		for _, m := range supported {
			if m.Format == ext {
				return m, nil
			}
		}
		return Mimetype{}, problem.NoAcceptableResponseMimetype(string(ext))
	}

	for _, entry := range parseAccept(accept) {
		for _, m := range supported {
			if matchMimetype(entry.mimetype, m.Type) {
				return m, nil
			}
		}
	}
	return Mimetype{}, problem.NoAcceptableResponseMimetype(accept)
}
