package nota

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldType is the closed set of field kinds a schema definition may use.
type FieldType string

// Field type constants (typed).
const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldTextarea FieldType = "textarea"
	FieldBoolean  FieldType = "boolean"
	FieldImage    FieldType = "image"
	FieldVideo    FieldType = "video"
	FieldFile     FieldType = "file"
)

// InputKind is the rendering hint of a field type.
type InputKind string

const (
	InputSingleLine InputKind = "single-line"
	InputNumeric    InputKind = "numeric"
	InputDate       InputKind = "date"
	InputMultiLine  InputKind = "multi-line"
	InputToggle     InputKind = "toggle"
	InputFile       InputKind = "file-with-preview"
)

// PreviewKind is how a stored media URL is previewed.
type PreviewKind string

const (
	PreviewNone  PreviewKind = ""
	PreviewImage PreviewKind = "image"
	PreviewVideo PreviewKind = "video"
	PreviewLink  PreviewKind = "link"
)

// DateLayout is the accepted shape of date values.
const DateLayout = "2006-01-02"

// FieldSpec describes how one field type is rendered, what values it accepts
// and whether edits go through the media upload protocol.
type FieldSpec struct {
	Type  FieldType
	Input InputKind
	// Accept is the file picker filter for media types.
	Accept string
	// Media is set for types whose value is the URL of an uploaded file.
	Media bool
}

var catalog = []FieldSpec{
	{Type: FieldText, Input: InputSingleLine},
	{Type: FieldNumber, Input: InputNumeric},
	{Type: FieldDate, Input: InputDate},
	{Type: FieldTextarea, Input: InputMultiLine},
	{Type: FieldBoolean, Input: InputToggle},
	{Type: FieldImage, Input: InputFile, Accept: "image/*", Media: true},
	{Type: FieldVideo, Input: InputFile, Accept: "video/*", Media: true},
	{Type: FieldFile, Input: InputFile, Media: true},
}

// FieldTypes returns the catalog in display order.
func FieldTypes() []FieldType {
	out := make([]FieldType, len(catalog))
	for i, spec := range catalog {
		out[i] = spec.Type
	}
	return out
}

// Lookup returns the catalog entry for t.
func Lookup(t FieldType) (FieldSpec, bool) {
	for _, spec := range catalog {
		if spec.Type == t {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// IsValid reports whether t belongs to the catalog.
func (t FieldType) IsValid() bool {
	_, ok := Lookup(t)
	return ok
}

// IsMedia reports whether values of t are uploaded file URLs.
func (t FieldType) IsMedia() bool {
	spec, ok := Lookup(t)
	return ok && spec.Media
}

// ParseFieldType turns user input into a catalog type.
func ParseFieldType(s string) (FieldType, error) {
	t := FieldType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}

// ParseInput converts textual input into the value stored for the field type.
// Number values stay numeric strings, booleans become bool, everything else is
// kept as the literal string. Media values are URLs; uploads go through the
// media protocol instead.
func (s FieldSpec) ParseInput(raw string) (any, error) {
	switch s.Type {
	case FieldNumber:
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", nil
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return v, nil
	case FieldDate:
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", nil
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return nil, fmt.Errorf("%q is not a date (want YYYY-MM-DD)", raw)
		}
		return v, nil
	case FieldBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

// Checked reports the toggle state of a boolean value. Both bool and the
// strings "true"/"false" are accepted.
func Checked(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

// FormatValue renders a stored value for display. Missing values render as the
// empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

var (
	imageURLRegex = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)
	videoURLRegex = regexp.MustCompile(`(?i)\.(mp4|mov|webm|mkv)$`)
)

// PreviewFor classifies a stored media URL.
func PreviewFor(url string) PreviewKind {
	switch {
	case url == "":
		return PreviewNone
	case imageURLRegex.MatchString(url):
		return PreviewImage
	case videoURLRegex.MatchString(url):
		return PreviewVideo
	default:
		return PreviewLink
	}
}
