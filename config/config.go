// Package config loads the YAML description of a UI build: the display,
// the fonts glyphs are rendered with and the screens with their elements.
//
// Relative paths in the file are resolved against the directory holding it.
package config

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/esimov/cgui/imop"
	"github.com/esimov/cgui/utils"
	"github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"
)

// Element types.
const (
	TypeNumber = "number"
	TypeFixed  = "fixed"
	TypeString = "string"
	TypeImage  = "image"
	TypeGroup  = "group"
	TypeBar    = "bar"
)

// Glyph compressions.
const (
	CompressionQOI        = "qoi"
	CompressionPackBits   = "packbits"
	CompressionMonochrome = "monochrome"
)

// Output charsets.
const (
	CharsetUTF8 = "utf-8"
	CharsetGBK  = "gbk"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Build is the root of a build description.
type Build struct {
	// Name is used for the generated file names and symbols.
	Name string `yaml:"name"`

	// Output is the directory the generated files are written to.
	// Default: dist
	Output string `yaml:"output"`

	// Charset of the generated sources.
	// Default: utf-8
	Charset string `yaml:"charset"`

	// Workers is the number of goroutines decoding source images.
	// Default: the number of CPUs
	Workers int `yaml:"workers"`

	Display Display  `yaml:"display"`
	Fonts   []Font   `yaml:"fonts"`
	Screens []Screen `yaml:"screens"`

	dir string
}

// Display is the target screen resolution.
type Display struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Font is a typeface text elements are rendered with.
type Font struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`

	// Size in points. Default: 16
	Size float64 `yaml:"size"`
	// DPI of the target display. Default: 72
	DPI float64 `yaml:"dpi"`

	Foreground string `yaml:"foreground"`
	// Background is left empty to keep the glyphs transparent.
	Background string `yaml:"background"`

	// Compression is one of qoi, packbits or monochrome. Default: qoi
	Compression string `yaml:"compression"`
	// Threshold is the luminance above which a monochrome pixel is set. Default: 127
	Threshold *int `yaml:"threshold,omitempty"`
}

// Screen is a single UI page.
type Screen struct {
	ID string `yaml:"id"`
	// Background image of the screen. When empty the screen is filled with Color.
	Background string    `yaml:"background"`
	Color      string    `yaml:"color"`
	Elements   []Element `yaml:"elements"`
}

// Rect is the area of an element on its screen.
type Rect struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// State is one conditional image of an image element.
type State struct {
	Condition string `yaml:"condition"`
	Image     string `yaml:"image"`
}

// Element is a dynamic part of a screen.
type Element struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
	Rect Rect   `yaml:"rect"`

	// Text elements.
	Font      string `yaml:"font"`
	Alphabet  string `yaml:"alphabet"`
	Align     string `yaml:"align"`
	Digits    int    `yaml:"digits"`
	MaxLength int    `yaml:"max_length"`

	// Image elements.
	States []State `yaml:"states"`
	Else   string  `yaml:"else"`

	// Group and bar elements.
	Full      string `yaml:"full"`
	Empty     string `yaml:"empty"`
	Direction string `yaml:"direction"`

	// KeepAlpha leaves the transparency of element images instead of drawing them over the screen background.
	KeepAlpha bool `yaml:"keep_alpha"`
	// Composite is the Porter-Duff operator element images are drawn with. Default: src_over
	Composite string `yaml:"composite"`
	// Blend optionally mixes element images with the background: darken, lighten, multiply, screen or overlay.
	Blend string `yaml:"blend"`
}

// Load reads, defaults and validates a build description.
func Load(path string) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the build file: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, err
	}
	b.dir = filepath.Dir(path)
	return b, nil
}

// Parse decodes, defaults and validates a build description.
func Parse(data []byte) (*Build, error) {
	b := &Build{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(b); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "could not decode the build file")
	}

	b.applyDefaults()
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Build) applyDefaults() {
	if b.Output == "" {
		b.Output = "dist"
	}
	if b.Charset == "" {
		b.Charset = CharsetUTF8
	}
	b.Charset = strings.ToLower(b.Charset)

	for i := range b.Fonts {
		f := &b.Fonts[i]
		if f.Size == 0 {
			f.Size = 16
		}
		if f.DPI == 0 {
			f.DPI = 72
		}
		if f.Foreground == "" {
			f.Foreground = "#ffffff"
		}
		if f.Compression == "" {
			f.Compression = CompressionQOI
		}
		if f.Threshold == nil {
			t := 127
			f.Threshold = &t
		}
	}
	for i := range b.Screens {
		for j := range b.Screens[i].Elements {
			e := &b.Screens[i].Elements[j]
			if e.Align == "" {
				e.Align = "left"
			}
			if e.Type == TypeBar && e.Direction == "" {
				e.Direction = "right"
			}
			if e.Composite == "" {
				e.Composite = imop.SrcOver
			}
		}
	}
}

func invalid(format string, args ...any) errors.PlatformError {
	return errors.Newf(errors.CodeInvalidConfig, format, args...)
}

// Validate checks the description for missing or inconsistent values.
func (b *Build) Validate() error {
	if !identifier.MatchString(b.Name) {
		return invalid("build name %q is not a valid identifier", b.Name)
	}
	if b.Charset != CharsetUTF8 && b.Charset != CharsetGBK {
		return invalid("unsupported charset %q", b.Charset)
	}
	if b.Workers < 0 {
		return invalid("workers must not be negative")
	}
	if b.Display.Width <= 0 || b.Display.Height <= 0 {
		return invalid("invalid display size %dx%d", b.Display.Width, b.Display.Height)
	}
	if len(b.Screens) == 0 {
		return invalid("no screens defined")
	}

	fonts := make(map[string]struct{}, len(b.Fonts))
	for _, f := range b.Fonts {
		if err := f.validate(); err != nil {
			return errors.WithContext(err, "font", f.Name)
		}
		if _, ok := fonts[f.Name]; ok {
			return errors.WithContext(invalid("duplicate font %q", f.Name), "font", f.Name)
		}
		fonts[f.Name] = struct{}{}
	}

	screens := make(map[string]struct{}, len(b.Screens))
	for _, s := range b.Screens {
		if !identifier.MatchString(s.ID) {
			return errors.WithContext(invalid("screen id %q is not a valid identifier", s.ID), "screen", s.ID)
		}
		if _, ok := screens[s.ID]; ok {
			return errors.WithContext(invalid("duplicate screen %q", s.ID), "screen", s.ID)
		}
		screens[s.ID] = struct{}{}

		if s.Background == "" && s.Color == "" {
			return errors.WithContext(invalid("screen %s needs a background image or color", s.ID), "screen", s.ID)
		}
		if s.Color != "" {
			if _, err := ParseColor(s.Color); err != nil {
				return errors.WithContext(err, "screen", s.ID)
			}
		}

		elements := make(map[string]struct{}, len(s.Elements))
		for _, e := range s.Elements {
			if _, ok := elements[e.ID]; ok {
				err := invalid("duplicate element %q in screen %s", e.ID, s.ID)
				return errors.WithContext(errors.WithContext(err, "screen", s.ID), "element", e.ID)
			}
			elements[e.ID] = struct{}{}

			if err := e.validate(b.Display, fonts); err != nil {
				return errors.WithContext(errors.WithContext(err, "screen", s.ID), "element", e.ID)
			}
		}
	}
	return nil
}

func (f Font) validate() error {
	if !identifier.MatchString(f.Name) {
		return invalid("font name %q is not a valid identifier", f.Name)
	}
	if f.File == "" {
		return invalid("font %s has no file", f.Name)
	}
	if f.Size <= 0 || f.DPI <= 0 {
		return invalid("font %s has an invalid size", f.Name)
	}
	if _, err := ParseColor(f.Foreground); err != nil {
		return err
	}
	if f.Background != "" {
		if _, err := ParseColor(f.Background); err != nil {
			return err
		}
	}
	if !utils.Contains([]string{CompressionQOI, CompressionPackBits, CompressionMonochrome}, f.Compression) {
		return invalid("font %s has an unsupported compression %q", f.Name, f.Compression)
	}
	if f.Threshold != nil && (*f.Threshold < 0 || *f.Threshold > 255) {
		return invalid("font %s threshold must be between 0 and 255", f.Name)
	}
	return nil
}

func (e Element) validate(d Display, fonts map[string]struct{}) error {
	if !identifier.MatchString(e.ID) {
		return invalid("element id %q is not a valid identifier", e.ID)
	}
	r := e.Rect
	if r.Width <= 0 || r.Height <= 0 || r.Left < 0 || r.Top < 0 ||
		r.Left+r.Width > d.Width || r.Top+r.Height > d.Height {
		return invalid("element %s lies outside of the %dx%d display", e.ID, d.Width, d.Height)
	}

	if e.Composite != "" {
		if err := imop.InitOp().Set(e.Composite); err != nil {
			return invalid("element %s: %v", e.ID, err)
		}
	}
	if e.Blend != "" {
		if err := imop.NewBlend().Set(e.Blend); err != nil {
			return invalid("element %s: %v", e.ID, err)
		}
	}

	switch e.Type {
	case TypeNumber, TypeFixed, TypeString:
		if _, ok := fonts[e.Font]; !ok {
			return invalid("element %s uses an unknown font %q", e.ID, e.Font)
		}
		if e.Alphabet == "" {
			return invalid("element %s has an empty alphabet", e.ID)
		}
		if !utils.Contains([]string{"left", "right", "center"}, e.Align) {
			return invalid("element %s has an unsupported alignment %q", e.ID, e.Align)
		}
	case TypeImage:
		if e.Else == "" {
			return invalid("image element %s needs an else image", e.ID)
		}
		for _, s := range e.States {
			if s.Condition == "" || s.Image == "" {
				return invalid("image element %s has an incomplete state", e.ID)
			}
		}
	case TypeGroup, TypeBar:
		if e.Full == "" || e.Empty == "" {
			return invalid("%s element %s needs full and empty images", e.Type, e.ID)
		}
		if e.Type == TypeBar && !utils.Contains([]string{"left", "right", "top", "bottom"}, e.Direction) {
			return invalid("bar element %s has an unsupported direction %q", e.ID, e.Direction)
		}
	default:
		return invalid("element %s has an unsupported type %q", e.ID, e.Type)
	}
	return nil
}

// Path resolves a path of the description against its directory.
// URLs and absolute paths are returned unchanged.
func (b *Build) Path(p string) string {
	if p == "" || utils.IsValidUrl(p) || filepath.IsAbs(p) || b.dir == "" {
		return p
	}
	return filepath.Join(b.dir, p)
}

// ParseColor parses #rgb, #rrggbb and #rrggbbaa colors.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 || !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, invalid("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, invalid("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
