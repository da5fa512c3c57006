package emit

import (
	"bytes"
	"io"

	"github.com/esimov/cgui"
	"github.com/esimov/cgui/fontpool"
	"github.com/fxamacker/cbor/v2"
	"github.com/jmgilman/go/errors"
	"github.com/klauspost/compress/zstd"
)

// ManifestVersion is bumped whenever the manifest layout changes.
const ManifestVersion = 1

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): the same
// generation always produces identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("emit: CBOR encoder initialization failed: " + err.Error())
	}
}

// Manifest is the machine readable form of a generation.
type Manifest struct {
	Version  int              `cbor:"version"`
	Name     string           `cbor:"name"`
	DataSize int              `cbor:"data_size"`
	Images   []ManifestImage  `cbor:"images"`
	Objects  []ManifestObject `cbor:"objects,omitempty"`
	Pools    []ManifestPool   `cbor:"pools,omitempty"`
	Fonts    []ManifestFont   `cbor:"fonts,omitempty"`
	Screens  []ManifestScreen `cbor:"screens"`
}

type ManifestImage struct {
	Name   string `cbor:"name"`
	Digest string `cbor:"digest"`
	Width  int    `cbor:"width"`
	Height int    `cbor:"height"`
	Data   []byte `cbor:"data"`
}

type ManifestObject struct {
	Name   string `cbor:"name"`
	Image  string `cbor:"image"`
	Width  int    `cbor:"width"`
	Height int    `cbor:"height"`
}

type ManifestPool struct {
	Name string `cbor:"name"`
	Font string `cbor:"font"`
	Data []byte `cbor:"data"`
}

// ManifestGlyph maps a character code to its offset in the font pool.
type ManifestGlyph struct {
	Code   int `cbor:"code"`
	Offset int `cbor:"offset"`
	Width  int `cbor:"width"`
}

type ManifestFont struct {
	ID          string          `cbor:"id"`
	AliasOf     string          `cbor:"alias_of,omitempty"`
	Pool        string          `cbor:"pool,omitempty"`
	Strategy    string          `cbor:"strategy,omitempty"`
	Compression string          `cbor:"compression,omitempty"`
	Width       int             `cbor:"width,omitempty"`
	Height      int             `cbor:"height,omitempty"`
	Glyphs      []ManifestGlyph `cbor:"glyphs,omitempty"`
}

type ManifestElement struct {
	ID     string            `cbor:"id"`
	Type   string            `cbor:"type"`
	Rect   [4]int            `cbor:"rect"`
	Font   string            `cbor:"font,omitempty"`
	Fill   string            `cbor:"fill,omitempty"`
	Images []cgui.StateImage `cbor:"images,omitempty"`
}

type ManifestScreen struct {
	Name       string            `cbor:"name"`
	Width      int               `cbor:"width"`
	Height     int               `cbor:"height"`
	Background string            `cbor:"background"`
	Elements   []ManifestElement `cbor:"elements,omitempty"`
}

// NewManifest collects the content of a generation. Undefined slots of
// LINEAR tables are left out.
func NewManifest(out *cgui.Output) *Manifest {
	m := &Manifest{
		Version:  ManifestVersion,
		Name:     out.Name,
		DataSize: out.DataSize,
	}
	for _, img := range out.Images {
		m.Images = append(m.Images, ManifestImage{
			Name:   img.Name,
			Digest: img.Digest,
			Width:  img.Width,
			Height: img.Height,
			Data:   img.Data,
		})
	}
	for _, obj := range out.Objects {
		m.Objects = append(m.Objects, ManifestObject(obj))
	}
	for _, p := range out.Pools {
		m.Pools = append(m.Pools, ManifestPool(p))
	}
	for _, f := range out.Fonts {
		mf := ManifestFont{ID: f.ID, AliasOf: f.AliasOf}
		if f.AliasOf == "" {
			t := f.Table
			mf.Pool, mf.Strategy, mf.Compression = t.Pool, t.Strategy.String(), t.Compression.String()
			mf.Width, mf.Height = t.Width, t.Height
			for _, e := range append(t.ASCII[:len(t.ASCII):len(t.ASCII)], t.GBK...) {
				if e.Offset == fontpool.Undefined {
					continue
				}
				mf.Glyphs = append(mf.Glyphs, ManifestGlyph{Code: e.Code, Offset: e.Offset, Width: e.Width})
			}
		}
		m.Fonts = append(m.Fonts, mf)
	}
	for _, s := range out.Screens {
		ms := ManifestScreen{Name: s.Name, Width: s.Width, Height: s.Height, Background: s.Background}
		for _, e := range s.Elements {
			me := ManifestElement{
				ID:     e.ID,
				Type:   e.Type.String(),
				Rect:   [4]int{e.Rect.Min.X, e.Rect.Min.Y, e.Rect.Dx(), e.Rect.Dy()},
				Font:   e.Font,
				Images: e.Images,
			}
			if e.Type == cgui.TypeText {
				me.Fill = fillExpr(e.Fill)
			}
			ms.Elements = append(ms.Elements, me)
		}
		m.Screens = append(m.Screens, ms)
	}
	return m
}

// WriteManifest encodes the manifest of out as deterministic CBOR,
// zstd compressed when compress is set.
func WriteManifest(w io.Writer, out *cgui.Output, compress bool) error {
	data, err := encMode.Marshal(NewManifest(out))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "could not encode the manifest")
	}
	if !compress {
		_, err = w.Write(data)
		return err
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// ReadManifest decodes a manifest written by WriteManifest, compressed or not.
func ReadManifest(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, zstdMagic) {
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		if data, err = zr.DecodeAll(data, nil); err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "could not decompress the manifest")
		}
	}

	m := &Manifest{}
	if err := cbor.Unmarshal(data, m); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "could not decode the manifest")
	}
	if m.Version != ManifestVersion {
		return nil, errors.Newf(errors.CodeInvalidInput, "unsupported manifest version %d", m.Version)
	}
	return m, nil
}
