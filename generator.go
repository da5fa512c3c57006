package cgui

import (
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/esimov/cgui/cache"
	"github.com/esimov/cgui/fontpool"
	"github.com/esimov/cgui/imop"
	"github.com/esimov/cgui/qoi"
	"github.com/esimov/cgui/utils"
	"github.com/jmgilman/go/errors"
)

const (
	imagePrefix  = "_CG_IMAGE_"
	objectPrefix = "_CG_IMAGE_OBJ_"

	// objectSize is the ROM footprint of a CG_Image: data pointer and two 16 bit sizes.
	objectSize = 8
	// fontHeaderSize is the ROM footprint of a CG_Font descriptor.
	fontHeaderSize = 19
)

// ImageAsset is an encoded image stored once per distinct content.
type ImageAsset struct {
	Name        string
	Description string
	Digest      string
	Data        []byte
	Width       int
	Height      int
}

// ImageObject pairs encoded image data with its dimensions, so that
// the display can crop it.
type ImageObject struct {
	Name   string
	Image  string
	Width  int
	Height int
}

// FontAsset is a finished font. Aliased fonts share the tables of AliasOf.
type FontAsset struct {
	ID      string
	AliasOf string
	Table   *fontpool.Table
}

// Fill paints the area behind text: a solid RGB565 color, or a croppable
// image object when the area is textured.
type Fill struct {
	Color uint16
	Image string
}

// IsImage reports whether the fill uses a texture.
func (f Fill) IsImage() bool {
	return f.Image != ""
}

// StateImage is one of the images of an element. Key is the condition of
// an image element state, or one of "else", "full" and "empty".
type StateImage struct {
	Key   string
	Image string
}

// ElementAssets lists the assets generated for one element.
type ElementAssets struct {
	ID     string
	Type   ElementType
	Rect   image.Rectangle
	Images []StateImage

	// Text elements only.
	Font  string
	Fill  Fill
	Kind  TextKind
	Align Align

	// Bar elements only.
	Direction Direction
}

// ScreenAssets lists the assets of one screen.
type ScreenAssets struct {
	Name       string
	Width      int
	Height     int
	Background string
	Elements   []ElementAssets
}

// Output is everything a generation produced, ready to be emitted.
type Output struct {
	Name        string
	Images      []ImageAsset
	Objects     []ImageObject
	Pools       []fontpool.Buffer
	Fonts       []FontAsset
	Screens     []ScreenAssets
	Warnings    []fontpool.Warning
	DataSize    int
	TextureFill bool
	GBK         bool
	// Compressions lists the glyph compressions in use.
	Compressions []fontpool.Compression
}

type fontRef struct {
	id      string
	builder *fontpool.Builder
}

// Generator is the state of a single generation: every image, font and
// screen added to it ends up in one Output. A Generator is not safe for
// concurrent use.
type Generator struct {
	name    string
	encoder *qoi.Encoder
	logger  *slog.Logger

	images  *cache.Cache[string]
	assets  []ImageAsset
	objects map[string]ImageObject
	objList []ImageObject

	pool    *fontpool.Pool
	fonts   []fontRef
	fontIDs map[string]string

	screens     []ScreenAssets
	textureFill bool
	dataSize    int
	finished    bool
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger of the generator and of the encoders it creates.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator starts a generation. The name prefixes the font symbols.
func NewGenerator(name string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		name:    name,
		logger:  utils.Logger(),
		images:  cache.New[string](),
		objects: make(map[string]ImageObject),
		fontIDs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.encoder = qoi.NewEncoder(qoi.WithLogger(g.logger))
	g.pool = fontpool.New(fontpool.WithLogger(g.logger))
	return g
}

// AddImage encodes img and stores it unless identical data is already
// present. It returns the symbol of the image data.
func (g *Generator) AddImage(img image.Image, desc string) (string, error) {
	enc, err := g.encoder.EncodeImage(img)
	if err != nil {
		return "", fmt.Errorf("could not encode %s: %w", desc, err)
	}
	return g.addEncoded(enc, desc)
}

func (g *Generator) addEncoded(enc *qoi.Image, desc string) (string, error) {
	return g.images.ComputeIfAbsent(enc.Data, func(data []byte, digest string) (string, error) {
		name := imagePrefix + digest[:32]
		g.assets = append(g.assets, ImageAsset{
			Name:        name,
			Description: desc,
			Digest:      digest,
			Data:        data,
			Width:       enc.Width,
			Height:      enc.Height,
		})
		g.dataSize += len(data)
		g.logger.Debug("image added", "name", name, "size", len(data), "width", enc.Width, "height", enc.Height)
		return name, nil
	})
}

// AddCroppableImage stores img like AddImage and wraps it in an image
// object carrying its dimensions. It returns the symbol of the object.
func (g *Generator) AddCroppableImage(img image.Image, desc string) (string, error) {
	enc, err := g.encoder.EncodeImage(img)
	if err != nil {
		return "", fmt.Errorf("could not encode %s: %w", desc, err)
	}
	data, err := g.addEncoded(enc, desc)
	if err != nil {
		return "", err
	}

	name := strings.Replace(data, imagePrefix, objectPrefix, 1)
	if obj, ok := g.objects[name]; ok {
		if obj.Width == enc.Width && obj.Height == enc.Height {
			return name, nil
		}
		// Identical streams can describe images of different shapes.
		name = fmt.Sprintf("%s_%dx%d", name, enc.Width, enc.Height)
		if _, ok := g.objects[name]; ok {
			return name, nil
		}
	}

	obj := ImageObject{Name: name, Image: data, Width: enc.Width, Height: enc.Height}
	g.objects[name] = obj
	g.objList = append(g.objList, obj)
	g.dataSize += objectSize
	return name, nil
}

// AddScreen adds the background and the elements of a screen. Images are
// added before fonts, so glyph placement does not depend on image order.
func (g *Generator) AddScreen(id string, background image.Image, elements ...Element) error {
	if g.finished {
		return errors.New(errors.CodeConflict, "generation already finished")
	}

	bg := imop.ToNRGBA(background)
	sa := ScreenAssets{
		Name:   id,
		Width:  bg.Bounds().Dx(),
		Height: bg.Bounds().Dy(),
	}

	bgName, err := g.AddImage(bg, "Background "+id)
	if err != nil {
		return errors.WithContext(err, "screen", id)
	}
	sa.Background = bgName

	fills := cache.New[Fill]()
	assets := make([]ElementAssets, len(elements))

	for i, el := range elements {
		ea, err := g.addElementImages(id, el)
		if err != nil {
			return errors.WithContext(errors.WithContext(err, "screen", id), "element", el.ElementID())
		}
		assets[i] = ea
	}

	for i, el := range elements {
		t, ok := el.(*TextElement)
		if !ok {
			continue
		}
		fontID, err := g.AddFont(id+"_"+t.ID, t.Font, t.Alphabet, t.Style)
		if err != nil {
			return errors.WithContext(errors.WithContext(err, "screen", id), "element", t.ID)
		}
		fill, err := g.textureFill(fills, bg, t.Rect)
		if err != nil {
			return errors.WithContext(errors.WithContext(err, "screen", id), "element", t.ID)
		}
		assets[i].Font = fontID
		assets[i].Fill = fill
	}

	sa.Elements = assets
	g.screens = append(g.screens, sa)
	return nil
}

func (g *Generator) addElementImages(screen string, el Element) (ElementAssets, error) {
	ea := ElementAssets{
		ID:   el.ElementID(),
		Type: TypeOf(el),
		Rect: el.Bounds(),
	}
	add := func(key string, img image.Image, croppable bool) error {
		if img == nil {
			return utils.InputShapeError("missing %s image", key)
		}
		desc := fmt.Sprintf("Image %s.%s [%s]", screen, el.ElementID(), key)
		add := g.AddImage
		if croppable {
			add = g.AddCroppableImage
		}
		name, err := add(img, desc)
		if err != nil {
			return err
		}
		ea.Images = append(ea.Images, StateImage{Key: key, Image: name})
		return nil
	}

	var err error
	switch e := el.(type) {
	case *TextElement:
		ea.Kind, ea.Align = e.Kind, e.Align
	case *ImageElement:
		for _, s := range e.States {
			if err = add(s.Condition, s.Image, false); err != nil {
				return ea, err
			}
		}
		err = add("else", e.Else, false)
	case *GroupElement:
		if err = add("full", e.Full, false); err == nil {
			err = add("empty", e.Empty, false)
		}
	case *BarElement:
		ea.Direction = e.Direction
		if err = add("full", e.Full, true); err == nil {
			err = add("empty", e.Empty, true)
		}
	default:
		err = utils.InputShapeError("unsupported element %T", el)
	}
	return ea, err
}

// Finish settles every font merge and returns the generated assets.
func (g *Generator) Finish() (*Output, error) {
	if g.finished {
		return nil, errors.New(errors.CodeConflict, "generation already finished")
	}
	g.finished = true

	out := &Output{
		Name:        g.name,
		Images:      g.assets,
		Objects:     g.objList,
		Screens:     g.screens,
		TextureFill: g.textureFill,
	}

	reg := fontpool.NewRegistry()
	used := make(map[fontpool.Compression]bool)
	for _, f := range g.fonts {
		t, err := f.builder.Table()
		if err != nil {
			return nil, errors.WithContext(err, "font", f.builder.Name())
		}
		reg.Add(f.id, t)
		if len(t.GBK) > 0 {
			out.GBK = true
		}
		if !used[t.Compression] {
			used[t.Compression] = true
			out.Compressions = append(out.Compressions, t.Compression)
		}
	}

	size := g.dataSize
	for _, f := range reg.Fonts() {
		out.Fonts = append(out.Fonts, FontAsset{ID: f.ID, AliasOf: f.AliasOf, Table: f.Table})
		if f.AliasOf == "" {
			size += tableSize(f.Table)
		}
	}
	for _, p := range g.pool.Pools() {
		out.Pools = append(out.Pools, p)
		size += len(p.Data)
	}

	// Screens keep referring to the fonts they created; point them to the survivors.
	for i := range out.Screens {
		for j := range out.Screens[i].Elements {
			if id := out.Screens[i].Elements[j].Font; id != "" {
				out.Screens[i].Elements[j].Font = reg.Resolve(id)
			}
		}
	}

	out.Warnings = g.pool.Warnings()
	out.DataSize = size
	return out, nil
}

func tableSize(t *fontpool.Table) int {
	// A LINEAR table already holds one slot per code of its range.
	return fontHeaderSize + len(t.ASCII)*4 + len(t.GBK)*6
}
