package cgui

import (
	"encoding/binary"
	"image"

	"github.com/disintegration/imaging"
	"github.com/esimov/cgui/cache"
	"github.com/esimov/cgui/imop"
	"github.com/esimov/cgui/qoi"
)

// rectKey serialises a rectangle as four little endian uint32 values.
func rectKey(r image.Rectangle) []byte {
	key := make([]byte, 16)
	binary.LittleEndian.PutUint32(key[0:], uint32(r.Min.X))
	binary.LittleEndian.PutUint32(key[4:], uint32(r.Min.Y))
	binary.LittleEndian.PutUint32(key[8:], uint32(r.Dx()))
	binary.LittleEndian.PutUint32(key[12:], uint32(r.Dy()))
	return key
}

// textureFill works out what has to be painted behind a text element: the
// background color if the area is uniform, a croppable copy of the area otherwise.
// Results are memoized per screen.
func (g *Generator) textureFill(memo *cache.Cache[Fill], bg *image.NRGBA, rect image.Rectangle) (Fill, error) {
	return memo.ComputeIfAbsent(rectKey(rect), func([]byte, string) (Fill, error) {
		area := rect.Intersect(bg.Bounds())
		if area.Empty() {
			return Fill{}, nil
		}
		crop := imaging.Crop(bg, area)
		if c, ok := imop.IsUniform(crop); ok {
			return Fill{Color: qoi.RGB565(c.R, c.G, c.B)}, nil
		}

		name, err := g.AddCroppableImage(crop, "Texture fill "+rect.String())
		if err != nil {
			return Fill{}, err
		}
		g.textureFill = true
		return Fill{Image: name}, nil
	})
}
