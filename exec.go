package cgui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/esimov/cgui/config"
	"github.com/esimov/cgui/fontpool"
	"github.com/esimov/cgui/qoi"
	"github.com/esimov/cgui/raster"
	"github.com/esimov/cgui/utils"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// ValidExtensions lists the supported source image extensions.
var ValidExtensions = []string{".jpg", ".png", ".jpeg", ".bmp", ".gif"}

// Ops runs a build: source images are fetched and decoded concurrently,
// everything else happens on the calling goroutine in description order.
type Ops struct {
	Workers int
}

// result holds a decoded source image or the reason it could not be decoded.
type result struct {
	index int
	path  string
	img   image.Image
	err   error
}

type job struct {
	index int
	path  string
}

// workers returns the number of goroutines decoding n sources when w are requested.
func workers(w, n int) int {
	if w <= 0 || w > maxWorkers {
		w = runtime.NumCPU()
	}
	return utils.Max(1, utils.Min(w, n))
}

// Execute generates the assets of a build description.
func (op *Ops) Execute(ctx context.Context, b *config.Build) (*Output, error) {
	w := op.Workers
	if w == 0 {
		w = b.Workers
	}

	paths, index := collectImages(b)
	images, err := op.decodeAll(ctx, w, paths, b.Path)
	if err != nil {
		return nil, err
	}
	lookup := func(src string) image.Image {
		return images[index[src]]
	}

	faces := make(map[string]*raster.Face, len(b.Fonts))
	styles := make(map[string]FontStyle, len(b.Fonts))
	defer func() {
		for _, f := range faces {
			f.Close()
		}
	}()
	for _, f := range b.Fonts {
		face, err := raster.Open(b.Path(f.File), f.Size, f.DPI)
		if err != nil {
			return nil, fmt.Errorf("could not load font %s: %w", f.Name, err)
		}
		faces[f.Name] = face
		if styles[f.Name], err = fontStyle(f); err != nil {
			return nil, err
		}
	}

	g := NewGenerator(b.Name, WithLogger(utils.Logger()))
	for _, s := range b.Screens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		screenColor := color.NRGBA{A: 0xff}
		if s.Color != "" {
			if screenColor, err = config.ParseColor(s.Color); err != nil {
				return nil, err
			}
		}

		var bg *image.NRGBA
		if s.Background != "" {
			bg = FitImage(lookup(s.Background), b.Display.Width, b.Display.Height)
		} else {
			bg = UniformImage(b.Display.Width, b.Display.Height, screenColor)
		}

		elements := make([]Element, 0, len(s.Elements))
		for _, e := range s.Elements {
			el, err := newElement(e, bg, screenColor, lookup, faces, styles)
			if err != nil {
				return nil, fmt.Errorf("screen %s: %w", s.ID, err)
			}
			elements = append(elements, el)
		}
		if err := g.AddScreen(s.ID, bg, elements...); err != nil {
			return nil, err
		}
	}
	return g.Finish()
}

// collectImages lists the distinct image sources of a build in description order.
func collectImages(b *config.Build) ([]string, map[string]int) {
	var paths []string
	index := make(map[string]int)
	add := func(src string) {
		if src == "" {
			return
		}
		if _, ok := index[src]; !ok {
			index[src] = len(paths)
			paths = append(paths, src)
		}
	}
	for _, s := range b.Screens {
		add(s.Background)
		for _, e := range s.Elements {
			for _, st := range e.States {
				add(st.Image)
			}
			add(e.Else)
			add(e.Full)
			add(e.Empty)
		}
	}
	return paths, index
}

// decodeAll fetches and decodes the images concurrently. The results are
// returned in the order of paths whatever order the workers finish in.
func (op *Ops) decodeAll(ctx context.Context, w int, paths []string, resolve func(string) string) ([]image.Image, error) {
	images := make([]image.Image, len(paths))
	if len(paths) == 0 {
		return images, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job)
	res := make(chan result)

	go func() {
		defer close(jobs)
		for i, p := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{index: i, path: p}:
			}
		}
	}()

	var wg sync.WaitGroup
	n := workers(w, len(paths))
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			op.consumer(ctx, jobs, res, func(p string) (image.Image, error) {
				data, err := utils.ReadImageFile(ctx, resolve(p))
				if err != nil {
					return nil, err
				}
				return DecodeImage(data)
			})
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(res)
		wg.Wait()
	}()

	var errs []error
	for r := range res {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("image %s: %w", r.path, r.err))
			cancel()
			continue
		}
		images[r.index] = r.img
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return images, ctx.Err()
}

// consumer reads the jobs channel and decodes each source until the context is done.
func (op *Ops) consumer(
	ctx context.Context,
	jobs <-chan job,
	res chan<- result,
	decode func(string) (image.Image, error),
) {
	for j := range jobs {
		img, err := decode(j.path)
		select {
		case <-ctx.Done():
			return
		case res <- result{index: j.index, path: j.path, img: img, err: err}:
		}
	}
}

func fontStyle(f config.Font) (FontStyle, error) {
	style := DefaultFontStyle
	var err error
	if style.Foreground, err = config.ParseColor(f.Foreground); err != nil {
		return style, err
	}
	if f.Background != "" {
		if style.Background, err = config.ParseColor(f.Background); err != nil {
			return style, err
		}
	}
	switch f.Compression {
	case config.CompressionPackBits:
		style.Compression = fontpool.CompressionPackBits
	case config.CompressionMonochrome:
		style.Compression = fontpool.CompressionMonochrome
	default:
		style.Compression = fontpool.CompressionQOI
	}
	if f.Threshold != nil {
		style.Threshold = uint8(utils.Clamp(*f.Threshold, 0, 255))
	}
	return style, nil
}

func newElement(
	e config.Element,
	bg *image.NRGBA,
	screen color.NRGBA,
	lookup func(string) image.Image,
	faces map[string]*raster.Face,
	styles map[string]FontStyle,
) (Element, error) {
	rect := image.Rect(e.Rect.Left, e.Rect.Top, e.Rect.Left+e.Rect.Width, e.Rect.Top+e.Rect.Height)
	comp := Composition{KeepAlpha: e.KeepAlpha, Operator: e.Composite, Blend: e.Blend, Screen: screen}

	var err error
	compose := func(src string) image.Image {
		img, cerr := ComposeElement(bg, lookup(src), rect, comp)
		if cerr != nil && err == nil {
			err = cerr
		}
		return img
	}

	switch e.Type {
	case config.TypeNumber, config.TypeFixed, config.TypeString:
		kind := map[string]TextKind{
			config.TypeNumber: Number,
			config.TypeFixed:  Fixed,
			config.TypeString: String,
		}[e.Type]
		el := NewTextElement(e.ID, rect, kind, faces[e.Font], e.Font, styles[e.Font], e.Alphabet)
		el.Align = map[string]Align{"left": AlignLeft, "right": AlignRight, "center": AlignCenter}[e.Align]
		el.Digits, el.MaxLength = e.Digits, e.MaxLength
		return el, nil
	case config.TypeImage:
		states := make([]ImageState, len(e.States))
		for i, s := range e.States {
			states[i] = ImageState{Condition: s.Condition, Image: compose(s.Image)}
		}
		el := NewImageElement(e.ID, rect, compose(e.Else), states...)
		if err != nil {
			return nil, err
		}
		return el, nil
	case config.TypeGroup:
		el := NewGroupElement(e.ID, rect, compose(e.Full), compose(e.Empty))
		if err != nil {
			return nil, err
		}
		return el, nil
	case config.TypeBar:
		dir := map[string]Direction{"right": DirRight, "left": DirLeft, "top": DirTop, "bottom": DirBottom}[e.Direction]
		el := NewBarElement(e.ID, rect, dir, compose(e.Full), compose(e.Empty))
		if err != nil {
			return nil, err
		}
		return el, nil
	}
	return nil, utils.InputShapeError("element %s has an unsupported type %q", e.ID, e.Type)
}

// EncodedFile is a standalone image encoded outside of a build.
type EncodedFile struct {
	Path  string
	Image *qoi.Image
}

// EncodeFiles encodes a single image, or every supported image below a
// directory, without deduplication or fonts. Results are sorted by path.
func (op *Ops) EncodeFiles(ctx context.Context, src string) ([]EncodedFile, error) {
	fi, err := os.Stat(src)
	if err != nil && !utils.IsValidUrl(src) {
		return nil, fmt.Errorf("failed to load the source image: %w", err)
	}

	var paths []string
	if err == nil && fi.IsDir() {
		done := make(chan struct{})
		defer close(done)
		pathc, errc := walkDir(done, src, ValidExtensions)
		for p := range pathc {
			paths = append(paths, p)
		}
		if err := <-errc; err != nil {
			return nil, err
		}
	} else {
		paths = []string{src}
	}

	images, err := op.decodeAll(ctx, op.Workers, paths, func(p string) string { return p })
	if err != nil {
		return nil, err
	}

	enc := qoi.NewEncoder(qoi.WithLogger(utils.Logger()))
	files := make([]EncodedFile, 0, len(paths))
	for i, p := range paths {
		img, err := enc.EncodeImage(images[i])
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", p, err)
		}
		files = append(files, EncodedFile{Path: p, Image: img})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(done <-chan struct{}, src string, exts []string) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() || !utils.Contains(exts, filepath.Ext(path)) {
				return nil
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}
