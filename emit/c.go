package emit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/esimov/cgui"
	"github.com/esimov/cgui/fontpool"
)

const rule = "// ================================================================================="

// Options controls the generated sources.
type Options struct {
	// Charset of the written text, utf-8 or gbk.
	Charset string
	// Generated is printed in the banner unless zero, which keeps the output reproducible.
	Generated time.Time
}

// SourceName and HeaderName return the file names of a generation.
func SourceName(out *cgui.Output) string { return "cgui_" + out.Name + ".c" }
func HeaderName(out *cgui.Output) string { return "cgui_" + out.Name + ".h" }

// WriteBuffer prints data as a static C byte array.
func WriteBuffer(w io.Writer, desc, name string, data []byte) error {
	var sb strings.Builder
	printBuffer(&sb, "static const uint8_t", desc, name, data)
	_, err := io.WriteString(w, sb.String())
	return err
}

// printBuffer writes the bytes of data in lines of at least 80 characters.
func printBuffer(sb *strings.Builder, decl, desc, name string, data []byte) {
	fmt.Fprintf(sb, "/* %s, Size: %d bytes */\n", desc, len(data))
	fmt.Fprintf(sb, "%s %s[] = {", decl, name)

	line := make([]byte, 0, 96)
	for _, b := range data {
		if len(line) >= 80 {
			sb.WriteByte('\n')
			sb.Write(line)
			line = line[:0]
		}
		line = strconv.AppendUint(line, uint64(b), 10)
		line = append(line, ',')
	}
	if len(line) > 0 {
		sb.WriteByte('\n')
		sb.Write(line)
	}
	sb.WriteString("\n};\n")
}

func banner(sb *strings.Builder, out *cgui.Output, what string, opts Options) {
	names := make([]string, len(out.Screens))
	for i, s := range out.Screens {
		names[i] = s.Name
	}

	sb.WriteString(rule + "\n")
	sb.WriteString("// Do not edit: generated by cgui\n")
	fmt.Fprintf(sb, "// CGUI screens %s %s\n", strings.Join(names, ","), what)
	sb.WriteString("// " + resolution(out) + "\n")
	fmt.Fprintf(sb, "// ROM usage (approx.): %d bytes\n", out.DataSize)
	if !opts.Generated.IsZero() {
		fmt.Fprintf(sb, "// Generated: %s\n", opts.Generated.Format(time.DateTime))
	}
	sb.WriteString(rule + "\n")
}

func resolution(out *cgui.Output) string {
	if len(out.Screens) == 0 {
		return "Resolution: none"
	}
	w, h := out.Screens[0].Width, out.Screens[0].Height
	for _, s := range out.Screens[1:] {
		if s.Width != w || s.Height != h {
			return "Resolution: varies"
		}
	}
	return fmt.Sprintf("Resolution: %d x %d", w, h)
}

// WriteC writes the C source holding the images, the font pools and the font tables.
func WriteC(w io.Writer, out *cgui.Output, opts Options) error {
	var sb strings.Builder
	banner(&sb, out, "resources", opts)
	fmt.Fprintf(&sb, "#include \"%s\"\n\n", HeaderName(out))

	sb.WriteString("// 1. Images: QOI565\n")
	for _, img := range out.Images {
		printBuffer(&sb, "const uint8_t", img.Description, img.Name, img.Data)
	}
	for _, obj := range out.Objects {
		fmt.Fprintf(&sb, "const CG_Image %s = { %s, %d, %d };\n", obj.Name, obj.Image, obj.Width, obj.Height)
	}

	sb.WriteString("\n// 2. Fonts: FontPool / [SortedFontMap | IndexedFontMap] / CG_Font\n")
	for _, p := range out.Pools {
		printBuffer(&sb, "static const uint8_t", "IndexedFontPool "+p.Font, p.Name, p.Data)
	}
	for _, f := range out.Fonts {
		if f.AliasOf != "" {
			continue
		}
		writeFont(&sb, f)
	}

	return encodeTo(w, sb.String(), opts.Charset)
}

func writeFont(sb *strings.Builder, f cgui.FontAsset) {
	t := f.Table
	fmt.Fprintf(sb, "// Font bitmaps %s [%s]\n", t.Font, t.Alphabet)

	asciiMap, gbkMap := "NULL", "NULL"
	if len(t.ASCII) > 0 {
		asciiMap = f.ID + "_MAP_ASCII"
		writeMap(sb, asciiMap, t.ASCII, false, t.Monospace, t.Strategy)
	}
	if len(t.GBK) > 0 {
		gbkMap = f.ID + "_MAP_GBK"
		writeMap(sb, gbkMap, t.GBK, true, t.Monospace, fontpool.Binary)
	}

	width := 0
	if t.Monospace {
		width = t.Width
	}
	asciiOffset := 0
	if t.Strategy == fontpool.Linear {
		asciiOffset = t.ASCIIOffset
	}

	fmt.Fprintf(sb, `const CG_Font %s = {
    .ascii_map = (pointer)%s,
    .ascii_cnt = %d,
    .ascii_offset = %d,

    .gbk_map = (pointer)%s,
    .gbk_cnt = %d,

    .pool = (pointer)%s,

    .width = %d,
    .height = %d,

    .compression = %s
};
`, f.ID, asciiMap, len(t.ASCII), asciiOffset, gbkMap, len(t.GBK), t.Pool, width, t.Height, t.Compression)
}

func writeMap(sb *strings.Builder, name string, entries []fontpool.Entry, wide, monospace bool, s fontpool.Strategy) {
	var decl string
	switch {
	case s == fontpool.Linear && monospace:
		decl = "uint16_t"
	case s == fontpool.Linear:
		decl = "struct { uint16_t offset; uint8_t width; }"
	default:
		code := "uint8_t"
		if wide {
			code = "uint16_t"
		}
		if monospace {
			decl = fmt.Sprintf("struct { uint16_t offset; %s code; }", code)
		} else {
			decl = fmt.Sprintf("struct { uint16_t offset; %s code; uint8_t width; }", code)
		}
	}

	items := make([]string, len(entries))
	for i, e := range entries {
		switch {
		case s == fontpool.Linear && e.Offset == fontpool.Undefined:
			items[i] = "CG_FontData_Undef"
			if !monospace {
				items[i] = "{ CG_FontData_Undef, 0 }"
			}
		case s == fontpool.Linear && monospace:
			items[i] = strconv.Itoa(e.Offset)
		case s == fontpool.Linear:
			items[i] = fmt.Sprintf("{ %d, %d }", e.Offset, e.Width)
		case monospace:
			items[i] = fmt.Sprintf("{ %d, %s }", e.Offset, charLiteral(e, wide))
		default:
			items[i] = fmt.Sprintf("{ %d, %s, %d }", e.Offset, charLiteral(e, wide), e.Width)
		}
	}
	fmt.Fprintf(sb, "static const %s %s[] = {\n    %s\n};\n", decl, name, strings.Join(items, ",\n    "))
}

func charLiteral(e fontpool.Entry, wide bool) string {
	switch {
	case wide:
		return fmt.Sprintf("0x%X", e.Code)
	case e.Code == '\'' || e.Code == '\\':
		return `'\` + string(rune(e.Code)) + `'`
	case e.Code >= 0x20 && e.Code < 0x7f:
		return "'" + string(rune(e.Code)) + "'"
	}
	return strconv.Itoa(e.Code)
}

// WriteHeader writes the header declaring the generated symbols and
// naming the assets of every screen element.
func WriteHeader(w io.Writer, out *cgui.Output, opts Options) error {
	var sb strings.Builder
	guard := "_CG_" + strings.ToUpper(out.Name) + "_H"

	banner(&sb, out, "declarations", opts)
	fmt.Fprintf(&sb, "\n#ifndef %s\n#define %s\n\n", guard, guard)
	sb.WriteString("#include <stdint.h>\n#include <stdbool.h>\n#include \"cgui.h\"\n\n")
	sb.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	if out.TextureFill {
		sb.WriteString("#define CG_TEXTURE_FILL\n")
	}
	if out.GBK {
		sb.WriteString("#define CG_GBK\n")
	}
	qoiUsed := len(out.Images) > 0
	for _, c := range out.Compressions {
		if c == fontpool.CompressionQOI {
			qoiUsed = true
			continue
		}
		fmt.Fprintf(&sb, "#define %s_Used\n", c)
	}
	if qoiUsed {
		fmt.Fprintf(&sb, "#define %s_Used\n", fontpool.CompressionQOI)
	}
	sb.WriteString("#ifndef CG_FontData_Undef\n")
	fmt.Fprintf(&sb, "#define CG_FontData_Undef 0x%X\n", fontpool.Undefined)
	sb.WriteString("#endif\n\n")

	for _, img := range out.Images {
		fmt.Fprintf(&sb, "extern const uint8_t %s[];\n", img.Name)
	}
	for _, obj := range out.Objects {
		fmt.Fprintf(&sb, "extern const CG_Image %s;\n", obj.Name)
	}
	for _, f := range out.Fonts {
		if f.AliasOf != "" {
			fmt.Fprintf(&sb, "#define %s %s\n", f.ID, f.AliasOf)
		} else {
			fmt.Fprintf(&sb, "extern const CG_Font %s;\n", f.ID)
		}
	}

	for _, s := range out.Screens {
		writeScreen(&sb, s)
	}

	sb.WriteString("\n#ifdef __cplusplus\n}\n#endif\n\n")
	fmt.Fprintf(&sb, "#endif // %s\n", guard)
	return encodeTo(w, sb.String(), opts.Charset)
}

func writeScreen(sb *strings.Builder, s cgui.ScreenAssets) {
	prefix := "CG_" + s.Name
	fmt.Fprintf(sb, "\n// Screen [%s] %d x %d\n", s.Name, s.Width, s.Height)
	fmt.Fprintf(sb, "#define %s_WIDTH %d\n", prefix, s.Width)
	fmt.Fprintf(sb, "#define %s_HEIGHT %d\n", prefix, s.Height)
	fmt.Fprintf(sb, "#define %s_BACKGROUND %s\n", prefix, s.Background)

	for _, e := range s.Elements {
		p := prefix + "_" + e.ID
		r := e.Rect
		fmt.Fprintf(sb, "#define %s_RECT %d, %d, %d, %d\n", p, r.Min.X, r.Min.Y, r.Dx(), r.Dy())
		switch e.Type {
		case cgui.TypeText:
			fmt.Fprintf(sb, "#define %s_FONT %s\n", p, e.Font)
			fmt.Fprintf(sb, "#define %s_FILL %s\n", p, fillExpr(e.Fill))
			fmt.Fprintf(sb, "#define %s_ALIGN CG_ALIGN_%s\n", p, alignName(e.Align))
		case cgui.TypeImage:
			for i, img := range e.Images[:len(e.Images)-1] {
				fmt.Fprintf(sb, "#define %s_STATE%d %s /* %s */\n", p, i, img.Image, img.Key)
			}
			fmt.Fprintf(sb, "#define %s_ELSE %s\n", p, e.Images[len(e.Images)-1].Image)
		default:
			for _, img := range e.Images {
				fmt.Fprintf(sb, "#define %s_%s %s\n", p, strings.ToUpper(img.Key), img.Image)
			}
			if e.Type == cgui.TypeBar {
				fmt.Fprintf(sb, "#define %s_DIR CG_DIR_%s\n", p, e.Direction)
			}
		}
	}
}

func fillExpr(f cgui.Fill) string {
	if f.IsImage() {
		return "(uintptr_t)&" + f.Image
	}
	return fmt.Sprintf("CG_Color(0x%x)", f.Color)
}

func alignName(a cgui.Align) string {
	switch a {
	case cgui.AlignRight:
		return "RIGHT"
	case cgui.AlignCenter:
		return "CENTER"
	}
	return "LEFT"
}
