package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/esimov/cgui"
	"github.com/esimov/cgui/config"
	"github.com/esimov/cgui/emit"
	"github.com/esimov/cgui/qoi"
	"github.com/esimov/cgui/utils"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const HelpBanner = `
┌─┐┌─┐┬ ┬┬
│ ┬│ ┬│ ││
└─┘└─┘└─┘┴

Embedded UI asset generator.
    Version: %s

`

// pipeName is the file name that indicates stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	configPath = pflag.StringP("config", "c", "cgui.yaml", "Build description")
	output     = pflag.StringP("out", "o", "", "Output directory, overrides the build description")
	workers    = pflag.IntP("workers", "w", 0, "Number of images to decode concurrently")
	charset    = pflag.String("charset", "", "Charset of the generated sources (utf-8 or gbk)")
	manifest   = pflag.Bool("manifest", false, "Also write a CBOR manifest of the assets")
	compress   = pflag.Bool("zstd", false, "Compress the manifest with zstd")
	encode     = pflag.String("encode", "", "Encode an image, or every image of a directory, and print the C arrays")
	decode     = pflag.String("decode", "", "Decode a QOI565 stream into the image given by --preview")
	size       = pflag.String("size", "", "Size of the decoded stream, as WIDTHxHEIGHT")
	preview    = pflag.String("preview", "", "Destination of the decoded image (png, jpg or bmp)")
	stamp      = pflag.Bool("stamp", false, "Print the generation time in the banner of the sources")
	verbose    = pflag.BoolP("verbose", "v", false, "Log asset details")
)

func main() {
	log.SetFlags(0)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	utils.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case *encode != "":
		err = encodeImages(ctx)
	case *decode != "":
		err = decodeImage()
	default:
		err = build(ctx)
	}
	if err != nil {
		log.Fatalf("%s %s",
			utils.DecorateText("⚡ CGUI ✘", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}
}

// build generates the sources described by the build file.
func build(ctx context.Context) error {
	b, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *output != "" {
		b.Output = *output
	}
	if *charset != "" {
		b.Charset = strings.ToLower(*charset)
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ CGUI", utils.StatusMessage),
		utils.DecorateText("⇢ generating the assets...", utils.DefaultMessage))
	spinner := utils.NewSpinner(spinnerText, time.Millisecond*80, true)
	spinner.Start()
	defer spinner.RestoreCursor()

	now := time.Now()
	op := &cgui.Ops{Workers: *workers}
	out, err := op.Execute(ctx, b)
	if err != nil {
		spinner.StopMsg = utils.DecorateText("generating the assets failed ✘\n", utils.ErrorMessage)
		spinner.Stop()
		return err
	}

	spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
		utils.DecorateText("⚡ CGUI", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the assets have been generated successfully ✔", utils.SuccessMessage),
	)
	spinner.Stop()

	opts := emit.Options{Charset: b.Charset}
	if *stamp {
		opts.Generated = now
	}

	// Rendered in memory first, a failure leaves no partial files.
	var src, hdr, man bytes.Buffer
	if err := emit.WriteC(&src, out, opts); err != nil {
		return err
	}
	if err := emit.WriteHeader(&hdr, out, opts); err != nil {
		return err
	}
	files := map[string][]byte{
		emit.SourceName(out): src.Bytes(),
		emit.HeaderName(out): hdr.Bytes(),
	}
	if *manifest {
		if err := emit.WriteManifest(&man, out, *compress); err != nil {
			return err
		}
		name := "cgui_" + out.Name + ".cbor"
		if *compress {
			name += ".zst"
		}
		files[name] = man.Bytes()
	}

	if err := os.MkdirAll(b.Output, 0755); err != nil {
		return fmt.Errorf("unable to create the output directory: %w", err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(b.Output, name), data, 0644); err != nil {
			return fmt.Errorf("unable to write %s: %w", name, err)
		}
	}

	for _, w := range out.Warnings {
		fmt.Fprintf(os.Stderr, "%s\n", utils.DecorateText(
			fmt.Sprintf("font pool %s is %s, above the %s a 16 bit offset can address", w.Pool, utils.FormatBytes(w.Size), utils.FormatBytes(w.Limit)),
			utils.WarningMessage,
		))
	}
	fmt.Fprintf(os.Stderr, "\nThe sources have been saved in: %s %s\n",
		utils.DecorateText(b.Output, utils.SuccessMessage),
		utils.DefaultColor,
	)
	fmt.Fprintf(os.Stderr, "ROM usage (approx.): %s\n", utils.DecorateText(utils.FormatBytes(out.DataSize), utils.SuccessMessage))
	fmt.Fprintf(os.Stderr, "Execution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// encodeImages prints standalone images as C arrays on stdout.
func encodeImages(ctx context.Context) error {
	op := &cgui.Ops{Workers: *workers}
	files, err := op.EncodeFiles(ctx, *encode)
	if err != nil {
		return err
	}
	for _, f := range files {
		desc := fmt.Sprintf("%s %dx%d", filepath.Base(f.Path), f.Image.Width, f.Image.Height)
		name := "_CG_IMAGE_" + symbol(strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path)))
		if err := emit.WriteBuffer(os.Stdout, desc, name, f.Image.Data); err != nil {
			return err
		}
	}
	return nil
}

// decodeImage turns a raw QOI565 stream back into a viewable image.
func decodeImage() error {
	var w, h int
	if _, err := fmt.Sscanf(*size, "%dx%d", &w, &h); err != nil {
		return fmt.Errorf("invalid --size %q, expected WIDTHxHEIGHT", *size)
	}

	var (
		data []byte
		err  error
	)
	if *decode == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("`-` should be used with a pipe for stdin")
		}
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*decode)
	}
	if err != nil {
		return err
	}

	img, err := qoi.DecodeImage(data, w, h)
	if err != nil {
		return err
	}
	if *preview == "" {
		return fmt.Errorf("--decode needs a --preview destination")
	}
	return cgui.SaveImage(*preview, img)
}

// symbol turns a file name into a C identifier.
func symbol(s string) string {
	b := []byte(s)
	for i, c := range b {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			b[i] = '_'
		}
	}
	return string(b)
}
