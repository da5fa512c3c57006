/*
Package cgui turns the static description of an embedded user interface into
compact assets for RGB565 displays: QOI565 encoded images, monochrome and
PackBits glyph bitmaps, and font tables whose glyphs are pooled and merged
across fonts.

The package provides a command line interface reading a YAML build description.
To check the supported commands type:

	$ cgui --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"

		"github.com/esimov/cgui"
		"github.com/esimov/cgui/emit"
	)

	func main() {
		g := cgui.NewGenerator("demo")
		if err := g.AddScreen("main", background, elements...); err != nil {
			fmt.Printf("Error generating assets: %s", err.Error())
		}
		out, err := g.Finish()
		if err != nil {
			fmt.Printf("Error generating assets: %s", err.Error())
		}
		emit.WriteC(os.Stdout, out, emit.Options{})
	}
*/
package cgui
