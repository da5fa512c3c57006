package cgui

import "image"

// Element is a dynamic part of a screen. The concrete types are
// TextElement, ImageElement, GroupElement and BarElement.
type Element interface {
	ElementID() string
	Bounds() image.Rectangle
	isElement()
}

// ElementType names the concrete type of an element.
type ElementType int

const (
	TypeText ElementType = iota
	TypeImage
	TypeGroup
	TypeBar
)

func (t ElementType) String() string {
	switch t {
	case TypeImage:
		return "image"
	case TypeGroup:
		return "group"
	case TypeBar:
		return "bar"
	}
	return "text"
}

// TypeOf returns the type of el.
func TypeOf(el Element) ElementType {
	switch el.(type) {
	case *ImageElement:
		return TypeImage
	case *GroupElement:
		return TypeGroup
	case *BarElement:
		return TypeBar
	}
	return TypeText
}

// TextKind tells how the value of a text element is formatted.
type TextKind int

const (
	Number TextKind = iota
	Fixed
	String
)

// Align is the horizontal alignment of a text element.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Direction is the growth direction of a bar.
type Direction int

const (
	DirRight Direction = iota
	DirLeft
	DirTop
	DirBottom
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "LEFT"
	case DirTop:
		return "TOP"
	case DirBottom:
		return "BOTTOM"
	}
	return "RIGHT"
}

// base holds the fields shared by every element.
type base struct {
	ID   string
	Rect image.Rectangle
}

func (b base) ElementID() string       { return b.ID }
func (b base) Bounds() image.Rectangle { return b.Rect }
func (base) isElement()                {}

// TextElement renders a value with the glyphs of a font.
type TextElement struct {
	base
	Kind      TextKind
	Font      GlyphSource
	FontName  string
	Style     FontStyle
	Alphabet  string
	Align     Align
	Digits    int
	MaxLength int
}

// ImageState is an image shown while a condition holds.
type ImageState struct {
	Condition string
	Image     image.Image
}

// ImageElement shows the first image whose condition holds, Else otherwise.
type ImageElement struct {
	base
	States []ImageState
	Else   image.Image
}

// GroupElement shows Full or Empty depending on a boolean value.
type GroupElement struct {
	base
	Full  image.Image
	Empty image.Image
}

// BarElement is a progress bar revealing Full over Empty.
type BarElement struct {
	base
	Direction Direction
	Full      image.Image
	Empty     image.Image
}

// NewTextElement creates a text element.
func NewTextElement(id string, rect image.Rectangle, kind TextKind, font GlyphSource, fontName string, style FontStyle, alphabet string) *TextElement {
	return &TextElement{
		base:     base{ID: id, Rect: rect},
		Kind:     kind,
		Font:     font,
		FontName: fontName,
		Style:    style,
		Alphabet: alphabet,
	}
}

// NewImageElement creates an image element.
func NewImageElement(id string, rect image.Rectangle, orElse image.Image, states ...ImageState) *ImageElement {
	return &ImageElement{base: base{ID: id, Rect: rect}, States: states, Else: orElse}
}

// NewGroupElement creates a group element.
func NewGroupElement(id string, rect image.Rectangle, full, empty image.Image) *GroupElement {
	return &GroupElement{base: base{ID: id, Rect: rect}, Full: full, Empty: empty}
}

// NewBarElement creates a bar element.
func NewBarElement(id string, rect image.Rectangle, dir Direction, full, empty image.Image) *BarElement {
	return &BarElement{base: base{ID: id, Rect: rect}, Direction: dir, Full: full, Empty: empty}
}
