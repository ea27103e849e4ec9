package fd

import "github.com/fastdraft/fd/internal/intern"

// PaintKind distinguishes a flat color from a gradient paint.
type PaintKind int

const (
	PaintSolid PaintKind = iota
	PaintLinearGradient
	PaintRadialGradient
)

// GradientStop is one color stop of a linear/radial gradient.
type GradientStop struct {
	Color  Color
	Offset float64 // 0..1
}

// Paint is fill or stroke: either a solid Color or a gradient. Unknown
// gradient syntax is preserved verbatim in Raw so it survives round trip
// even if FD doesn't interpret it further.
type Paint struct {
	Kind     PaintKind
	Solid    Color
	Stops    []GradientStop
	Raw      string // verbatim `linear(...)`/`radial(...)` argument text
}

// Shadow is the `shadow: (ox, oy, blur, color)` property.
type Shadow struct {
	OffsetX, OffsetY, Blur float64
	Color                  Color
}

// TextAlign is horizontal text alignment.
type TextAlign int

const (
	AlignUnset TextAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// TextVAlign is vertical text alignment.
type TextVAlign int

const (
	VAlignUnset TextVAlign = iota
	VAlignTop
	VAlignMiddle
	VAlignBottom
)

// Style holds every inline style property a SceneNode can carry. Pointer
// fields distinguish "unset" from "set to the zero value", which matters
// for theme resolution: last writer wins per property, and an unset
// property must not overwrite an inherited one.
type Style struct {
	Fill         *Paint
	Stroke       *Paint
	StrokeWidth  *float64
	CornerRadius *float64
	Opacity      *float64
	Shadow       *Shadow
	FontFamily   *string
	FontWeight   *int
	FontSize     *float64
	TextAlign    TextAlign
	TextVAlign   TextVAlign
	Text         *string
}

// merge overlays `over` onto the receiver, last-writer-wins per
// property, and returns the result. Used to resolve a node's effective
// style: defaults -> each use_styles entry in order -> inline style.
func (s Style) merge(over Style) Style {
	out := s
	if over.Fill != nil {
		out.Fill = over.Fill
	}
	if over.Stroke != nil {
		out.Stroke = over.Stroke
	}
	if over.StrokeWidth != nil {
		out.StrokeWidth = over.StrokeWidth
	}
	if over.CornerRadius != nil {
		out.CornerRadius = over.CornerRadius
	}
	if over.Opacity != nil {
		out.Opacity = over.Opacity
	}
	if over.Shadow != nil {
		out.Shadow = over.Shadow
	}
	if over.FontFamily != nil {
		out.FontFamily = over.FontFamily
	}
	if over.FontWeight != nil {
		out.FontWeight = over.FontWeight
	}
	if over.FontSize != nil {
		out.FontSize = over.FontSize
	}
	if over.TextAlign != AlignUnset {
		out.TextAlign = over.TextAlign
	}
	if over.TextVAlign != VAlignUnset {
		out.TextVAlign = over.TextVAlign
	}
	if over.Text != nil {
		out.Text = over.Text
	}
	return out
}

// ThemeRef is one `use_styles` entry: an optional namespace (for
// `ns.name` imported theme references) plus the theme name.
type ThemeRef struct {
	Namespace intern.ID // intern.Invalid if unnamespaced
	Name      intern.ID
}

// Theme is a named, reusable style bundle, declared with the `theme`
// keyword (or its legacy spelling `style`).
type Theme struct {
	Name  intern.ID
	Style Style
}
