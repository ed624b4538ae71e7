// Package richtext implements the decoration convention for admin
// response text: ** marks bold, * italic, __ underline. Markers are
// applied in a fixed order (bold, then italic, then underline), each
// wrapping the whole string once. The server stores the decorated string
// verbatim; nothing ever parses or unwraps it.
package richtext

type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
}

// Decorate wraps s with the markers enabled in style, in application
// order bold, italic, underline.
func Decorate(s string, style Style) string {
	if style.Bold {
		s = Bold(s)
	}
	if style.Italic {
		s = Italic(s)
	}
	if style.Underline {
		s = Underline(s)
	}
	return s
}

func Bold(s string) string      { return "**" + s + "**" }
func Italic(s string) string    { return "*" + s + "*" }
func Underline(s string) string { return "__" + s + "__" }
