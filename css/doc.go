// Package css builds CSS stylesheets programmatically and renders them.
//
// A StyleSheet is an ordered collection of Style rules, media groups and
// keyframe animations. It renders either in full or as a subset limited to
// the rules whose selectors are satisfied by a set of used class names:
//
//	sheet := css.NewStyleSheet(log)
//	sheet.MustSelect(".card").Background(css.White)
//	sheet.MustSelect(".card.featured").Border(1, css.Orange)
//
//	full, err := sheet.Render()
//	jit, err := sheet.RenderSubset(css.NewClassSet("card"))
//
// Builders mutate styles in place and are meant to be used from a single
// goroutine during construction. Rendering never mutates the sheet, so a
// fully built sheet may be rendered concurrently.
package css
