// Package presets fills stylesheets with ready made style systems: a flex
// based grid, semantic typography and buttons, and generated utility classes.
package presets

import (
	"fmt"
	"strconv"

	"stylegen/css"
)

// Breakpoint switches grid to Columns columns on viewports narrower than
// MaxWidth and adds Name-N classes there.
type Breakpoint struct {
	Name     string
	MaxWidth int
	Columns  int
}

// Grid describes flex grid: rows of spans sized in twelfths.
type Grid struct {
	Columns     int
	RowClass    string
	BaseClass   string
	Breakpoints []Breakpoint
}

// DefaultGrid is 12 columns grid collapsing to 6 on tablets and 2 on phones.
func DefaultGrid() Grid {
	return Grid{
		Columns:   12,
		RowClass:  "row",
		BaseClass: "span",
		Breakpoints: []Breakpoint{
			{Name: "md", MaxWidth: 1024, Columns: 6},
			{Name: "sm", MaxWidth: 640, Columns: 2},
		},
	}
}

const maxSpan = 12

// FlexGrid adds grid styles to sheet.
func FlexGrid(sheet *css.StyleSheet, g Grid) error {
	if g.Columns < 1 || g.Columns > maxSpan {
		return fmt.Errorf("grid columns must be within 1..%d, got %d", maxSpan, g.Columns)
	}
	row, err := sheet.Select("." + g.RowClass)
	if err != nil {
		return err
	}
	row.Flexbox("row", true, "", "")

	if err := gridStyles(sheet.Select, g.BaseClass, g.Columns, ""); err != nil {
		return err
	}
	for _, bp := range g.Breakpoints {
		if bp.Columns < 1 || bp.Columns > maxSpan {
			return fmt.Errorf("breakpoint %q columns must be within 1..%d, got %d", bp.Name, maxSpan, bp.Columns)
		}
		media := sheet.Media(css.MaxWidth(bp.MaxWidth))
		if err := gridStyles(media.Select, g.BaseClass, bp.Columns, bp.Name); err != nil {
			return err
		}
	}
	return nil
}

func gridStyles(sel func(string) (*css.Style, error), base string, columns int, custom string) error {
	for size := 1; size <= maxSpan; size++ {
		width := 1.0
		if size < columns {
			width = float64(size) / float64(columns)
		}
		st, err := sel("." + base + "-" + strconv.Itoa(size))
		if err != nil {
			return err
		}
		st.Width(width)
	}
	if custom == "" {
		return nil
	}
	for size := 1; size <= columns; size++ {
		st, err := sel("." + custom + "-" + strconv.Itoa(size))
		if err != nil {
			return err
		}
		st.Width(float64(size) / float64(columns))
	}
	return nil
}
