// Package styles colors the builder's widgets with ANSI palette indices
// (0-15) so they follow the terminal theme instead of fixed RGB values.
//
// Index 8 (bright black) is the theme's surface color and backs every
// input; tcell.ColorDefault inherits the terminal's own colors.
package styles

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var (
	ColorSurface   = tcell.ColorGray    // ANSI 8
	ColorText      = tcell.ColorDefault // terminal default
	ColorDim       = tcell.ColorGray    // ANSI 8, placeholders
	ColorAccent    = tcell.ColorYellow  // ANSI 3, labels
	ColorHighlight = tcell.ColorGreen   // ANSI 2, focus and selection
	ColorInfo      = tcell.ColorTeal    // ANSI 6, section headers
	ColorError     = tcell.ColorRed     // ANSI 1
)

// Form applies the theme to a form and its buttons.
func Form(form *tview.Form) *tview.Form {
	return form.
		SetLabelColor(ColorAccent).
		SetFieldTextColor(ColorText).
		SetFieldBackgroundColor(ColorSurface).
		SetButtonTextColor(ColorText).
		SetButtonBackgroundColor(ColorSurface).
		SetButtonActivatedStyle(tcell.StyleDefault.Foreground(ColorSurface).Background(ColorHighlight))
}

// InputField applies the theme to an input field and its autocomplete list.
func InputField(input *tview.InputField) *tview.InputField {
	return input.
		SetLabelColor(ColorAccent).
		SetFieldTextColor(ColorText).
		SetFieldBackgroundColor(ColorSurface).
		SetPlaceholderTextColor(ColorDim).
		SetAutocompleteStyles(
			ColorSurface,
			tcell.StyleDefault.Foreground(ColorText).Background(ColorSurface),
			tcell.StyleDefault.Foreground(ColorSurface).Background(ColorHighlight),
		)
}

// DropDown applies the theme to a drop-down and its option list.
func DropDown(dropdown *tview.DropDown) *tview.DropDown {
	return dropdown.
		SetLabelColor(ColorAccent).
		SetFieldTextColor(ColorText).
		SetFieldBackgroundColor(ColorSurface).
		SetListStyles(
			tcell.StyleDefault.Foreground(ColorText).Background(ColorSurface),
			tcell.StyleDefault.Foreground(ColorSurface).Background(ColorHighlight),
		)
}

// TextArea applies the theme to a text area.
func TextArea(textarea *tview.TextArea) *tview.TextArea {
	textarea.SetLabelStyle(tcell.StyleDefault.Foreground(ColorAccent))
	return textarea.
		SetTextStyle(tcell.StyleDefault.Foreground(ColorText).Background(ColorSurface)).
		SetPlaceholderStyle(tcell.StyleDefault.Foreground(ColorDim).Background(ColorSurface))
}

// Table applies the selection style used by the entity and attribute tables.
func Table(table *tview.Table) *tview.Table {
	return table.
		SetSelectedStyle(tcell.StyleDefault.Foreground(ColorSurface).Background(ColorHighlight))
}

// Header returns a non-selectable table cell for a section or column title.
func Header(text string) *tview.TableCell {
	return tview.NewTableCell(text).
		SetTextColor(ColorInfo).
		SetAttributes(tcell.AttrBold).
		SetSelectable(false)
}
