package tui

import (
	"github.com/charmbracelet/bubbles/help"
)

// FooterModel renders key help at the bottom of the screen.
type FooterModel struct {
	help  help.Model
	input bool
}

// NewFooterModel creates a footer using the themed help styles.
func NewFooterModel() FooterModel {
	h := help.New()
	h.Styles = helpStyles()
	return FooterModel{help: h}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.help.Width = w
}

// ToggleHelp switches between short and full help.
func (f *FooterModel) ToggleHelp() {
	f.help.ShowAll = !f.help.ShowAll
}

// ShowAll reports whether full help is displayed.
func (f FooterModel) ShowAll() bool {
	return f.help.ShowAll
}

// SetInputMode switches the footer to the path prompt bindings.
func (f *FooterModel) SetInputMode(on bool) {
	f.input = on
}

// View renders the footer for keys.
func (f FooterModel) View(keys KeyMap) string {
	if f.input {
		return " " + f.help.View(inputKeyMap{Confirm: keys.Confirm, Cancel: keys.Cancel})
	}
	return " " + f.help.View(keys)
}
