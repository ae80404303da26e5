package enum

// Toggle returns the opposite theme (dark↔light).
func (e Theme) Toggle() Theme {
	if e == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether the value is one of the defined themes.
// The zero value of Theme is not valid.
func (e Theme) Valid() bool {
	return e == ThemeLight || e == ThemeDark
}

// BodyClass returns the CSS class the page body carries for the theme.
func (e Theme) BodyClass() string {
	return "theme--" + e.name
}

// SwitchClass returns the CSS class the toggle control carries for the theme.
func (e Theme) SwitchClass() string {
	return "theme__switch--" + e.name
}
