package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Panel PanelConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PanelConfig holds folder panel dimension configuration.
type PanelConfig struct {
	// HeightReduction is subtracted from terminal height for panel rows.
	// Accounts for: app padding (1) + title (1) + filter line (1) + panel borders (2) + status (1) + hints (1) = 7
	HeightReduction int

	// MinHeight is the minimum number of panel rows.
	MinHeight int

	// MaxWidth caps the panel width on wide terminals.
	MaxWidth int

	// MinWidth is the narrowest panel that is still drawn.
	MinWidth int

	// ContentPadding is subtracted from panel width for row rendering.
	// Accounts for panel border/padding on each side plus the cursor gutter.
	ContentPadding int

	// CountWidth is the column kept on header rows for the entry count and
	// action, so counts line up across folders.
	CountWidth int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// PickerMaxVisible: max options shown in the add-chat picker.
	PickerMaxVisible int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	NameCharLimit   int
	ColorCharLimit  int
	FilterCharLimit int

	StandardWidth int // folder name and color inputs
	FilterWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Panel: PanelConfig{
			HeightReduction: 7,
			MinHeight:       5,
			MaxWidth:        100,
			MinWidth:        30,
			ContentPadding:  6,
			CountWidth:      12,
		},
		Modal: ModalConfig{
			WidthPercent:     60,
			MinWidth:         40,
			MaxWidth:         90,
			PickerMaxVisible: 10,
		},
		Input: InputConfig{
			NameCharLimit:   80,
			ColorCharLimit:  7,
			FilterCharLimit: 50,
			StandardWidth:   40,
			FilterWidth:     30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
