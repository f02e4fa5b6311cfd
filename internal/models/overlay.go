package models

// OverlaySpec holds the positioning and styling parameters for one text
// render onto the template image. X/Y are pixel coordinates of the text
// baseline relative to the template dimensions.
type OverlaySpec struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	Text       string  `json:"-"`
}

// ApplyDefaults substitutes the configured defaults for absent or invalid
// style fields. An OverlaySpec with a non-positive font size or empty color
// is valid input; it just falls back.
func (s *OverlaySpec) ApplyDefaults(fontSize float64, color string) {
	if s.FontSize <= 0 {
		s.FontSize = fontSize
	}
	if s.Color == "" {
		s.Color = color
	}
}
