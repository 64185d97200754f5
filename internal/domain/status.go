package domain

import "fmt"

var wasteStatusLabels = map[bool]string{
	false: "OK",
	true:  "HIGH",
}

var wasteBanners = map[bool]string{
	false: "Waste level is under control",
	true:  "Waste is above acceptable limit!",
}

// WasteStatusLabel renders the over-limit flag computed by the planner.
func WasteStatusLabel(overLimit bool) string {
	return wasteStatusLabels[overLimit]
}

// WasteBanner returns the success or error banner text for the over-limit flag.
func WasteBanner(overLimit bool) string {
	return wasteBanners[overLimit]
}

// FormatPercent renders a ratio as a percentage with one decimal, e.g. 0.123 => "12.3%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
