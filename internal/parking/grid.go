package parking

import "fmt"

type Palette struct {
	Fill   string `json:"fill"`
	Stroke string `json:"stroke"`
	Text   string `json:"text"`
}

var (
	freePalette     = Palette{Fill: "#D1FAE5", Stroke: "#6EE7B7", Text: "#064E3B"}
	occupiedPalette = Palette{Fill: "#FEE2E2", Stroke: "#FCA5A5", Text: "#7F1D1D"}
)

type GridCell struct {
	SpotID   int      `json:"spot_id"`
	Rect     Geometry `json:"rect"`
	Label    string   `json:"label"`
	Occupied bool     `json:"occupied"`
	Marker   string   `json:"marker,omitempty"`
	Colors   Palette  `json:"colors"`
}

type Grid struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  []GridCell `json:"cells"`
}

// BuildGrid produces the render model for the spot map. Colours follow the
// stored reservation, so a lapsed reservation stays red until swept.
func BuildGrid(reg Registry) Grid {
	cells := make([]GridCell, 0, reg.Len())
	for _, spot := range reg.spots {
		cell := GridCell{
			SpotID:   spot.ID,
			Rect:     spot.Geometry,
			Label:    fmt.Sprintf("Spot %d\n%s", spot.ID, spot.Class.Title()),
			Occupied: spot.Occupied(),
			Colors:   freePalette,
		}
		if cell.Occupied {
			cell.Marker = "OCCUPIED"
			cell.Colors = occupiedPalette
		}
		cells = append(cells, cell)
	}

	return Grid{
		Width:  StageWidth,
		Height: StageHeight,
		Cells:  cells,
	}
}
