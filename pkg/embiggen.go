package jungfrau

import "fmt"

// TilePlacement copies the interior of one ASIC to the display.
type TilePlacement struct {
	Half, Asic int
	Source     Rect
	DstRow     int
	DstCol     int
}

// TilePlacements lists the 8 ASICs of a module. Only the central 254x254
// pixels of each ASIC are copied: the border pixels are larger than the
// others and are left masked. Display tiles are AsicGap rows and columns
// apart, which stretches 512x1024 into 514x1030.
var TilePlacements = buildTilePlacements()

func buildTilePlacements() []TilePlacement {
	placements := make([]TilePlacement, 0, AsicsPerColumn*AsicsPerRow)
	for half := 0; half < AsicsPerColumn; half++ {
		for asic := 0; asic < AsicsPerRow; asic++ {
			placements = append(placements, TilePlacement{
				Half: half,
				Asic: asic,
				Source: Rect{
					Row:    half*AsicSize + 1,
					Col:    asic*AsicSize + 1,
					Height: AsicInterior,
					Width:  AsicInterior,
				},
				DstRow: half*(AsicSize+AsicGap) + 1,
				DstCol: asic*(AsicSize+AsicGap) + 1,
			})
		}
	}
	return placements
}

// Embiggen unpacks a corrected sensor frame into the display layout. Every
// display pixel not covered by a tile placement is Sentinel.
func Embiggen(sensor []uint32, display []uint32) error {
	from, err := NewGrid(NY, NX, sensor)
	if err != nil {
		return fmt.Errorf("sensor frame: %w", err)
	}
	to, err := NewGrid(DisplayRows, DisplayCols, display)
	if err != nil {
		return fmt.Errorf("display frame: %w", err)
	}

	to.Fill(Sentinel)
	for _, tile := range TilePlacements {
		if err := CopyRect(to, tile.DstRow, tile.DstCol, from, tile.Source); err != nil {
			return fmt.Errorf("asic %d of half %d: %w", tile.Asic, tile.Half, err)
		}
	}
	return nil
}

// DisplayPosition maps a sensor pixel to its display position. It reports
// false for ASIC border pixels, which are not shown.
func DisplayPosition(row, col int) (int, int, bool) {
	for _, tile := range TilePlacements {
		src := tile.Source
		if row >= src.Row && row < src.Row+src.Height && col >= src.Col && col < src.Col+src.Width {
			return tile.DstRow + row - src.Row, tile.DstCol + col - src.Col, true
		}
	}
	return 0, 0, false
}
