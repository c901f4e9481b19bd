// Package grid derives the price ladder from validated grid parameters.
// Everything here is pure and safe for concurrent use.
package grid

import (
	"fmt"

	"adaptive-grid-bot/config"
)

// GeometryError guards the spacing division; Validate normally rejects
// these parameters first.
type GeometryError struct {
	Levels int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("grid geometry needs at least %d levels, got %d", config.MinGridLevels, e.Levels)
}

// Grid 由 GridParameters 推导出的网格视图，不单独存储或修改。
type Grid struct {
	Spacing float64
	Levels  []float64
}

// Spacing returns the price distance between adjacent levels.
func Spacing(p config.GridParameters) (float64, error) {
	if p.Levels < config.MinGridLevels {
		return 0, &GeometryError{Levels: p.Levels}
	}
	return (p.UpperBound - p.LowerBound) / float64(p.Levels-1), nil
}

// Levels returns LowerBound + i*spacing for i in [0, Levels). The last
// level is UpperBound exactly.
func Levels(p config.GridParameters) ([]float64, error) {
	step, err := Spacing(p)
	if err != nil {
		return nil, err
	}
	levels := make([]float64, p.Levels)
	for i := range levels {
		levels[i] = p.LowerBound + float64(i)*step
	}
	levels[len(levels)-1] = p.UpperBound
	return levels, nil
}

// Derive computes spacing and levels together.
func Derive(p config.GridParameters) (Grid, error) {
	step, err := Spacing(p)
	if err != nil {
		return Grid{}, err
	}
	levels, _ := Levels(p)
	return Grid{Spacing: step, Levels: levels}, nil
}
