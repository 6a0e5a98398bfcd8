package render

import(
	"fmt"
	"image"

	"github.com/abworrall/goimfit/pkg/emath"
)

// A Residual is what's left after subtracting a model from the data.
type Residual struct {
	Grid  emath.FloatGrid
	Stats emath.GridStats
	Data  emath.GridStats
	Model emath.GridStats
}

func (r Residual)String() string {
	return fmt.Sprintf("residual[%dx%d] %s (data: %s; model: %s)",
		r.Grid.Dx(), r.Grid.Dy(), r.Stats, r.Data, r.Model)
}

// NewResidual returns data - model. The grids must be the same shape.
func NewResidual(data, model *emath.FloatGrid) (Residual, error) {
	g, err := data.Sub(model)
	if err != nil {
		return Residual{}, fmt.Errorf("residual: %v", err)
	}
	return Residual{Grid:g, Stats:g.Stats(), Data:data.Stats(), Model:model.Stats()}, nil
}

// Panel is data | model | residual, with data and model stretched over
// the data's range so they can be compared by eye, and the residual
// over its own range.
func (r Residual)Panel(data, model *emath.FloatGrid) image.Image {
	return SideBySide(
		Grayscale(data, r.Data.Min, r.Data.Max),
		Grayscale(model, r.Data.Min, r.Data.Max),
		Grayscale(&r.Grid, r.Stats.Min, r.Stats.Max),
	)
}
