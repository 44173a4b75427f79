package surface

import (
	"github.com/kakikik/ColabBTR/pkg/atoms"
	"github.com/kakikik/ColabBTR/pkg/field"
	"github.com/kakikik/ColabBTR/pkg/morphology"
)

// Afmize synthesizes an AFM image from a molecular structure and a known
// tip: the rendered sphere surface dilated by the tip. Pure composition of
// Render and morphology.Dilate; no further state.
func Afmize(set *atoms.Set, tip *field.Field, cfg StageConfig) (*field.Field, error) {
	rendered, err := Render(set, cfg)
	if err != nil {
		return nil, err
	}
	return morphology.Dilate(rendered, tip)
}
