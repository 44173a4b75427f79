package btr

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kakikik/ColabBTR/pkg/field"
	"github.com/kakikik/ColabBTR/pkg/morphology"
)

// Metrics summarizes how well a tip estimate explains an image stack. The
// reconstruction of each image is its morphological opening by the tip.
type Metrics struct {
	// MSE is the mean squared error pooled over all frames.
	MSE float64

	// RMSE is the root of MSE, in the height unit of the images.
	RMSE float64

	// Correlation is the Pearson correlation between observed and
	// reconstructed heights, pooled over all frames. 1 means the opening
	// reproduces the stack exactly up to an affine relation.
	Correlation float64
}

// Evaluate computes reconstruction-quality metrics for a tip against an
// image stack.
func Evaluate(images []*field.Field, tip *field.Field) (Metrics, error) {
	if err := validateStack(images, tip.Rows, tip.Cols); err != nil {
		return Metrics{}, err
	}

	var observed, reconstructed []float64
	sse := 0.0
	for _, img := range images {
		recon, err := morphology.Open(img, tip)
		if err != nil {
			return Metrics{}, err
		}
		for idx, v := range recon.Data {
			d := v - img.Data[idx]
			sse += d * d
		}
		observed = append(observed, img.Data...)
		reconstructed = append(reconstructed, recon.Data...)
	}

	mse := sse / float64(len(observed))
	return Metrics{
		MSE:         mse,
		RMSE:        math.Sqrt(mse),
		Correlation: stat.Correlation(observed, reconstructed, nil),
	}, nil
}
