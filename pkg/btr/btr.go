// Package btr estimates an AFM tip shape from a stack of acquired height
// images by differentiable blind tip reconstruction: gradient descent on the
// mean squared error between each image and its morphological opening by the
// candidate tip.
//
// The gradient is hand-derived rather than delegated to an autodiff
// framework. Dilation and erosion are maxima/minima over circularly shifted
// copies of the input, so the gradient of each output cell flows entirely to
// the shift offset that won the reduction; the forward pass records that
// winner per cell and the backward pass scatters accordingly. Ties go to the
// first offset in enumeration order.
package btr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kakikik/ColabBTR/pkg/field"
	"github.com/kakikik/ColabBTR/pkg/morphology"
)

// ProgressFunc reports per-epoch progress from a running reconstruction.
// It must not mutate anything the optimizer owns; it exists for reporting
// only and has no effect on numeric results.
type ProgressFunc func(epoch, totalEpochs int, epochLoss float64)

// Options configures a reconstruction run.
type Options struct {
	// Epochs is the number of passes over the image stack. Zero is valid
	// and returns the untrained all-zero tip.
	Epochs int

	// LearningRate is the AdamW step size.
	LearningRate float64

	// WeightDecay is the decoupled weight decay coefficient.
	WeightDecay float64

	// Cutoff is the recentering weight threshold; zero selects
	// morphology.DefaultCutoff.
	Cutoff float64

	// Progress, if set, is called once per epoch with the summed
	// post-projection loss.
	Progress ProgressFunc
}

// ReconstructTip estimates the tip shape that best explains the given image
// stack. The tip starts as an all-zero field of the requested size; every
// epoch walks the stack in order and, per image, performs one forward
// opening, one backward pass, one AdamW step, and the projection (clamp to
// non-positive heights, then recenter on the center of mass). The loss
// recorded in the trace is re-evaluated after the projection.
//
// The returned tip satisfies the non-positive and centered-on-mass
// invariants. The trace holds one summed loss per epoch. Numerical
// divergence is not detected here; callers monitor the trace.
func ReconstructTip(images []*field.Field, tipRows, tipCols int, opts Options) (*field.Field, []float64, error) {
	if err := validateStack(images, tipRows, tipCols); err != nil {
		return nil, nil, err
	}
	if opts.Epochs < 0 {
		return nil, nil, fmt.Errorf("btr: epochs must be non-negative, got %d", opts.Epochs)
	}
	cutoff := opts.Cutoff
	if cutoff <= 0 {
		cutoff = morphology.DefaultCutoff
	}

	tip := field.New(tipRows, tipCols)
	opt := newAdamW(len(tip.Data), opts.LearningRate, opts.WeightDecay)
	gradTip := make([]float64, len(tip.Data))

	trace := make([]float64, 0, opts.Epochs)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		epochLoss := 0.0
		for _, img := range images {
			// Forward opening with per-cell winner recording.
			eroded, erodeWin := erodeWinners(img, tip)
			recon, dilateWin := dilateWinners(eroded, tip)

			// Backward: scatter the MSE gradient through both reductions.
			backward(img, recon, eroded, tip, erodeWin, dilateWin, gradTip)
			opt.update(tip.Data, gradTip)

			// Projection, outside any gradient bookkeeping.
			tip.Clamp(0)
			copy(tip.Data, morphology.Recenter(tip, cutoff).Data)

			// Re-evaluate after projection for the reported trace.
			eroded, _ = erodeWinners(img, tip)
			recon, _ = dilateWinners(eroded, tip)
			epochLoss += meanSquaredError(recon, img)
		}
		trace = append(trace, epochLoss)
		if opts.Progress != nil {
			opts.Progress(epoch, opts.Epochs, epochLoss)
		}
	}
	return tip, trace, nil
}

// validateStack fails fast on any shape precondition violation, reporting
// the offending dimensions.
func validateStack(images []*field.Field, tipRows, tipCols int) error {
	if len(images) == 0 {
		return fmt.Errorf("btr: empty image stack")
	}
	if tipRows < 1 || tipCols < 1 {
		return fmt.Errorf("btr: tip size must be at least 1x1, got %dx%d", tipRows, tipCols)
	}
	rows, cols := images[0].Rows, images[0].Cols
	for i, img := range images {
		if img.Rows != rows || img.Cols != cols {
			return fmt.Errorf("btr: image %d is %dx%d, want %dx%d like image 0", i, img.Rows, img.Cols, rows, cols)
		}
	}
	if tipRows > rows || tipCols > cols {
		return fmt.Errorf("btr: tip %dx%d exceeds image %dx%d", tipRows, tipCols, rows, cols)
	}
	return nil
}

func mod(x, n int) int {
	m := x % n
	if m < 0 {
		m += n
	}
	return m
}

// erodeWinners computes the erosion of image by tip and records, per output
// cell, the flat tip index of the offset that won the minimum.
func erodeWinners(image, tip *field.Field) (*field.Field, []int) {
	cr, cc := morphology.Center(tip)
	rows, cols := image.Rows, image.Cols
	out := field.Full(rows, cols, math.Inf(1))
	win := make([]int, rows*cols)
	for pr := -cr; pr < tip.Rows-cr; pr++ {
		for pc := -cc; pc < tip.Cols-cc; pc++ {
			tIdx := (cr+pr)*tip.Cols + (cc + pc)
			tv := tip.Data[tIdx]
			for i := 0; i < rows; i++ {
				src := mod(i-pr, rows) * cols
				dst := i * cols
				for j := 0; j < cols; j++ {
					v := image.Data[src+mod(j-pc, cols)] - tv
					if v < out.Data[dst+j] {
						out.Data[dst+j] = v
						win[dst+j] = tIdx
					}
				}
			}
		}
	}
	return out, win
}

// dilateWinners computes the dilation of surface by tip and records, per
// output cell, the flat tip index of the offset that won the maximum.
func dilateWinners(surface, tip *field.Field) (*field.Field, []int) {
	cr, cc := morphology.Center(tip)
	rows, cols := surface.Rows, surface.Cols
	out := field.Full(rows, cols, math.Inf(-1))
	win := make([]int, rows*cols)
	for pr := -cr; pr < tip.Rows-cr; pr++ {
		for pc := -cc; pc < tip.Cols-cc; pc++ {
			tIdx := (cr+pr)*tip.Cols + (cc + pc)
			tv := tip.Data[tIdx]
			for i := 0; i < rows; i++ {
				src := mod(i+pr, rows) * cols
				dst := i * cols
				for j := 0; j < cols; j++ {
					v := surface.Data[src+mod(j+pc, cols)] + tv
					if v > out.Data[dst+j] {
						out.Data[dst+j] = v
						win[dst+j] = tIdx
					}
				}
			}
		}
	}
	return out, win
}

// backward fills gradTip with dLoss/dTip for loss = mean((recon-image)^2),
// where recon = dilate(erode(image, tip), tip). The gradient of a max (min)
// over shifted copies flows only to the winning offset of each output cell:
// through the dilation it adds to the winning tip cell and to the eroded
// field cell the shift selected; through the erosion it subtracts from the
// winning tip cell.
func backward(image, recon, eroded, tip *field.Field, erodeWin, dilateWin []int, gradTip []float64) {
	rows, cols := image.Rows, image.Cols
	cr, cc := morphology.Center(tip)
	n := float64(rows * cols)

	for i := range gradTip {
		gradTip[i] = 0
	}
	gradEroded := make([]float64, rows*cols)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			idx := i*cols + j
			g := 2 * (recon.Data[idx] - image.Data[idx]) / n
			if g == 0 {
				continue
			}
			k := dilateWin[idx]
			pr := k/tip.Cols - cr
			pc := k%tip.Cols - cc
			gradTip[k] += g
			gradEroded[mod(i+pr, rows)*cols+mod(j+pc, cols)] += g
		}
	}
	for idx, g := range gradEroded {
		if g != 0 {
			gradTip[erodeWin[idx]] -= g
		}
	}
}

// meanSquaredError returns the MSE between two equally shaped fields.
func meanSquaredError(recon, image *field.Field) float64 {
	diff := append([]float64(nil), recon.Data...)
	floats.Sub(diff, image.Data)
	return floats.Dot(diff, diff) / float64(len(diff))
}
