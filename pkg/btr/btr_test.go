package btr

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kakikik/ColabBTR/pkg/field"
	"github.com/kakikik/ColabBTR/pkg/morphology"
)

func randomField(rng *rand.Rand, rows, cols int) *field.Field {
	f := field.New(rows, cols)
	for i := range f.Data {
		f.Data[i] = rng.Float64()*2 - 1
	}
	return f
}

// TestWinnersMatchMorphology cross-checks the winner-recording forward
// passes against the reference operators on random inputs.
func TestWinnersMatchMorphology(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	img := randomField(rng, 6, 7)
	tip := randomField(rng, 3, 3)
	tip.Clamp(0)

	eroded, _ := erodeWinners(img, tip)
	want, err := morphology.Erode(img, tip)
	if err != nil {
		t.Fatalf("Erode failed: %v", err)
	}
	if !eroded.EqualApprox(want, 0) {
		t.Errorf("erodeWinners disagrees with morphology.Erode")
	}

	dilated, _ := dilateWinners(img, tip)
	want, err = morphology.Dilate(img, tip)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	if !dilated.EqualApprox(want, 0) {
		t.Errorf("dilateWinners disagrees with morphology.Dilate")
	}
}

// TestGradientFiniteDifference validates the hand-derived backward pass
// against central finite differences of the loss. The loss is piecewise
// smooth in the tip with kinks at reduction ties, where the first-winner
// subgradient and a central difference legitimately disagree, so the tip
// uses strictly distinct negative values to keep every reduction tie-free.
func TestGradientFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	img := randomField(rng, 6, 6)
	tip := randomField(rng, 3, 3)
	for i, v := range tip.Data {
		tip.Data[i] = -math.Abs(v) - float64(i)*1e-3
	}

	loss := func(tp *field.Field) float64 {
		eroded, _ := erodeWinners(img, tp)
		recon, _ := dilateWinners(eroded, tp)
		return meanSquaredError(recon, img)
	}

	eroded, erodeWin := erodeWinners(img, tip)
	recon, dilateWin := dilateWinners(eroded, tip)
	grad := make([]float64, len(tip.Data))
	backward(img, recon, eroded, tip, erodeWin, dilateWin, grad)

	const h = 1e-6
	for k := range tip.Data {
		plus := tip.Clone()
		plus.Data[k] += h
		minus := tip.Clone()
		minus.Data[k] -= h
		numeric := (loss(plus) - loss(minus)) / (2 * h)
		if math.Abs(numeric-grad[k]) > 1e-6*(1+math.Abs(numeric)) {
			t.Errorf("gradient mismatch at tip cell %d: analytic %v, numeric %v", k, grad[k], numeric)
		}
	}
}

// TestIdentityTipZeroLoss: a 1x1 tip makes erosion and dilation exact
// inverses, so the loss trace is identically zero and the tip never moves.
func TestIdentityTipZeroLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	images := []*field.Field{
		randomField(rng, 5, 5),
		randomField(rng, 5, 5),
	}

	tip, trace, err := ReconstructTip(images, 1, 1, Options{
		Epochs:       5,
		LearningRate: 0.1,
	})
	if err != nil {
		t.Fatalf("ReconstructTip failed: %v", err)
	}
	if len(trace) != 5 {
		t.Fatalf("trace length: got %d, want 5", len(trace))
	}
	for epoch, loss := range trace {
		if loss != 0 {
			t.Errorf("epoch %d: expected zero loss for 1x1 tip, got %v", epoch, loss)
		}
	}
	if tip.At(0, 0) != 0 {
		t.Errorf("1x1 tip moved to %v, want 0", tip.At(0, 0))
	}
}

// TestReconstructTipConverges drives the estimator on synthetic images
// produced by a known tip; the loss must collapse and the result must hold
// the projection invariants.
func TestReconstructTipConverges(t *testing.T) {
	trueTip, _ := field.FromRows([][]float64{
		{-0.4, -0.2, -0.4},
		{-0.2, 0.0, -0.2},
		{-0.4, -0.2, -0.4},
	})

	spike := func(rows, cols int, bumps map[[2]int]float64) *field.Field {
		f := field.New(rows, cols)
		for at, h := range bumps {
			f.Set(at[0], at[1], h)
		}
		return f
	}
	surfaces := []*field.Field{
		spike(8, 8, map[[2]int]float64{{2, 2}: 1.0, {5, 4}: 1.5}),
		spike(8, 8, map[[2]int]float64{{1, 5}: 0.8, {6, 2}: 1.2}),
	}

	var images []*field.Field
	for _, s := range surfaces {
		img, err := morphology.Dilate(s, trueTip)
		if err != nil {
			t.Fatalf("Dilate failed: %v", err)
		}
		images = append(images, img)
	}

	tip, trace, err := ReconstructTip(images, 3, 3, Options{
		Epochs:       300,
		LearningRate: 0.05,
	})
	if err != nil {
		t.Fatalf("ReconstructTip failed: %v", err)
	}

	if trace[0] <= 0 {
		t.Fatalf("initial loss should be positive, got %v", trace[0])
	}
	final := trace[len(trace)-1]
	if final >= 0.1*trace[0] {
		t.Errorf("loss did not collapse: first %v, final %v", trace[0], final)
	}

	// Projection invariants on the returned tip.
	if tip.Max() > 0 {
		t.Errorf("tip has positive heights, max %v", tip.Max())
	}
	recentered := morphology.Recenter(tip, morphology.DefaultCutoff)
	if !recentered.EqualApprox(tip, 1e-12) {
		t.Errorf("returned tip is not centered on its mass")
	}
}

// TestReconstructTipValidation covers the fail-fast shape preconditions.
func TestReconstructTipValidation(t *testing.T) {
	ok := field.New(4, 4)
	cases := []struct {
		name   string
		images []*field.Field
		rows   int
		cols   int
	}{
		{"empty stack", nil, 3, 3},
		{"mixed shapes", []*field.Field{ok, field.New(4, 5)}, 3, 3},
		{"tip too large", []*field.Field{ok}, 5, 3},
		{"zero tip dim", []*field.Field{ok}, 0, 3},
	}
	for _, tc := range cases {
		if _, _, err := ReconstructTip(tc.images, tc.rows, tc.cols, Options{Epochs: 1, LearningRate: 0.1}); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	if _, _, err := ReconstructTip([]*field.Field{ok}, 3, 3, Options{Epochs: -1, LearningRate: 0.1}); err == nil {
		t.Errorf("negative epochs: expected error")
	}
}

// TestZeroEpochs returns the untrained zero tip and an empty trace.
func TestZeroEpochs(t *testing.T) {
	images := []*field.Field{field.Full(4, 4, 1)}
	tip, trace, err := ReconstructTip(images, 3, 3, Options{Epochs: 0, LearningRate: 0.1})
	if err != nil {
		t.Fatalf("ReconstructTip failed: %v", err)
	}
	if len(trace) != 0 {
		t.Errorf("trace should be empty, got %d entries", len(trace))
	}
	for _, v := range tip.Data {
		if v != 0 {
			t.Errorf("untrained tip should be all zero, got %v", tip.Data)
			break
		}
	}
}

// TestProgressCallback confirms the callback sees every epoch in order and
// the reported losses match the trace.
func TestProgressCallback(t *testing.T) {
	images := []*field.Field{field.Full(4, 4, 1)}
	var epochs []int
	var losses []float64
	_, trace, err := ReconstructTip(images, 3, 3, Options{
		Epochs:       4,
		LearningRate: 0.1,
		Progress: func(epoch, total int, loss float64) {
			if total != 4 {
				t.Errorf("total epochs: got %d, want 4", total)
			}
			epochs = append(epochs, epoch)
			losses = append(losses, loss)
		},
	})
	if err != nil {
		t.Fatalf("ReconstructTip failed: %v", err)
	}
	if len(epochs) != 4 {
		t.Fatalf("callback calls: got %d, want 4", len(epochs))
	}
	for i, e := range epochs {
		if e != i {
			t.Errorf("callback epoch order: got %v", epochs)
			break
		}
	}
	for i := range losses {
		if losses[i] != trace[i] {
			t.Errorf("callback loss %d disagrees with trace: %v vs %v", i, losses[i], trace[i])
		}
	}
}

// TestEvaluateMetrics: images that are exact dilations have a perfectly
// reconstructing tip, so MSE vanishes and correlation is 1.
func TestEvaluateMetrics(t *testing.T) {
	tip, _ := field.FromRows([][]float64{
		{-0.3, -0.1, -0.3},
		{-0.1, 0.0, -0.1},
		{-0.3, -0.1, -0.3},
	})
	surface := field.New(6, 6)
	surface.Set(2, 3, 1)
	surface.Set(4, 1, 2)

	img, err := morphology.Dilate(surface, tip)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}

	m, err := Evaluate([]*field.Field{img}, tip)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if m.MSE > 1e-12 {
		t.Errorf("MSE for exact reconstruction: got %v, want ~0", m.MSE)
	}
	if math.Abs(m.Correlation-1) > 1e-9 {
		t.Errorf("correlation for exact reconstruction: got %v, want 1", m.Correlation)
	}
}
