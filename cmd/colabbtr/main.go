package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kakikik/ColabBTR/internal/models"
	"github.com/kakikik/ColabBTR/pkg/atoms"
	"github.com/kakikik/ColabBTR/pkg/btr"
	"github.com/kakikik/ColabBTR/pkg/config"
	"github.com/kakikik/ColabBTR/pkg/field"
	"github.com/kakikik/ColabBTR/pkg/filter"
	"github.com/kakikik/ColabBTR/pkg/interpolation"
	"github.com/kakikik/ColabBTR/pkg/stl"
	"github.com/kakikik/ColabBTR/pkg/surface"
	"github.com/kakikik/ColabBTR/pkg/visualization"
)

func main() {
	// Parse command line arguments
	mode := flag.String("mode", "reconstruct", "Operation mode: reconstruct or render")
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	inputDir := flag.String("input", "", "Directory containing AFM image text matrices (reconstruct mode)")
	atomsPath := flag.String("atoms", "", "Atom list file with NAME X Y Z or RADIUS X Y Z lines (render mode)")
	tipPath := flag.String("tip", "", "Tip height matrix for pseudo-AFM imaging (render mode, optional)")
	supersample := flag.Int("supersample", 1, "Upsampling factor applied to rendered surfaces (render mode)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to the config path and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	switch *mode {
	case "reconstruct":
		if *inputDir == "" {
			flag.Usage()
			os.Exit(1)
		}
		if err := runReconstruct(cfg, *inputDir); err != nil {
			log.Fatalf("Reconstruction failed: %v", err)
		}
	case "render":
		if *atomsPath == "" {
			flag.Usage()
			os.Exit(1)
		}
		if err := runRender(cfg, *atomsPath, *tipPath, *supersample); err != nil {
			log.Fatalf("Rendering failed: %v", err)
		}
	default:
		log.Fatalf("Unknown mode %q (must be reconstruct or render)", *mode)
	}
}

// runReconstruct loads an image stack, optionally denoises it, estimates the
// tip, and writes the requested artifacts.
func runReconstruct(cfg *config.Config, inputDir string) error {
	stack, err := loadStack(inputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d frames of %dx%d from: %s\n", len(stack.Frames), stack.Rows, stack.Cols, inputDir)

	images := stack.Fields()
	if cfg.Filter.Enabled {
		fmt.Printf("Low-pass filtering stack at cutoff %.3f...\n", cfg.Filter.Cutoff)
		images, err = filter.DenoiseStack(images, cfg.Filter.Cutoff)
		if err != nil {
			return err
		}
	}

	opts := btr.Options{
		Epochs:       cfg.Optimization.Epochs,
		LearningRate: cfg.Optimization.LearningRate,
		WeightDecay:  cfg.Optimization.WeightDecay,
	}
	if cfg.Output.Verbose {
		opts.Progress = func(epoch, total int, loss float64) {
			fmt.Printf("epoch %d/%d  loss %.6g\n", epoch+1, total, loss)
		}
	}

	fmt.Println("Starting blind tip reconstruction...")
	startTime := time.Now()
	tip, trace, err := btr.ReconstructTip(images, cfg.Optimization.TipRows, cfg.Optimization.TipCols, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(startTime)

	metrics, err := btr.Evaluate(images, tip)
	if err != nil {
		return err
	}

	fmt.Printf("\nReconstruction completed in %.2f seconds\n", elapsed.Seconds())
	if len(trace) > 0 {
		fmt.Printf("Loss: first %.6g, final %.6g\n", trace[0], trace[len(trace)-1])
	}
	fmt.Printf("Validation metrics:\n")
	fmt.Printf("===================\n")
	fmt.Printf("Mean Squared Error (MSE): %.6g\n", metrics.MSE)
	fmt.Printf("Root Mean Square Error (RMSE): %.6g\n", metrics.RMSE)
	fmt.Printf("Correlation: %.4f\n", metrics.Correlation)

	tipTxt := filepath.Join(cfg.Output.Directory, "tip.txt")
	if err := writeField(tip, tipTxt); err != nil {
		return err
	}
	fmt.Printf("Estimated tip saved to: %s\n", tipTxt)

	if cfg.Output.SavePNG {
		tipPNG := filepath.Join(cfg.Output.Directory, "tip.png")
		if err := visualization.SaveHeightPNG(tip, tipPNG); err != nil {
			return err
		}
		fmt.Printf("Tip rendering saved to: %s\n", tipPNG)
	}
	if cfg.Output.SaveSTL {
		scaleX, scaleY := cfg.Stage.ResolutionX, cfg.Stage.ResolutionY
		mesh := stl.HeightFieldTriangles(tip, scaleX, scaleY, 1)
		tipSTL := filepath.Join(cfg.Output.Directory, "tip.stl")
		if err := stl.SaveToSTL(tipSTL, mesh); err != nil {
			return err
		}
		fmt.Printf("Tip mesh saved to: %s\n", tipSTL)
	}
	return nil
}

// runRender renders a molecular structure to a height field, optionally
// images it through a known tip, and writes the result.
func runRender(cfg *config.Config, atomsPath, tipPath string, supersample int) error {
	if supersample < 1 {
		return fmt.Errorf("supersample factor must be at least 1, got %d", supersample)
	}

	f, err := os.Open(atomsPath)
	if err != nil {
		return fmt.Errorf("opening atom list: %w", err)
	}
	set, err := atoms.ParseXYZ(f)
	f.Close()
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d atoms from: %s\n", set.Len(), atomsPath)

	var out *field.Field
	name := "surface"
	if tipPath != "" {
		tip, err := readField(tipPath)
		if err != nil {
			return err
		}
		out, err = surface.Afmize(set, tip, cfg.Stage)
		if err != nil {
			return err
		}
		name = "pseudo_afm"
	} else {
		out, err = surface.Render(set, cfg.Stage)
		if err != nil {
			return err
		}
	}

	if supersample > 1 {
		out, err = interpolation.Resize(out, out.Rows*supersample, out.Cols*supersample)
		if err != nil {
			return err
		}
	}

	outTxt := filepath.Join(cfg.Output.Directory, name+".txt")
	if err := writeField(out, outTxt); err != nil {
		return err
	}
	fmt.Printf("Height field saved to: %s\n", outTxt)

	if cfg.Output.SavePNG {
		outPNG := filepath.Join(cfg.Output.Directory, name+".png")
		if err := visualization.SaveHeightPNG(out, outPNG); err != nil {
			return err
		}
		fmt.Printf("Rendering saved to: %s\n", outPNG)
	}
	return nil
}

// loadStack reads every .txt matrix in the directory, in sorted filename
// order, into a frame stack.
func loadStack(inputDir string) (*models.Stack, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var frames []models.Frame
	for i, name := range names {
		path := filepath.Join(inputDir, name)
		heights, err := readField(path)
		if err != nil {
			return nil, err
		}
		frames = append(frames, models.Frame{Heights: heights, Index: i, Source: path})
	}
	return models.NewStack(frames)
}

func readField(path string) (*field.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	parsed, err := field.ParseMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return parsed, nil
}

func writeField(f *field.Field, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()
	return f.WriteMatrix(file)
}
