// Command poolrender composites a project's masks over its photo and writes
// the result as a PNG. It also prints a calibration report for every mask.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/malakyesheridan/PoolVisual-sub005/internal/mask"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/material"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/project"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/render"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/version"
	"github.com/malakyesheridan/PoolVisual-sub005/pkg/colorutil"
	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

func main() {
	projectPath := flag.String("project", "", "Path to .poolproj project file")
	photoPath := flag.String("photo", "", "Override the project's photo path")
	outPath := flag.String("out", "render.png", "Output PNG path")
	presetName := flag.String("preset", "", "Apply a built-in look to every mask (clear, sunny, dusk, spa)")
	outline := flag.Bool("outline", false, "Draw mask outlines and vertices over the result")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("poolrender %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}
	if *projectPath == "" {
		fmt.Println("Usage: poolrender -project <path.poolproj> [-photo <image>] [-out render.png] [-preset sunny] [-outline]")
		os.Exit(1)
	}

	st := project.NewState()
	if err := st.LoadProject(*projectPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
		os.Exit(1)
	}
	surfaces := st.Surfaces()
	fmt.Printf("Loaded project %q: %d masks, %d materials\n", st.Name, len(surfaces), len(st.Materials.IDs()))

	photo := st.PhotoPath
	if *photoPath != "" {
		photo = *photoPath
	}
	if photo == "" {
		fmt.Fprintln(os.Stderr, "Project has no photo; pass one with -photo")
		os.Exit(1)
	}

	background, err := loadRGBA(photo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load photo: %v\n", err)
		os.Exit(1)
	}
	bounds := background.Bounds()
	fmt.Printf("Photo: %s (%dx%d)\n", photo, bounds.Dx(), bounds.Dy())

	if *presetName != "" {
		preset, ok := render.PresetByName(*presetName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown preset %q; built-in presets:\n", *presetName)
			for _, p := range render.DefaultPresets() {
				fmt.Fprintf(os.Stderr, "  %-6s %s\n", p.Name, p.Description)
			}
			os.Exit(1)
		}
		for _, surf := range surfaces {
			if err := st.SetSettings(surf.ID, preset.Settings); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to apply preset: %v\n", err)
				os.Exit(1)
			}
		}
		surfaces = st.Surfaces()
		fmt.Printf("Applied preset %q to all masks\n", preset.Name)
	}

	printCalibrationReport(surfaces, st.AssumedPPM)

	textures := material.NewTextureCache(material.FileFetcher{BaseDir: filepath.Dir(*projectPath)})
	renderer := project.NewRenderer(textures, render.NewResultCache(0))
	renderer.Bind(st)

	ctx := context.Background()
	out := background
	rendered := 0
	fmt.Println("\nRendering:")
	for _, surf := range surfaces {
		if surf.MaterialID == "" {
			fmt.Printf("  %-38s skipped (no material assigned)\n", surf.ID)
			continue
		}
		res := renderer.RenderSurface(ctx, out, surf, st.Materials)
		if !res.Success {
			fmt.Fprintf(os.Stderr, "  %-38s failed: %v\n", surf.ID, res.Err)
			continue
		}
		out = res.Image
		rendered++
		fmt.Printf("  %-38s %s in %v\n", surf.ID, surf.MaterialID, res.ProcessingTime)
	}

	if *outline {
		for _, surf := range surfaces {
			drawOutline(out, surf.Points, surf.Kind.Closed())
		}
	}

	if err := writePNG(*outPath, out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}

	stats := renderer.Results().Stats()
	fmt.Printf("\nWrote %s (%d of %d masks rendered)\n", *outPath, rendered, len(surfaces))
	fmt.Printf("Result cache: %d entries, %.1f MB\n", stats.Entries, float64(stats.ApproxMemoryBytes)/(1<<20))
}

// printCalibrationReport lists each mask's derived real-world numbers and
// any calibration warnings.
func printCalibrationReport(surfaces []project.Surface, assumedPPM float64) {
	fmt.Println("\nMasks:")
	fmt.Printf("  %-38s %-7s %7s %12s %12s\n", "ID", "KIND", "POINTS", "AREA/LENGTH", "CALIBRATION")
	for _, surf := range surfaces {
		measure := "-"
		if surf.Kind.Closed() {
			if area := surf.CalibratedArea(); area > 0 {
				measure = fmt.Sprintf("%.2f m2", area)
			}
		} else if length := surf.CalibratedLength(); length > 0 {
			measure = fmt.Sprintf("%.2f m", length)
		}

		calib := "none"
		if surf.Calibration != nil {
			calib = fmt.Sprintf("%s/%s", surf.Calibration.Method, surf.Calibration.Confidence)
		} else if assumedPPM > 0 {
			auto := mask.AutoEstimate(surf.Points, assumedPPM)
			calib = fmt.Sprintf("auto %.1fx%.1f m", auto.EstimatedLength, auto.EstimatedWidth)
		}
		fmt.Printf("  %-38s %-7s %7d %12s %12s\n", surf.ID, surf.Kind, len(surf.Points), measure, calib)

		if surf.Calibration != nil && len(surf.Calibration.EdgeMeasurements) > 0 {
			result := mask.Validate(surf.Edges(), surf.Calibration.EdgeMeasurements)
			for _, w := range result.Warnings {
				fmt.Printf("    warning: %s\n", w)
			}
			if ppm := mask.WeightedPixelsPerMeter(surf.Calibration.EdgeMeasurements); ppm > 0 {
				fmt.Printf("    scale: %.2f px/m\n", ppm)
			}
		}
	}
}

// drawOutline plots the mask path in the overlay color with vertex markers.
func drawOutline(img *image.RGBA, points []geometry.Point2D, closed bool) {
	n := len(points)
	if n < 2 {
		return
	}
	last := n - 1
	if closed {
		last = n
	}
	for i := 0; i < last; i++ {
		drawLine(img, points[i], points[(i+1)%n])
	}
	for _, p := range points {
		cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				setIfInside(img, cx+dx, cy+dy, colorutil.Vertex)
			}
		}
	}
}

func drawLine(img *image.RGBA, a, b geometry.Point2D) {
	steps := int(math.Ceil(a.Distance(b)))
	if steps < 1 {
		steps = 1
	}
	delta := b.Sub(a)
	for i := 0; i <= steps; i++ {
		p := a.Add(delta.Scale(float64(i) / float64(steps)))
		setIfInside(img, int(math.Round(p.X)), int(math.Round(p.Y)), colorutil.Outline)
	}
}

func setIfInside(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out, nil
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
