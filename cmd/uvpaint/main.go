package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/uvpaint/uvpaint"
	"github.com/uvpaint/uvpaint/prefs"
	"github.com/uvpaint/uvpaint/scene"
	"github.com/uvpaint/uvpaint/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┬ ┬┬  ┬┌─┐┌─┐┬┌┐┌┌┬┐
│ │└┐┌┘├─┘├─┤││││ │
└─┘ └┘ ┴  ┴ ┴┴┘└┘ ┴

Real-time UV space texture painting.
    Version: %s

`

// screenSize is the size in pixels of the virtual screen the scripts are recorded on.
const screenSize = 800

// Version indicates the current build version.
var Version string

// spinner used to instantiate and call the progress indicator.
var spinner *utils.Spinner

func main() {
	log.SetFlags(0)

	defaults, err := loadEnvConfig()
	if err != nil {
		log.Fatalf(utils.DecorateText("Invalid environment configuration: %v", utils.ErrorMessage), err)
	}

	var (
		// Flags
		width         = flag.Int("width", defaults.Width, "Canvas width")
		height        = flag.Int("height", defaults.Height, "Canvas height")
		halfExtent    = flag.Float64("extent", defaults.HalfExtent, "Canvas camera half extent")
		pixelsPerUnit = flag.Float64("ppu", defaults.PixelsPerUnit, "Brush sprite pixels per canvas unit")
		base          = flag.String("base", defaults.Base, "Clean base texture (path or URL)")
		mesh          = flag.String("mesh", defaults.Mesh, "Wavefront OBJ mesh painted on (default: unit quad)")
		script        = flag.String("script", defaults.Script, "Replay script, or directory of scripts")
		out           = flag.String("out", defaults.Out, "Destination texture, or directory in batch mode")
		prefsPath     = flag.String("prefs", defaults.Prefs, "Preferences file (default: ~/.uvpaint/prefs.toml)")
		format        = flag.String("format", defaults.Format, "Saved texture format: png, bmp")
		blend         = flag.String("blend", defaults.Blend, "Blend mode: darken, lighten, multiply, screen, overlay")
		compOp        = flag.String("op", defaults.Op, "Stamp composition operator: src_over, src_atop, dst_over, xor, ...")
		brushColor    = flag.String("color", defaults.Color, "Initial brush color")
		tick          = flag.Duration("tick", defaults.Tick, "Delay between two frames")
		loadOnStart   = flag.Bool("load", defaults.LoadOnStart, "Reload the last saved texture on start")
		workers       = flag.Int("conc", defaults.Workers, "Number of scripts replayed concurrently")
		verbose       = flag.Bool("v", defaults.Verbose, "Log the session events")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *script == "" {
		flag.Usage()
		log.Fatal(fmt.Sprintf("%s%s",
			utils.DecorateText("\nPlease provide a painting script to replay!", utils.ErrorMessage),
			utils.DefaultColor,
		))
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	uvpaint.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	codec, err := uvpaint.CodecFor(*format)
	if err != nil {
		log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
	}
	color, err := uvpaint.ParseHex(*brushColor)
	if err != nil {
		log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	world, err := newWorld(*mesh)
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to load the mesh: %v", utils.ErrorMessage), err)
	}

	store, err := openPrefs(*prefsPath)
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to open the preferences: %v", utils.ErrorMessage), err)
	}

	var baseImg image.Image
	if *base != "" {
		p := &uvpaint.Persistence{Fetcher: utils.NewHTTPFetcher()}
		baseImg, err = p.Load(ctx, uvpaint.Ref(*base))
		if err != nil {
			log.Fatalf(utils.DecorateText("Failed to load the base texture: %v", utils.ErrorMessage), err)
		}
	}

	canvas := uvpaint.CanvasConfig{
		Width:         *width,
		Height:        *height,
		HalfExtent:    *halfExtent,
		PixelsPerUnit: *pixelsPerUnit,
	}
	newConfig := func(dst uvpaint.DestinationProvider) uvpaint.SessionConfig {
		persist := uvpaint.NewPersistence(dst, store)
		persist.Codec = codec
		return uvpaint.SessionConfig{
			Canvas:      canvas,
			Base:        baseImg,
			Blend:       *blend,
			Op:          *compOp,
			Raycaster:   world,
			Persistence: persist,
			OnSave:      printSaveStatus,
		}
	}

	now := time.Now()

	fi, err := os.Stat(*script)
	if err != nil {
		log.Fatalf(
			utils.DecorateText("Failed to load the script: %v", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}

	if fi.IsDir() {
		if *out == "" {
			log.Fatal(utils.DecorateText("Please provide an output directory in batch mode!", utils.ErrorMessage))
		}
		results, errc := uvpaint.RunBatch(ctx, *script, *out, *workers, func(script, out string) *uvpaint.Job {
			return &uvpaint.Job{
				Script:     script,
				Config:     newConfig(uvpaint.Fixed{Path: out}),
				Interval:   *tick,
				SaveOnExit: true,
				Color:      &color,
			}
		})
		for res := range results {
			printStatus(res)
		}
		if err := <-errc; err != nil {
			fmt.Fprint(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
	} else {
		dst, interactive, err := newDestination(*out)
		if err != nil {
			log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
		}
		job := &uvpaint.Job{
			Script:     *script,
			Config:     newConfig(dst),
			Interval:   *tick,
			LoadLast:   *loadOnStart,
			SaveOnExit: true,
			Color:      &color,
		}

		// The spinner would garble the destination prompt.
		if !interactive {
			spinnerText := fmt.Sprintf("%s %s",
				utils.DecorateText("🖌 UVPAINT", utils.StatusMessage),
				utils.DecorateText("is replaying the painting...", utils.DefaultMessage))
			spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)
			spinner.Start()
		}
		res := job.Run(ctx)
		if spinner != nil {
			spinner.StopMsg = fmt.Sprintf("%s %s\n",
				utils.DecorateText("🖌 UVPAINT", utils.StatusMessage),
				utils.DecorateText(fmt.Sprintf("replayed %d frames ✔", res.Frames), utils.DefaultMessage))
			spinner.Stop()
		}
		printStatus(res)
	}
	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// newWorld places the painted mesh in front of the camera.
func newWorld(meshPath string) (*scene.World, error) {
	mesh := scene.Quad()
	if meshPath != "" {
		m, err := scene.LoadOBJ(meshPath)
		if err != nil {
			return nil, err
		}
		mesh = m
	}
	world := &scene.World{
		Camera: scene.Camera{
			Position: scene.V3(0, 0, 1),
			Target:   scene.V3(0, 0, 0),
			Up:       scene.V3(0, 1, 0),
			FOV:      60,
			Width:    screenSize,
			Height:   screenSize,
		},
	}
	world.Add(scene.NewMeshCollider("canvas", mesh))
	return world, nil
}

func openPrefs(path string) (prefs.Store, error) {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".uvpaint", "prefs.toml")
	}
	return prefs.Open(path)
}

// newDestination picks the save destination: the explicit output path if any,
// a prompt when running in a terminal, a timestamped file otherwise.
func newDestination(out string) (uvpaint.DestinationProvider, bool, error) {
	if out != "" {
		return uvpaint.Fixed{Path: out}, false, nil
	}
	ts, err := uvpaint.NewTimestamped()
	if err != nil {
		return nil, false, err
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return &uvpaint.Prompt{In: os.Stdin, Out: os.Stderr, Dir: ts.Dir}, true, nil
	}
	return ts, false, nil
}

func printSaveStatus(ref uvpaint.Ref, err error) {
	if err != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "\nThe texture has been saved as: %s %s\n",
		utils.DecorateText(string(ref), utils.SuccessMessage),
		utils.DefaultColor,
	)
}

// printStatus displays the relevant information about the replayed script.
func printStatus(res uvpaint.Result) {
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "%s%s",
			utils.DecorateText(fmt.Sprintf("\nError replaying %s", filepath.Base(res.Script)), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", res.Err), utils.DefaultMessage),
		)
		return
	}
	fmt.Fprintf(os.Stderr, "\n%s: %d frames in %s\n",
		utils.DecorateText(filepath.Base(res.Script), utils.StatusMessage),
		res.Frames,
		utils.FormatTime(res.Elapsed),
	)
}
