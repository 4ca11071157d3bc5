package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/esimov/emojimaker"
	"github.com/esimov/emojimaker/config"
	"github.com/esimov/emojimaker/imop"
	"github.com/esimov/emojimaker/utils"
	"github.com/esimov/emojimaker/web"
)

const HelpBanner = `
┌─┐┌┬┐┌─┐ ┬┬┌┬┐┌─┐┬┌─┌─┐┬─┐
├┤ ││││ │ ││││││├─┤├┴┐├┤ ├┬┘
└─┘┴ ┴└─┘└┘┴┴ ┴┴ ┴┴ ┴└─┘┴└─

Layered emoji composer.
    Version: %s

`

// pipeName is the file name that indicates stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	configPath  = flag.String("config", "", "YAML configuration file")
	assets      = flag.String("assets", "", "Gallery directory, holding one folder per category")
	destination = flag.String("out", pipeName, "Destination file, or directory in case of -count")
	query       = flag.String("query", "", "Selection query, e.g. eyes=0&head=1&mouth=2")
	shuffle     = flag.Bool("shuffle", false, "Shuffle the selection")
	seed        = flag.Int64("seed", 0, "Random seed (defaults to the current time)")
	count       = flag.Int("count", 1, "Number of shuffled composites to render")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of composites to render concurrently")
	size        = flag.Int("size", 0, "Canvas width and height")
	width       = flag.Int("width", 0, "Canvas width")
	height      = flag.Int("height", 0, "Canvas height")
	background  = flag.String("bg", "", "Background color (#rrggbb) or transparent")
	compOp      = flag.String("op", "", "Composite operation")
	blendMode   = flag.String("blend", "", "Blend mode")
	format      = flag.String("format", "", "Output format: png, jpeg, bmp or pdf")
	dataURI     = flag.Bool("datauri", false, "Print the composite as a data URL")
	preview     = flag.Bool("preview", false, "Open the preview window")
	serve       = flag.String("serve", "", "Serve the gallery page over HTTP on the address (the configured one if empty)")
	debug       = flag.Bool("debug", false, "Log the skipped layers")

	// layerFlags holds the index flag of every category.
	layerFlags [emojimaker.NumCategories]*int
)

func init() {
	for _, c := range emojimaker.Categories {
		layerFlags[c] = flag.Int(c.Key(), emojimaker.None, fmt.Sprintf("%s layer index (-1 for none)", c.Title()))
	}
}

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nComposite operations: %v\nBlend modes: %v\n", imop.Ops, imop.Modes)
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Unable to load the configuration: ", err)
	}
	set := applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gallery, err := emojimaker.LoadGallery(os.DirFS(cfg.Assets))
	if err != nil {
		fatal(fmt.Sprintf("Failed to load the gallery from %q: ", cfg.Assets), err)
	}

	w, h := cfg.CanvasSize(gallery.CanvasSize())
	comp := emojimaker.NewCompositor(w, h)
	comp.Background = cfg.BackgroundColor()
	comp.Op = imop.Op(cfg.Op)
	comp.Blend = imop.Mode(cfg.Blend)
	comp.Debug = cfg.Debug
	comp.Logger = log.New(os.Stderr, "emojimaker: ", log.LstdFlags)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	sel := selection(gallery, set)

	switch {
	case set["serve"]:
		if err := listen(ctx, cfg.Addr, gallery, comp); err != nil {
			fatal("The server stopped: ", err)
		}
	case *preview:
		gui := emojimaker.NewGUI(comp, gallery, sel, *seed)
		go func() {
			if err := gui.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				fatal("Preview error: ", err)
			}
			os.Exit(0)
		}()
		app.Main()
	default:
		spinner := utils.NewSpinner(os.Stderr, fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ EMOJIMAKER", utils.StatusMessage),
			utils.DecorateText("is composing the emoji...", utils.DefaultMessage)), time.Millisecond*200)

		ops := &emojimaker.Ops{
			Dst:      *destination,
			PipeName: pipeName,
			Format:   emojimaker.Format(*format),
			Count:    *count,
			Workers:  cfg.Workers,
			Seed:     *seed,
			DataURI:  *dataURI,
			Spinner:  spinner,
		}
		// Execute has already reported the failure.
		if err := ops.Execute(ctx, comp, gallery, sel); err != nil {
			spinner.RestoreCursor()
			os.Exit(1)
		}
	}
}

// applyFlags overrides the configuration with the flags set on the command line.
// It returns the names of the visited flags.
func applyFlags(cfg *config.Config) map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true

		switch f.Name {
		case "assets":
			cfg.Assets = *assets
		case "size":
			cfg.Size = *size
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "bg":
			cfg.Background = *background
		case "op":
			cfg.Op = *compOp
		case "blend":
			cfg.Blend = *blendMode
		case "conc":
			cfg.Workers = *workers
		case "serve":
			if *serve != "" {
				cfg.Addr = *serve
			}
		case "debug":
			cfg.Debug = *debug
		}
	})
	if cfg.Workers == 0 {
		cfg.Workers = *workers
	}
	return set
}

// selection builds the initial selection: the defaults, overridden by the
// query, then by the category flags. The shuffle flag replaces all of them.
func selection(g *emojimaker.Gallery, set map[string]bool) emojimaker.Selection {
	if *shuffle {
		return g.Shuffle(rand.New(rand.NewSource(*seed)))
	}

	sel := emojimaker.DefaultSelection()
	if *query != "" {
		sel = emojimaker.ParseQuery(*query)
	}
	for _, c := range emojimaker.Categories {
		if set[c.Key()] {
			sel = sel.With(c, *layerFlags[c])
		}
	}
	return sel.Normalize(g)
}

// listen serves the gallery page until the context is cancelled.
func listen(ctx context.Context, addr string, g *emojimaker.Gallery, c *emojimaker.Compositor) error {
	srv, err := web.NewServer(g, c, *seed)
	if err != nil {
		return err
	}
	srv.Logger = log.New(os.Stderr, "http: ", log.LstdFlags)

	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- hs.ListenAndServe()
	}()
	fmt.Fprintf(os.Stderr, "%s %s\n",
		utils.DecorateText("⚡ EMOJIMAKER", utils.StatusMessage),
		utils.DecorateText("listening on "+addr, utils.DefaultMessage))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}

// fatal prints the colored error message and exits.
func fatal(msg string, err error) {
	log.Fatalf("%s%s",
		utils.DecorateText(msg, utils.ErrorMessage),
		utils.DecorateText(err.Error(), utils.DefaultMessage),
	)
}
