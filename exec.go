package emojimaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/esimov/emojimaker/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// Ops holds the options of a command line rendering.
type Ops struct {
	// Dst is the destination file, the PipeName for stdout, or a directory
	// in case more than one composite is rendered.
	Dst      string
	PipeName string
	// Format overrides the format deduced from the Dst extension.
	Format Format
	// Count is the number of shuffled composites rendered into the Dst directory.
	Count   int
	Workers int
	// Seed initializes the random generator used for shuffling.
	Seed    int64
	DataURI bool
	Spinner *utils.Spinner
	// Stderr receives the status messages. Defaults to os.Stderr.
	Stderr io.Writer
}

// result holds the relevant information about a rendered composite.
type result struct {
	path  string
	query string
	err   error
}

// job is a selection waiting to be rendered into path.
type job struct {
	path string
	sel  Selection
}

// Execute renders the selection into the destination, or renders Count
// shuffled composites concurrently when Count is greater than one.
// A failure is reported once on Stderr and returned.
func (op *Ops) Execute(ctx context.Context, c *Compositor, g *Gallery, sel Selection) error {
	now := time.Now()
	if op.Stderr == nil {
		op.Stderr = os.Stderr
	}

	var err error
	switch {
	case op.Count > 1:
		err = op.batch(ctx, c, g)
	case op.DataURI:
		err = op.dataURI(ctx, c, g, sel)
	default:
		op.startSpinner()
		err = op.render(ctx, c, g, sel, op.Dst)
		op.stopSpinner(err)
		if err == nil {
			op.printOpStatus(op.Dst, sel.Encode(), nil)
		}
	}
	if err != nil {
		op.printOpStatus("", "", err)
		return err
	}

	fmt.Fprintf(op.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// render composes the selection and writes it to the destination file or pipe.
func (op *Ops) render(ctx context.Context, c *Compositor, g *Gallery, sel Selection, dst string) error {
	format := op.Format
	if format == "" && dst != op.PipeName {
		f, err := FormatFromPath(dst)
		if err != nil {
			return err
		}
		format = f
	}

	w, err := op.writer(dst)
	if err != nil {
		return err
	}
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}()
	}

	if err := c.Process(ctx, sel, g, w, format); err != nil {
		// remove the generated image file in case of an error
		if dst != op.PipeName {
			os.Remove(dst)
		}
		return err
	}
	return nil
}

// dataURI prints the composite as a data URL.
func (op *Ops) dataURI(ctx context.Context, c *Compositor, g *Gallery, sel Selection) error {
	uri, err := c.Export(ctx, sel, g)
	if err != nil {
		return err
	}
	if op.Dst == "" || op.Dst == op.PipeName {
		_, err = fmt.Fprintln(os.Stdout, uri)
		return err
	}
	return os.WriteFile(op.Dst, []byte(uri), 0644)
}

// batch renders Count shuffled composites into the destination directory,
// using a bounded number of workers.
func (op *Ops) batch(ctx context.Context, c *Compositor, g *Gallery) error {
	if op.Dst == op.PipeName {
		return errors.New("a destination directory is required for rendering more than one image")
	}
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}

	// Limit the concurrently running workers to maxWorkers.
	if op.Workers <= 0 || op.Workers > maxWorkers {
		op.Workers = runtime.NumCPU()
	}

	format := op.Format
	if format == "" {
		format = PNG
	}
	ext := "." + string(format)
	if format == JPEG {
		ext = ".jpg"
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := op.shuffled(ctx, g, ext)
	results := make(chan result)

	var wg sync.WaitGroup
	wg.Add(op.Workers)
	for i := 0; i < op.Workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(ctx, c, g, jobs, results)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(results)
		wg.Wait()
	}()

	op.startSpinner()
	var (
		firstErr error
		done     int
	)
	for res := range results {
		done++
		op.setSpinnerMessage(fmt.Sprintf("rendering composites %d/%d", done, op.Count))
		if res.err != nil && firstErr == nil {
			firstErr = res.err
			cancel()
		}
		if res.err == nil {
			op.printOpStatus(res.path, res.query, nil)
		}
	}
	op.stopSpinner(firstErr)

	return firstErr
}

// shuffled starts a goroutine producing Count random selections.
// The selections only depend on the seed, independently of the workers.
func (op *Ops) shuffled(ctx context.Context, g *Gallery, ext string) <-chan job {
	jobs := make(chan job)
	rnd := rand.New(rand.NewSource(op.Seed))

	go func() {
		defer close(jobs)
		for i := 0; i < op.Count; i++ {
			j := job{
				path: filepath.Join(op.Dst, fmt.Sprintf("emoji-%03d%s", i+1, ext)),
				sel:  g.Shuffle(rnd),
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- j:
			}
		}
	}()
	return jobs
}

// consumer renders the jobs received from the jobs channel and
// sends the results on the results channel.
func (op *Ops) consumer(ctx context.Context, c *Compositor, g *Gallery, jobs <-chan job, res chan<- result) {
	for j := range jobs {
		err := op.render(ctx, c, g, j.sel, j.path)

		select {
		case <-ctx.Done():
			// drain the remaining jobs
			if err == nil {
				err = ctx.Err()
			}
		default:
		}
		res <- result{path: j.path, query: j.sel.Encode(), err: err}
	}
}

// writer converts the destination path to a writable file.
func (op *Ops) writer(dst string) (io.Writer, error) {
	// Check if the destination is a pipe name or a regular file.
	if dst == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return os.Stdout, nil
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create the destination file: %w", err)
	}
	return f, nil
}

func (op *Ops) startSpinner() {
	if op.Spinner != nil {
		op.Spinner.Start()
	}
}

func (op *Ops) setSpinnerMessage(msg string) {
	if op.Spinner != nil {
		op.Spinner.SetMessage(fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ EMOJIMAKER", utils.StatusMessage),
			utils.DecorateText("⇢ "+msg, utils.DefaultMessage),
		))
	}
}

func (op *Ops) stopSpinner(err error) {
	if op.Spinner == nil {
		return
	}
	if err != nil {
		op.Spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ EMOJIMAKER", utils.StatusMessage),
			utils.DecorateText("rendering the composite failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	} else {
		op.Spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ EMOJIMAKER", utils.StatusMessage),
			utils.DecorateText("⇢", utils.DefaultMessage),
			utils.DecorateText("the composite has been rendered successfully ✔", utils.SuccessMessage),
		)
	}
	op.Spinner.Stop()
}

// printOpStatus displays the relevant information about a rendered composite.
func (op *Ops) printOpStatus(fname, query string, err error) {
	if err != nil {
		fmt.Fprintf(op.Stderr, "%s%s",
			utils.DecorateText("\nError rendering the composite: ", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(op.Stderr, "\nThe composite has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DecorateText("?"+query, utils.StatusMessage),
		)
	}
}
