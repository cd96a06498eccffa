package pipeline

import (
	"os"
	"runtime"

	"github.com/ZanzyTHEbar/assert-lib"
	"github.com/schollz/progressbar/v3"

	"github.com/probelab/pairgen/pairgen/validate"
)

// Pipeline runs batches of scenario validations over a shared validator.
// The tokenizer set behind the validator is read-only after construction, so
// one Pipeline fans work out to a bounded worker pool without extra locking.
type Pipeline struct {
	validator     *validate.Validator
	AssertHandler *assert.AssertHandler
	workers       int
	showProgress  bool
}

// Options tunes batch execution.
type Options struct {
	// Workers bounds the validation pool; <=0 picks a count from CPU cores.
	Workers int
	// ShowProgress renders a progress bar on stderr while a batch runs.
	ShowProgress bool
}

// New creates a batch validation pipeline around an initialized validator.
func New(validator *validate.Validator, assertHandler *assert.AssertHandler, opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		// Validation is CPU bound; cores*2 keeps the pool busy while
		// bounding memory for large batches.
		workers = runtime.NumCPU() * 2
		if workers < 4 {
			workers = 4
		}
		if workers > 32 {
			workers = 32
		}
	}

	return &Pipeline{
		validator:     validator,
		AssertHandler: assertHandler,
		workers:       workers,
		showProgress:  opts.ShowProgress,
	}
}

// Validator exposes the wrapped validator.
func (p *Pipeline) Validator() *validate.Validator {
	return p.validator
}

func (p *Pipeline) newBar(total int, description string) *progressbar.ProgressBar {
	if !p.showProgress || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
	)
}

func barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}
