// Package progress renders terminal progress for the CLI: a single bar
// for level progress and a two-bar view for a headless rest countdown.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Reporter is a single progress bar.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	SetDescription(desc string)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// CLIProgress implements Reporter with a progressbar.
type CLIProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a reporter writing to out (os.Stderr when nil).
func NewCLIProgress(out io.Writer) *CLIProgress {
	if out == nil {
		out = os.Stderr
	}
	if f, ok := out.(*os.File); ok {
		enableWindowsANSI(f)
	}
	return &CLIProgress{out: out}
}

// Start initializes the bar with its total and description.
func (p *CLIProgress) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.out, "\n")
		}),
	)
}

// Update moves the bar to current.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// SetDescription updates the bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// NoOpProgress is a reporter that does nothing.
type NoOpProgress struct{}

func (NoOpProgress) Start(int64, string) {}

func (NoOpProgress) Update(int64) {}

func (NoOpProgress) Finish() {}

func (NoOpProgress) SetDescription(string) {}
