package text2img_gan

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// StepKind Kind of training step within batch
type StepKind int

const (
	StepDiscriminator = StepKind(iota)
	StepGenerator
)

func (k StepKind) String() string {
	switch k {
	case StepDiscriminator:
		return "Discriminator"
	case StepGenerator:
		return "Generator"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// StepEvent Emitted after every finished training step
type StepEvent struct {
	Epoch int
	Batch int
	Kind  StepKind
	Loss  float64
}

// StepHook Observer of training steps. Called synchronously from training loop.
type StepHook func(StepEvent)

// EpochReport Emitted once per finished epoch
//
// Epoch - zero-based index of finished epoch
// Total - number of epochs in run
// DiscriminatorLoss, GeneratorLoss - mean losses over epoch batches
// Elapsed - time taken by epoch
//
type EpochReport struct {
	Epoch             int
	Total             int
	DiscriminatorLoss float64
	GeneratorLoss     float64
	Elapsed           time.Duration
}

func (r EpochReport) String() string {
	return fmt.Sprintf("Epoch: %d/%d, discriminator loss: %.5f, generator loss: %.5f, taken time: %v", r.Epoch+1, r.Total, r.DiscriminatorLoss, r.GeneratorLoss, r.Elapsed)
}

// ProgressSink Receiver of epoch reports
type ProgressSink interface {
	Progress(report EpochReport)
}

// ProgressFunc Adapter for plain functions
type ProgressFunc func(report EpochReport)

// Progress Implements ProgressSink
func (f ProgressFunc) Progress(report EpochReport) { f(report) }

// MultiSink Fans report out to every non-nil sink
type MultiSink []ProgressSink

// Progress Implements ProgressSink
func (ms MultiSink) Progress(report EpochReport) {
	for _, s := range ms {
		if s != nil {
			s.Progress(report)
		}
	}
}

// ChanSink Hands reports over to another goroutine. Reports are dropped if channel buffer is full.
type ChanSink chan<- EpochReport

// Progress Implements ProgressSink
func (c ChanSink) Progress(report EpochReport) {
	select {
	case c <- report:
	default:
		klog.V(1).Infof("progress channel is full, dropping report for epoch %d", report.Epoch)
	}
}

// LogSink Writes every Every-th report (and the last one) to klog
type LogSink struct {
	Every int
}

// Progress Implements ProgressSink
func (ls LogSink) Progress(report EpochReport) {
	every := ls.Every
	if every <= 0 {
		every = 1
	}
	if report.Epoch%every == 0 || report.Epoch == report.Total-1 {
		klog.Info(report.String())
	}
}

// ProgressBarSink Terminal progress bar advanced once per epoch
type ProgressBarSink struct {
	bar *progressbar.ProgressBar
}

// NewProgressBarSink Constructor for ProgressBarSink
//
// total - number of epochs
// w - output (usually os.Stderr)
//
func NewProgressBarSink(total int, w io.Writer) *ProgressBarSink {
	return &ProgressBarSink{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription("training"),
			progressbar.OptionSetWriter(w),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("epochs"),
			progressbar.OptionShowIts(),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		),
	}
}

// Progress Implements ProgressSink
func (ps *ProgressBarSink) Progress(report EpochReport) {
	ps.bar.Describe(fmt.Sprintf("training [D=%.3f G=%.3f]", report.DiscriminatorLoss, report.GeneratorLoss))
	if err := ps.bar.Add(1); err != nil {
		klog.V(1).Infof("progress bar: %v", err)
	}
}

// History Per-epoch reports of training run
type History struct {
	Reports []EpochReport
}

// Progress Implements ProgressSink
func (h *History) Progress(report EpochReport) {
	h.Reports = append(h.Reports, report)
}

// Last Returns last report. Second value is false for empty history
func (h *History) Last() (EpochReport, bool) {
	if h == nil || len(h.Reports) == 0 {
		return EpochReport{}, false
	}
	return h.Reports[len(h.Reports)-1], true
}
