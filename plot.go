package text2img_gan

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotLosses Draws per-epoch losses of both models and saves chart to file
//
// history - reports of training run
// fname - output file (format is picked by extension)
//
func PlotLosses(history *History, fname string) error {
	if history == nil || len(history.Reports) == 0 {
		return errors.New("Nothing to plot: history is empty")
	}
	discData := make(plotter.XYs, len(history.Reports))
	genData := make(plotter.XYs, len(history.Reports))
	for i, r := range history.Reports {
		discData[i].X = float64(r.Epoch + 1)
		discData[i].Y = r.DiscriminatorLoss
		genData[i].X = float64(r.Epoch + 1)
		genData[i].Y = r.GeneratorLoss
	}
	discLine, err := plotter.NewLine(discData)
	if err != nil {
		return errors.Wrap(err, "Can't init discriminator line")
	}
	discLine.LineStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
	genLine, err := plotter.NewLine(genData)
	if err != nil {
		return errors.Wrap(err, "Can't init generator line")
	}
	genLine.LineStyle.Color = color.RGBA{G: 128, B: 255, A: 255}
	p := plot.New()
	p.Title.Text = "Training losses"
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Loss"
	p.Add(plotter.NewGrid())
	p.Add(discLine, genLine)
	p.Legend.Add("discriminator", discLine)
	p.Legend.Add("generator", genLine)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fname); err != nil {
		return errors.Wrap(err, "Can't save plot")
	}
	return nil
}
