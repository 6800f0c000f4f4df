package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	gan "github.com/LdDl/text2img-gan-go"
	"github.com/janpfeifer/must"
)

var (
	outputFolder = "./output"
	dataFile     = "./symbols.yaml"
	batchSize    = 2
	latentSize   = 4
	symbolHeight = 10
	symbolWidth  = 8
	numEpoches   = 300
	evalPrint    = 30
	imageScale   = 16
	symbols      = map[string][]float64{
		"letter H": {
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 1, 1, 1, 1, 0,
			0, 1, 1, 1, 1, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		"letter T": {
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 1, 1, 1, 1, 1, 1, 0,
			0, 1, 1, 1, 1, 1, 1, 0,
			0, 0, 0, 1, 1, 0, 0, 0,
			0, 0, 0, 1, 1, 0, 0, 0,
			0, 0, 0, 1, 1, 0, 0, 0,
			0, 0, 0, 1, 1, 0, 0, 0,
			0, 0, 0, 1, 1, 0, 0, 0,
			0, 0, 0, 1, 1, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		"letter L": {
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 1, 1, 0, 0, 0, 0, 0,
			0, 1, 1, 0, 0, 0, 0, 0,
			0, 1, 1, 0, 0, 0, 0, 0,
			0, 1, 1, 0, 0, 0, 0, 0,
			0, 1, 1, 0, 0, 0, 0, 0,
			0, 1, 1, 0, 0, 0, 0, 0,
			0, 1, 1, 1, 1, 1, 1, 0,
			0, 1, 1, 1, 1, 1, 1, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		"letter O": {
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 1, 1, 1, 1, 0, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 1, 1, 0, 0, 1, 1, 0,
			0, 0, 1, 1, 1, 1, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
	}
)

// genSyntheticData Draws every symbol as dataset sample (sorted by text)
func genSyntheticData() gan.SampleLoader {
	texts := []string{"letter H", "letter L", "letter O", "letter T"}
	samples := make(gan.SampleLoader, 0, len(texts))
	for _, text := range texts {
		data := symbols[text]
		grid := make(gan.Grid, symbolHeight)
		for y := range grid {
			grid[y] = data[y*symbolWidth : (y+1)*symbolWidth]
		}
		samples = append(samples, gan.Sample{Text: text, Image: grid})
	}
	return samples
}

func main() {
	var loader gan.Loader = genSyntheticData()
	// Use YAML file with symbols when it's there
	if _, err := os.Stat(dataFile); err == nil {
		fmt.Printf("Using symbols from '%s'\n", dataFile)
		loader = gan.FileLoader{Path: dataFile}
	}
	ds := must.M1(loader.Load())
	fmt.Printf("Reference data: %d symbols\n", ds.Len())

	cfg := gan.DefaultConfig()
	cfg.Train.NumEpochs = numEpoches
	cfg.Train.BatchSize = batchSize
	cfg.Train.NumBatches = 0
	cfg.Train.Seed = 1337
	cfg.Model.Vocabulary = 8
	cfg.Model.LatentSize = latentSize
	cfg.Model.ImageHeight = symbolHeight
	cfg.Model.ImageWidth = symbolWidth
	cfg.Model.GeneratorHidden = []int{32}
	cfg.Model.DiscriminatorHidden = []int{32}
	cfg.Store = gan.StoreConfig{Kind: gan.StoreBadger, Path: filepath.Join(outputFolder, "models")}
	must.M(cfg.Validate())

	store := must.M1(gan.OpenStore(cfg.Store))
	defer store.Close()

	pair := must.M1(gan.NewGAN(cfg.Model, rand.New(rand.NewSource(cfg.Train.Seed))))
	trainer := must.M1(pair.NewTrainer(cfg.Train, ds,
		gan.WithProgress(gan.LogSink{Every: evalPrint}),
		gan.WithStore(store),
	))
	defer trainer.Close()

	run := trainer.RunAsync(context.Background())
	for report := range run.Progress {
		if report.Epoch%evalPrint == 0 {
			fmt.Println(report)
		}
	}
	history := must.M1(run.Wait())
	must.M(gan.PlotLosses(history, filepath.Join(outputFolder, "losses.png")))

	trained := must.M1(gan.LoadGAN(store))
	inference := gan.NewInference(trained.Generator)
	for i := 0; i < ds.Len(); i++ {
		text := ds.Sample(i).Text
		grid := must.M1(inference.Generate(text))
		fname := filepath.Join(outputFolder, fmt.Sprintf("symbol_%d.png", i))
		must.M(gan.PNGDisplay{Path: fname, Scale: imageScale}.Display(gan.ToImage(grid)))
		fmt.Printf("'%s' => %s\n", text, fname)
	}
}

