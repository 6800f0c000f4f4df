package main

import (
	"context"
	"fmt"
	"math/rand"

	gan "github.com/LdDl/text2img-gan-go"
	"github.com/janpfeifer/must"
)

var (
	learningRate  = 0.001
	batchSize     = 2
	imgHeight     = 10
	imgWidth      = 9
	latentSize    = 8
	hiddenSize    = 64
	vocabulary    = 16
	numEpoches    = 1500
	evalPrint     = 50
	outputFolder  = "./output"
	happyFaceData = []float64{
		0, 1, 1, 0, 0, 0, 1, 1, 0,
		0, 1, 1, 0, 0, 0, 1, 1, 0,
		0, 1, 1, 0, 0, 0, 1, 1, 0,
		0, 1, 1, 0, 0, 0, 1, 1, 0,
		0, 0, 0, 0, 1, 0, 0, 0, 0,
		0, 0, 0, 0, 1, 0, 0, 0, 0,
		0, 0, 0, 1, 1, 1, 0, 0, 0,
		1, 1, 0, 0, 0, 0, 0, 1, 1,
		0, 1, 1, 1, 0, 1, 1, 1, 0,
		0, 0, 0, 1, 1, 1, 0, 0, 0,
	}
	sadFaceData = []float64{
		0, 1, 1, 0, 0, 0, 1, 1, 0,
		0, 1, 1, 0, 0, 0, 1, 1, 0,
		0, 1, 1, 0, 0, 0, 1, 1, 0,
		0, 1, 1, 0, 0, 0, 1, 1, 0,
		0, 0, 0, 0, 1, 0, 0, 0, 0,
		0, 0, 0, 0, 1, 0, 0, 0, 0,
		0, 0, 0, 1, 1, 1, 0, 0, 0,
		0, 0, 0, 1, 1, 1, 0, 0, 0,
		0, 1, 1, 1, 0, 1, 1, 1, 0,
		1, 1, 0, 0, 0, 0, 0, 1, 1,
	}
)

func toGrid(data []float64) gan.Grid {
	grid := make(gan.Grid, imgHeight)
	for y := range grid {
		grid[y] = data[y*imgWidth : (y+1)*imgWidth]
	}
	return grid
}

func printGrid(grid gan.Grid) {
	for _, row := range grid {
		fmt.Printf("\t")
		for _, v := range row {
			char := "x"
			if v < 0.5 {
				char = " "
			}
			fmt.Printf("%s ", char)
		}
		fmt.Println()
	}
}

func main() {
	// Initialize seed with constant value to reproduce results
	rng := rand.New(rand.NewSource(1337))

	samples := gan.SampleLoader{
		{Text: "happy smiley face", Image: toGrid(happyFaceData)},
		{Text: "sad smiley face", Image: toGrid(sadFaceData)},
	}
	fmt.Println("Actual smiley faces:")
	for _, s := range samples {
		fmt.Println(s.Text)
		printGrid(s.Image)
	}
	ds := must.M1(samples.Load())

	definedGenerator := must.M1(gan.NewGenerator(gan.GeneratorConfig{
		Encoder:    gan.TextEncoder{Vocabulary: vocabulary, Hash: gan.HASH_FNV32A},
		LatentSize: latentSize,
		Height:     imgHeight,
		Width:      imgWidth,
		Hidden:     []int{hiddenSize},
	}, rng))
	definedDiscriminator := must.M1(gan.NewDiscriminator(gan.DiscriminatorConfig{
		Height: imgHeight,
		Width:  imgWidth,
		Hidden: []int{hiddenSize},
	}, rng))

	store := must.M1(gan.NewDirStore(outputFolder))
	trainer := must.M1(gan.NewTrainer(gan.TrainConfig{
		NumEpochs:    numEpoches,
		BatchSize:    batchSize,
		LearningRate: learningRate,
		Beta1:        0.5,
		Seed:         1337,
	}, ds, definedGenerator, definedDiscriminator,
		gan.WithProgress(gan.LogSink{Every: evalPrint}),
		gan.WithStore(store),
	))
	defer trainer.Close()

	_ = must.M1(trainer.Run(context.Background()))

	fmt.Println("Start testing generator after final epoch")
	inference := gan.NewInference(nil)
	must.M(inference.Load(store, gan.GeneratorArtifact))
	for _, s := range samples {
		fmt.Println(s.Text)
		printGrid(must.M1(inference.Generate(s.Text)))
	}
}
