package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath  string
	datasetPath string
	plotPath    string
	metricsAddr string
	promptText  string
	outPath     string
	scale       int

	rootCmd = &cobra.Command{
		Use:           "text2img",
		Short:         "Train a small text-to-image GAN and draw pictures with it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	trainCmd = &cobra.Command{
		Use:   "train",
		Short: "Train generator and discriminator, then save both to the configured store",
		Args:  cobra.NoArgs,
		RunE:  runTrain,
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Load trained generator and draw image for given text",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration (defaults are used when empty)")

	trainCmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to YAML dataset. Built-in demo drawings are used when empty")
	trainCmd.Flags().StringVar(&plotPath, "plot", "", "Save loss chart to this file")
	trainCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while training")

	generateCmd.Flags().StringVar(&promptText, "text", "", "Description of image")
	generateCmd.Flags().StringVar(&outPath, "out", "image.png", "Output image file")
	generateCmd.Flags().IntVar(&scale, "scale", 8, "Upscale factor for output image")
	_ = generateCmd.MarkFlagRequired("text")

	rootCmd.AddCommand(trainCmd, generateCmd)
}
