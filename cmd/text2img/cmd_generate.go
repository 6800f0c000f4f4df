package main

import (
	text2img "github.com/LdDl/text2img-gan-go"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := text2img.OpenStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	inference := text2img.NewInference(nil)
	if err := inference.Load(store, text2img.GeneratorArtifact); err != nil {
		return err
	}
	grid, err := inference.Generate(promptText)
	if err != nil {
		return err
	}
	display := text2img.PNGDisplay{Path: outPath, Scale: scale}
	if err := display.Display(text2img.ToImage(grid)); err != nil {
		return err
	}
	klog.Infof("Image for '%s' saved to '%s'", promptText, outPath)
	return nil
}
