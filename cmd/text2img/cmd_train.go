package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	text2img "github.com/LdDl/text2img-gan-go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func loadConfig() (text2img.Config, error) {
	if configPath == "" {
		cfg := text2img.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return text2img.LoadConfig(configPath)
}

func runTrain(cmd *cobra.Command, args []string) error {
	err := train()
	if errors.Is(err, text2img.ErrPersistence) {
		return &saveError{err: err}
	}
	return err
}

func train() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var loader text2img.Loader = text2img.SampleLoader(text2img.DemoSamples(cfg.Model.ImageHeight, cfg.Model.ImageWidth))
	if datasetPath != "" {
		loader = text2img.FileLoader{Path: datasetPath}
	}
	ds, err := loader.Load()
	if err != nil {
		return err
	}
	klog.Infof("Dataset: %d samples", ds.Len())

	gan, err := text2img.NewGAN(cfg.Model, rand.New(rand.NewSource(cfg.Train.Seed)))
	if err != nil {
		return err
	}

	store, err := text2img.OpenStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	metrics := text2img.NewMetrics(reg)
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				klog.Errorf("metrics server: %v", err)
			}
		}()
		defer srv.Close()
		klog.Infof("Serving metrics on %s/metrics", metricsAddr)
	}

	sinks := text2img.MultiSink{
		text2img.LogSink{Every: 10},
		metrics,
		text2img.NewProgressBarSink(cfg.Train.NumEpochs, os.Stderr),
	}
	trainer, err := gan.NewTrainer(cfg.Train, ds,
		text2img.WithProgress(sinks),
		text2img.WithStepHook(metrics.Step),
		text2img.WithStore(store),
	)
	if err != nil {
		return err
	}
	defer trainer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	history, err := trainer.Run(ctx)
	if err != nil {
		return err
	}
	if last, ok := history.Last(); ok {
		klog.Infof("Final losses: discriminator %.5f, generator %.5f", last.DiscriminatorLoss, last.GeneratorLoss)
	}
	if plotPath != "" {
		if err := text2img.PlotLosses(history, plotPath); err != nil {
			return err
		}
		klog.Infof("Loss chart saved to '%s'", plotPath)
	}
	return nil
}
