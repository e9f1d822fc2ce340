// SPDX-License-Identifier: MIT
/*
snipper continuously monitors a slice of radio spectrum through an
rtl-sdr dongle and snips bursts of narrowband activity out of the
stream: raw I/Q blocks are scored by spectral peakedness, and a
hysteresis policy flushes the rolling history around each burst to a
capture file once the band goes quiet again.

The program flow has three phases:

 1. Startup: build info, configuration (defaults, YAML file,
    environment, flags), one-off commands, device setup.
 2. Capture: the producer/consumer pipeline runs until the stream
    fails or a shutdown is requested.
 3. Shutdown: first SIGINT/SIGTERM requests a graceful stop observed
    at the worker loop boundaries; a second one terminates the
    process immediately, accepting the loss of in-flight data.
*/
package main

import (
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"snipper/cmd"
	"snipper/internal/capture"
	"snipper/internal/config"
	applog "snipper/internal/log"
	"snipper/internal/monitor"
	"snipper/internal/pipeline"
	"snipper/internal/sdr"
	"snipper/pkg/build"
)

func main() {
	if err := build.Initialize(); err != nil {
		stdlog.Fatal(err)
	}

	cfg, err := cmd.ParseArgs()
	if err != nil {
		stdlog.Fatal(err)
	}

	if cfg.Verbose {
		applog.SetLevel(applog.LevelDebug)
	} else if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	if cfg.Command == "tune" {
		settings := sdr.OptimalSettings(cfg.Radio.FrequencyHz, cfg.Radio.SampleRateHz)
		fmt.Printf("frequency:    %d Hz\nsample rate:  %d S/s\ndownsample:   %d\ncapture freq: %d Hz\ncapture rate: %d S/s\n",
			cfg.Radio.FrequencyHz, cfg.Radio.SampleRateHz,
			settings.Downsample, settings.CaptureFreqHz, settings.CaptureRateHz)
		return
	}

	if err := run(cfg); err != nil {
		stdlog.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	settings := sdr.OptimalSettings(cfg.Radio.FrequencyHz, cfg.Radio.SampleRateHz)

	radio, err := sdr.Open(cfg.Radio.DeviceIndex)
	if err != nil {
		return err
	}
	if err := radio.Configure(settings.CaptureFreqHz, settings.CaptureRateHz); err != nil {
		return err
	}
	applog.Infof("Buffer size: %.0fms",
		1000*0.5*float64(cfg.Radio.BlockBytes)/float64(settings.CaptureRateHz))

	var sink capture.Sink
	switch cfg.Capture.Format {
	case "wav":
		sink = &capture.WAVSink{Dir: cfg.Capture.OutDir, SampleRateHz: settings.CaptureRateHz}
	default:
		sink = &capture.FileSink{Dir: cfg.Capture.OutDir}
	}

	var index *capture.Index
	if cfg.Capture.IndexPath != "" {
		index, err = capture.OpenIndex(cfg.Capture.IndexPath)
		if err != nil {
			return err
		}
		defer index.Close()
	}

	var transports monitor.FanOut
	if cfg.Monitor.WebSocketPort != "" {
		transports = append(transports, monitor.NewWebSocketTransport(cfg.Monitor.WebSocketPort))
	}
	if cfg.Monitor.UDPTarget != "" {
		udp, err := monitor.NewUDPTransport(cfg.Monitor.UDPTarget)
		if err != nil {
			return err
		}
		transports = append(transports, udp)
	}
	var mon monitor.Transport
	if len(transports) > 0 {
		mon = transports
		defer transports.Close()
	}

	buffer := capture.NewBuffer(cfg.Detect.Gap, cfg.Detect.MinEvents,
		cfg.Radio.FrequencyHz, cfg.Radio.SampleRateHz, sink, index)

	p := pipeline.New(radio, buffer, pipeline.Options{
		BlockBytes:  cfg.Radio.BlockBytes,
		WindowWidth: cfg.Detect.WindowWidth,
		Threshold:   cfg.Detect.Threshold,
		QueueDepth:  cfg.QueueDepth,
		Debug:       cfg.Verbose,
		Monitor:     mon,
	})

	// First signal requests a graceful stop; a second one while the
	// first is still being serviced forces immediate termination.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigs {
			if !p.ShutdownToken().Request() {
				applog.Infof("Shutdown already requested, exiting immediately.")
				os.Exit(1)
			}
			applog.Infof("Shutdown requested, finishing in-flight work...")
		}
	}()

	applog.Infof("Reading samples in sync mode...")
	return p.Run()
}
