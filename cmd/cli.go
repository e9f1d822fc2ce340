package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"snipper/internal/config"
	"snipper/pkg/build"
)

// ParseArgs resolves the full runtime configuration: defaults, then an
// optional YAML file and environment overrides, then command line flags.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	// The config file has to be located before cobra parses the
	// remaining flags, so its values can serve as the flag defaults.
	options, err := config.LoadConfig(configPathFromArgs(os.Args[1:]))
	if err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time radio burst detector for rtl-sdr I/Q streams",
		Version:       build.VersionString(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = ""
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Tune command: print the capture plan without opening a device.
	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "Show the offset-tuning capture plan for the configured frequency and rate",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "tune"
		},
	}
	rootCmd.AddCommand(tuneCmd)

	// Radio Configuration
	rootCmd.PersistentFlags().IntVarP(&options.Radio.FrequencyHz, "frequency", "f", options.Radio.FrequencyHz,
		"Center frequency to monitor, in Hz")
	rootCmd.PersistentFlags().IntVarP(&options.Radio.SampleRateHz, "sample-rate", "s", options.Radio.SampleRateHz,
		"Sample rate, in Hz")
	rootCmd.PersistentFlags().IntVarP(&options.Radio.DeviceIndex, "device", "d", options.Radio.DeviceIndex,
		"rtl-sdr device index")
	rootCmd.PersistentFlags().IntVarP(&options.Radio.BlockBytes, "block-bytes", "b", options.Radio.BlockBytes,
		"Bytes per raw sample block read from the device")

	// Detection Configuration
	rootCmd.PersistentFlags().IntVarP(&options.Detect.WindowWidth, "window", "w", options.Detect.WindowWidth,
		"I/Q pairs per FFT analysis window (power of 2)")
	rootCmd.PersistentFlags().Float64VarP(&options.Detect.Threshold, "threshold", "t", options.Detect.Threshold,
		"Interestingness score above which a window counts as a hit")
	rootCmd.PersistentFlags().IntVar(&options.Detect.Gap, "gap", options.Detect.Gap,
		"Consecutive quiet blocks that close a burst")
	rootCmd.PersistentFlags().IntVar(&options.Detect.MinEvents, "min-events", options.Detect.MinEvents,
		"Qualifying blocks required in the history before a capture is flushed")

	// Capture Configuration
	rootCmd.PersistentFlags().StringVar(&options.Capture.Format, "format", options.Capture.Format,
		"Capture format: cu8 (raw) or wav (2-channel unsigned 8-bit PCM)")
	rootCmd.PersistentFlags().StringVarP(&options.Capture.OutDir, "out-dir", "o", options.Capture.OutDir,
		"Directory for capture files")
	rootCmd.PersistentFlags().StringVar(&options.Capture.IndexPath, "index", options.Capture.IndexPath,
		"SQLite capture catalog path (empty disables)")

	// Monitor Configuration
	rootCmd.PersistentFlags().StringVar(&options.Monitor.WebSocketPort, "monitor-port", options.Monitor.WebSocketPort,
		"Port for the /spectra WebSocket diagnostic stream (empty disables)")
	rootCmd.PersistentFlags().StringVar(&options.Monitor.UDPTarget, "udp-target", options.Monitor.UDPTarget,
		"host:port for binary spectrum frames over UDP (empty disables)")

	// Pipeline and Debug Configuration
	rootCmd.PersistentFlags().IntVar(&options.QueueDepth, "queue-depth", options.QueueDepth,
		"Blocks buffered between the producer and the consumer")
	rootCmd.PersistentFlags().StringVar(&options.LogLevel, "log-level", options.LogLevel,
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", options.Verbose,
		"Show verbose output (implies --log-level debug)")
	rootCmd.PersistentFlags().String("config", "",
		"YAML configuration file path")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	// Flags can break constraints the file-based config already passed.
	if err := options.Validate(); err != nil {
		return nil, err
	}

	return options, nil
}

// configPathFromArgs scans raw arguments for --config before cobra runs.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return ""
}
