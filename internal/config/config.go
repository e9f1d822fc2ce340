package config

import (
	"fmt"

	"snipper/pkg/bitint"
)

// Core configuration constants that define the boundaries and defaults
// for the capture pipeline.
const (
	// Default values for the capture pipeline configuration
	DefaultFrequencyHz  = 434200000 // 70cm ISM band
	DefaultSampleRateHz = 2880000
	DefaultDeviceIndex  = 0
	DefaultBlockBytes   = 262144 // rtl-sdr default transfer size (16 * 16384)
	DefaultWindowWidth  = 128    // I/Q pairs per analysis window
	DefaultThreshold    = 3.0    // Interestingness score cutoff
	DefaultGap          = 15     // Quiet blocks that close a burst
	DefaultMinEvents    = 2      // Qualifying blocks needed before a flush
	DefaultQueueDepth   = 32     // Blocks buffered between producer and consumer
	DefaultFormat       = "cu8"  // Raw interleaved unsigned 8-bit I/Q
	DefaultOutDir       = "."
	DefaultLogLevel     = "info"

	// Hardware and processing limits
	MinWindowWidth   = 2       // Blackman-Harris needs at least two points
	MinSampleRateHz  = 225000  // Lowest rate the rtl-sdr frontend supports
	MaxSampleRateHz  = 3200000 // Highest rate before sample drops
	MaxQueueDepth    = 4096
	BytesPerIQSample = 2
)

// Radio holds tuning and device settings for the SDR front end.
type Radio struct {
	FrequencyHz  int `yaml:"frequency_hz"`   // Requested center frequency in Hz
	SampleRateHz int `yaml:"sample_rate_hz"` // Requested sample rate in Hz
	DeviceIndex  int `yaml:"device_index"`   // rtl-sdr device index
	BlockBytes   int `yaml:"block_bytes"`    // Bytes per raw sample block read
}

// Detect holds the spectral scoring and hysteresis settings.
type Detect struct {
	WindowWidth int     `yaml:"window_width"` // I/Q pairs per FFT window (power of 2)
	Threshold   float64 `yaml:"threshold"`    // Score above which a window is interesting
	Gap         int     `yaml:"gap"`          // Consecutive quiet blocks that end a burst
	MinEvents   int     `yaml:"min_events"`   // Qualifying blocks required to flush
}

// Capture holds persistence settings for flushed bursts.
type Capture struct {
	Format    string `yaml:"format"`     // Output format: "cu8" or "wav"
	OutDir    string `yaml:"out_dir"`    // Directory for capture files
	IndexPath string `yaml:"index_path"` // SQLite capture catalog ("" disables)
}

// Monitor holds settings for the optional diagnostic transports.
type Monitor struct {
	WebSocketPort string `yaml:"websocket_port"` // Port for the /spectra endpoint ("" disables)
	UDPTarget     string `yaml:"udp_target"`     // host:port for binary spectrum frames ("" disables)
}

// Config holds all runtime configuration options for the burst detector.
// It is constructed from defaults, then an optional YAML file, environment
// overrides and finally command line flags.
type Config struct {
	Radio   Radio   `yaml:"radio"`
	Detect  Detect  `yaml:"detect"`
	Capture Capture `yaml:"capture"`
	Monitor Monitor `yaml:"monitor"`

	QueueDepth int    `yaml:"queue_depth"` // Blocks buffered between producer and consumer
	LogLevel   string `yaml:"log_level"`   // debug, info, warn, error
	Verbose    bool   `yaml:"verbose"`     // Shorthand for log_level: debug
	Command    string `yaml:"-"`           // One-off command to execute (tune, version)
}

// NewConfig creates a new Config instance with default values.
func NewConfig() *Config {
	return &Config{
		Radio: Radio{
			FrequencyHz:  DefaultFrequencyHz,
			SampleRateHz: DefaultSampleRateHz,
			DeviceIndex:  DefaultDeviceIndex,
			BlockBytes:   DefaultBlockBytes,
		},
		Detect: Detect{
			WindowWidth: DefaultWindowWidth,
			Threshold:   DefaultThreshold,
			Gap:         DefaultGap,
			MinEvents:   DefaultMinEvents,
		},
		Capture: Capture{
			Format: DefaultFormat,
			OutDir: DefaultOutDir,
		},
		QueueDepth: DefaultQueueDepth,
		LogLevel:   DefaultLogLevel,
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Radio.FrequencyHz <= 0 {
		return fmt.Errorf("radio.frequency_hz must be positive, got %d", c.Radio.FrequencyHz)
	}
	if c.Radio.SampleRateHz < MinSampleRateHz || c.Radio.SampleRateHz > MaxSampleRateHz {
		return fmt.Errorf("radio.sample_rate_hz %d outside supported range [%d, %d]",
			c.Radio.SampleRateHz, MinSampleRateHz, MaxSampleRateHz)
	}
	if c.Detect.WindowWidth < MinWindowWidth {
		return fmt.Errorf("detect.window_width must be >= %d, got %d", MinWindowWidth, c.Detect.WindowWidth)
	}
	if !bitint.IsPowerOfTwo(c.Detect.WindowWidth) {
		return fmt.Errorf("detect.window_width must be a power of 2, got %d", c.Detect.WindowWidth)
	}
	windowBytes := BytesPerIQSample * c.Detect.WindowWidth
	if c.Radio.BlockBytes < windowBytes || c.Radio.BlockBytes%windowBytes != 0 {
		return fmt.Errorf("radio.block_bytes %d must be a positive multiple of %d",
			c.Radio.BlockBytes, windowBytes)
	}
	if c.Detect.Threshold <= 0 {
		return fmt.Errorf("detect.threshold must be positive, got %f", c.Detect.Threshold)
	}
	if c.Detect.Gap < 1 {
		return fmt.Errorf("detect.gap must be >= 1, got %d", c.Detect.Gap)
	}
	if c.Detect.MinEvents < 0 {
		return fmt.Errorf("detect.min_events must be >= 0, got %d", c.Detect.MinEvents)
	}
	if c.QueueDepth < 1 || c.QueueDepth > MaxQueueDepth {
		return fmt.Errorf("queue_depth %d outside supported range [1, %d]", c.QueueDepth, MaxQueueDepth)
	}
	switch c.Capture.Format {
	case "cu8", "wav":
	default:
		return fmt.Errorf("capture.format must be one of cu8, wav; got %q", c.Capture.Format)
	}
	return nil
}
