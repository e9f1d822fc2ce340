package sdr

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	applog "snipper/internal/log"
)

const rtlBinary = "rtl_sdr"

// RTLSDR drives an rtl-sdr dongle through the rtl_sdr binary, which
// streams raw unsigned 8-bit I/Q samples to stdout. Shelling out keeps
// the module free of a cgo librtlsdr dependency.
type RTLSDR struct {
	index int
	cmd   *exec.Cmd
	out   *bufio.Reader
}

// Open prepares the rtl-sdr device with the given index. The device is
// not touched until Configure starts the sample stream.
func Open(index int) (*RTLSDR, error) {
	if _, err := exec.LookPath(rtlBinary); err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", rtlBinary, err)
	}
	return &RTLSDR{index: index}, nil
}

// Configure launches the capture process tuned to freqHz at rateHz with
// automatic tuner gain, as one continuous synchronous stream.
func (r *RTLSDR) Configure(freqHz, rateHz int) error {
	if r.cmd != nil {
		return fmt.Errorf("device %d already configured", r.index)
	}

	args := []string{
		"-d", strconv.Itoa(r.index),
		"-f", strconv.Itoa(freqHz),
		"-s", strconv.Itoa(rateHz),
		"-g", "0", // Auto gain
		"-", // Samples to stdout
	}
	cmd := exec.Command(rtlBinary, args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	applog.Infof("Running rtl-sdr capture: %q", cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", rtlBinary, err)
	}
	r.cmd = cmd
	r.out = bufio.NewReaderSize(out, 1<<20)

	applog.Infof("Tuned to %d Hz, sampling at %d S/s", freqHz, rateHz)
	return nil
}

// ReadBlock blocks until buf is completely filled or the stream fails.
func (r *RTLSDR) ReadBlock(buf []byte) (int, error) {
	if r.out == nil {
		return 0, fmt.Errorf("device %d not configured", r.index)
	}
	return io.ReadFull(r.out, buf)
}

// Close terminates the capture process and releases the device.
func (r *RTLSDR) Close() error {
	if r.cmd == nil {
		return nil
	}
	applog.Infof("Close")
	if r.cmd.Process != nil {
		if err := r.cmd.Process.Kill(); err != nil {
			return err
		}
	}
	// Wait returns an error after Kill; the device is released either way.
	_ = r.cmd.Wait()
	r.cmd = nil
	r.out = nil
	return nil
}
