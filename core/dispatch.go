package core

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Dispatcher routes files to the matching native Stripper and, when that
// misses or fails, through the fallback chain. It is the single entry point
// the upload pipeline calls and is safe for concurrent use on distinct
// paths; it holds no mutable state after construction.
type Dispatcher struct {
	strippers map[string]Stripper
	fallbacks []Strategy
	log       *slog.Logger
}

// NewDispatcher builds the MIME → Stripper table once from the compiled-in
// stripper set and the probed fallback strategies. logger may be nil.
func NewDispatcher(strippers map[string]Stripper, fallbacks []Strategy, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	table := make(map[string]Stripper, len(strippers))
	for mime, s := range strippers {
		table[mime] = s
	}
	return &Dispatcher{strippers: table, fallbacks: fallbacks, log: logger}
}

// ProcessFile strips metadata from the image at path, overwriting it in
// place. The outcome is returned, never raised: stripping is best-effort
// and must not block or reject the upload that triggered it.
func (d *Dispatcher) ProcessFile(path string) Outcome {
	info, err := os.Stat(path)
	if err != nil {
		d.log.Warn("strip skipped: file unreadable", "path", path, "err", err)
		return OutcomeSkipped
	}
	if !info.Mode().IsRegular() {
		d.log.Warn("strip skipped: not a regular file", "path", path)
		return OutcomeSkipped
	}

	mime := Sniff(path)
	if mime == MimeUnknown {
		d.log.Debug("strip skipped: not an image", "path", path)
		return OutcomeSkipped
	}

	if native, ok := d.strippers[mime]; ok {
		err := d.attempt(path, func() error { return native.Strip(path) })
		if err == nil {
			return OutcomeSuccess
		}
		d.log.Warn("native strip failed", "path", path, "mime", mime, "err", err)
	}

	for _, fb := range d.fallbacks {
		if !fb.Available(mime) {
			continue
		}
		err := d.attempt(path, func() error { return fb.Strip(path, mime) })
		if err == nil {
			d.log.Debug("fallback strip succeeded", "path", path, "strategy", fb.Name())
			return OutcomeSuccess
		}
		d.log.Warn("fallback strip failed", "path", path, "strategy", fb.Name(), "err", err)
	}

	d.log.Error("all strip strategies failed", "path", path, "mime", mime)
	return OutcomeFailed
}

// attempt converts a panicking codec into an ordinary error; nothing
// propagates past the dispatcher boundary.
func (d *Dispatcher) attempt(path string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strip panic on %s: %v", path, r)
		}
	}()
	return fn()
}

// ProcessSet strips the primary upload and each generated derivative
// independently. There is no shared transaction: a corrupt derivative does
// not abort processing of its siblings.
func (d *Dispatcher) ProcessSet(primary string, derivatives ...string) []Outcome {
	outcomes := make([]Outcome, 0, len(derivatives)+1)
	outcomes = append(outcomes, d.ProcessFile(primary))
	for _, p := range derivatives {
		outcomes = append(outcomes, d.ProcessFile(p))
	}
	return outcomes
}
