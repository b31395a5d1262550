// Package fallback implements the secondary strip strategies tried when a
// native stripper is missing for a MIME type or has failed on a file.
package fallback

import (
	"fmt"
	"os/exec"
	"strings"

	"imgscrub/core"
)

// toolNames are probed in order for the external-tool strategy.
var toolNames = []string{"magick", "convert"}

// ExternalTool shells out to ImageMagick to strip metadata in place.
// Availability is probed once at construction; it is a static fact about
// the execution environment.
type ExternalTool struct {
	bin string
}

// NewExternalTool probes PATH for an ImageMagick binary. When allowExec is
// false or no binary is found, the strategy reports itself unavailable.
func NewExternalTool(allowExec bool) *ExternalTool {
	t := &ExternalTool{}
	if !allowExec {
		return t
	}
	for _, name := range toolNames {
		if path, err := exec.LookPath(name); err == nil {
			t.bin = path
			break
		}
	}
	return t
}

func (t *ExternalTool) Name() string { return "external-tool" }

func (t *ExternalTool) Available(mime string) bool { return t.bin != "" }

// Strip runs `<tool> -strip <path> <path>`. The path is passed as a single
// argv element with no shell in between, so metacharacters in filenames
// are inert.
func (t *ExternalTool) Strip(path, mime string) error {
	if t.bin == "" {
		return fmt.Errorf("no external tool available")
	}
	cmd := exec.Command(t.bin, "-strip", path, path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s -strip: %w (%s)", t.bin, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Chain builds the ordered fallback strategies: external tool first, then
// the generic codec pass.
func Chain(opts core.Options) []core.Strategy {
	return []core.Strategy{
		NewExternalTool(opts.AllowExec),
		NewGeneric(opts),
	}
}
