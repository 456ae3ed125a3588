// pkg/inspect/inspect.go - extracts the required build from a document via the inspector tool.

package inspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"github.com/windowsadmins/tdlauncher/pkg/platform"
)

// ToolName is the inspector binary shipped with the host application.
const ToolName = "toeexpand"

// minOutputLen is the shortest trimmed output that can hold a header line and
// a version line.
const minOutputLen = 5

// InspectionError reports that the required build could not be determined.
type InspectionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InspectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inspect %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("inspect %s: %s", e.Path, e.Reason)
}

func (e *InspectionError) Unwrap() error { return e.Err }

// Inspector runs the inspector tool against documents.
type Inspector struct {
	Tool    string
	Product string
	Runner  Runner
}

// New returns an Inspector using the default process runner.
func New(tool, product string) *Inspector {
	return &Inspector{Tool: tool, Product: product, Runner: ExecRunner{}}
}

// Inspect runs `<tool> -b <doc>` and returns the build the document requires.
func (i *Inspector) Inspect(ctx context.Context, documentPath string) (build.ID, error) {
	if i.Tool == "" {
		return build.ID{}, &InspectionError{Path: documentPath, Reason: "inspector tool not found"}
	}
	if _, err := os.Stat(i.Tool); err != nil {
		return build.ID{}, &InspectionError{Path: documentPath, Reason: "inspector tool not found", Err: err}
	}
	runner := i.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	logging.Debug("Running inspector", "tool", i.Tool, "document", documentPath)
	res, err := runner.Run(ctx, i.Tool, "-b", documentPath)
	if err != nil {
		return build.ID{}, &InspectionError{Path: documentPath, Reason: "failed to run inspector", Err: err}
	}
	if res.ExitCode != 0 {
		// Some tool releases exit non-zero on success.
		logging.Info("Inspector exited with non-zero code", "code", res.ExitCode, "stderr", strings.TrimSpace(string(res.Stderr)))
	}

	id, err := ParseOutput(i.Product, string(res.Stdout))
	if err != nil {
		var ie *InspectionError
		if errors.As(err, &ie) {
			ie.Path = documentPath
			return build.ID{}, ie
		}
		return build.ID{}, err
	}
	logging.Info("Document requires build", "document", documentPath, "build", id.String())
	return id, nil
}

// ParseOutput extracts the build from raw inspector output. The version is the
// last whitespace-separated token of the second non-blank line.
func ParseOutput(product, output string) (build.ID, error) {
	output = strings.ReplaceAll(output, "\r", "")
	if len(strings.TrimSpace(output)) < minOutputLen {
		return build.ID{}, &InspectionError{Reason: "no usable output from inspector"}
	}

	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	logging.Debug("Inspector output", "lines", len(lines))
	if len(lines) < 2 {
		return build.ID{}, &InspectionError{Reason: fmt.Sprintf("expected at least 2 lines of output, got %d", len(lines))}
	}

	fields := strings.Fields(lines[1])
	token := fields[len(fields)-1]
	id, err := build.ParseToken(product, token)
	if err != nil {
		return build.ID{}, &InspectionError{Reason: "unparsable version token", Err: err}
	}
	return id, nil
}

// DefaultToolPath locates the inspector. On Windows it ships beside the
// launcher; on macOS it lives inside an installed application bundle. An
// empty result means no tool is available.
func DefaultToolPath(p platform.OS, exeDir, bundlePath string) string {
	switch p {
	case platform.Windows:
		return filepath.Join(exeDir, ToolName, ToolName+".exe")
	case platform.MacOS:
		if bundlePath == "" {
			return ""
		}
		return filepath.Join(bundlePath, "Contents", "MacOS", ToolName)
	default:
		return filepath.Join(exeDir, ToolName)
	}
}
