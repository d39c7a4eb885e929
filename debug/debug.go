// Package debug provides opt-in tracing for the model layers, controlled by
// environment variables. It is off by default and never changes behavior.
package debug

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type debug struct {
	Gate    bool
	Create  bool
	Resolve bool
}

var (
	d     *debug
	label *color.Color
)

func init() {
	d = &debug{}
	d.Gate = boolEnv("ARMODEL_DEBUG_GATE")
	d.Create = boolEnv("ARMODEL_DEBUG_CREATE")
	d.Resolve = boolEnv("ARMODEL_DEBUG_RESOLVE")

	label = color.New(color.FgCyan)
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		label.DisableColor()
	}
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Gate() bool {
	return d.Gate
}
func Create() bool {
	return d.Create
}
func Resolve() bool {
	return d.Resolve
}

func Logf(tag, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", label.Sprintf("[%s]", tag), fmt.Sprintf(format, args...))
}
