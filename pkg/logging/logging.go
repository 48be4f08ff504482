// Package logging configures the go-logging backend shared by every package.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	gologging "github.com/op/go-logging"
)

const format = `[%{time:2006-01-02 15:04:05.000}] %{level:7s} %{module}: %{message}`

// Configure sends log output to filename, or to stderr when filename is
// empty, and drops messages below level. The returned file, if any, is owned
// by the caller.
func Configure(level, filename string) (*os.File, error) {
	lvl, err := gologging.LogLevel(strings.ToUpper(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var out io.Writer = os.Stderr
	var lf *os.File
	if filename != "" {
		lf, err = os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		out = lf
	}

	ConfigureWriter(out, lvl)
	return lf, nil
}

// ConfigureWriter installs a formatted backend on w at the given level
func ConfigureWriter(w io.Writer, level gologging.Level) {
	backend := gologging.NewLogBackend(w, "", 0)
	formatter := gologging.NewBackendFormatter(backend, gologging.MustStringFormatter(format))
	leveled := gologging.AddModuleLevel(formatter)
	leveled.SetLevel(level, "")
	gologging.SetBackend(leveled)
}
