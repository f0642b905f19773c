package diag

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	errorLabel    = color.New(color.FgRed, color.Bold)
	locationColor = color.New(color.FgCyan)
)

// Report writes err and every implicated location to w.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}

	errorLabel.Fprint(w, "Error: ")
	fmt.Fprintln(w, err.Error())

	var de *Error
	if !errors.As(err, &de) {
		return
	}
	for _, loc := range de.Locations {
		locationColor.Fprintf(w, "%s\n", loc)
	}
}

// Fatal reports err on stderr and terminates the process.
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(1)
}
