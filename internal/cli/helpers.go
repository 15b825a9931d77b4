package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/healthquest/healthquest/internal/daemon"
)

// openDaemon builds the daemon for a one-shot command.
func openDaemon() (*daemon.Daemon, error) {
	var opts []daemon.Option
	if ephemeral {
		opts = append(opts, daemon.Ephemeral())
	}
	return daemon.New(opts...)
}

// newLineScanner creates a line scanner from a reader.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}

// prompt asks for a value on out and reads one line from sc.
func prompt(sc *bufio.Scanner, out io.Writer, label string) string {
	fmt.Fprintf(out, "%s: ", label)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

// timeLayouts are accepted for task windows, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseTime reads s in loc. A bare "15:04" means that time today.
func parseTime(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q (use RFC3339, \"YYYY-MM-DD HH:MM\" or \"HH:MM\")", s)
}
