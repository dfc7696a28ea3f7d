package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/ouka-input/ouka/device"
)

type Devices struct {
	Filter string `help:"Only list devices whose name contains this text" short:"f"`
	All    bool   `help:"Include devices that cannot emit keys"`
}

// Run is called by Kong when the devices command is executed.
func (d *Devices) Run(logger *slog.Logger) error {
	all, err := device.Scan()
	if err != nil {
		return err
	}
	logger.Debug("Devices scanned", "hardware", len(all))

	fd := int(os.Stdout.Fd())
	width := 0
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}
	return d.print(os.Stdout, all, width)
}

// print writes one line per node grouped per hardware. A zero width means
// the output is not a terminal: no header, tab separated, nothing cut.
func (d *Devices) print(w io.Writer, all []device.Hardware, width int) error {
	filter := strings.ToLower(d.Filter)
	var tw io.Writer = w
	var flush func() error
	if width > 0 {
		t := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		tw, flush = t, t.Flush
		fmt.Fprintln(tw, "ID\tPATH\tNAME")
	}

	for _, hw := range all {
		nodes := hw.Nodes
		if !d.All {
			nodes = hw.KeyNodes()
		}
		for _, n := range nodes {
			if filter != "" && !strings.Contains(strings.ToLower(n.Name), filter) {
				continue
			}
			name := n.Name
			if width > 0 {
				name = truncate(name, width-len(n.Path)-16)
			}
			fmt.Fprintf(tw, "%04x:%04x\t%s\t%s\n", hw.Vendor, hw.Product, n.Path, name)
		}
	}
	if flush != nil {
		return flush()
	}
	return nil
}

func truncate(s string, n int) string {
	if n < 4 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
