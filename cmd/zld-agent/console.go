// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/zld-agent/internal/engine"
	"github.com/pdiddy/zld-agent/internal/history"
)

const consoleHelp = `commands:
  <Enter>, run     research now
  list             list the session's reports
  show <n>         show scan #n and keep it selected
  latest           show the newest report and follow new ones
  save <file>      write the session history to a .yaml or .json file
  help             this text`

// console reads operator commands from stdin while the monitor runs.
type console struct {
	eng *engine.Engine
	w   io.Writer
}

func (c *console) run(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		c.handle(scanner.Text())
	}
}

func (c *console) handle(line string) {
	hist := c.eng.History()
	fields := strings.Fields(line)
	cmd := ""
	if len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}

	switch cmd {
	case "", "run", "r":
		if c.eng.Running() {
			fmt.Fprintln(c.w, "A cycle is already running.")
			return
		}
		c.eng.TriggerNow()

	case "list", "ls":
		reports := hist.Reports()
		if len(reports) == 0 {
			fmt.Fprintln(c.w, "No reports yet.")
			return
		}
		sel, _ := hist.Selected()
		for i, r := range reports {
			mark := " "
			if r.ID == sel.ID {
				mark = "*"
			}
			fmt.Fprintf(c.w, "%s #%-4d %s  %-7s  %s\n", mark, hist.ScanNumber(i), r.Timestamp, r.Status, firstLine(r.Findings))
		}

	case "show":
		if len(fields) != 2 {
			fmt.Fprintln(c.w, "usage: show <scan number>")
			return
		}
		n, err := strconv.Atoi(strings.TrimPrefix(fields[1], "#"))
		if err != nil {
			fmt.Fprintf(c.w, "not a scan number: %s\n", fields[1])
			return
		}
		for i, r := range hist.Reports() {
			if hist.ScanNumber(i) == n {
				hist.Select(r.ID)
				fmt.Fprint(c.w, history.FormatText(r))
				return
			}
		}
		fmt.Fprintf(c.w, "no scan #%d in this session\n", n)

	case "latest":
		hist.Unpin()
		r, ok := hist.Latest()
		if !ok {
			fmt.Fprintln(c.w, "No reports yet.")
			return
		}
		fmt.Fprint(c.w, history.FormatText(r))

	case "save":
		if len(fields) != 2 {
			fmt.Fprintln(c.w, "usage: save <file.yaml|file.json>")
			return
		}
		if err := writeHistory(hist, fields[1]); err != nil {
			fmt.Fprintf(c.w, "save failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.w, "Saved %d report(s) to %s\n", hist.Len(), fields[1])

	case "help", "?":
		fmt.Fprintln(c.w, consoleHelp)

	default:
		fmt.Fprintf(c.w, "unknown command %q, type help\n", cmd)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return s
}
