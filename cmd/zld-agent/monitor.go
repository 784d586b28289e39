// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/zld-agent/internal/engine"
	"github.com/pdiddy/zld-agent/internal/history"
	"github.com/pdiddy/zld-agent/internal/locale"
	"github.com/pdiddy/zld-agent/internal/relay"
	"github.com/pdiddy/zld-agent/internal/render"
	"github.com/pdiddy/zld-agent/pkg/types"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the research monitor",
	Long: `Monitor counts down and, whenever the countdown runs out, asks Gemini
for the latest ZLD developments. Each answer becomes a report that is
printed, optionally written to --export-dir, and relayed to the Telegram
chat configured with "settings chat-id".

Press Enter (with --stdin) or send SIGUSR1 to run a cycle immediately.
Triggers that arrive while a cycle runs are ignored. With --stdin the
console also lists, shows and saves the session's reports; type help. Interrupt to stop;
a cycle in flight is cancelled and recorded as failed.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().Duration("interval", 0, "time between automatic cycles (default 5m)")
	monitorCmd.Flags().Duration("cycle-timeout", 0, "bound on one cycle (0 = none)")
	monitorCmd.Flags().Int("max-reports", 0, "reports kept in the session history (0 = all)")
	monitorCmd.Flags().String("export-dir", "", "write every report to this directory")
	monitorCmd.Flags().Bool("html", false, "also export reports as HTML")
	monitorCmd.Flags().Bool("once", false, "run a single cycle and exit")
	monitorCmd.Flags().Bool("stdin", false, "read console commands from stdin (Enter runs a cycle)")
	monitorCmd.Flags().Duration("status", 0, "print the countdown at this interval (0 = off)")
	monitorCmd.Flags().String("history-out", "", "on exit, write the session history to this .yaml or .json file")

	viper.BindPFlag("engine.interval", monitorCmd.Flags().Lookup("interval"))
	viper.BindPFlag("engine.cycle_timeout", monitorCmd.Flags().Lookup("cycle-timeout"))
	viper.BindPFlag("engine.max_reports", monitorCmd.Flags().Lookup("max-reports"))
	viper.BindPFlag("engine.export_dir", monitorCmd.Flags().Lookup("export-dir"))

	rootCmd.AddCommand(monitorCmd)
}

// monitorOptions are the output settings shared by monitor and research.
type monitorOptions struct {
	exportDir string
	html      bool
}

func runMonitor(cmd *cobra.Command, args []string) error {
	once, _ := cmd.Flags().GetBool("once")
	useStdin, _ := cmd.Flags().GetBool("stdin")
	status, _ := cmd.Flags().GetDuration("status")
	historyOut, _ := cmd.Flags().GetString("history-out")
	html, _ := cmd.Flags().GetBool("html")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	eng, cleanup, err := buildEngine(ctx, cfg, monitorOptions{exportDir: cfg.Engine.ExportDir, html: html}, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	if once {
		eng.Trigger(ctx)
		return writeHistory(eng.History(), historyOut)
	}

	fmt.Fprintf(os.Stdout, "Monitoring every %s. ", time.Duration(eng.Period())*time.Second)
	if useStdin {
		fmt.Fprint(os.Stdout, "Press Enter to research now, type help for commands. ")
	}
	fmt.Fprintln(os.Stdout, "Ctrl-C to stop.")

	stopSignals := notifyManualTrigger(ctx, eng)
	defer stopSignals()

	if useStdin {
		c := &console{eng: eng, w: os.Stdout}
		go c.run(ctx, os.Stdin)
	}
	if status > 0 {
		go printStatus(ctx, os.Stderr, eng, status)
	}

	err = eng.Run(ctx)
	if werr := writeHistory(eng.History(), historyOut); werr != nil {
		return werr
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stdout, "\nStopped after %d report(s).\n", eng.History().Len())
		return nil
	}
	return err
}

// buildEngine wires the gateway, relay and settings store into an engine
// whose outcomes are printed to w. cleanup closes the store.
func buildEngine(ctx context.Context, cfg types.AgentConfig, opts monitorOptions, w io.Writer) (*engine.Engine, func(), error) {
	clock, err := newClock()
	if err != nil {
		return nil, nil, err
	}

	store, err := openStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	gw, err := newGateway(ctx, cfg.Gateway)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	hist := history.New(cfg.Engine.MaxReports)
	eng := engine.New(cfg.Engine, engine.Deps{
		Researcher:  gw,
		Relay:       relay.New(cfg.Relay, clock, logger),
		Destination: store.Destination(ctx, logger),
		History:     hist,
		Clock:       clock,
		Logger:      logger,
		OnOutcome: func(o engine.Outcome) {
			printOutcome(w, hist, o)
			if opts.exportDir != "" {
				if err := exportReport(opts.exportDir, o.Report, clock, opts.html); err != nil {
					logger.Error("report export failed", zap.String("report_id", o.Report.ID), zap.Error(err))
				}
			}
		},
	})

	return eng, func() { store.Close() }, nil
}

// printOutcome writes a finished cycle in the plain-text report format
// followed by its scan number and relay status.
func printOutcome(w io.Writer, hist *history.History, o engine.Outcome) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scan #%d  [%s]\n", hist.ScanNumber(0), o.Report.Status)
	fmt.Fprint(w, history.FormatText(o.Report))
	if len(o.Report.Sources) == 0 && o.Report.Succeeded() {
		for _, link := range render.Links(o.Report.Findings) {
			fmt.Fprintf(w, "- cited: %s\n", link)
		}
	}

	if sel, ok := hist.Selected(); ok && sel.ID != o.Report.ID {
		fmt.Fprintf(w, "(still viewing a pinned report; type latest to follow new ones)\n")
	}

	switch o.Delivery {
	case types.DeliverySent:
		fmt.Fprintln(w, "Telegram: sent")
	case types.DeliveryError:
		fmt.Fprintf(w, "Telegram: failed: %v\n", o.DeliveryErr)
	}
}

// exportReport writes the text download of r, and an HTML page when html
// is set, to dir.
func exportReport(dir string, r types.Report, clock *locale.Clock, html bool) error {
	path, err := history.WriteText(dir, r)
	if err != nil {
		return err
	}
	logger.Debug("report exported", zap.String("path", path))

	if !html {
		return nil
	}
	page, err := render.Page("ZLD Report #"+r.ID, clock.Date(r.CreatedAt)+" "+r.Timestamp, r.Findings+sourcesMarkdown(r.Sources))
	if err != nil {
		return err
	}
	htmlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", htmlPath, err)
	}
	return nil
}

func sourcesMarkdown(sources []types.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n## Sources\n\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "- [%s](<%s>)\n", escapeLinkText(s.Title), escapeLinkDest(s.URI))
	}
	return b.String()
}

var (
	linkTextEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)
	linkDestEscaper = strings.NewReplacer(`<`, "%3C", `>`, "%3E", " ", "%20")
)

// escapeLinkText makes a title safe inside Markdown link brackets.
func escapeLinkText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "source"
	}
	return linkTextEscaper.Replace(s)
}

// escapeLinkDest keeps a URI intact inside an angle-bracket destination,
// where parentheses need no escaping.
func escapeLinkDest(s string) string {
	return linkDestEscaper.Replace(s)
}

// writeHistory exports the session history when path is set. The format
// follows the extension.
func writeHistory(hist *history.History, path string) error {
	if path == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return hist.ExportJSON(path)
	case ".yaml", ".yml":
		return hist.ExportYAML(path)
	default:
		return fmt.Errorf("unsupported history format %q: use .yaml or .json", filepath.Ext(path))
	}
}

func printStatus(ctx context.Context, w io.Writer, eng *engine.Engine, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if eng.Running() {
				fmt.Fprintln(w, "researching...")
				continue
			}
			rem := eng.Remaining()
			fmt.Fprintf(w, "next cycle in %02d:%02d\n", rem/60, rem%60)
		}
	}
}
