package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/walletmap/internal/config"
	"github.com/lumipallolabs/walletmap/internal/core"
	"github.com/lumipallolabs/walletmap/internal/logging"
	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/render"
	"github.com/lumipallolabs/walletmap/internal/scanner"
)

type renderOptions struct {
	chart       chartFlags
	output      string
	width       float64
	height      float64
	inlineLogos string
	watch       bool
	dir         string
	outDir      string
}

func init() {
	rootCmd.AddCommand(newRenderCmd())
}

func newRenderCmd() *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a tree document to SVG",
		Long: `The render command draws a JSON or YAML tree document as an SVG treemap.

With --dir every tree document below a directory is rendered into --out-dir,
one <name>.svg per document. With --watch the output is rewritten whenever
the input file changes.

Example:
  walletmap render wallets.json -o wallets.svg
  walletmap render wallets.yaml --width 1200 --height 800 --tile squarify
  walletmap render --dir ./trees --out-dir ./svg
  walletmap render wallets.json -o wallets.svg --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, o, args)
		},
	}

	o.chart.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().Float64Var(&o.width, "width", 0, "Canvas width (default from config)")
	cmd.Flags().Float64Var(&o.height, "height", 0, "Canvas height (default from config)")
	cmd.Flags().StringVar(&o.inlineLogos, "inline-logos", "", "Embed logo files found in this directory")
	cmd.Flags().BoolVar(&o.watch, "watch", false, "Re-render when the input changes")
	cmd.Flags().StringVar(&o.dir, "dir", "", "Render every tree document in this directory")
	cmd.Flags().StringVar(&o.outDir, "out-dir", "", "Output directory for --dir (default: the input directory)")
	return cmd
}

func runRender(cmd *cobra.Command, o *renderOptions, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := o.chart.options(cmd, cfg)
	if err != nil {
		return err
	}
	if err := o.resolveSize(cfg); err != nil {
		return err
	}
	if o.inlineLogos == "" {
		o.inlineLogos = cfg.Render.LogoDir
	}

	chart := render.NewChart(opts)

	if o.dir != "" {
		if len(args) > 0 || o.watch {
			return fmt.Errorf("--dir cannot be combined with a file argument or --watch")
		}
		return o.renderDir(cmd, chart)
	}

	if err := checkArgs(args, 1, "walletmap render <file> [-o out.svg]"); err != nil {
		return err
	}
	path := args[0]

	if o.watch {
		if o.output == "" {
			return fmt.Errorf("--watch needs an output file (-o)")
		}
		return o.watchFile(cmd, chart, path)
	}

	root, err := model.Load(path)
	if err != nil {
		return err
	}
	return o.writeTo(cmd, chart, o.prepare(root), o.output)
}

// resolveSize fills unset dimensions from the configuration
func (o *renderOptions) resolveSize(cfg *config.Config) error {
	if o.width == 0 {
		o.width = cfg.Render.Width
	}
	if o.height == 0 {
		o.height = cfg.Render.Height
	}
	return config.ValidateSize(o.width, o.height)
}

// prepare embeds local logos once per loaded tree. The returned tree is what
// the chart memoizes on, so repeated renders of it reuse the hierarchy.
func (o *renderOptions) prepare(root *model.Node) *model.Node {
	if o.inlineLogos == "" {
		return root
	}
	return render.InlineLogos(root, o.inlineLogos)
}

func (o *renderOptions) props(root *model.Node) render.Props {
	return render.Props{Width: o.width, Height: o.height, Data: root}
}

// writeTo renders root to path, or to the command's output when path is empty
func (o *renderOptions) writeTo(cmd *cobra.Command, chart *render.Chart, root *model.Node, path string) error {
	if path == "" || path == "-" {
		return chart.Render(cmd.OutOrStdout(), o.props(root))
	}
	return writeFile(path, func(w io.Writer) error {
		return chart.Render(w, o.props(root))
	})
}

// writeFile writes through a temporary file so watchers of path never see
// a partial document
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (o *renderOptions) renderDir(cmd *cobra.Command, chart *render.Chart) error {
	outDir := o.outDir
	if outDir == "" {
		outDir = o.dir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := scanner.NewWalker(0)
	go func() {
		for p := range w.Progress() {
			logging.Debug.Printf("[Render] scanned %d files, %d documents", p.FilesScanned, p.DocumentsFound)
		}
	}()

	docs, err := w.Scan(contextOf(cmd), o.dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no tree documents found in %s", o.dir)
	}

	for _, doc := range docs {
		out := filepath.Join(outDir, doc.Name+".svg")
		if err := o.writeTo(cmd, chart, o.prepare(doc.Tree), out); err != nil {
			return fmt.Errorf("%s: %w", doc.Path, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s\n", doc.Path, out)
	}
	return nil
}

// watchFile renders once, then again after every change until interrupted
func (o *renderOptions) watchFile(cmd *cobra.Command, chart *render.Chart, path string) error {
	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := core.NewController(path)
	root, err := ctrl.Load()
	if err != nil {
		return err
	}
	if err := o.writeTo(cmd, chart, o.prepare(root), o.output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s, watching %s\n", o.output, path)

	events, err := ctrl.Watch(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	for ev := range events {
		switch e := ev.(type) {
		case core.TreeLoadedEvent:
			if err := o.writeTo(cmd, chart, o.prepare(e.Root), o.output); err != nil {
				logging.Warn.Printf("render %s: %v", path, err)
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", o.output, model.SummarizeChanges(e.Changes))
			for _, c := range e.Changes {
				logging.Debug.Printf("[Render] %s 0x%s %s %g -> %g", c.Chain, c.Address, c.Kind, c.Prev, c.Curr)
			}
		case core.FileRemovedEvent:
			logging.Warn.Printf("%s was removed, keeping %s", e.Path, o.output)
		case core.ErrorEvent:
			logging.Warn.Printf("%v", e.Err)
		}
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
