package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/walletmap/internal/api"
	"github.com/lumipallolabs/walletmap/internal/api/handlers"
	"github.com/lumipallolabs/walletmap/internal/scanner"
	"github.com/lumipallolabs/walletmap/internal/store"
)

var serveImport string

func init() {
	cmd := newServeCmd()
	cmd.Flags().StringVar(&serveImport, "import", "", "Store every tree document in this directory before serving")
	rootCmd.AddCommand(cmd)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve treemaps over HTTP",
		Long: `The serve command runs the HTTP API. Trees are kept as named snapshots
in a Pebble database (store.path) and rendered to SVG on request.

Example:
  walletmap serve --config config.yaml
  walletmap serve --import ./trees`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(contextOf(cmd))
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.ChartOptions()
	if err != nil {
		return err
	}

	log.Println("Starting walletmap server...")

	log.Printf("Opening Pebble database at %s", cfg.Store.Path)
	db, err := store.NewPebbleDB(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	snapshots := store.NewSnapshotStore(db)

	if serveImport != "" {
		n, err := importDir(ctx, snapshots, serveImport)
		if err != nil {
			return err
		}
		log.Printf("Imported %d trees from %s", n, serveImport)
	}

	router := api.NewRouter(snapshots, api.Options{
		Chart:   opts,
		Size:    handlers.Size{Width: cfg.Render.Width, Height: cfg.Render.Height},
		LogoDir: cfg.Render.LogoDir,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Engine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

// importDir saves every tree document found under dir as a snapshot named
// after its file. Documents whose names are not valid snapshot names are
// skipped.
func importDir(ctx context.Context, snapshots *store.SnapshotStore, dir string) (int, error) {
	w := scanner.NewWalker(0)
	go func() {
		for range w.Progress() {
		}
	}()

	docs, err := w.Scan(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", dir, err)
	}

	imported := 0
	for _, doc := range docs {
		if _, err := snapshots.Save(doc.Name, doc.Tree); err != nil {
			log.Printf("Warning: skipping %s: %v", doc.Path, err)
			continue
		}
		imported++
	}
	return imported, nil
}
