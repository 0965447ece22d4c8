// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imgconv/internal/engine"
	"github.com/pdiddy/imgconv/internal/poppler"
	"github.com/pdiddy/imgconv/internal/server"
	"github.com/pdiddy/imgconv/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion backend",
	Long: `Serve starts an HTTP backend with a single conversion endpoint. POST
multipart uploads to /convert with "files" parts, a "target" field (pdf,
jpg, or tiff), and an optional "dpi" field. One converted output streams
back directly; multiple outputs return a JSON listing.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("upload-dir", "uploads", "directory for uploaded files")
	serveCmd.Flags().String("output-dir", "outputs", "directory for converted outputs")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := stringSetting(cmd, "addr", "server.addr")
	cfg := types.ServerConfig{
		Addr:        addr,
		UploadDir:   stringSetting(cmd, "upload-dir", "server.upload_dir"),
		OutputDir:   stringSetting(cmd, "output-dir", "server.output_dir"),
		MaxUploadMB: viper.GetInt("server.max_upload_mb"),
	}

	rasterizer, err := poppler.Detect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; PDF sources will fail\n", err)
	}
	eng := engine.New(rasterizer, types.ConvertConfig{
		JPEGQuality: viper.GetInt("convert.jpeg_quality"),
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(eng, cfg).Handler(),
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		fmt.Fprintln(os.Stderr, "Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "server shutdown: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "Listening on %s\n", cfg.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	return nil
}
