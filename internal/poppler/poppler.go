// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package poppler drives the external pdftoppm tool for PDF rasterization.
// The tool is located on PATH; a missing tool is fatal for any batch that
// contains PDF sources.
package poppler

import (
	"fmt"
	"os/exec"

	"github.com/pdiddy/imgconv/pkg/types"
)

const binPdftoppm = "pdftoppm"

// Rasterizer renders PDF pages into image files.
type Rasterizer interface {
	// Name returns the tool name.
	Name() string

	// Available reports whether the tool binary exists on PATH and
	// responds to a version probe.
	Available() bool

	// Rasterize renders every page of the PDF at pdfPath into the given
	// format at the given DPI. Output files are written as
	// prefix-<page>.<ext> in pdftoppm's own naming scheme; the caller
	// renames them afterwards.
	Rasterize(pdfPath, outPrefix string, format types.Format, dpi int) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunOutput(name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunOutput(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

type pdftoppm struct {
	exec executor
}

func (p *pdftoppm) Name() string { return binPdftoppm }

func (p *pdftoppm) Available() bool {
	if _, err := p.exec.LookPath(binPdftoppm); err != nil {
		return false
	}
	return p.exec.RunSilent(binPdftoppm, "-v") == nil
}

func (p *pdftoppm) Rasterize(pdfPath, outPrefix string, format types.Format, dpi int) error {
	var args []string
	switch format {
	case types.FormatJPG:
		args = append(args, "-jpeg", "-jpegopt", "quality=95")
	case types.FormatTIFF:
		args = append(args, "-tiff", "-tiffcompression", "lzw")
	default:
		return fmt.Errorf("unsupported rasterization format: %s", format)
	}
	args = append(args, "-r", fmt.Sprintf("%d", dpi), pdfPath, outPrefix)

	out, err := p.exec.RunOutput(binPdftoppm, args...)
	if err != nil {
		return fmt.Errorf("pdftoppm failed for %s: %w: %s", pdfPath, err, out)
	}
	return nil
}

var defaultExec = &osExecutor{}

// Detect locates pdftoppm on PATH. It returns an error when the tool is
// missing or not operational.
func Detect() (Rasterizer, error) {
	return detect(defaultExec)
}

func detect(exec executor) (Rasterizer, error) {
	r := &pdftoppm{exec: exec}
	if !r.Available() {
		return nil, fmt.Errorf("%s not found on PATH: install poppler-utils", binPdftoppm)
	}
	return r, nil
}
