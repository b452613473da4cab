// Command qrgen writes QR code images from the command line using the same
// pipeline as the web editor.
package main

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrcreator/internal/export"
	"github.com/cristianadrielbraun/qrcreator/internal/logo"
	"github.com/cristianadrielbraun/qrcreator/internal/qr"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
)

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	text     string
	size     int
	margin   int
	level    string
	fg       string
	bg       string
	logoPath string
	format   string
	out      string
	encoder  string
}

func newRootCmd(now func() time.Time) *cobra.Command {
	d := render.DefaultOptions()
	var f flags

	cmd := &cobra.Command{
		Use:   "qrgen [text]",
		Short: "Generate a QR code as PNG, SVG or JPEG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("text") {
					return fmt.Errorf("give the text either as an argument or with --text, not both")
				}
				f.text = args[0]
			}
			cmd.SilenceUsage = true
			return run(cmd, f, now())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.text, "text", "t", "https://example.com", "text or URL to encode")
	fl.IntVarP(&f.size, "size", "s", d.Width, fmt.Sprintf("image width and height in pixels (%d-%d)", render.MinWidth, render.MaxWidth))
	fl.IntVarP(&f.margin, "margin", "m", d.Margin, fmt.Sprintf("quiet zone in modules (%d-%d)", render.MinMargin, render.MaxMargin))
	fl.StringVarP(&f.level, "level", "l", d.Level.String(), "error correction level: L, M, Q or H")
	fl.StringVar(&f.fg, "fg", render.FormatColor(d.Dark), "foreground color")
	fl.StringVar(&f.bg, "bg", render.FormatColor(d.Light), `background color, or "transparent"`)
	fl.StringVar(&f.logoPath, "logo", "", "image file drawn in the centre")
	fl.StringVarP(&f.format, "format", "f", string(export.PNG), "png, svg, jpg or all")
	fl.StringVarP(&f.out, "out", "o", ".", "output directory")
	fl.StringVar(&f.encoder, "encoder", qr.BackendYeqown, "QR encoder: "+strings.Join(qr.Backends(), ", "))
	return cmd
}

func formats(s string) ([]export.Format, error) {
	if strings.EqualFold(s, "all") {
		return []export.Format{export.PNG, export.SVG, export.JPEG}, nil
	}
	f, err := export.ParseFormat(s)
	if err != nil {
		return nil, err
	}
	return []export.Format{f}, nil
}

func run(cmd *cobra.Command, f flags, now time.Time) error {
	level, err := qr.ParseLevel(f.level)
	if err != nil {
		return err
	}
	dark, err := render.ParseColor(f.fg)
	if err != nil {
		return err
	}
	light, err := render.ParseColor(f.bg)
	if err != nil {
		return err
	}
	fmts, err := formats(f.format)
	if err != nil {
		return err
	}
	enc, err := qr.NewEncoder(f.encoder)
	if err != nil {
		return err
	}

	var img image.Image
	if f.logoPath != "" {
		data, err := os.ReadFile(f.logoPath)
		if err != nil {
			return err
		}
		if img, err = logo.Decode(data, 0); err != nil {
			return err
		}
	}

	opts := render.Options{Width: f.size, Margin: f.margin, Level: level, Dark: dark, Light: light}
	p := render.New(enc)

	var surface *render.Surface
	for _, format := range fmts {
		var buf bytes.Buffer
		switch format {
		case export.SVG:
			data, err := export.Vector(p, f.text, opts)
			if err != nil {
				return err
			}
			buf.Write(data)
		default:
			if surface == nil {
				if surface, err = p.Render(cmd.Context(), f.text, opts, img); err != nil {
					return err
				}
			}
			if format == export.JPEG {
				err = export.WriteJPEG(&buf, surface.Copy(), opts.Light)
			} else {
				err = export.WritePNG(&buf, surface.Copy(), opts.Light)
			}
			if err != nil {
				return err
			}
		}

		path := filepath.Join(f.out, export.Filename(now, format))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
