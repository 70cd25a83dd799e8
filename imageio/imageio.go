// Package imageio moves pixel grids in and out of standard image formats.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"hideimage/pixel"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

const memorySource = "<memory>"

// Formats lists the formats Save and Serialize can write.
var Formats = []string{"png", "bmp", "tiff", "gif", "jpeg"}

// lossless formats keep every bit of every color channel and can hold a
// payload. bmp has no alpha channel and only takes opaque grids.
var lossless = []string{"png", "bmp", "tiff"}

// ErrAlpha is returned when a translucent grid is written to a format that
// would flatten its alpha channel.
var ErrAlpha = errors.New("format cannot store alpha, image is not opaque")

func Lossless(format string) bool {
	return slices.Contains(lossless, format)
}

// FormatFromPath guesses the output format from a file extension. It returns
// an empty string for unknown extensions.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".gif":
		return "gif"
	case ".jpg", ".jpeg":
		return "jpeg"
	}
	return ""
}

// ResolveFormat picks the output format for path: format when given, else
// the one matching the extension, else png.
func ResolveFormat(format, path string) string {
	if format != "" {
		return format
	}
	if f := FormatFromPath(path); f != "" {
		return f
	}
	return "png"
}

// Load reads and decodes the image file at path, returning its grid and the
// name of the format it was stored in.
func Load(path string) (*pixel.Grid, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &DecodeError{Source: path, Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close image", "name", path, "error", closeErr)
		}
	}()

	return decode(f, path)
}

func DecodeBytes(b []byte) (*pixel.Grid, string, error) {
	return decode(bytes.NewReader(b), memorySource)
}

func decode(r io.Reader, source string) (*pixel.Grid, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &DecodeError{Source: source, Err: err}
	}
	return pixel.FromImage(img), format, nil
}

// Serialize encodes g in memory. It is how message images become payloads.
func Serialize(g *pixel.Grid, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, g, format, memorySource); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(w io.Writer, g *pixel.Grid, format, dest string) error {
	img := g.Image()

	var err error
	switch format {
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		err = enc.Encode(w, img)
	case "bmp":
		if !g.Opaque() {
			err = ErrAlpha
			break
		}
		err = bmp.Encode(w, img)
	case "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "gif":
		err = gif.Encode(w, img, nil)
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	default:
		err = fmt.Errorf("unsupported output format")
	}
	if err != nil {
		return &EncodeError{Dest: dest, Format: format, Err: err}
	}
	return nil
}

// Save writes g to path through a temporary file in the same folder, so a
// failed write never leaves a truncated image behind. An existing path is
// only replaced when overwrite is set.
func Save(g *pixel.Grid, path, format string, overwrite bool) (err error) {
	if err = checkDest(path, overwrite); err != nil {
		return &EncodeError{Dest: path, Format: format, Err: err}
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	outFile, err := os.CreateTemp(dir, name)
	if err != nil {
		return &EncodeError{Dest: path, Format: format, Err: fmt.Errorf("could not create temporary destination: %w", err)}
	}

	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = &EncodeError{Dest: path, Format: format, Err: fmt.Errorf("could not flush temporary destination: %w", defErr)}
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = &EncodeError{Dest: path, Format: format, Err: fmt.Errorf("could not close temporary destination: %w", defErr)}
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), path); defErr != nil {
				err = &EncodeError{Dest: path, Format: format, Err: fmt.Errorf("could not rename destination file: %w", defErr)}
			}
		}
		if err != nil {
			if rmErr := os.Remove(outFile.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				slog.Error("could not remove temporary file", "name", outFile.Name(), "error", rmErr)
			}
		}
	}()

	if err = encode(outFile, g, format, path); err != nil {
		return err
	}

	canRename = true
	return nil
}

// WriteFile stores raw bytes at path with the same destination rules as Save.
func WriteFile(data []byte, path string, overwrite bool) error {
	if err := checkDest(path, overwrite); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write %q: %w", path, err)
	}
	return nil
}

func checkDest(dest string, overwrite bool) error {
	destFileInfo, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
		return nil
	}

	if !destFileInfo.Mode().IsRegular() {
		return fmt.Errorf("cannot replace non-regular file %q: %s", destFileInfo.Name(), destFileInfo.Mode().String())
	}
	if !overwrite {
		return fmt.Errorf("destination file already exists: %q", destFileInfo.Name())
	}
	return nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
