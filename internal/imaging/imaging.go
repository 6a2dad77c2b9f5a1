// Package imaging normalizes garment photos: it checks the format, caps
// the size and re-encodes for the model or for storage.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension caps the longer edge of processed images.
const MaxDimension = 1024

// JPEGQuality is used for images sent to the model.
const JPEGQuality = 85

// MaxUploadSize bounds accepted uploads.
const MaxUploadSize = 10 << 20

// Format selects the output encoding.
type Format int

// Output formats. JPEG keeps model uploads small; PNG keeps the
// transparency left by background removal.
const (
	JPEG Format = iota
	PNG
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ProcessResult is an encoded image.
type ProcessResult struct {
	Data []byte
	MIME string
	// Ext is the file extension for Data, including the dot.
	Ext string
}

// Sniff returns the MIME type and extension of data when it is an accepted
// image format. Client supplied content types are not trusted.
func Sniff(data []byte) (mime, ext string, ok bool) {
	mime = http.DetectContentType(data)
	ext, ok = extensions[mime]
	return mime, ext, ok
}

// Process decodes a JPEG or PNG, fits it within MaxDimension and encodes it
// in format.
func Process(r io.Reader, format Format) (*ProcessResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("image larger than %d bytes", MaxUploadSize)
	}

	mime, _, ok := Sniff(data)
	if !ok {
		return nil, fmt.Errorf("unsupported image format %s (only JPEG and PNG accepted)", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	res := &ProcessResult{}
	if format == PNG {
		err = png.Encode(&buf, img)
		res.MIME, res.Ext = "image/png", ".png"
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
		res.MIME, res.Ext = "image/jpeg", ".jpg"
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", res.MIME, err)
	}
	res.Data = buf.Bytes()
	return res, nil
}

// fit scales img down so its longer edge is at most limit, keeping the
// aspect ratio. Smaller images are returned unchanged.
func fit(img image.Image, limit int) image.Image {
	src := img.Bounds()
	long := max(src.Dx(), src.Dy())
	if long <= limit {
		return img
	}

	scale := float64(limit) / float64(long)
	w := max(1, int(float64(src.Dx())*scale))
	h := max(1, int(float64(src.Dy())*scale))

	// NRGBA with draw.Src keeps fully transparent pixels transparent.
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}
