package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

// QR rendering defaults for short link codes.
const (
	QRDefaultSize  = 300
	QRDownloadSize = 512
	QRMaxSize      = 2048
	qrMarginModule = 2
)

// QRFormat is the output encoding of a rendered QR code.
type QRFormat string

const (
	QRFormatPNG QRFormat = "png"
	QRFormatSVG QRFormat = "svg"
)

// QRCodeService renders QR codes for public short link URLs
type QRCodeService interface {
	Render(content string, format QRFormat, size int) ([]byte, string, error)
}

type qrCodeServiceImpl struct {
	dark  color.RGBA
	light color.RGBA
}

// NewQRCodeService renders black on white, error correction level M, two-module margin.
func NewQRCodeService() QRCodeService {
	return &qrCodeServiceImpl{
		dark:  color.RGBA{A: 255},
		light: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Render returns the encoded image and its content type.
func (s *qrCodeServiceImpl) Render(content string, format QRFormat, size int) ([]byte, string, error) {
	if size <= 0 {
		size = QRDefaultSize
	}
	if size > QRMaxSize {
		size = QRMaxSize
	}

	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	q.DisableBorder = true
	modules := q.Bitmap()

	switch format {
	case QRFormatSVG:
		return s.svg(modules, size), "image/svg+xml", nil
	case QRFormatPNG, "":
		out, err := s.png(modules, size)
		if err != nil {
			return nil, "", err
		}
		return out, "image/png", nil
	default:
		return nil, "", fmt.Errorf("unsupported qr format %q", format)
	}
}

func (s *qrCodeServiceImpl) png(modules [][]bool, size int) ([]byte, error) {
	n := len(modules) + 2*qrMarginModule
	small := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			small.SetRGBA(x, y, s.light)
		}
	}
	for y, row := range modules {
		for x, on := range row {
			if on {
				small.SetRGBA(x+qrMarginModule, y+qrMarginModule, s.dark)
			}
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), small, small.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode qr png: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *qrCodeServiceImpl) svg(modules [][]bool, size int) []byte {
	n := len(modules) + 2*qrMarginModule
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, size, size, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#FFFFFF"/>`, n, n)
	b.WriteString(`<path fill="#000000" d="`)
	for y, row := range modules {
		for x, on := range row {
			if on {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x+qrMarginModule, y+qrMarginModule)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	return []byte(b.String())
}
