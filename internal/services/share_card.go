package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"grassmap/internal/models/domain_models"
)

const (
	cardWidth    = 600
	cardHeight   = 800
	cardPadding  = 40
	thumbSize    = 120
	maxThumbs    = 4
	qrSize       = 160
	progressBarH = 16
)

var (
	cardTop    = color.NRGBA{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF}
	cardBottom = color.NRGBA{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF}
	barTrack   = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x55}
	barFill    = color.NRGBA{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF}
)

// RenderCardPNG draws the share card: gradient background, completion
// progress bar, up to four check-in photos and a QR code for shareURL.
// Text is limited to ASCII glyphs of the built-in face.
func (s *ShareService) RenderCardPNG(card domain_models.ShareCard, plan domain_models.TravelPlan, shareURL string) ([]byte, error) {
	canvas := imaging.New(cardWidth, cardHeight, cardTop)
	for y := 0; y < cardHeight; y++ {
		c := lerpColor(cardTop, cardBottom, float64(y)/float64(cardHeight-1))
		for x := 0; x < cardWidth; x++ {
			canvas.SetNRGBA(x, y, c)
		}
	}

	drawText(canvas, cardPadding, cardPadding+13, "GRASSMAP TRIP COMPLETE")
	drawText(canvas, cardPadding, cardPadding+33, card.CompletedTime)
	drawText(canvas, cardPadding, cardPadding+53,
		fmt.Sprintf("%d/%d SPOTS", card.Stats.CompletedPoints, card.Stats.TotalPoints))

	barY := cardPadding + 70
	barW := cardWidth - 2*cardPadding
	fillRect(canvas, image.Rect(cardPadding, barY, cardPadding+barW, barY+progressBarH), barTrack)
	if card.Stats.TotalPoints > 0 {
		done := barW * card.Stats.CompletedPoints / card.Stats.TotalPoints
		fillRect(canvas, image.Rect(cardPadding, barY, cardPadding+done, barY+progressBarH), barFill)
	}

	x, y := cardPadding, barY+progressBarH+30
	drawn := 0
	for _, p := range plan.GrassPoints {
		if drawn == maxThumbs {
			break
		}
		img, err := decodeDataURL(p.PhotoURL)
		if err != nil {
			if p.PhotoURL != "" {
				s.logger.Debug("skipping photo", zap.String("point_id", p.ID), zap.Error(err))
			}
			continue
		}
		thumb := imaging.Fill(img, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)
		canvas = imaging.Paste(canvas, thumb, image.Pt(x, y))
		x += thumbSize + 10
		drawn++
	}

	if shareURL != "" {
		qr, err := qrcode.New(shareURL, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("qr code: %w", err)
		}
		qrImg := qr.Image(qrSize)
		pos := image.Pt(cardWidth-cardPadding-qrSize, cardHeight-cardPadding-qrSize)
		canvas = imaging.Overlay(canvas, qrImg, pos, 1.0)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xFF}
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, blend(img.NRGBAAt(x, y), c))
		}
	}
}

func blend(dst, src color.NRGBA) color.NRGBA {
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 { return uint8(float64(d)*(1-a) + float64(s)*a) }
	return color.NRGBA{R: mix(dst.R, src.R), G: mix(dst.G, src.G), B: mix(dst.B, src.B), A: 0xFF}
}

// drawText writes the ASCII subset of text in white; other runes become '?'
// in basicfont, so they are dropped instead.
func drawText(img *image.NRGBA, x, baseline int, text string) {
	ascii := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7E {
			return -1
		}
		return r
	}, text)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(ascii)
}

// decodeDataURL decodes a base64 image data URL such as the photos clients
// attach to check-ins.
func decodeDataURL(dataURL string) (image.Image, error) {
	meta, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("not a base64 image data url")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
