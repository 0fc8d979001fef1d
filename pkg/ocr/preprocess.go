package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var (
	black = color.NRGBA{0, 0, 0, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

// luma is the mean of the three channels, 0-255.
func luma(c color.Color) int {
	r, g, b, _ := c.RGBA()
	return int((r + g + b) / 3 >> 8)
}

// binarize maps every pixel at or below threshold to black, the rest to white.
// Thermal receipts photographed under warm light lose little by it.
func binarize(img image.Image, threshold int) *image.NRGBA {
	b := img.Bounds()
	out := imaging.New(b.Dx(), b.Dy(), white)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if luma(img.At(b.Min.X+x, b.Min.Y+y)) <= threshold {
				out.Set(x, y, black)
			}
		}
	}
	return out
}

// adaptiveThreshold compares each pixel with the mean of its window (via an
// integral image) minus bias. Handles shadows across a receipt photo.
func adaptiveThreshold(img image.Image, window, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := imaging.New(w, h, white)
	half := window / 2

	pix := make([]int, w*h)
	sums := make([]int, w*h)
	for y := 0; y < h; y++ {
		row := 0
		for x := 0; x < w; x++ {
			v := luma(img.At(b.Min.X+x, b.Min.Y+y))
			pix[y*w+x] = v
			row += v
			sums[y*w+x] = row
			if y > 0 {
				sums[y*w+x] += sums[(y-1)*w+x]
			}
		}
	}

	for y := 0; y < h; y++ {
		y0, y1 := max(y-half, 0), min(y+half, h-1)
		for x := 0; x < w; x++ {
			x0, x1 := max(x-half, 0), min(x+half, w-1)
			sum := sums[y1*w+x1] - sums[y0*w+x1] - sums[y1*w+x0] + sums[y0*w+x0]
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			if pix[y*w+x] < max(mean-bias, 0) {
				out.Set(x, y, black)
			}
		}
	}
	return out
}

// dilate grows black pixels into their 4-neighbourhood radius times,
// reconnecting thin thermal-print strokes.
func dilate(img *image.NRGBA, radius int) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	cur := img
	for r := 0; r < radius; r++ {
		next := imaging.New(w, h, white)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for _, d := range [5][2]int{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					x2, y2 := x+d[0], y+d[1]
					if x2 < 0 || y2 < 0 || x2 >= w || y2 >= h {
						continue
					}
					if luma(cur.At(x2, y2)) == 0 {
						next.Set(x, y, black)
						break
					}
				}
			}
		}
		cur = next
	}
	return cur
}
