package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/lmstudio-tray/lmstray/internal/monitor"
)

const iconSize = 22

var statusColors = map[monitor.ModelStatus]color.RGBA{
	monitor.ModelOK:          {R: 0x2e, G: 0xb8, B: 0x4f, A: 0xff},
	monitor.ModelInfo:        {R: 0x2f, G: 0x80, B: 0xed, A: 0xff},
	monitor.ModelWarn:        {R: 0xf2, G: 0xb1, B: 0x1b, A: 0xff},
	monitor.ModelFail:        {R: 0xe0, G: 0x3c, B: 0x31, A: 0xff},
	monitor.ModelMonitorOnly: {R: 0x8e, G: 0x8e, B: 0x93, A: 0xff},
}

var unknownColor = color.RGBA{R: 0xc7, G: 0xc7, B: 0xcc, A: 0xff}

var (
	iconMu    sync.Mutex
	iconCache = map[monitor.ModelStatus][]byte{}
)

// Icon returns a PNG status dot for s.
func Icon(s monitor.ModelStatus) []byte {
	iconMu.Lock()
	defer iconMu.Unlock()
	if b, ok := iconCache[s]; ok {
		return b
	}
	c, ok := statusColors[s]
	if !ok {
		c = unknownColor
	}
	b := renderDot(c)
	iconCache[s] = b
	return b
}

func renderDot(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize-1) / 2
	r := float64(iconSize)/2 - 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	// Encoding an in-memory RGBA image cannot fail.
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
