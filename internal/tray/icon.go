package tray

import "encoding/binary"

const iconSize = 16

// icon renders a 16x16 32-bit ICO: a red crosshair on a transparent background.
func icon() []byte {
	const (
		headerLen = 6 + 16
		dibLen    = 40
		pixelLen  = iconSize * iconSize * 4
		maskLen   = iconSize * 4 // 1bpp rows padded to 32 bits
	)
	imageLen := dibLen + pixelLen + maskLen
	buf := make([]byte, headerLen+imageLen)
	le := binary.LittleEndian

	// ICONDIR
	le.PutUint16(buf[2:], 1)
	le.PutUint16(buf[4:], 1)
	// ICONDIRENTRY
	buf[6], buf[7] = iconSize, iconSize
	le.PutUint16(buf[10:], 1)
	le.PutUint16(buf[12:], 32)
	le.PutUint32(buf[14:], uint32(imageLen))
	le.PutUint32(buf[18:], headerLen)

	// BITMAPINFOHEADER; height is doubled to cover the AND mask.
	dib := buf[headerLen:]
	le.PutUint32(dib[0:], dibLen)
	le.PutUint32(dib[4:], iconSize)
	le.PutUint32(dib[8:], iconSize*2)
	le.PutUint16(dib[12:], 1)
	le.PutUint16(dib[14:], 32)
	le.PutUint32(dib[20:], pixelLen+maskLen)

	// Rows are stored bottom-up in BGRA.
	px := dib[dibLen:]
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			if !crosshair(x, y) {
				continue
			}
			off := ((iconSize-1-y)*iconSize + x) * 4
			px[off+0] = 0x30
			px[off+1] = 0x30
			px[off+2] = 0xE0
			px[off+3] = 0xFF
		}
	}
	return buf
}

func crosshair(x, y int) bool {
	const c = iconSize / 2
	dx, dy := x-c, y-c
	ring := dx*dx+dy*dy >= 25 && dx*dx+dy*dy <= 36
	cross := (x == c && (y < c-2 || y > c+2)) || (y == c && (x < c-2 || x > c+2))
	return ring || cross || (x == c && y == c)
}
