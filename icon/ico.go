package icon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"

	"golang.org/x/image/bmp"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Size limits checked before any pixel buffer is allocated. ICO entries
// cannot exceed 256x256.
const (
	maxEntrySide = 256
	maxImageSide = 512
)

// ErrTooLarge is returned for images whose declared size exceeds the limits.
var ErrTooLarge = errors.New("icon: image too large")

// ErrNotIcon is returned for data that is neither an ICO container nor an
// image format the standard decoders know.
var ErrNotIcon = errors.New("icon: unrecognized image data")

type dirEntry struct {
	width, height int
	bitCount      int
	size, offset  uint32
}

// Decode decodes favicon data. ICO containers yield their largest entry,
// whether stored as PNG or as a BMP DIB; anything else goes through
// image.Decode.
func Decode(data []byte) (image.Image, error) {
	if !isICO(data) {
		if err := checkBounds(data); err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotIcon, err)
		}
		return img, nil
	}

	entries, err := readDirectory(data)
	if err != nil {
		return nil, err
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.width > best.width || (e.width == best.width && e.bitCount > best.bitCount) {
			best = e
		}
	}

	end := uint64(best.offset) + uint64(best.size)
	if end > uint64(len(data)) {
		return nil, errors.New("icon: entry exceeds file size")
	}
	payload := data[best.offset:end]
	if bytes.HasPrefix(payload, pngMagic) {
		if err := checkBounds(payload); err != nil {
			return nil, err
		}
		img, err := png.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("icon: decode png entry: %w", err)
		}
		return img, nil
	}
	return decodeDIB(payload)
}

// checkBounds reads only the image header and rejects oversized images.
func checkBounds(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotIcon, err)
	}
	if cfg.Width > maxImageSide || cfg.Height > maxImageSide {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

func isICO(data []byte) bool {
	return len(data) >= 6 &&
		binary.LittleEndian.Uint16(data[0:2]) == 0 &&
		binary.LittleEndian.Uint16(data[2:4]) == 1 &&
		binary.LittleEndian.Uint16(data[4:6]) > 0
}

func readDirectory(data []byte) ([]dirEntry, error) {
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if len(data) < 6+16*count {
		return nil, errors.New("icon: truncated directory")
	}
	entries := make([]dirEntry, 0, count)
	for i := 0; i < count; i++ {
		b := data[6+16*i : 6+16*(i+1)]
		e := dirEntry{
			width:    int(b[0]),
			height:   int(b[1]),
			bitCount: int(binary.LittleEndian.Uint16(b[6:8])),
			size:     binary.LittleEndian.Uint32(b[8:12]),
			offset:   binary.LittleEndian.Uint32(b[12:16]),
		}
		if e.width == 0 {
			e.width = 256
		}
		if e.height == 0 {
			e.height = 256
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// decodeDIB decodes a headerless BMP as stored in ICO files: the height
// field covers the colour bitmap plus the 1bpp transparency mask.
func decodeDIB(dib []byte) (image.Image, error) {
	const fileHeaderLen = 14
	if len(dib) < 40 {
		return nil, errors.New("icon: truncated bitmap header")
	}
	headerLen := binary.LittleEndian.Uint32(dib[0:4])
	width := int(int32(binary.LittleEndian.Uint32(dib[4:8])))
	height := int(int32(binary.LittleEndian.Uint32(dib[8:12]))) / 2
	bpp := int(binary.LittleEndian.Uint16(dib[14:16]))
	if width <= 0 || height <= 0 || headerLen < 40 || int(headerLen) > len(dib) {
		return nil, errors.New("icon: invalid bitmap header")
	}
	if width > maxEntrySide || height > maxEntrySide {
		return nil, fmt.Errorf("%w: %dx%d bitmap", ErrTooLarge, width, height)
	}
	switch bpp {
	case 1, 4, 8, 24, 32:
	default:
		return nil, fmt.Errorf("icon: unsupported bit depth %d", bpp)
	}

	colors := 0
	if bpp <= 8 {
		colors = int(binary.LittleEndian.Uint32(dib[32:36]))
		if colors == 0 {
			colors = 1 << bpp
		}
	}
	if colors > 1<<bpp {
		return nil, errors.New("icon: invalid palette size")
	}
	pixelStart := int(headerLen) + colors*4
	if pixelStart > len(dib) {
		return nil, errors.New("icon: truncated palette")
	}
	if ((width*bpp+31)/32)*4*height > len(dib)-pixelStart {
		return nil, errors.New("icon: truncated bitmap")
	}

	fixed := make([]byte, fileHeaderLen+len(dib))
	copy(fixed, "BM")
	binary.LittleEndian.PutUint32(fixed[2:6], uint32(len(fixed)))
	binary.LittleEndian.PutUint32(fixed[10:14], uint32(fileHeaderLen+pixelStart))
	copy(fixed[fileHeaderLen:], dib)
	binary.LittleEndian.PutUint32(fixed[fileHeaderLen+8:fileHeaderLen+12], uint32(height))

	src, err := bmp.Decode(bytes.NewReader(fixed))
	if err != nil {
		return nil, fmt.Errorf("icon: decode bitmap entry: %w", err)
	}
	img := image.NewNRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)

	pixels := dib[pixelStart:]
	if bpp == 32 && applyAlphaChannel(img, pixels, width, height) {
		return img, nil
	}
	applyMask(img, pixels, width, height, bpp)
	return img, nil
}

// applyAlphaChannel copies the BGRA alpha bytes, reporting false when the
// bitmap carries no alpha at all.
func applyAlphaChannel(img *image.NRGBA, pixels []byte, w, h int) bool {
	if len(pixels) < w*h*4 {
		return false
	}
	hasAlpha := false
	for i := 3; i < w*h*4; i += 4 {
		if pixels[i] != 0 {
			hasAlpha = true
			break
		}
	}
	if !hasAlpha {
		return false
	}
	for y := 0; y < h; y++ {
		row := pixels[(h-1-y)*w*4:]
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(x, y)
			c.A = row[x*4+3]
			img.SetNRGBA(x, y, c)
		}
	}
	return true
}

// applyMask clears pixels whose AND-mask bit is set.
func applyMask(img *image.NRGBA, pixels []byte, w, h, bpp int) {
	xorStride := ((w*bpp + 31) / 32) * 4
	maskStride := ((w + 31) / 32) * 4
	mask := pixels[min(len(pixels), xorStride*h):]
	if len(mask) < maskStride*h {
		return
	}
	for y := 0; y < h; y++ {
		row := mask[(h-1-y)*maskStride:]
		for x := 0; x < w; x++ {
			if row[x/8]&(0x80>>(x%8)) != 0 {
				img.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
}
