package images

import (
	"fmt"
	"image"
)

// Samples builds a sample buffer from tightly packed raw samples described by dict.
// Gray, RGB and CMYK layouts at 1, 2, 4, 8 and 16 bits per component are supported.
// The buffer always has exactly dict.Width x dict.Height pixels.
func Samples(dict ImageDict, data []byte) (image.Image, error) {
	if err := validateSamples(dict, len(data)); err != nil {
		return nil, err
	}

	switch dict.Components {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("%w: %d colour components", ErrUnsupportedConversion, dict.Components)
	}

	rect := image.Rect(0, 0, dict.Width, dict.Height)

	if dict.BitsPerComponent == 16 {
		return samples16(dict, data, rect), nil
	}

	pix := expand8(dict, data)

	switch dict.Components {
	case 1:
		return &image.Gray{Pix: pix, Stride: dict.Width, Rect: rect}, nil
	case 3:
		img := image.NewRGBA(rect)
		for i, j := 0, 0; i < len(pix); i, j = i+3, j+4 {
			img.Pix[j] = pix[i]
			img.Pix[j+1] = pix[i+1]
			img.Pix[j+2] = pix[i+2]
			img.Pix[j+3] = 0xff
		}
		return img, nil
	default:
		return &image.CMYK{Pix: pix, Stride: dict.Width * 4, Rect: rect}, nil
	}
}

// expand8 unpacks rows of sub-byte samples into one byte per sample, scaled to 0-255.
// Rows of packed samples start on byte boundaries.
func expand8(dict ImageDict, data []byte) []byte {
	rowBytes := dict.RowBytes()
	if dict.BitsPerComponent == 8 {
		return data[:dict.Height*rowBytes]
	}

	bpc := dict.BitsPerComponent
	maxValue := 1<<bpc - 1
	mask := byte(maxValue)
	width := dict.Width * dict.Components

	out := make([]byte, width*dict.Height)
	for y := range dict.Height {
		src := data[y*rowBytes : (y+1)*rowBytes]
		dst := out[y*width : (y+1)*width]
		for x := range dst {
			bit := x * bpc
			v := (src[bit/8] >> (8 - bpc - bit%8)) & mask
			dst[x] = byte(int(v) * 255 / maxValue)
		}
	}
	return out
}

func samples16(dict ImageDict, data []byte, rect image.Rectangle) image.Image {
	rowBytes := dict.RowBytes()

	switch dict.Components {
	case 1:
		return &image.Gray16{Pix: data[:dict.Height*rowBytes], Stride: rowBytes, Rect: rect}
	case 3:
		img := image.NewRGBA64(rect)
		for y := range dict.Height {
			for x := range dict.Width {
				src := data[y*rowBytes+x*6:]
				dst := img.Pix[y*img.Stride+x*8:]
				copy(dst[:6], src[:6])
				dst[6], dst[7] = 0xff, 0xff
			}
		}
		return img
	default:
		// No 16-bit CMYK buffer exists, keep the high byte of each component.
		img := image.NewCMYK(rect)
		for y := range dict.Height {
			for x := range dict.Width * 4 {
				img.Pix[y*img.Stride+x] = data[y*rowBytes+x*2]
			}
		}
		return img
	}
}
