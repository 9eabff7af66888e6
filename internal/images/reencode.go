package images

import (
	"bytes"
	"fmt"
	"image"

	"github.com/JaimeStill/unpdf/internal/codec"
)

// Encoded is the output of re-encoding one image.
type Encoded struct {
	Data []byte
	Ext  string

	// Passthrough is set when Data is a copy of the source payload.
	Passthrough bool
}

// Reencode converts raw into the target format.
//
// A payload whose encoding already matches the target, or any encoded payload
// with a Passthrough target, is copied without decoding. Raw samples are
// synthesized into a sample buffer and encoded. JPEG and PNG payloads are decoded
// and encoded with the target parameters. JBIG2 and JPEG 2000 payloads cannot be
// decoded and JPEG 2000 cannot be encoded; those conversions fail with
// ErrUnsupportedConversion.
func Reencode(raw *RawImage, target Format) (*Encoded, error) {
	source := raw.Kind()

	if target.matches(source) || (target.Kind == FormatPassthrough && raw.Dict.Filter.Encoded()) {
		return &Encoded{
			Data:        bytes.Clone(raw.Data),
			Ext:         target.Extension(source),
			Passthrough: true,
		}, nil
	}

	out := target.codecFormat()
	if target.Kind == FormatPassthrough {
		out = codec.PNG
	}
	if !codec.CanEncode(out) {
		return nil, fmt.Errorf("%w: %s to %s: no encoder", ErrUnsupportedConversion, source, target.Kind)
	}

	img, err := decodeSource(raw)
	if err != nil {
		return nil, err
	}

	data, err := codec.Encode(img, out, codec.Options{Quality: target.Quality})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	return &Encoded{Data: data, Ext: target.Extension(source)}, nil
}

func decodeSource(raw *RawImage) (image.Image, error) {
	source := raw.Kind()

	if source == KindRawSamples {
		return Samples(raw.Dict, raw.Data)
	}

	hint := kindCodec(source)
	if !codec.CanDecode(hint) {
		return nil, fmt.Errorf("%w: %s payloads cannot be decoded", ErrUnsupportedConversion, source)
	}

	img, err := codec.Decode(raw.Data, hint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	return img, nil
}
