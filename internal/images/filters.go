package images

// Kind is the semantic encoding of an image payload.
type Kind string

// Encoding kinds.
const (
	KindJPEG        Kind = "jpeg"
	KindJBIG2       Kind = "jbig2"
	KindJP2K        Kind = "jp2k"
	KindPNG         Kind = "png"
	KindRawSamples  Kind = "raw"
	KindUnsupported Kind = "unsupported"
)

// Declared stream filters with an image meaning.
const (
	FilterDCT   = "DCTDecode"
	FilterJBIG2 = "JBIG2Decode"
	FilterJPX   = "JPXDecode"
	FilterNone  = "None"
)

// Encoding is the result of classifying a declared filter.
// Filter retains the declared name so unsupported encodings can be reported.
type Encoding struct {
	Kind   Kind
	Filter string
}

// Encoded reports whether the payload holds a standard image encoding
// rather than bare samples.
func (e Encoding) Encoded() bool {
	switch e.Kind {
	case KindJPEG, KindJBIG2, KindJP2K, KindPNG:
		return true
	default:
		return false
	}
}

func (e Encoding) String() string {
	if e.Kind == KindUnsupported {
		return "unsupported(" + e.Filter + ")"
	}
	return string(e.Kind)
}

// Classify maps a declared stream filter to its encoding kind.
// Unknown filters classify as KindUnsupported and never fail.
func Classify(filter string) Encoding {
	switch filter {
	case FilterDCT:
		return Encoding{Kind: KindJPEG, Filter: filter}
	case FilterJBIG2:
		return Encoding{Kind: KindJBIG2, Filter: filter}
	case FilterJPX:
		return Encoding{Kind: KindJP2K, Filter: filter}
	case "", FilterNone:
		return Encoding{Kind: KindRawSamples, Filter: filter}
	default:
		return Encoding{Kind: KindUnsupported, Filter: filter}
	}
}
