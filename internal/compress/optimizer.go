package compress

import (
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	// optimizeFloor: payloads below this pass through untouched.
	optimizeFloor = 100 * 1024
	// compressThreshold: payloads at or above this are candidates for
	// compression.
	compressThreshold = 500 * 1024
	// minGain: the compressed form replaces the original only when it is at
	// least this much smaller.
	minGain = 0.2
)

// Magic prefixes marking compressed payloads. They are plain ASCII so they
// can never collide with PNG/JPEG/GIF/WEBP signatures, all of which start
// with binary or RIFF bytes.
var magicPrefixes = map[string][]byte{
	"gzip":   []byte("GZIP_COMPRESSED:"),
	"lz4":    []byte("LZ4_COMPRESSED:"),
	"brotli": []byte("BROTLI_COMPRESSED:"),
}

// NewCodec returns the codec registered under name.
func NewCodec(name string) (Compress, error) {
	switch name {
	case "", "gzip":
		return NewGZip(), nil
	case "lz4":
		return NewLZ4(), nil
	case "brotli":
		return NewBrotli(), nil
	default:
		return nil, fmt.Errorf("unknown image codec %q", name)
	}
}

// Optimizer keeps large image payloads from dominating cache memory by
// transparently compressing them. Every failure path degrades to the
// original bytes: a badly compressed image still displays, a broken one
// does not.
type Optimizer struct {
	codec  Compress
	prefix []byte
}

func NewOptimizer(codec Compress) *Optimizer {
	prefix, ok := magicPrefixes[codec.Name()]
	if !ok {
		// Nop and friends produce no marker and therefore never compress.
		prefix = nil
	}
	return &Optimizer{codec: codec, prefix: prefix}
}

// Optimize returns data, possibly replaced by a prefixed compressed form.
// The round-trip law holds for every input: Decompress(Optimize(x)) == x.
func (o *Optimizer) Optimize(data []byte) []byte {
	if len(data) < optimizeFloor || o.prefix == nil {
		return data
	}

	if len(data) < compressThreshold {
		return data
	}

	compressed, err := o.codec.Encode(data)
	if err != nil {
		logrus.Errorf("image compression failed, keeping original: %v", err)
		return data
	}

	// Not worth the marker unless the win is real.
	if float64(len(compressed)) >= float64(len(data))*(1-minGain) {
		return data
	}

	logrus.Infof("compressed image from %d to %d bytes (%s)", len(data), len(compressed), o.codec.Name())
	out := make([]byte, 0, len(o.prefix)+len(compressed))
	out = append(out, o.prefix...)
	out = append(out, compressed...)
	return out
}

// Decompress reverses Optimize. Input without a known marker is returned
// unchanged, so calling it on plain data is a no-op. A payload whose marker
// turns out to be unreadable is returned as is rather than failing.
func (o *Optimizer) Decompress(data []byte) []byte {
	for name, prefix := range magicPrefixes {
		if !bytes.HasPrefix(data, prefix) {
			continue
		}

		codec, err := NewCodec(name)
		if err != nil {
			return data
		}

		plain, err := codec.Decode(data[len(prefix):])
		if err != nil {
			logrus.Errorf("image decompression failed, returning payload unchanged: %v", err)
			return data
		}
		return plain
	}

	return data
}
