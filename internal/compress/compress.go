package compress

// Compress encodes and decodes a byte payload. Implementations must satisfy
// Decode(Encode(x)) == x.
type Compress interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}
