package persist

// Persister reads and writes one value type, picking the codec from each
// file name.
type Persister[T any] struct{}

// NewPersister creates a persister for T.
func NewPersister[T any]() *Persister[T] {
	return &Persister[T]{}
}

// Save writes state to path.
func (p *Persister[T]) Save(path string, state *T) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}

	return SaveFile(path, codec, state)
}

// Load reads path into a new T.
func (p *Persister[T]) Load(path string) (*T, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	var state T

	err = LoadFile(path, codec, &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}
