package bf3d

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Encoder writes BF3D streams. It holds only immutable settings, so one
// encoder may be reused for several files in sequence.
type Encoder struct {
	transform *Transform
	log       *zap.Logger
}

type Option func(*Encoder)

func WithTransform(t *Transform) Option {
	return func(e *Encoder) {
		e.transform = t
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Encoder) {
		e.log = l
	}
}

func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{}
	for _, o := range opts {
		o(e)
	}
	if e.transform == nil {
		e.transform = DefaultTransform()
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	return e
}

func (e *Encoder) Transform() *Transform {
	return e.transform
}

// Encode writes the format tag, the root chunk carrying name, and entity.
func (e *Encoder) Encode(w io.Writer, name string, entity Entity) error {
	if entity == nil {
		return errors.New("bf3d: nothing to encode")
	}
	bw := NewWriter(w, e.transform)
	bw.write([]byte(FormatTag))
	if err := bw.WriteChunk(rootChunk{name}); err != nil {
		return errors.Wrapf(err, "write root chunk %q", name)
	}
	if err := bw.WriteChunk(entity); err != nil {
		return errors.Wrapf(err, "write %v chunk", entity.ChunkType())
	}
	e.log.Debug("chunk written",
		zap.Stringer("type", entity.ChunkType()),
		zap.Int("size", ChunkSize(entity)),
		zap.Int64("total", bw.Len()))
	return nil
}

// EncodedLen returns the total stream length Encode would produce.
func EncodedLen(name string, entity Entity) int {
	return len(FormatTag) + HeaderSize + ChunkSize(rootChunk{name}) + HeaderSize + ChunkSize(entity)
}
