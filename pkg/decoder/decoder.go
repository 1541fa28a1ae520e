package decoder

import "github.com/lenscoach/lenscoach/pkg/frame"

// Video turns encoded bitstream frames into raw I420 images.
// Implementations are not safe for concurrent use, each track
// gets its own decoder instance.
type Video interface {
	// Decode consumes one encoded frame. A nil result with a nil error
	// means the decoder needs more data (e.g. it waits for a keyframe).
	Decode(payload []byte) (*frame.YCbCr, error)
	Close() error
}
