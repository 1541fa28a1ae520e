package media

import (
	"time"

	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media/samplebuilder"

	"github.com/lenscoach/lenscoach/pkg/decoder"
	"github.com/lenscoach/lenscoach/pkg/frame"
	"github.com/lenscoach/lenscoach/pkg/logger"
)

// enough to reorder bursts of late packets without
// stalling the frame wait
const maxLatePackets = 64

// Receiver reassembles the inbound VP8 RTP stream into encoded frames
// and decodes them into RGB. One Receiver owns one remote track.
type Receiver struct {
	track *webrtc.TrackRemote
	sb    *samplebuilder.SampleBuilder
	dec   decoder.Video
	log   *logger.Logger
}

func NewReceiver(track *webrtc.TrackRemote, dec decoder.Video, log *logger.Logger) *Receiver {
	return &Receiver{
		track: track,
		sb:    samplebuilder.New(maxLatePackets, &codecs.VP8Packet{}, track.Codec().ClockRate),
		dec:   dec,
		log:   log,
	}
}

// NextFrame blocks until the next decodable frame arrives or the track
// ends. A frame that fails to decode is dropped, not returned as an error.
func (r *Receiver) NextFrame() (*frame.Video, error) {
	for {
		pkt, _, err := r.track.ReadRTP()
		if err != nil {
			return nil, err
		}
		r.sb.Push(pkt)
		for sample := r.sb.Pop(); sample != nil; sample = r.sb.Pop() {
			img, err := r.dec.Decode(sample.Data)
			if err != nil {
				r.log.Debug().Err(err).Msg("frame dropped")
				continue
			}
			if img != nil {
				return img.ToRGB(time.Now()), nil
			}
		}
	}
}

func (r *Receiver) Close() error { return r.dec.Close() }
