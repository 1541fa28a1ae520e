package media

import (
	"context"
	"time"

	"github.com/pion/rtcp"

	"github.com/lenscoach/lenscoach/pkg/logger"
)

type RTCPWriter interface {
	WriteRTCP(pkts []rtcp.Packet) error
}

// RequestKeyFrames periodically asks the sender for a keyframe, so a
// decoder joining mid-stream (or recovering from loss) can sync up.
func RequestKeyFrames(ctx context.Context, w RTCPWriter, ssrc uint32, every time.Duration, log *logger.Logger) {
	if every <= 0 {
		every = 3 * time.Second
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := w.WriteRTCP([]rtcp.Packet{&rtcp.PictureLossIndication{MediaSSRC: ssrc}}); err != nil {
					log.Debug().Err(err).Msg("PLI send failed")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
