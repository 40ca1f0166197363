package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweep deletes every game unused for longer than idle, measured at now,
// and returns how many were removed.
//
// With idle set to the session token lifetime, a swept game can no longer be
// reached: every use refreshes lastUsed, and the last token for it has expired.
func Sweep(ctx context.Context, s Store, idle time.Duration, now time.Time) (int, error) {
	ids, err := s.IdleSince(ctx, now.Add(-idle))
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// RunJanitor sweeps s every interval until ctx is done.
func RunJanitor(ctx context.Context, s Store, idle, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := Sweep(ctx, s, idle, now)
			if err != nil {
				log.Error().Err(err).Msg("sweep idle games")
				continue
			}
			if n > 0 {
				log.Info().Int("removed", n).Int("remaining", s.Len()).Msg("swept idle games")
			}
		}
	}
}
