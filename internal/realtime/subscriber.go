package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	resubscribeMinBackoff = time.Second
	resubscribeMaxBackoff = 30 * time.Second
)

// Subscriber consumes the ficha change channel and feeds the Controller.
// A dropped subscription triggers automatic resubscription with backoff —
// never a fatal state: while disconnected the app stays operable on stale
// data and manual refresh.
type Subscriber struct {
	rdb        *redis.Client
	controller *Controller
}

func NewSubscriber(rdb *redis.Client, controller *Controller) *Subscriber {
	return &Subscriber{rdb: rdb, controller: controller}
}

// Run blocks until ctx is cancelled. Call it from its own goroutine.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := resubscribeMinBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		sub := s.rdb.Subscribe(ctx, CanalFichas)
		// Confirm the subscription before consuming; failure means Redis is
		// down and we should back off.
		if _, err := sub.Receive(ctx); err != nil {
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Dur("backoff", backoff).Msg("realtime: subscribe failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > resubscribeMaxBackoff {
				backoff = resubscribeMaxBackoff
			}
			continue
		}

		backoff = resubscribeMinBackoff
		log.Info().Str("canal", CanalFichas).Msg("realtime: subscribed")
		s.consumir(ctx, sub)
		_ = sub.Close()

		if ctx.Err() != nil {
			return
		}
		log.Warn().Msg("realtime: change stream dropped, resubscribing")
	}
}

func (s *Subscriber) consumir(ctx context.Context, sub *redis.PubSub) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return // stream dropped — caller resubscribes
			}
			var ev Evento
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Error().Err(err).Msg("realtime: malformed evento, skipping")
				continue
			}
			s.controller.Aplicar(ev)
		}
	}
}
