package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
)

// Publisher pushes change events to the Redis channel after every persist.
// A publish failure is logged, never propagated: the write already succeeded
// and the application must keep functioning in stale-but-operable mode.
type Publisher interface {
	FichaInsertada(ctx context.Context, nueva *model.Ficha)
	FichaActualizada(ctx context.Context, vieja, nueva *model.Ficha)
	FichaEliminada(ctx context.Context, vieja *model.Ficha)
}

type redisPublisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) FichaInsertada(ctx context.Context, nueva *model.Ficha) {
	p.publicar(ctx, Evento{Kind: KindInsert, Tabla: "fichas", Nuevo: nueva})
}

func (p *redisPublisher) FichaActualizada(ctx context.Context, vieja, nueva *model.Ficha) {
	p.publicar(ctx, Evento{Kind: KindUpdate, Tabla: "fichas", Nuevo: nueva, Viejo: vieja})
}

func (p *redisPublisher) FichaEliminada(ctx context.Context, vieja *model.Ficha) {
	p.publicar(ctx, Evento{Kind: KindDelete, Tabla: "fichas", Viejo: vieja})
}

func (p *redisPublisher) publicar(ctx context.Context, ev Evento) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("kind", ev.Kind).Msg("realtime: failed to marshal evento")
		return
	}
	if err := p.rdb.Publish(ctx, CanalFichas, data).Err(); err != nil {
		log.Warn().Err(err).Str("kind", ev.Kind).Msg("realtime: publish failed — sessions will refresh manually")
	}
}

// SinPublicar is a no-op publisher for tests and for running without Redis.
type SinPublicar struct{}

func (SinPublicar) FichaInsertada(context.Context, *model.Ficha)        {}
func (SinPublicar) FichaActualizada(context.Context, *model.Ficha, *model.Ficha) {}
func (SinPublicar) FichaEliminada(context.Context, *model.Ficha)        {}
