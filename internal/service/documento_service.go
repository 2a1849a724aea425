package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/docstate"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/realtime"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

// ErrConfirmacionRequerida — resetting a completed document destroys its
// captured payload, so the admin must confirm explicitly.
var ErrConfirmacionRequerida = errors.New("el reinicio borra los datos firmados; debe confirmarse explicitamente")

// DocumentoService runs the per-document sub-state transitions. Every method
// reads the current record, delegates the rule to the transition engine, and
// persists plus publishes only when the engine accepted the change.
type DocumentoService interface {
	// Admin, por id de ficha
	Desbloquear(ctx context.Context, fichaID uuid.UUID, clave string) (*dto.FichaResponse, error)
	Bloquear(ctx context.Context, fichaID uuid.UUID, clave string) (*dto.FichaResponse, error)
	Resetear(ctx context.Context, fichaID uuid.UUID, clave string, req dto.ResetearDocumentoRequest) (*dto.FichaResponse, error)

	// Obrero, sobre su propia ficha
	Completar(ctx context.Context, perfilID uuid.UUID, clave string, req dto.CompletarDocumentoRequest) (*dto.FichaResponse, error)
}

type documentoService struct {
	repo      repository.FichaRepository
	publisher realtime.Publisher
}

func NewDocumentoService(repo repository.FichaRepository, publisher realtime.Publisher) DocumentoService {
	if publisher == nil {
		publisher = realtime.SinPublicar{}
	}
	return &documentoService{repo: repo, publisher: publisher}
}

func (s *documentoService) Desbloquear(ctx context.Context, fichaID uuid.UUID, clave string) (*dto.FichaResponse, error) {
	return s.transicionAdmin(ctx, fichaID, clave, docstate.AdminUnlock)
}

func (s *documentoService) Bloquear(ctx context.Context, fichaID uuid.UUID, clave string) (*dto.FichaResponse, error) {
	return s.transicionAdmin(ctx, fichaID, clave, docstate.AdminLock)
}

func (s *documentoService) Resetear(ctx context.Context, fichaID uuid.UUID, clave string, req dto.ResetearDocumentoRequest) (*dto.FichaResponse, error) {
	if !req.Confirmar {
		return nil, ErrConfirmacionRequerida
	}
	return s.transicionAdmin(ctx, fichaID, clave, docstate.AdminReset)
}

func (s *documentoService) transicionAdmin(ctx context.Context, fichaID uuid.UUID, clave string, transicion func(model.DocStates, string) (docstate.Resultado, error)) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByID(ctx, fichaID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}

	resultado, err := transicion(ficha.DocStates, clave)
	if err != nil {
		return nil, err
	}

	viejo := instantanea(ficha)
	ficha.DocStates = resultado.DocStates
	if err := s.repo.Update(ctx, ficha); err != nil {
		return nil, errors.New("no se pudo actualizar el documento")
	}
	s.publisher.FichaActualizada(ctx, viejo, ficha)
	return dto.NuevaFichaResponse(ficha), nil
}

// Completar registers the worker's signed document. The engine rejects a
// locked or already completed document; there is no silent success.
func (s *documentoService) Completar(ctx context.Context, perfilID uuid.UUID, clave string, req dto.CompletarDocumentoRequest) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByPerfil(ctx, perfilID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}

	resultado, err := docstate.WorkerComplete(ficha.DocStates, clave, req.Datos, time.Now())
	if err != nil {
		return nil, err
	}

	viejo := instantanea(ficha)
	ficha.DocStates = resultado.DocStates
	if err := s.repo.Update(ctx, ficha); err != nil {
		return nil, errors.New("no se pudo registrar el documento")
	}
	s.publisher.FichaActualizada(ctx, viejo, ficha)
	return dto.NuevaFichaResponse(ficha), nil
}
