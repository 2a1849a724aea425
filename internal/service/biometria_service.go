package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/infra"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/realtime"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

// Tipos de captura biometrica.
const (
	BiometriaFirma  = "firma"
	BiometriaHuella = "huella"
)

// BiometriaService handles signature and fingerprint captures plus the
// document-scan uploads of the wizard. Each capture is independently
// settable and clearable, on pending or completed fichas alike.
type BiometriaService interface {
	Subir(ctx context.Context, perfilID uuid.UUID, tipo, filename string, contenido io.Reader) (*dto.FichaResponse, error)
	Limpiar(ctx context.Context, perfilID uuid.UUID, tipo string) (*dto.FichaResponse, error)
	SubirPorFicha(ctx context.Context, fichaID uuid.UUID, tipo, filename string, contenido io.Reader) (*dto.FichaResponse, error)
	LimpiarPorFicha(ctx context.Context, fichaID uuid.UUID, tipo string) (*dto.FichaResponse, error)
	SubirArchivo(ctx context.Context, perfilID uuid.UUID, tipo, filename string, contenido io.Reader) (string, error)
}

type biometriaService struct {
	repo      repository.FichaRepository
	storage   infra.Storage
	publisher realtime.Publisher
}

func NewBiometriaService(repo repository.FichaRepository, storage infra.Storage, publisher realtime.Publisher) BiometriaService {
	if publisher == nil {
		publisher = realtime.SinPublicar{}
	}
	return &biometriaService{repo: repo, storage: storage, publisher: publisher}
}

func (s *biometriaService) Subir(ctx context.Context, perfilID uuid.UUID, tipo, filename string, contenido io.Reader) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByPerfil(ctx, perfilID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}
	return s.subir(ctx, ficha, tipo, filename, contenido)
}

// Limpiar clears a capture so it can be retaken. Clearing an already empty
// capture is a no-op.
func (s *biometriaService) Limpiar(ctx context.Context, perfilID uuid.UUID, tipo string) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByPerfil(ctx, perfilID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}
	return s.limpiar(ctx, ficha, tipo)
}

// SubirPorFicha records a capture taken at the admin desk, keyed by ficha id.
func (s *biometriaService) SubirPorFicha(ctx context.Context, fichaID uuid.UUID, tipo, filename string, contenido io.Reader) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByID(ctx, fichaID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}
	return s.subir(ctx, ficha, tipo, filename, contenido)
}

func (s *biometriaService) LimpiarPorFicha(ctx context.Context, fichaID uuid.UUID, tipo string) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByID(ctx, fichaID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}
	return s.limpiar(ctx, ficha, tipo)
}

func (s *biometriaService) subir(ctx context.Context, ficha *model.Ficha, tipo, filename string, contenido io.Reader) (*dto.FichaResponse, error) {
	if tipo != BiometriaFirma && tipo != BiometriaHuella {
		return nil, errors.New("tipo de biometria desconocido")
	}

	url, err := s.storage.Upload("biometria", filename, contenido)
	if err != nil {
		return nil, err
	}

	viejo := instantanea(ficha)
	s.asignar(ficha, tipo, &url)
	if err := s.repo.Update(ctx, ficha); err != nil {
		return nil, errors.New("no se pudo guardar la captura")
	}
	s.publisher.FichaActualizada(ctx, viejo, ficha)
	return dto.NuevaFichaResponse(ficha), nil
}

func (s *biometriaService) limpiar(ctx context.Context, ficha *model.Ficha, tipo string) (*dto.FichaResponse, error) {
	if tipo != BiometriaFirma && tipo != BiometriaHuella {
		return nil, errors.New("tipo de biometria desconocido")
	}

	viejo := instantanea(ficha)
	s.asignar(ficha, tipo, nil)
	if err := s.repo.Update(ctx, ficha); err != nil {
		return nil, errors.New("no se pudo limpiar la captura")
	}
	s.publisher.FichaActualizada(ctx, viejo, ficha)
	return dto.NuevaFichaResponse(ficha), nil
}

// SubirArchivo stores a wizard document scan and returns its URL. The caller
// (FichaService.GuardarDocumentoArchivo) persists the URL on the record.
func (s *biometriaService) SubirArchivo(ctx context.Context, perfilID uuid.UUID, tipo, filename string, contenido io.Reader) (string, error) {
	if !TiposDocumentoArchivo[tipo] {
		return "", errors.New("tipo de documento desconocido")
	}
	return s.storage.Upload("documentos", filename, contenido)
}

func (s *biometriaService) asignar(f *model.Ficha, tipo string, url *string) {
	switch tipo {
	case BiometriaFirma:
		f.FirmaURL = url
	case BiometriaHuella:
		f.HuellaURL = url
	}
}
