package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/docstate"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/realtime"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

// tamanoLote keeps each import wave small so a large payload never starves
// the pool or holds long transactions.
const tamanoLote = 25

// ErrDNIRegistrado — duplicate rows are skipped, never overwritten.
var ErrDNIRegistrado = errors.New("ya existe un usuario registrado con ese DNI")

// ImportacionService creates profiles and fichas in bulk from an already
// structured employee list. Each row succeeds or fails on its own; the
// summary reports both sides.
type ImportacionService interface {
	Importar(ctx context.Context, req dto.ImportarRequest) (*dto.ResultadoImportacion, error)
}

type importacionService struct {
	perfiles  repository.PerfilRepository
	fichas    repository.FichaRepository
	publisher realtime.Publisher
}

func NewImportacionService(perfiles repository.PerfilRepository, fichas repository.FichaRepository, publisher realtime.Publisher) ImportacionService {
	if publisher == nil {
		publisher = realtime.SinPublicar{}
	}
	return &importacionService{perfiles: perfiles, fichas: fichas, publisher: publisher}
}

func (s *importacionService) Importar(ctx context.Context, req dto.ImportarRequest) (*dto.ResultadoImportacion, error) {
	resultado := &dto.ResultadoImportacion{Detalles: []dto.DetalleErrorImport{}}

	for inicio := 0; inicio < len(req.Empleados); inicio += tamanoLote {
		fin := inicio + tamanoLote
		if fin > len(req.Empleados) {
			fin = len(req.Empleados)
		}
		for _, emp := range req.Empleados[inicio:fin] {
			if err := s.importarUno(ctx, emp); err != nil {
				resultado.Errores++
				resultado.Detalles = append(resultado.Detalles, dto.DetalleErrorImport{DNI: emp.DNI, Error: err.Error()})
				continue
			}
			resultado.Exitosos++
		}
	}

	log.Info().
		Int("exitosos", resultado.Exitosos).
		Int("errores", resultado.Errores).
		Msg("importacion masiva finalizada")
	return resultado, nil
}

// importarUno creates one profile plus its ficha. The initial password is the
// DNI itself; the worker is expected to change it on first login.
func (s *importacionService) importarUno(ctx context.Context, emp dto.EmpleadoImport) error {
	if _, err := s.perfiles.FindByDNI(ctx, emp.DNI); err == nil {
		return ErrDNIRegistrado
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(emp.DNI), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	perfil := &model.Perfil{
		DNI:          emp.DNI,
		Nombres:      emp.Nombres,
		Apellidos:    emp.Apellidos,
		PasswordHash: string(hash),
		Rol:          model.RolObrero,
		Activo:       true,
	}
	if err := s.perfiles.Create(ctx, perfil); err != nil {
		return err
	}

	ficha := &model.Ficha{
		PerfilID:     perfil.ID,
		DNI:          emp.DNI,
		Nombres:      emp.Nombres,
		Apellidos:    emp.Apellidos,
		Cargo:        emp.Cargo,
		Categoria:    emp.Categoria,
		FechaIngreso: emp.FechaIngreso,
		Estado:       model.EstadoPendiente,
		DocStates:    docstate.NuevosDocStates(),
	}
	if err := s.fichas.Upsert(ctx, ficha); err != nil {
		return err
	}

	s.publisher.FichaInsertada(ctx, ficha)
	return nil
}
