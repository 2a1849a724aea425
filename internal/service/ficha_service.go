package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/docstate"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/realtime"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/worker"
)

// ErrFichaEnviada — a completed ficha is read-only for the worker.
var ErrFichaEnviada = errors.New("la ficha ya fue enviada y está en modo solo lectura")

// Tipos de archivo aceptados por el paso de documentos.
var TiposDocumentoArchivo = map[string]bool{
	"dni_frente":               true,
	"dni_reverso":              true,
	"retcc":                    true,
	"certificado_antecedentes": true,
	"certificado_medico":       true,
}

type FichaService interface {
	// Portal del obrero
	ObtenerPropia(ctx context.Context, perfilID uuid.UUID) (*dto.FichaResponse, error)
	GuardarPasoPersonal(ctx context.Context, perfilID uuid.UUID, dni string, req dto.PasoPersonalRequest) (*dto.FichaResponse, error)
	GuardarPasoFamilia(ctx context.Context, perfilID uuid.UUID, req dto.PasoFamiliaRequest) (*dto.FichaResponse, error)
	GuardarPasoLaboral(ctx context.Context, perfilID uuid.UUID, req dto.PasoLaboralRequest) (*dto.FichaResponse, error)
	GuardarDocumentoArchivo(ctx context.Context, perfilID uuid.UUID, tipo, url string) (*dto.FichaResponse, error)
	Finalizar(ctx context.Context, perfilID uuid.UUID, req dto.FinalizarRequest) (*dto.FichaResponse, error)
	CompletarSsoma(ctx context.Context, perfilID uuid.UUID) (*dto.FichaResponse, error)

	// Consola de administración
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FichaResponse, error)
	Listar(ctx context.Context, filter dto.FichaFilter) (*dto.ListarFichasResponse, error)
	Reabrir(ctx context.Context, fichaID uuid.UUID) (*dto.FichaResponse, error)
	ActualizarCampos(ctx context.Context, fichaID uuid.UUID, req dto.ActualizarFichaRequest) (*dto.FichaResponse, error)
	EliminarMasivo(ctx context.Context, ids []uuid.UUID) (*dto.ResultadoEliminacion, error)
}

type fichaService struct {
	repo       repository.FichaRepository
	publisher  realtime.Publisher
	dispatcher *worker.Dispatcher // nil in unit tests — PDF job is best-effort
}

func NewFichaService(repo repository.FichaRepository, publisher realtime.Publisher, dispatcher *worker.Dispatcher) FichaService {
	if publisher == nil {
		publisher = realtime.SinPublicar{}
	}
	return &fichaService{repo: repo, publisher: publisher, dispatcher: dispatcher}
}

// ── Portal del obrero ────────────────────────────────────────────────────────

func (s *fichaService) ObtenerPropia(ctx context.Context, perfilID uuid.UUID) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByPerfil(ctx, perfilID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}
	return dto.NuevaFichaResponse(ficha), nil
}

func (s *fichaService) GuardarPasoPersonal(ctx context.Context, perfilID uuid.UUID, dni string, req dto.PasoPersonalRequest) (*dto.FichaResponse, error) {
	return s.guardarParcial(ctx, perfilID, dni, func(f *model.Ficha) {
		f.Nombres = req.Nombres
		f.Apellidos = req.Apellidos
		f.FechaNacimiento = req.FechaNacimiento
		f.EstadoCivil = req.EstadoCivil
		f.Direccion = req.Direccion
		f.Distrito = req.Distrito
		f.Telefono = req.Telefono
		f.ContactoEmergencia = req.ContactoEmergencia
		f.TelefonoEmergencia = req.TelefonoEmergencia
	})
}

func (s *fichaService) GuardarPasoFamilia(ctx context.Context, perfilID uuid.UUID, req dto.PasoFamiliaRequest) (*dto.FichaResponse, error) {
	return s.guardarParcial(ctx, perfilID, "", func(f *model.Ficha) {
		f.Conyuge = req.Conyuge
		f.Hijos = req.Hijos
	})
}

func (s *fichaService) GuardarPasoLaboral(ctx context.Context, perfilID uuid.UUID, req dto.PasoLaboralRequest) (*dto.FichaResponse, error) {
	return s.guardarParcial(ctx, perfilID, "", func(f *model.Ficha) {
		f.Cargo = req.Cargo
		f.Categoria = req.Categoria
		f.FechaIngreso = req.FechaIngreso
		f.RemuneracionDiaria = req.RemuneracionDiaria
		f.SistemaPension = req.SistemaPension
		f.NombreAFP = req.NombreAFP
		f.CUSPP = req.CUSPP
		f.Banco = req.Banco
		f.CuentaBancaria = req.CuentaBancaria
		f.CCI = req.CCI
		f.RetccNumero = req.RetccNumero
		f.RetccVencimiento = req.RetccVencimiento
	})
}

func (s *fichaService) GuardarDocumentoArchivo(ctx context.Context, perfilID uuid.UUID, tipo, url string) (*dto.FichaResponse, error) {
	if !TiposDocumentoArchivo[tipo] {
		return nil, errors.New("tipo de documento desconocido")
	}
	return s.guardarParcial(ctx, perfilID, "", func(f *model.Ficha) {
		switch tipo {
		case "dni_frente":
			f.DNIFrenteURL = &url
		case "dni_reverso":
			f.DNIReversoURL = &url
		case "retcc":
			f.RetccURL = &url
		case "certificado_antecedentes":
			f.CertificadoAntecedentesURL = &url
		case "certificado_medico":
			f.CertificadoMedicoURL = &url
		}
	})
}

// guardarParcial is the wizard's "next" persistence: an upsert keyed by owner
// so progress is never lost. A completed ficha is read-only for the worker.
func (s *fichaService) guardarParcial(ctx context.Context, perfilID uuid.UUID, dni string, aplicar func(*model.Ficha)) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByPerfil(ctx, perfilID)
	switch {
	case err == nil:
		if ficha.Estado == model.EstadoCompletada {
			return nil, ErrFichaEnviada
		}
		viejo := instantanea(ficha)
		aplicar(ficha)
		if err := s.repo.Update(ctx, ficha); err != nil {
			return nil, errors.New("no se pudo guardar el avance")
		}
		s.publisher.FichaActualizada(ctx, viejo, ficha)
		return dto.NuevaFichaResponse(ficha), nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		nueva := &model.Ficha{
			PerfilID:  perfilID,
			DNI:       dni,
			Estado:    model.EstadoPendiente,
			DocStates: docstate.NuevosDocStates(),
		}
		aplicar(nueva)
		if err := s.repo.Upsert(ctx, nueva); err != nil {
			return nil, errors.New("no se pudo crear la ficha")
		}
		s.publisher.FichaInsertada(ctx, nueva)
		return dto.NuevaFichaResponse(nueva), nil

	default:
		return nil, err
	}
}

func (s *fichaService) Finalizar(ctx context.Context, perfilID uuid.UUID, req dto.FinalizarRequest) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByPerfil(ctx, perfilID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}

	nuevoEstado, err := docstate.Submit(ficha.Estado, docstate.SubmitInput{
		CamposObligatoriosCompletos: camposObligatoriosCompletos(ficha),
		DeclaracionAceptada:         req.DeclaracionAceptada,
	})
	if err != nil {
		return nil, err
	}

	viejo := instantanea(ficha)
	ahora := time.Now()
	ficha.Estado = nuevoEstado
	ficha.DeclaracionAceptada = true
	ficha.DeclaracionAceptadaEn = &ahora
	if err := s.repo.Update(ctx, ficha); err != nil {
		return nil, errors.New("no se pudo enviar la ficha")
	}
	s.publisher.FichaActualizada(ctx, viejo, ficha)

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueuePDF(ctx, worker.PDFJobPayload{FichaID: ficha.ID.String()}); err != nil {
			log.Warn().Err(err).Str("ficha_id", ficha.ID.String()).Msg("finalizar: enqueue PDF failed")
		}
	}
	return dto.NuevaFichaResponse(ficha), nil
}

// CompletarSsoma marks the safety induction as done. Set exactly once: a
// second call is an idempotent no-op, and nothing ever resets the flag
// (an admin reopen does not touch it).
func (s *fichaService) CompletarSsoma(ctx context.Context, perfilID uuid.UUID) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByPerfil(ctx, perfilID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}
	if ficha.SsomaCompletada {
		return dto.NuevaFichaResponse(ficha), nil
	}

	viejo := instantanea(ficha)
	ahora := time.Now()
	ficha.SsomaCompletada = true
	ficha.SsomaCompletadaEn = &ahora
	if err := s.repo.Update(ctx, ficha); err != nil {
		return nil, errors.New("no se pudo registrar la inducción")
	}
	s.publisher.FichaActualizada(ctx, viejo, ficha)
	return dto.NuevaFichaResponse(ficha), nil
}

// ── Consola de administración ────────────────────────────────────────────────

func (s *fichaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}
	return dto.NuevaFichaResponse(ficha), nil
}

func (s *fichaService) Listar(ctx context.Context, filter dto.FichaFilter) (*dto.ListarFichasResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	fichas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListarFichasResponse{
		Data:  make([]dto.FichaResponse, 0, len(fichas)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range fichas {
		resp.Data = append(resp.Data, *dto.NuevaFichaResponse(&fichas[i]))
	}
	return resp, nil
}

// Reabrir flips completed → pending so the worker regains the wizard.
// The worker's open session observes the change through the realtime stream.
func (s *fichaService) Reabrir(ctx context.Context, fichaID uuid.UUID) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByID(ctx, fichaID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}

	nuevoEstado, err := docstate.Reopen(ficha.Estado)
	if err != nil {
		return nil, err
	}
	if nuevoEstado == ficha.Estado {
		return dto.NuevaFichaResponse(ficha), nil // ya estaba pendiente
	}

	viejo := instantanea(ficha)
	ficha.Estado = nuevoEstado
	if err := s.repo.Update(ctx, ficha); err != nil {
		return nil, errors.New("no se pudo reabrir la ficha")
	}
	s.publisher.FichaActualizada(ctx, viejo, ficha)
	return dto.NuevaFichaResponse(ficha), nil
}

func (s *fichaService) ActualizarCampos(ctx context.Context, fichaID uuid.UUID, req dto.ActualizarFichaRequest) (*dto.FichaResponse, error) {
	ficha, err := s.repo.FindByID(ctx, fichaID)
	if err != nil {
		return nil, errors.New("ficha no encontrada")
	}

	viejo := instantanea(ficha)
	aplicarPatch(ficha, req)
	if err := s.repo.Update(ctx, ficha); err != nil {
		return nil, errors.New("no se pudo actualizar la ficha")
	}
	s.publisher.FichaActualizada(ctx, viejo, ficha)
	return dto.NuevaFichaResponse(ficha), nil
}

// EliminarMasivo deletes records one by one: a failure is counted and the
// loop continues — partial failure is the expected outcome, never an abort.
func (s *fichaService) EliminarMasivo(ctx context.Context, ids []uuid.UUID) (*dto.ResultadoEliminacion, error) {
	resultado := &dto.ResultadoEliminacion{Detalles: []dto.DetalleErrorImport{}}

	for _, id := range ids {
		ficha, err := s.repo.FindByID(ctx, id)
		if err != nil {
			resultado.Errores++
			resultado.Detalles = append(resultado.Detalles, dto.DetalleErrorImport{DNI: id.String(), Error: "ficha no encontrada"})
			continue
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			log.Error().Err(err).Str("ficha_id", id.String()).Msg("eliminar_masivo: delete failed")
			resultado.Errores++
			resultado.Detalles = append(resultado.Detalles, dto.DetalleErrorImport{DNI: ficha.DNI, Error: err.Error()})
			continue
		}
		resultado.Exitosos++
		s.publisher.FichaEliminada(ctx, ficha)
	}
	return resultado, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// instantanea copies the fields the realtime diff needs from the pre-mutation
// record, so update events carry a faithful old snapshot.
func instantanea(f *model.Ficha) *model.Ficha {
	cp := *f
	cp.DocStates = f.DocStates.Clone()
	return &cp
}

// camposObligatoriosCompletos is the finalize-time precondition over the
// accumulated partial snapshots.
func camposObligatoriosCompletos(f *model.Ficha) bool {
	if f.DNI == "" || f.Nombres == "" || f.Apellidos == "" {
		return false
	}
	if f.Direccion == nil || f.Telefono == nil {
		return false
	}
	if f.Cargo == nil || f.Categoria == nil || f.FechaIngreso == nil || f.SistemaPension == nil {
		return false
	}
	return true
}

func aplicarPatch(f *model.Ficha, req dto.ActualizarFichaRequest) {
	if req.Nombres != nil {
		f.Nombres = *req.Nombres
	}
	if req.Apellidos != nil {
		f.Apellidos = *req.Apellidos
	}
	if req.FechaNacimiento != nil {
		f.FechaNacimiento = req.FechaNacimiento
	}
	if req.EstadoCivil != nil {
		f.EstadoCivil = req.EstadoCivil
	}
	if req.Direccion != nil {
		f.Direccion = req.Direccion
	}
	if req.Distrito != nil {
		f.Distrito = req.Distrito
	}
	if req.Telefono != nil {
		f.Telefono = req.Telefono
	}
	if req.ContactoEmergencia != nil {
		f.ContactoEmergencia = req.ContactoEmergencia
	}
	if req.TelefonoEmergencia != nil {
		f.TelefonoEmergencia = req.TelefonoEmergencia
	}
	if req.Cargo != nil {
		f.Cargo = req.Cargo
	}
	if req.Categoria != nil {
		f.Categoria = req.Categoria
	}
	if req.FechaIngreso != nil {
		f.FechaIngreso = req.FechaIngreso
	}
	if req.RemuneracionDiaria != nil {
		f.RemuneracionDiaria = req.RemuneracionDiaria
	}
	if req.SistemaPension != nil {
		f.SistemaPension = req.SistemaPension
	}
	if req.NombreAFP != nil {
		f.NombreAFP = req.NombreAFP
	}
	if req.CUSPP != nil {
		f.CUSPP = req.CUSPP
	}
	if req.Banco != nil {
		f.Banco = req.Banco
	}
	if req.CuentaBancaria != nil {
		f.CuentaBancaria = req.CuentaBancaria
	}
	if req.CCI != nil {
		f.CCI = req.CCI
	}
	if req.RetccNumero != nil {
		f.RetccNumero = req.RetccNumero
	}
	if req.RetccVencimiento != nil {
		f.RetccVencimiento = req.RetccVencimiento
	}
}
