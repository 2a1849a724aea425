package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/infra"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

// ExportacionService produces the printable personnel sheet on demand for the
// admin console. Unlike the post-submit pipeline this path is synchronous:
// the admin is waiting for the download.
type ExportacionService interface {
	GenerarPDF(ctx context.Context, fichaID uuid.UUID) (path string, filename string, err error)
}

type exportacionService struct {
	repo        repository.FichaRepository
	storagePath string
}

func NewExportacionService(repo repository.FichaRepository, storagePath string) ExportacionService {
	return &exportacionService{repo: repo, storagePath: storagePath}
}

func (s *exportacionService) GenerarPDF(ctx context.Context, fichaID uuid.UUID) (string, string, error) {
	ficha, err := s.repo.FindByID(ctx, fichaID)
	if err != nil {
		return "", "", errors.New("ficha no encontrada")
	}

	path, err := infra.GenerateFichaPDF(ficha, s.storagePath)
	if err != nil {
		return "", "", err
	}
	return path, "ficha_" + ficha.DNI + ".pdf", nil
}
