package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/apierror"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/service"
)

// AdminHandler serves the admin console: the live table, the detail drawer,
// field edits, document toggles, bulk import/delete and the PDF export.
type AdminHandler struct {
	fichas      service.FichaService
	documentos  service.DocumentoService
	biometria   service.BiometriaService
	importacion service.ImportacionService
	exportacion service.ExportacionService
}

func NewAdminHandler(fichas service.FichaService, documentos service.DocumentoService, biometria service.BiometriaService, importacion service.ImportacionService, exportacion service.ExportacionService) *AdminHandler {
	return &AdminHandler{fichas: fichas, documentos: documentos, biometria: biometria, importacion: importacion, exportacion: exportacion}
}

// Listar godoc
// @Summary Listado paginado de fichas
// @Tags admin
// @Produce json
// @Param busqueda query string false "Texto sobre DNI/nombres/apellidos"
// @Param estado query string false "pending | completed"
// @Param page query int false "Pagina"
// @Param limit query int false "Tamaño de pagina"
// @Success 200 {object} dto.ListarFichasResponse
// @Router /v1/admin/fichas [get]
func (h *AdminHandler) Listar(c *gin.Context) {
	filter := dto.FichaFilter{
		Busqueda: c.Query("busqueda"),
		Estado:   c.Query("estado"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.fichas.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar fichas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ObtenerPorID(c *gin.Context) {
	id, ok := idDe(c)
	if !ok {
		return
	}
	resp, err := h.fichas.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar applies a field patch; only fields present in the body change.
func (h *AdminHandler) Actualizar(c *gin.Context) {
	id, ok := idDe(c)
	if !ok {
		return
	}
	var req dto.ActualizarFichaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.fichas.ActualizarCampos(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reabrir moves a completed ficha back to pending so the worker can edit it.
func (h *AdminHandler) Reabrir(c *gin.Context) {
	id, ok := idDe(c)
	if !ok {
		return
	}
	resp, err := h.fichas.Reabrir(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarMasivo deletes the selected records; partial failure is reported,
// never aborted.
func (h *AdminHandler) EliminarMasivo(c *gin.Context) {
	var req dto.EliminarMasivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("ID invalido: "+raw))
			return
		}
		ids = append(ids, id)
	}
	resp, err := h.fichas.EliminarMasivo(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Importar creates profiles and fichas in bulk from structured rows.
func (h *AdminHandler) Importar(c *gin.Context) {
	var req dto.ImportarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.importacion.Importar(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Documentos legales ───────────────────────────────────────────────────────

func (h *AdminHandler) DesbloquearDocumento(c *gin.Context) {
	h.transicionDocumento(c, h.documentos.Desbloquear)
}

func (h *AdminHandler) BloquearDocumento(c *gin.Context) {
	h.transicionDocumento(c, h.documentos.Bloquear)
}

// ResetearDocumento clears a completed document. The body must carry
// {"confirmar": true}; the data loss is irreversible.
func (h *AdminHandler) ResetearDocumento(c *gin.Context) {
	id, ok := idDe(c)
	if !ok {
		return
	}
	var req dto.ResetearDocumentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.documentos.Resetear(c.Request.Context(), id, c.Param("clave"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) transicionDocumento(c *gin.Context, op func(ctx context.Context, fichaID uuid.UUID, clave string) (*dto.FichaResponse, error)) {
	id, ok := idDe(c)
	if !ok {
		return
	}
	resp, err := op(c.Request.Context(), id, c.Param("clave"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubirBiometria records a signature or fingerprint captured at the admin
// desk, on behalf of the worker whose ficha is addressed.
func (h *AdminHandler) SubirBiometria(c *gin.Context) {
	id, ok := idDe(c)
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Archivo requerido (campo 'archivo')"))
		return
	}
	defer file.Close()

	resp, err := h.biometria.SubirPorFicha(c.Request.Context(), id, c.Param("tipo"), header.Filename, file)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LimpiarBiometria clears a capture so it can be retaken.
func (h *AdminHandler) LimpiarBiometria(c *gin.Context) {
	id, ok := idDe(c)
	if !ok {
		return
	}
	resp, err := h.biometria.LimpiarPorFicha(c.Request.Context(), id, c.Param("tipo"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF renders the printable sheet synchronously and streams it back.
func (h *AdminHandler) DescargarPDF(c *gin.Context) {
	id, ok := idDe(c)
	if !ok {
		return
	}
	path, filename, err := h.exportacion.GenerarPDF(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.FileAttachment(path, filename)
}

func idDe(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}
