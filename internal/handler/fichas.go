package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/apierror"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/middleware"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/service"
)

// FichasHandler serves the worker portal: the wizard steps, the legal
// documents, biometrics and the SSOMA induction — always scoped to the
// authenticated profile's own record.
type FichasHandler struct {
	fichas     service.FichaService
	documentos service.DocumentoService
	biometria  service.BiometriaService
}

func NewFichasHandler(fichas service.FichaService, documentos service.DocumentoService, biometria service.BiometriaService) *FichasHandler {
	return &FichasHandler{fichas: fichas, documentos: documentos, biometria: biometria}
}

// ObtenerPropia godoc
// @Summary Ficha del obrero autenticado
// @Tags fichas
// @Produce json
// @Success 200 {object} dto.FichaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/fichas/me [get]
func (h *FichasHandler) ObtenerPropia(c *gin.Context) {
	perfilID, ok := perfilDe(c)
	if !ok {
		return
	}
	resp, err := h.fichas.ObtenerPropia(c.Request.Context(), perfilID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GuardarPaso persists one wizard step. The step name selects the request
// shape; every save is a partial snapshot upsert.
func (h *FichasHandler) GuardarPaso(c *gin.Context) {
	perfilID, ok := perfilDe(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	var (
		resp interface{}
		err  error
	)
	switch c.Param("paso") {
	case dto.PasoPersonal:
		var req dto.PasoPersonalRequest
		if !bindAndValidate(c, &req) {
			return
		}
		resp, err = h.fichas.GuardarPasoPersonal(c.Request.Context(), perfilID, claims.DNI, req)
	case dto.PasoFamilia:
		var req dto.PasoFamiliaRequest
		if !bindAndValidate(c, &req) {
			return
		}
		resp, err = h.fichas.GuardarPasoFamilia(c.Request.Context(), perfilID, req)
	case dto.PasoLaboral:
		var req dto.PasoLaboralRequest
		if !bindAndValidate(c, &req) {
			return
		}
		resp, err = h.fichas.GuardarPasoLaboral(c.Request.Context(), perfilID, req)
	default:
		c.JSON(http.StatusBadRequest, apierror.New("Paso desconocido"))
		return
	}

	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Finalizar submits the ficha: mandatory fields plus the accepted declaration
// move it from pending to completed and queue the PDF pipeline.
func (h *FichasHandler) Finalizar(c *gin.Context) {
	perfilID, ok := perfilDe(c)
	if !ok {
		return
	}
	var req dto.FinalizarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.fichas.Finalizar(c.Request.Context(), perfilID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompletarDocumento registers the signed payload of one legal document.
func (h *FichasHandler) CompletarDocumento(c *gin.Context) {
	perfilID, ok := perfilDe(c)
	if !ok {
		return
	}
	var req dto.CompletarDocumentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.documentos.Completar(c.Request.Context(), perfilID, c.Param("clave"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompletarSsoma marks the safety induction done (idempotent).
func (h *FichasHandler) CompletarSsoma(c *gin.Context) {
	perfilID, ok := perfilDe(c)
	if !ok {
		return
	}
	resp, err := h.fichas.CompletarSsoma(c.Request.Context(), perfilID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubirArchivo receives one multipart document scan (DNI, RETCC, certificados)
// and stores its URL on the record.
func (h *FichasHandler) SubirArchivo(c *gin.Context) {
	perfilID, ok := perfilDe(c)
	if !ok {
		return
	}
	tipo := c.Param("tipo")

	file, header, err := c.Request.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Archivo requerido (campo 'archivo')"))
		return
	}
	defer file.Close()

	url, err := h.biometria.SubirArchivo(c.Request.Context(), perfilID, tipo, header.Filename, file)
	if err != nil {
		responderError(c, err)
		return
	}
	resp, err := h.fichas.GuardarDocumentoArchivo(c.Request.Context(), perfilID, tipo, url)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubirBiometria stores a signature or fingerprint capture.
func (h *FichasHandler) SubirBiometria(c *gin.Context) {
	perfilID, ok := perfilDe(c)
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Archivo requerido (campo 'archivo')"))
		return
	}
	defer file.Close()

	resp, err := h.biometria.Subir(c.Request.Context(), perfilID, c.Param("tipo"), header.Filename, file)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LimpiarBiometria clears a capture so it can be retaken.
func (h *FichasHandler) LimpiarBiometria(c *gin.Context) {
	perfilID, ok := perfilDe(c)
	if !ok {
		return
	}
	resp, err := h.biometria.Limpiar(c.Request.Context(), perfilID, c.Param("tipo"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// perfilDe extracts the authenticated profile id; writes the 401 itself.
func perfilDe(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return uuid.Nil, false
	}
	return id, true
}
