package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/apierror"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/middleware"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/realtime"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

// RealtimeHandler upgrades authenticated clients onto the change stream.
// Admin sessions receive the whole table; an obrero session is scoped to its
// own ficha at accept time.
type RealtimeHandler struct {
	hub      *realtime.Hub
	fichas   repository.FichaRepository
	origenes []string
}

func NewRealtimeHandler(hub *realtime.Hub, fichas repository.FichaRepository, origenes []string) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, fichas: fichas, origenes: origenes}
}

// Conectar godoc
// @Summary Canal de sincronizacion en tiempo real
// @Tags realtime
// @Router /v1/realtime [get]
func (h *RealtimeHandler) Conectar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return
	}
	perfilID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}

	fichaID := uuid.Nil
	if claims.Rol == model.RolObrero {
		if ficha, err := h.fichas.FindByPerfil(c.Request.Context(), perfilID); err == nil {
			fichaID = ficha.ID
		}
		// Sin ficha todavia: la sesion queda conectada y solo recibe lo propio
		// una vez creada (el cliente reconecta tras el primer guardado).
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.origenes,
	})
	if err != nil {
		log.Warn().Err(err).Msg("realtime: websocket accept failed")
		return
	}

	h.hub.Atender(c.Request.Context(), conn, perfilID, claims.Rol, fichaID)
}
