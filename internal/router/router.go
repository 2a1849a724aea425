package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/config"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/handler"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/infra"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/middleware"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/realtime"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/service"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, hub *realtime.Hub, dispatcher *worker.Dispatcher, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	storage := infra.NewLocalStorage(cfg.StoragePath, cfg.StorageBaseURL)
	publisher := realtime.NewPublisher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	perfilRepo := repository.NewPerfilRepository(db)
	fichaRepo := repository.NewFichaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(perfilRepo, cfg)
	fichaSvc := service.NewFichaService(fichaRepo, publisher, dispatcher)
	documentoSvc := service.NewDocumentoService(fichaRepo, publisher)
	biometriaSvc := service.NewBiometriaService(fichaRepo, storage, publisher)
	importacionSvc := service.NewImportacionService(perfilRepo, fichaRepo, publisher)
	exportacionSvc := service.NewExportacionService(fichaRepo, cfg.PDFStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	perfilH := handler.NewPerfilHandler(authSvc)
	fichasH := handler.NewFichasHandler(fichaSvc, documentoSvc, biometriaSvc)
	adminH := handler.NewAdminHandler(fichaSvc, documentoSvc, biometriaSvc, importacionSvc, exportacionSvc)
	realtimeH := handler.NewRealtimeHandler(hub, fichaRepo, cfg.Origins())

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Archivos subidos (documentos, firmas, huellas)
	r.Static("/archivos", cfg.StoragePath)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/registro", middleware.LoginRateLimiter(), authH.Registro)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Preferencias del perfil autenticado (cualquier rol)
		v1.PATCH("/perfil/preferencias", perfilH.ActualizarPreferencias)

		// Canal de sincronizacion — el token viaja por query param
		v1.GET("/realtime", realtimeH.Conectar)

		// Portal del obrero — siempre sobre su propia ficha
		me := v1.Group("/fichas/me", middleware.RequireRole(model.RolObrero, model.RolAdmin))
		{
			me.GET("", fichasH.ObtenerPropia)
			me.PUT("/pasos/:paso", fichasH.GuardarPaso)
			me.POST("/finalizar", fichasH.Finalizar)
			me.POST("/documentos/:clave/completar", fichasH.CompletarDocumento)
			me.POST("/ssoma", fichasH.CompletarSsoma)
			me.POST("/archivos/:tipo", fichasH.SubirArchivo)
			me.POST("/biometria/:tipo", fichasH.SubirBiometria)
			me.DELETE("/biometria/:tipo", fichasH.LimpiarBiometria)
		}

		// Consola de administracion
		admin := v1.Group("/admin", middleware.RequireRole(model.RolAdmin))
		{
			admin.GET("/fichas", adminH.Listar)
			admin.GET("/fichas/:id", adminH.ObtenerPorID)
			admin.PATCH("/fichas/:id", adminH.Actualizar)
			admin.POST("/fichas/:id/reabrir", adminH.Reabrir)
			admin.GET("/fichas/:id/pdf", adminH.DescargarPDF)

			admin.POST("/fichas/:id/documentos/:clave/desbloquear", adminH.DesbloquearDocumento)
			admin.POST("/fichas/:id/documentos/:clave/bloquear", adminH.BloquearDocumento)
			admin.POST("/fichas/:id/documentos/:clave/resetear", adminH.ResetearDocumento)

			admin.POST("/fichas/:id/biometria/:tipo", adminH.SubirBiometria)
			admin.DELETE("/fichas/:id/biometria/:tipo", adminH.LimpiarBiometria)

			admin.POST("/fichas/eliminar-masivo", adminH.EliminarMasivo)
			admin.POST("/importar", adminH.Importar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
