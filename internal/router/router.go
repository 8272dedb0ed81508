package router

import (
	"context"
	"time"

	"comandas/internal/config"
	"comandas/internal/handler"
	"comandas/internal/infra"
	"comandas/internal/middleware"
	"comandas/internal/model"
	"comandas/internal/repository"
	"comandas/internal/service"
	"comandas/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide resources built by the composition root.
// Redis, Hub, Eventos and KafkaCB are optional.
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Limiter middleware.RateLimitStore
	Hub     *ws.Hub
	Eventos service.Notificador
	KafkaCB *infra.Breaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(d.DB)
	productoRepo := repository.NewProductoRepository(d.DB)
	eventoRepo := repository.NewEventoRepository(d.DB)
	configRepo := repository.NewConfiguracionRepository(d.DB)
	comandaRepo := repository.NewComandaRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	notificadores := service.Notificadores{d.Eventos}
	if d.Hub != nil {
		notificadores = append(notificadores, d.Hub)
	}

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	configSvc := service.NewConfiguracionService(configRepo, d.Redis)
	eventoSvc := service.NewEventoService(eventoRepo, configSvc)
	comandaSvc := service.NewComandaService(comandaRepo, productoRepo, eventoRepo, notificadores, cfg.NombreLocal, cfg.Location())
	statsSvc := service.NewStatsService(comandaRepo, cfg.Location())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	eventosH := handler.NewEventosHandler(eventoSvc)
	comandasH := handler.NewComandasHandler(comandaSvc)
	statsH := handler.NewStatsHandler(statsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.KafkaCB))

	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewMemoryStore(context.Background())
	}
	api := r.Group("/api")

	// Auth (public)
	api.POST("/auth/login",
		middleware.RateLimiter(limiter, middleware.ClaseLogin, cfg.RateLimitLogin, time.Minute),
		authH.Login)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	todos := middleware.RequireRole(model.RolAdmin, model.RolStaff)
	admin := middleware.RequireRole(model.RolAdmin)

	p := api.Group("", jwtMW, middleware.RateLimitByMethod(limiter, cfg.RateLimitLectura, cfg.RateLimitEscritura, time.Minute))
	{
		comandas := p.Group("/comandas", todos)
		{
			comandas.POST("/create", comandasH.Crear)
			comandas.POST("/update-status", comandasH.ActualizarEstado)
			comandas.GET("/list", comandasH.Listar)
			comandas.GET("/:id", comandasH.ObtenerPorID)
			comandas.GET("/:id/ticket", comandasH.Ticket)
			if d.Hub != nil {
				comandas.GET("/ws", d.Hub.ServeWS)
			}
		}

		p.GET("/stats", todos, statsH.Resumen)

		// Catalog: everyone reads, admin writes
		p.GET("/productos", todos, productosH.Listar)
		p.GET("/productos/:id", todos, productosH.ObtenerPorID)
		prods := p.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PATCH("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Eliminar)
		}

		p.GET("/eventos", todos, eventosH.Listar)
		p.GET("/eventos/activo", todos, eventosH.ObtenerActivo)
		p.GET("/eventos/:id", todos, eventosH.ObtenerPorID)
		evs := p.Group("/eventos", admin)
		{
			evs.POST("", eventosH.Crear)
			evs.POST("/activo", eventosH.FijarActivo)
			evs.PATCH("/:id", eventosH.Actualizar)
			evs.DELETE("/:id", eventosH.Eliminar)
		}

		p.POST("/usuarios", admin, usuariosH.Crear)
	}

	return r
}
