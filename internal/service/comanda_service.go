package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comandas/internal/apierror"
	"comandas/internal/dto"
	"comandas/internal/infra"
	"comandas/internal/model"
	"comandas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ComandaService interface {
	Crear(ctx context.Context, req dto.CrearComandaRequest) (*dto.CrearComandaResponse, error)
	ActualizarEstado(ctx context.Context, req dto.ActualizarEstadoRequest) (*dto.ComandaEnvelope, error)
	ListarAbiertas(ctx context.Context, filter dto.ComandaFilter) (*dto.ComandaListResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ComandaEnvelope, error)
	GenerarTicket(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type comandaService struct {
	repo         repository.ComandaRepository
	productoRepo repository.ProductoRepository
	eventoRepo   repository.EventoRepository
	notificador  Notificador
	nombreLocal  string
	loc          *time.Location
}

func NewComandaService(
	repo repository.ComandaRepository,
	productoRepo repository.ProductoRepository,
	eventoRepo repository.EventoRepository,
	notificador Notificador,
	nombreLocal string,
	loc *time.Location,
) ComandaService {
	if notificador == nil {
		notificador = nopNotificador{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &comandaService{
		repo:         repo,
		productoRepo: productoRepo,
		eventoRepo:   eventoRepo,
		notificador:  notificador,
		nombreLocal:  nombreLocal,
		loc:          loc,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or directly (no transaction) when db is nil (unit tests with stubs).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Crear ────────────────────────────────────────────────────────────────────
//   1. Reject an empty cart before touching the database
//   2. subtotal = cantidad × precio; total must equal Σ subtotal
//   3. Evento must exist; every producto must exist and be active
//   4. BEGIN TX: insert header, insert items, COMMIT (both or neither)
//   5. Notify listeners (never fails the request)

func (s *comandaService) Crear(ctx context.Context, req dto.CrearComandaRequest) (*dto.CrearComandaResponse, error) {
	if len(req.Productos) == 0 {
		return nil, ErrSinProductos
	}
	if req.Total == nil {
		return nil, apierror.NewValidation(map[string]string{"total": "required"})
	}

	usuarioID, err := uuid.Parse(req.UsuarioID)
	if err != nil {
		return nil, apierror.NewValidation(map[string]string{"usuario_id": "uuid"})
	}
	eventoID, err := uuid.Parse(req.EventoID)
	if err != nil {
		return nil, apierror.NewValidation(map[string]string{"evento_id": "uuid"})
	}

	comanda := &model.Comanda{
		ID:            uuid.New(),
		UsuarioID:     usuarioID,
		EventoID:      eventoID,
		NombreCliente: req.NombreCliente,
		Estado:        model.EstadoPendiente,
	}

	ids := make([]uuid.UUID, 0, len(req.Productos))
	suma := decimal.Zero
	for i, it := range req.Productos {
		campo := fmt.Sprintf("productos[%d]", i)
		pid, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, apierror.NewValidation(map[string]string{campo + ".id": "uuid"})
		}
		if it.Cantidad < 1 {
			return nil, apierror.NewValidation(map[string]string{campo + ".cantidad": "min"})
		}
		if it.Precio == nil || it.Precio.IsNegative() {
			return nil, apierror.NewValidation(map[string]string{campo + ".precio": "min"})
		}
		subtotal := it.Precio.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		suma = suma.Add(subtotal)
		ids = append(ids, pid)
		comanda.Items = append(comanda.Items, model.ComandaItem{
			ID:             uuid.New(),
			ComandaID:      comanda.ID,
			Linea:          i + 1,
			ProductoID:     pid,
			Cantidad:       it.Cantidad,
			PrecioUnitario: *it.Precio,
			Subtotal:       subtotal,
		})
	}
	if !suma.Equal(*req.Total) {
		return nil, apierror.NewValidation(map[string]string{
			"total": fmt.Sprintf("no coincide con la suma de los subtotales (%s)", suma.StringFixed(2)),
		})
	}
	comanda.Total = suma

	if _, err := s.eventoRepo.FindByID(ctx, eventoID); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, apierror.NewValidation(map[string]string{"evento_id": "no existe"})
		}
		return nil, persistencia("buscar evento", err)
	}

	productos, err := s.productoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, persistencia("buscar productos", err)
	}
	porID := make(map[uuid.UUID]model.Producto, len(productos))
	for _, p := range productos {
		porID[p.ID] = p
	}
	fields := map[string]string{}
	for i := range comanda.Items {
		p, ok := porID[comanda.Items[i].ProductoID]
		switch {
		case !ok:
			fields[fmt.Sprintf("productos[%d].id", i)] = "no existe"
		case !p.Activo:
			fields[fmt.Sprintf("productos[%d].id", i)] = "inactivo"
		default:
			comanda.Items[i].Producto = p
		}
	}
	if len(fields) > 0 {
		return nil, apierror.NewValidation(fields)
	}

	items := comanda.Items
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, comanda); err != nil {
			return err
		}
		return s.repo.CreateItems(ctx, tx, items)
	})
	if txErr != nil {
		if errors.Is(txErr, repository.ErrEnUso) {
			return nil, ErrReferenciaInvalida
		}
		return nil, persistencia("crear comanda", txErr)
	}

	log.Info().
		Str("comanda_id", comanda.ID.String()).
		Str("evento_id", eventoID.String()).
		Str("total", comanda.Total.StringFixed(2)).
		Int("items", len(items)).
		Msg("comanda creada")

	evento := comanda
	if full, err := s.repo.FindByID(ctx, comanda.ID); err == nil {
		evento = full // carries the usuario nombre
	}
	s.notificar(ctx, dto.EventoComandaCreada, evento)

	return &dto.CrearComandaResponse{Success: true, ComandaID: comanda.ID.String()}, nil
}

// ── ActualizarEstado ─────────────────────────────────────────────────────────

func (s *comandaService) ActualizarEstado(ctx context.Context, req dto.ActualizarEstadoRequest) (*dto.ComandaEnvelope, error) {
	id, err := uuid.Parse(req.ComandaID)
	if err != nil {
		return nil, apierror.NewValidation(map[string]string{"comanda_id": "uuid"})
	}
	hasta, err := model.ParseEstado(req.Estado)
	if err != nil {
		return nil, apierror.NewValidation(map[string]string{"estado": "oneof"})
	}

	actual, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNoEncontrado) {
		return nil, ErrComandaNoEncontrada
	}
	if err != nil {
		return nil, persistencia("buscar comanda", err)
	}

	if !actual.Estado.PuedeTransicionarA(hasta) {
		return nil, transicionInvalida(actual.Estado, hasta)
	}

	cambio := repository.CambioEstado{Estado: hasta, Nota: req.Nota}
	if hasta == model.EstadoPagado {
		if req.MetodoPago == nil {
			return nil, ErrMetodoPagoRequerido
		}
		m, err := model.ParseMetodoPago(*req.MetodoPago)
		if err != nil {
			return nil, apierror.NewValidation(map[string]string{"metodo_pago": "oneof"})
		}
		cambio.MetodoPago = &m
	}

	if err := s.repo.UpdateEstado(ctx, id, actual.Estado, cambio); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflictoEstado):
			// another request moved it first
			return nil, transicionInvalida(actual.Estado, hasta)
		case errors.Is(err, repository.ErrNoEncontrado):
			return nil, ErrComandaNoEncontrada
		}
		return nil, persistencia("actualizar estado", err)
	}

	actualizada, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistencia("releer comanda", err)
	}

	log.Info().
		Str("comanda_id", id.String()).
		Str("desde", string(actual.Estado)).
		Str("hasta", string(hasta)).
		Msg("estado de comanda actualizado")

	s.notificar(ctx, dto.EventoComandaActualizada, actualizada)

	return &dto.ComandaEnvelope{Success: true, Comanda: comandaResponse(actualizada)}, nil
}

// ── Lectura ──────────────────────────────────────────────────────────────────

func (s *comandaService) ListarAbiertas(ctx context.Context, filter dto.ComandaFilter) (*dto.ComandaListResponse, error) {
	eventoID, err := parseFiltroEvento(filter.EventoID)
	if err != nil {
		return nil, err
	}
	comandas, err := s.repo.ListAbiertas(ctx, eventoID)
	if err != nil {
		return nil, persistencia("listar comandas", err)
	}
	out := make([]dto.ComandaResponse, len(comandas))
	for i := range comandas {
		out[i] = comandaResponse(&comandas[i])
	}
	return &dto.ComandaListResponse{Success: true, Comandas: out}, nil
}

func (s *comandaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ComandaEnvelope, error) {
	c, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ComandaEnvelope{Success: true, Comanda: comandaResponse(c)}, nil
}

func (s *comandaService) GenerarTicket(ctx context.Context, id uuid.UUID) ([]byte, error) {
	c, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	pdf, err := infra.GenerateTicketPDF(c, s.nombreLocal, s.loc)
	if err != nil {
		return nil, fmt.Errorf("generar ticket: %w", err)
	}
	return pdf, nil
}

func (s *comandaService) buscar(ctx context.Context, id uuid.UUID) (*model.Comanda, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNoEncontrado) {
		return nil, ErrComandaNoEncontrada
	}
	if err != nil {
		return nil, persistencia("buscar comanda", err)
	}
	return c, nil
}

func (s *comandaService) notificar(ctx context.Context, tipo string, c *model.Comanda) {
	s.notificador.Notificar(context.WithoutCancel(ctx), dto.EventoComanda{
		Tipo:       tipo,
		Comanda:    comandaResponse(c),
		OcurridoEn: time.Now().UTC(),
	})
}

func parseFiltroEvento(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierror.NewValidation(map[string]string{"evento_id": "uuid"})
	}
	return &id, nil
}

func comandaResponse(c *model.Comanda) dto.ComandaResponse {
	items := make([]dto.ItemComandaResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = dto.ItemComandaResponse{
			ID:             it.ID.String(),
			ProductoID:     it.ProductoID.String(),
			ProductoNombre: it.Producto.Nombre,
			ProductoIcono:  it.Producto.Icono,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		}
	}
	var metodo *string
	if c.MetodoPago != nil {
		m := string(*c.MetodoPago)
		metodo = &m
	}
	return dto.ComandaResponse{
		ID:            c.ID.String(),
		UsuarioID:     c.UsuarioID.String(),
		UsuarioNombre: c.Usuario.Nombre,
		EventoID:      c.EventoID.String(),
		NombreCliente: c.NombreCliente,
		Total:         c.Total,
		Estado:        string(c.Estado),
		MetodoPago:    metodo,
		Nota:          c.Nota,
		Items:         items,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
