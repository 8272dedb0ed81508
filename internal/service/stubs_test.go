package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"comandas/internal/dto"
	"comandas/internal/model"
	"comandas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubComandaRepo is an in-memory ComandaRepository.
type stubComandaRepo struct {
	comandas    map[uuid.UUID]*model.Comanda
	items       []model.ComandaItem
	itemsErr    error
	updateErr   error
	desdeCalled time.Time
}

func newStubComandaRepo() *stubComandaRepo {
	return &stubComandaRepo{comandas: make(map[uuid.UUID]*model.Comanda)}
}

func (r *stubComandaRepo) Create(_ context.Context, _ *gorm.DB, c *model.Comanda) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.comandas[c.ID] = c
	return nil
}

func (r *stubComandaRepo) CreateItems(_ context.Context, _ *gorm.DB, items []model.ComandaItem) error {
	if r.itemsErr != nil {
		return r.itemsErr
	}
	r.items = append(r.items, items...)
	return nil
}

func (r *stubComandaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Comanda, error) {
	c, ok := r.comandas[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *c
	return &cp, nil
}

func (r *stubComandaRepo) UpdateEstado(_ context.Context, id uuid.UUID, desde model.EstadoComanda, cambio repository.CambioEstado) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	c, ok := r.comandas[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	if c.Estado != desde {
		return repository.ErrConflictoEstado
	}
	c.Estado = cambio.Estado
	c.MetodoPago = cambio.MetodoPago
	if cambio.Nota != nil {
		c.Nota = cambio.Nota
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (r *stubComandaRepo) ListAbiertas(_ context.Context, eventoID *uuid.UUID) ([]model.Comanda, error) {
	out := []model.Comanda{}
	for _, c := range r.comandas {
		if c.Estado == model.EstadoCancelado {
			continue
		}
		if eventoID != nil && c.EventoID != *eventoID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *stubComandaRepo) ListDesde(_ context.Context, desde time.Time, eventoID *uuid.UUID) ([]model.Comanda, error) {
	r.desdeCalled = desde
	out := []model.Comanda{}
	for _, c := range r.comandas {
		if c.CreatedAt.Before(desde) {
			continue
		}
		if eventoID != nil && c.EventoID != *eventoID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubComandaRepo) DB() *gorm.DB { return nil }

var _ repository.ComandaRepository = (*stubComandaRepo)(nil)

// stubProductoRepo is an in-memory ProductoRepository.
type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	createErr error
	deleteErr error
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) add(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.add(p)
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var out []model.Producto
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) List(_ context.Context, filter dto.ProductoFilter) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if filter.Activo == "all" || (filter.Activo == "false") != p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	if _, ok := r.productos[p.ID]; !ok {
		return repository.ErrNoEncontrado
	}
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.productos[id]; !ok {
		return repository.ErrNoEncontrado
	}
	delete(r.productos, id)
	return nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubEventoRepo is an in-memory EventoRepository.
type stubEventoRepo struct {
	eventos   map[uuid.UUID]*model.Evento
	createErr error
	deleteErr error
}

func newStubEventoRepo() *stubEventoRepo {
	return &stubEventoRepo{eventos: make(map[uuid.UUID]*model.Evento)}
}

func (r *stubEventoRepo) add(e *model.Evento) *model.Evento {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.eventos[e.ID] = e
	return e
}

func (r *stubEventoRepo) Create(_ context.Context, e *model.Evento) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.add(e)
	return nil
}

func (r *stubEventoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Evento, error) {
	e, ok := r.eventos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *e
	return &cp, nil
}

func (r *stubEventoRepo) List(_ context.Context) ([]model.Evento, error) {
	var out []model.Evento
	for _, e := range r.eventos {
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubEventoRepo) Update(_ context.Context, e *model.Evento) error {
	if _, ok := r.eventos[e.ID]; !ok {
		return repository.ErrNoEncontrado
	}
	cp := *e
	r.eventos[e.ID] = &cp
	return nil
}

func (r *stubEventoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.eventos[id]; !ok {
		return repository.ErrNoEncontrado
	}
	delete(r.eventos, id)
	return nil
}

var _ repository.EventoRepository = (*stubEventoRepo)(nil)

// stubConfiguracionRepo is an in-memory ConfiguracionRepository that counts reads.
type stubConfiguracionRepo struct {
	valores   map[string]string
	lecturas  int
	deleteErr error
}

func newStubConfiguracionRepo() *stubConfiguracionRepo {
	return &stubConfiguracionRepo{valores: make(map[string]string)}
}

func (r *stubConfiguracionRepo) Get(_ context.Context, clave string) (string, error) {
	r.lecturas++
	v, ok := r.valores[clave]
	if !ok {
		return "", repository.ErrNoEncontrado
	}
	return v, nil
}

func (r *stubConfiguracionRepo) Set(_ context.Context, clave, valor string) error {
	r.valores[clave] = valor
	return nil
}

func (r *stubConfiguracionRepo) Delete(_ context.Context, clave string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.valores, clave)
	return nil
}

var _ repository.ConfiguracionRepository = (*stubConfiguracionRepo)(nil)

// stubUsuarioRepo is an in-memory UsuarioRepository keyed by email.
type stubUsuarioRepo struct {
	usuarios map[string]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if _, ok := r.usuarios[u.Email]; ok {
		return repository.ErrDuplicado
	}
	u.ID = uuid.New()
	r.usuarios[u.Email] = u
	return nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	u, ok := r.usuarios[email]
	if !ok || !u.Activo {
		return nil, repository.ErrNoEncontrado
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubUsuarioRepo) Upsert(_ context.Context, u *model.Usuario) error {
	if prev, ok := r.usuarios[u.Email]; ok {
		u.ID = prev.ID
	} else {
		u.ID = uuid.New()
	}
	r.usuarios[u.Email] = u
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// capturaNotificador records every event it receives.
type capturaNotificador struct {
	mu      sync.Mutex
	eventos []dto.EventoComanda
}

func (n *capturaNotificador) Notificar(_ context.Context, ev dto.EventoComanda) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.eventos = append(n.eventos, ev)
}
