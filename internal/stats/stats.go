// Package stats reduces a list of comandas to the sales summary shown on the
// dashboard. It does no I/O: callers load the comandas created since
// Limites.Desde and pass them in with the current time.
package stats

import (
	"time"

	"comandas/internal/model"

	"github.com/shopspring/decimal"
)

// Comanda is the projection of an order the aggregation needs.
// A zero CreatedAt marks a malformed row.
type Comanda struct {
	CreatedAt  time.Time
	Total      decimal.Decimal
	Estado     model.EstadoComanda
	MetodoPago *model.MetodoPago
	Cantidades []int
}

// Resumen is the aggregate. Every paid comanda of today lands in exactly one
// of the four metodo buckets, so they always add up to VentasHoy.
type Resumen struct {
	VentasHoy          decimal.Decimal `json:"ventasHoy"`
	VentasSemana       decimal.Decimal `json:"ventasSemana"`
	VentasMes          decimal.Decimal `json:"ventasMes"`
	ProductosVendidos  int             `json:"productosVendidos"`
	TotalEfectivo      decimal.Decimal `json:"totalEfectivo"`
	TotalTransferencia decimal.Decimal `json:"totalTransferencia"`
	TotalInvitacion    decimal.Decimal `json:"totalInvitacion"`
	TotalSinMetodo     decimal.Decimal `json:"totalSinMetodo"`
	CancelacionesHoy   int             `json:"cancelacionesHoy"`
	MontoCancelado     decimal.Decimal `json:"montoCancelado"`
	ComandasTotales    int             `json:"comandasTotales"`
	TasaCancelacion    decimal.Decimal `json:"tasaCancelacion"`
	ComandasOmitidas   int             `json:"comandasOmitidas"`
}

// Limites are the window starts, in the location of the reference time.
type Limites struct {
	InicioDia    time.Time
	InicioSemana time.Time
	InicioMes    time.Time
}

// CalcularLimites computes the boundaries for ahora. Weeks start on Monday.
func CalcularLimites(ahora time.Time) Limites {
	loc := ahora.Location()
	y, m, d := ahora.Date()
	desdeLunes := (int(ahora.Weekday()) + 6) % 7
	return Limites{
		InicioDia:    time.Date(y, m, d, 0, 0, 0, 0, loc),
		InicioSemana: time.Date(y, m, d-desdeLunes, 0, 0, 0, 0, loc),
		InicioMes:    time.Date(y, m, 1, 0, 0, 0, 0, loc),
	}
}

// Desde is the earliest instant any counter looks at. Early in a month the
// week starts before the month does.
func (l Limites) Desde() time.Time {
	if l.InicioSemana.Before(l.InicioMes) {
		return l.InicioSemana
	}
	return l.InicioMes
}

var cien = decimal.NewFromInt(100)

// Calcular runs the single pass over comandas.
func Calcular(comandas []Comanda, ahora time.Time) Resumen {
	lim := CalcularLimites(ahora)
	r := Resumen{}

	for _, c := range comandas {
		if c.CreatedAt.IsZero() {
			r.ComandasOmitidas++
			continue
		}
		hoy := !c.CreatedAt.Before(lim.InicioDia)

		if c.Estado == model.EstadoPagado {
			if !c.CreatedAt.Before(lim.InicioMes) {
				r.VentasMes = r.VentasMes.Add(c.Total)
			}
			if !c.CreatedAt.Before(lim.InicioSemana) {
				r.VentasSemana = r.VentasSemana.Add(c.Total)
			}
			if hoy {
				r.VentasHoy = r.VentasHoy.Add(c.Total)
				sumarPorMetodo(&r, c)
				for _, n := range c.Cantidades {
					r.ProductosVendidos += n
				}
			}
		}

		if hoy {
			r.ComandasTotales++
			if c.Estado == model.EstadoCancelado {
				r.CancelacionesHoy++
				r.MontoCancelado = r.MontoCancelado.Add(c.Total)
			}
		}
	}

	if r.ComandasTotales > 0 {
		r.TasaCancelacion = decimal.NewFromInt(int64(r.CancelacionesHoy)).
			Mul(cien).
			DivRound(decimal.NewFromInt(int64(r.ComandasTotales)), 2)
	}
	return r
}

func sumarPorMetodo(r *Resumen, c Comanda) {
	if c.MetodoPago == nil {
		r.TotalSinMetodo = r.TotalSinMetodo.Add(c.Total)
		return
	}
	switch *c.MetodoPago {
	case model.MetodoEfectivo:
		r.TotalEfectivo = r.TotalEfectivo.Add(c.Total)
	case model.MetodoTransferencia:
		r.TotalTransferencia = r.TotalTransferencia.Add(c.Total)
	case model.MetodoInvitacion:
		r.TotalInvitacion = r.TotalInvitacion.Add(c.Total)
	default:
		r.TotalSinMetodo = r.TotalSinMetodo.Add(c.Total)
	}
}

// DesdeModelo projects persisted comandas (with Items loaded).
func DesdeModelo(cs []model.Comanda) []Comanda {
	out := make([]Comanda, 0, len(cs))
	for _, c := range cs {
		cant := make([]int, 0, len(c.Items))
		for _, it := range c.Items {
			cant = append(cant, it.Cantidad)
		}
		out = append(out, Comanda{
			CreatedAt:  c.CreatedAt,
			Total:      c.Total,
			Estado:     c.Estado,
			MetodoPago: c.MetodoPago,
			Cantidades: cant,
		})
	}
	return out
}
