package dto

import "comandas/internal/stats"

type StatsFilter struct {
	EventoID string `form:"evento_id" validate:"omitempty,uuid"`
}

type StatsResponse struct {
	Success bool          `json:"success"`
	Stats   stats.Resumen `json:"stats"`
}
