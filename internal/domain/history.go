package domain

import (
	"sync"
	"time"
)

// HistoryEntry es una recomendación registrada en el histórico de la sesión.
type HistoryEntry struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	FuelType       string    `json:"fuel_type"`
	BasePrice      float64   `json:"base_price"`
	Cost           float64   `json:"cost"`
	AvgCompPrice   float64   `json:"avg_comp_price"`
	FilterFallback bool      `json:"filter_fallback"`
	Recommendation
}

// History es un log append-only en memoria. Lo crea y lo posee el llamador
// (sesión de CLI o servidor HTTP); el núcleo nunca lo lee implícitamente.
type History struct {
	mu      sync.RWMutex
	entries []HistoryEntry
}

// NewHistory crea un histórico vacío.
func NewHistory() *History {
	return &History{}
}

// Append añade una entrada al final.
func (h *History) Append(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
}

// Entries devuelve una copia de las entradas en orden de inserción.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len devuelve el número de entradas.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
