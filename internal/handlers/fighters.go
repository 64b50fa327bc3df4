package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ufcml/predict-api/internal/fights"
)

// GetFighterHistory returns the last fights of a fighter
// @Summary Get Fighter History
// @Tags Fighters
// @Produce json
// @Param name path string true "Fighter name"
// @Success 200 {array} models.FightHistoryEntry
// @Router /fighter-history/{name} [get]
func (h *Handler) GetFighterHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if strings.TrimSpace(name) == "" {
		h.errorResponse(w, http.StatusBadRequest, "Fighter name is required")
		return
	}

	h.jsonResponse(w, http.StatusOK, h.fightHistory.Recent(name, fights.DefaultLimit))
}
