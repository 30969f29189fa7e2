package handlers

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/protocol"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/plants"
)

// DefaultSearchLimit caps SEARCH results when no limit is configured.
const DefaultSearchLimit = 50

// SearchHandler finds catalog species by partial name.
type SearchHandler struct {
	base
	plants plants.Repository
	limit  int
}

func NewSearchHandler(p plants.Repository, limit int, l logging.Logger) *SearchHandler {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &SearchHandler{base: newBase(protocol.Search, l), plants: p, limit: limit}
}

func (h *SearchHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	text := strings.TrimSpace(req.Search)
	if text == "" {
		return h.fail(ctx, invalid("search text is required"))
	}

	found, err := h.plants.Search(ctx, text, h.limit)
	if err != nil {
		return h.fail(ctx, err)
	}

	resp := h.ok()
	resp.Plants = make([]protocol.Plant, 0, len(found))
	for i := range found {
		resp.Plants = append(resp.Plants, toPlant(&found[i]))
	}
	resp.Count = int64(len(found))
	return resp
}

// GetMorePlantInfoHandler returns the full catalog record of one species.
type GetMorePlantInfoHandler struct {
	base
	plants plants.Repository
}

func NewGetMorePlantInfoHandler(p plants.Repository, l logging.Logger) *GetMorePlantInfoHandler {
	return &GetMorePlantInfoHandler{base: newBase(protocol.GetMorePlantInfo, l), plants: p}
}

func (h *GetMorePlantInfoHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	if req.PlantID <= 0 {
		return h.fail(ctx, invalid("plant_id is required"))
	}
	p, err := h.plants.GetByID(ctx, req.PlantID)
	if err != nil {
		return h.fail(ctx, err)
	}
	resp := h.ok()
	resp.Details = toDetails(p)
	return resp
}
