package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/kanmind/internal/api/dto"
	"github.com/hugh/kanmind/internal/boards"
)

type BoardHandler struct {
	store *boards.Store
	log   *slog.Logger
}

func NewBoardHandler(store *boards.Store, log *slog.Logger) *BoardHandler {
	return &BoardHandler{store: store, log: log}
}

func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListVisibleTo(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp := make([]dto.BoardSummaryResponse, len(summaries))
	for i := range summaries {
		resp[i] = dto.NewBoardSummary(&summaries[i].Board, summaries[i].Aggregates)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBoardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	board, err := h.store.Create(r.Context(), actor(r), req.Input())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	agg, err := h.store.Aggregates(r.Context(), board.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewBoardSummary(board, agg))
}

func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	board, err := h.store.Get(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBoardDetail(board))
}

func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateBoardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	board, err := h.store.Update(r.Context(), actor(r), id, req.Input())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBoardPatch(board))
}

func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), actor(r), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
