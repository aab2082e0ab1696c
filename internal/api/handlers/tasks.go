package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/kanmind/internal/api/dto"
	"github.com/hugh/kanmind/internal/tasks"
)

type TaskHandler struct {
	store *tasks.Store
	log   *slog.Logger
}

func NewTaskHandler(store *tasks.Store, log *slog.Logger) *TaskHandler {
	return &TaskHandler{store: store, log: log}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	task, err := h.store.Create(r.Context(), actor(r), req.Input())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewTaskResponse(task))
}

func (h *TaskHandler) AssignedToMe(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListAssignedTo(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewTaskResponses(list))
}

func (h *TaskHandler) Reviewing(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListReviewing(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewTaskResponses(list))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	task, err := h.store.Update(r.Context(), actor(r), id, req.Patch())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewTaskPatchResponse(task))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
