package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/family-tree/internal/auth"
	"github.com/sakif/family-tree/internal/service"
)

// TreeHandler exposes CRUD for family trees. All routes sit behind
// auth.RequireAuth, so the userID is always in the request context.
type TreeHandler struct {
	trees  *service.TreeService
	logger *slog.Logger
}

func NewTreeHandler(trees *service.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{trees: trees, logger: logger}
}

type treeRequest struct {
	Name         string `json:"name"`
	RootMemberID string `json:"rootMemberId"`
}

// treeID parses the {id} path parameter. Non-numeric ids answer 400 before
// any service call.
func treeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "tree id must be an integer",
		})
		return 0, false
	}
	return id, true
}

// HandleList returns the caller's trees.
// HTTP: GET /api/trees
func (h *TreeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	trees, err := h.trees.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trees)
}

// HandleCreate creates a tree owned by the caller.
// HTTP: POST /api/trees, body {"name": "..."}
func (h *TreeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req treeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	tree, err := h.trees.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tree)
}

// HandleGet returns one tree.
// HTTP: GET /api/trees/{id}
func (h *TreeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := treeID(w, r)
	if !ok {
		return
	}

	tree, err := h.trees.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// HandleUpdate renames a tree or repoints its root member.
// HTTP: PUT /api/trees/{id}
func (h *TreeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := treeID(w, r)
	if !ok {
		return
	}

	var req treeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	tree, err := h.trees.Update(r.Context(), userID, id, req.Name, req.RootMemberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// HandleDelete removes a tree and its members.
// HTTP: DELETE /api/trees/{id}
func (h *TreeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := treeID(w, r)
	if !ok {
		return
	}

	if err := h.trees.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
