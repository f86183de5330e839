package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/family-tree/internal/auth"
	"github.com/sakif/family-tree/internal/model"
	"github.com/sakif/family-tree/internal/service"
)

// MemberHandler exposes CRUD for tree members. Member creation and listing
// are nested under the owning tree; reads, updates, and deletes address
// members directly by id.
type MemberHandler struct {
	members *service.MemberService
	logger  *slog.Logger
}

func NewMemberHandler(members *service.MemberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: members, logger: logger}
}

// HandleListByTree returns every member of a tree.
// HTTP: GET /api/trees/{id}/members
func (h *MemberHandler) HandleListByTree(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := treeID(w, r)
	if !ok {
		return
	}

	members, err := h.members.ListByTree(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// HandleCreate adds a member to a tree. The client may supply its own member
// id (offline-built trees); an empty id gets a server-generated one.
// HTTP: POST /api/trees/{id}/members
func (h *MemberHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := treeID(w, r)
	if !ok {
		return
	}

	var member model.Member
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	created, err := h.members.Create(r.Context(), userID, id, &member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleGet returns one member.
// HTTP: GET /api/members/{id}
func (h *MemberHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	member, err := h.members.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// HandleUpdate replaces a member's mutable fields.
// HTTP: PUT /api/members/{id}
func (h *MemberHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var member model.Member
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	updated, err := h.members.Update(r.Context(), userID, r.PathValue("id"), &member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes one member, leaving any references to it dangling.
// HTTP: DELETE /api/members/{id}
func (h *MemberHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.members.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
