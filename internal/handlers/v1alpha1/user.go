package v1alpha1

import (
	"net/http"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/go-chi/chi/v5"
)

// UserReply never carries the password.
type UserReply struct {
	Username string `json:"username"`
}

func userToApi(u model.User) UserReply {
	return UserReply{Username: u.Username}
}

// (GET /api/v1/users)
func (h *ServiceHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSrv.ListUsers(r.Context())
	if err != nil {
		replyError(w, r, err)
		return
	}
	replies := make([]UserReply, 0, len(users))
	for _, u := range users {
		replies = append(replies, userToApi(u))
	}
	reply(w, r, http.StatusOK, replies)
}

// (POST /api/v1/users)
func (h *ServiceHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if !decode(w, r, &user) {
		return
	}
	created, err := h.userSrv.CreateUser(r.Context(), user)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusCreated, userToApi(*created))
}

// (POST /api/v1/users/login)
func (h *ServiceHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form mappers.LoginForm
	if !decode(w, r, &form) {
		return
	}
	user, err := h.userSrv.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, userToApi(*user))
}

// (GET /api/v1/users/{username})
func (h *ServiceHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSrv.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		replyError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, userToApi(*user))
}

// (DELETE /api/v1/users/{username})
func (h *ServiceHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userSrv.DeleteUser(r.Context(), chi.URLParam(r, "username")); err != nil {
		replyError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
