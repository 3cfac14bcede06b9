package v1alpha1

import (
	"errors"
	"io"
	"net/http"

	"github.com/dcsim/rack-planner/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type ServiceHandler struct {
	userSrv      *service.UserService
	workspaceSrv *service.WorkspaceService
	rackSrv      *service.RackService
	serverSrv    *service.ServerService
	componentSrv *service.ComponentService
	networkSrv   *service.NetworkService
}

func NewServiceHandler(
	userService *service.UserService,
	workspaceService *service.WorkspaceService,
	rackService *service.RackService,
	serverService *service.ServerService,
	componentService *service.ComponentService,
	networkService *service.NetworkService,
) *ServiceHandler {
	return &ServiceHandler{
		userSrv:      userService,
		workspaceSrv: workspaceService,
		rackSrv:      rackService,
		serverSrv:    serverService,
		componentSrv: componentService,
		networkSrv:   networkService,
	}
}

// RegisterApi mounts every inventory route under /api/v1.
func (h *ServiceHandler) RegisterApi(router chi.Router) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Post("/login", h.Login)
			r.Get("/{username}", h.GetUser)
			r.Delete("/{username}", h.DeleteUser)
		})
		r.Route("/workspaces", func(r chi.Router) {
			r.Get("/", h.ListWorkspaces)
			r.Post("/", h.CreateWorkspace)
			r.Get("/{name}", h.GetWorkspace)
			r.Put("/{name}", h.UpdateWorkspace)
			r.Delete("/{name}", h.DeleteWorkspace)
		})
		r.Route("/racks", func(r chi.Router) {
			r.Get("/", h.ListRacks)
			r.Post("/", h.CreateRack)
			r.Get("/{id}", h.GetRack)
			r.Put("/{id}", h.UpdateRack)
			r.Delete("/{id}", h.DeleteRack)
			r.Post("/{id}/servers", h.AddRackServer)
			r.Delete("/{id}/servers/{server}", h.RemoveRackServer)
			r.Get("/{id}/maintenance-cost", h.GetRackMaintenanceCost)
		})
		r.Route("/servers", func(r chi.Router) {
			r.Get("/", h.ListServers)
			r.Post("/", h.CreateServer)
			r.Get("/{name}", h.GetServer)
			r.Put("/{name}", h.UpdateServer)
			r.Delete("/{name}", h.DeleteServer)
			r.Post("/{name}/components", h.AddServerComponent)
			r.Delete("/{name}/components/{component}", h.RemoveServerComponent)
			r.Get("/{name}/missing-components", h.GetMissingComponents)
		})
		r.Route("/components", func(r chi.Router) {
			r.Get("/", h.ListComponents)
			r.Post("/", h.CreateComponent)
			r.Get("/{name}", h.GetComponent)
			r.Put("/{name}", h.UpdateComponent)
			r.Delete("/{name}", h.DeleteComponent)
		})
		r.Route("/networks", func(r chi.Router) {
			r.Get("/", h.ListNetworks)
			r.Post("/", h.CreateNetwork)
			r.Get("/{name}", h.GetNetwork)
			r.Put("/{name}", h.UpdateNetwork)
			r.Delete("/{name}", h.DeleteNetwork)
		})
	})
}

type ErrorReply struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// decode reads the JSON body into v and answers 400 when it cannot.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		message := err.Error()
		if errors.Is(err, io.EOF) {
			message = "empty body"
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorReply{Message: message, Kind: service.KindValidation.String()})
		return false
	}
	return true
}

func reply(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// replyError maps err to its status code. Internal errors are logged and their
// message is not sent back.
func replyError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	status := service.StatusCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		zap.S().Named("handler").Errorw("request failed", "path", r.URL.Path, "kind", kind.String(), "error", err)
		message = http.StatusText(status)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorReply{Message: message, Kind: kind.String()})
}
