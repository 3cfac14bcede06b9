package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dcsim/rack-planner/internal/service"
	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("inventory services", func() {
	var (
		ctx context.Context
		s   store.Store
	)

	BeforeEach(func() {
		ctx = context.TODO()
		s = newTestStore(model.State{Networks: networks(), Components: catalog()})
	})

	It("builds a server end to end", func() {
		_, err := service.NewNetworkService(s).CreateNetwork(ctx, model.Network{
			Name: "N1", IPAddress: "172.16.0.0", SubnetMask: "255.255.0.0", Gateway: "172.16.0.1",
		})
		Expect(err).To(BeNil())
		_, err = service.NewWorkspaceService(s).CreateWorkspace(ctx, mappers.WorkspaceCreateForm{Name: "W1", Network: "N1"})
		Expect(err).To(BeNil())
		racks := service.NewRackService(s)
		rack, err := racks.CreateRack(ctx, mappers.RackCreateForm{Name: "R1", Units: 2, WorkspaceName: "W1"})
		Expect(err).To(BeNil())

		server, err := service.NewServerService(s).CreateServer(ctx, mappers.ServerCreateForm{
			Name:       "S1",
			Components: refs("xeon", "CPU"),
			RackName:   "R1",
		})
		Expect(err).To(BeNil())
		Expect(server.Network).To(Equal("N1"))

		rack, err = racks.AddServer(ctx, rack.ID, mappers.RackServerForm{Name: "S1"})
		Expect(err).To(BeNil())
		Expect(rack.Servers).To(ContainElement(model.RackServer{Name: "S1", Units: 1}))
	})

	Context("workspaces", func() {
		var workspaces *service.WorkspaceService

		BeforeEach(func() {
			workspaces = service.NewWorkspaceService(s)
		})

		It("requires an existing network", func() {
			_, err := workspaces.CreateWorkspace(ctx, mappers.WorkspaceCreateForm{Name: "dc1", Network: "ghost"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))

			network := "ghost"
			_, err = workspaces.CreateWorkspace(ctx, mappers.WorkspaceCreateForm{Name: "dc1", Network: "lan"})
			Expect(err).To(BeNil())
			_, err = workspaces.UpdateWorkspace(ctx, "dc1", mappers.WorkspaceUpdateForm{Network: &network})
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})

		It("moves to another network", func() {
			_, err := workspaces.CreateWorkspace(ctx, mappers.WorkspaceCreateForm{Name: "dc1", Network: "lan"})
			Expect(err).To(BeNil())
			network := "dmz"
			workspace, err := workspaces.UpdateWorkspace(ctx, "dc1", mappers.WorkspaceUpdateForm{Network: &network})
			Expect(err).To(BeNil())
			Expect(workspace.Network).To(Equal("dmz"))
		})

		It("refuses to delete a workspace that owns racks", func() {
			_, err := workspaces.CreateWorkspace(ctx, mappers.WorkspaceCreateForm{Name: "dc1", Network: "lan"})
			Expect(err).To(BeNil())
			rack, err := service.NewRackService(s).CreateRack(ctx, mappers.RackCreateForm{Name: "r1", WorkspaceName: "dc1"})
			Expect(err).To(BeNil())

			Expect(service.StatusCode(workspaces.DeleteWorkspace(ctx, "dc1"))).To(Equal(http.StatusConflict))

			Expect(service.NewRackService(s).DeleteRack(ctx, rack.ID)).To(Succeed())
			Expect(workspaces.DeleteWorkspace(ctx, "dc1")).To(Succeed())
		})
	})

	Context("components", func() {
		var components *service.ComponentService

		BeforeEach(func() {
			components = service.NewComponentService(s, service.NewServerService(s))
		})

		It("rejects a second component with the same name", func() {
			_, err := components.CreateComponent(ctx, model.Component{Name: "nvme", Type: "Storage", Price: 90})
			Expect(err).To(BeNil())
			before, err := s.Component().List(ctx)
			Expect(err).To(BeNil())

			_, err = components.CreateComponent(ctx, model.Component{Name: "nvme", Type: "GPU", Price: 900})
			Expect(service.StatusCode(err)).To(Equal(http.StatusConflict))

			after, err := s.Component().List(ctx)
			Expect(err).To(BeNil())
			Expect(after).To(HaveLen(len(before)))
		})

		It("propagates a price change to servers and racks", func() {
			s = newTestStore(baseState())
			servers := service.NewServerService(s)
			components = service.NewComponentService(s, servers)
			_, err := servers.CreateServer(ctx, mappers.ServerCreateForm{Name: "web-01", Components: refs("xeon", "CPU", "ddr4", "RAM"), RackName: "r1"})
			Expect(err).To(BeNil())
			_, err = servers.CreateServer(ctx, mappers.ServerCreateForm{Name: "web-02", Components: refs("epyc", "CPU"), RackName: "r1"})
			Expect(err).To(BeNil())
			rackID := baseState().Racks[0].ID
			_, err = service.NewRackService(s).AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01"})
			Expect(err).To(BeNil())
			_, err = service.NewRackService(s).AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-02"})
			Expect(err).To(BeNil())

			price, maintenance := 100.0, 1.0
			_, err = components.UpdateComponent(ctx, "ddr4", mappers.ComponentUpdateForm{Price: &price, MaintenanceCost: &maintenance})
			Expect(err).To(BeNil())

			server, err := s.Server().Get(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(server.TotalPrice).To(Equal(500.0))
			Expect(server.TotalMaintenanceCost).To(Equal(41.0))

			untouched, err := s.Server().Get(ctx, "web-02")
			Expect(err).To(BeNil())
			Expect(untouched.TotalPrice).To(Equal(500.0))

			rack, err := s.Rack().Get(ctx, rackID)
			Expect(err).To(BeNil())
			Expect(rack.TotalCost).To(Equal(1000.0))
		})

		Context("type and compatibility edits of a component in use", func() {
			var servers *service.ServerService

			BeforeEach(func() {
				s = newTestStore(baseState())
				servers = service.NewServerService(s)
				components = service.NewComponentService(s, servers)
				_, err := servers.CreateServer(ctx, mappers.ServerCreateForm{Name: "web-01", Components: refs("xeon", "CPU", "board-x", "Motherboard"), RackName: "r1"})
				Expect(err).To(BeNil())
			})

			It("refuses to re-type the only CPU of a server", func() {
				ram := "RAM"
				_, err := components.UpdateComponent(ctx, "xeon", mappers.ComponentUpdateForm{Type: &ram})
				Expect(service.StatusCode(err)).To(Equal(http.StatusConflict))
				Expect(err.Error()).To(ContainSubstring("web-01"))

				stored, err := s.Component().Get(ctx, "xeon")
				Expect(err).To(BeNil())
				Expect(stored.Type).To(Equal(model.ComponentTypeCPU))

				missing, err := servers.MissingComponents(ctx, "web-01")
				Expect(err).To(BeNil())
				Expect(missing).NotTo(ContainElement(model.ComponentTypeCPU))
			})

			It("refuses a compatibility list that breaks an existing pair", func() {
				list := []string{"epyc"}
				_, err := components.UpdateComponent(ctx, "board-x", mappers.ComponentUpdateForm{CompatibleList: &list})
				Expect(service.StatusCode(err)).To(Equal(http.StatusConflict))

				stored, err := s.Component().Get(ctx, "board-x")
				Expect(err).To(BeNil())
				Expect(stored.CompatibleList).To(Equal([]string{"xeon"}))
			})

			It("accepts edits that keep every server valid", func() {
				list := []string{"xeon", "epyc"}
				_, err := components.UpdateComponent(ctx, "board-x", mappers.ComponentUpdateForm{CompatibleList: &list})
				Expect(err).To(BeNil())

				memory := "Memory"
				updated, err := components.UpdateComponent(ctx, "ddr4", mappers.ComponentUpdateForm{Type: &memory})
				Expect(err).To(BeNil())
				Expect(updated.Type).To(Equal("Memory"))

				firmware := "Firmware"
				_, err = components.UpdateComponent(ctx, "bsd", mappers.ComponentUpdateForm{Type: &firmware})
				Expect(err).To(BeNil())
			})
		})

		It("refuses to delete a component in use", func() {
			state := baseState()
			state.Servers = []model.Server{{Name: "web-01", Components: []string{"xeon"}, Network: "lan"}}
			s = newTestStore(state)
			components = service.NewComponentService(s, service.NewServerService(s))

			Expect(service.StatusCode(components.DeleteComponent(ctx, "xeon"))).To(Equal(http.StatusConflict))
			Expect(components.DeleteComponent(ctx, "ssd")).To(Succeed())
			Expect(service.StatusCode(components.DeleteComponent(ctx, "ssd"))).To(Equal(http.StatusNotFound))
		})
	})

	Context("networks", func() {
		var networks *service.NetworkService

		BeforeEach(func() {
			networks = service.NewNetworkService(s)
		})

		It("validates addresses", func() {
			_, err := networks.CreateNetwork(ctx, model.Network{Name: "bad", IPAddress: "10.0.0.0", SubnetMask: "255.0.255.0", Gateway: "10.0.0.1"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))
			Expect(err.Error()).To(Equal("subnetMask must be a valid subnet mask"))
		})

		It("refuses to delete a network in use", func() {
			_, err := service.NewWorkspaceService(s).CreateWorkspace(ctx, mappers.WorkspaceCreateForm{Name: "dc1", Network: "lan"})
			Expect(err).To(BeNil())

			Expect(service.StatusCode(networks.DeleteNetwork(ctx, "lan"))).To(Equal(http.StatusConflict))
			Expect(networks.DeleteNetwork(ctx, "dmz")).To(Succeed())
		})

		It("updates a network", func() {
			gateway := "10.0.0.254"
			network, err := networks.UpdateNetwork(ctx, "lan", mappers.NetworkUpdateForm{Gateway: &gateway})
			Expect(err).To(BeNil())
			Expect(network.Gateway).To(Equal(gateway))
		})
	})

	Context("users", func() {
		var users *service.UserService

		BeforeEach(func() {
			users = service.NewUserService(s)
			_, err := users.CreateUser(ctx, model.User{Username: "admin", Password: "secret"})
			Expect(err).To(BeNil())
		})

		It("authenticates", func() {
			user, err := users.Authenticate(ctx, "admin", "secret")
			Expect(err).To(BeNil())
			Expect(user.Username).To(Equal("admin"))

			_, err = users.Authenticate(ctx, "admin", "wrong")
			Expect(service.StatusCode(err)).To(Equal(http.StatusUnauthorized))
			_, err = users.Authenticate(ctx, "nobody", "secret")
			Expect(service.StatusCode(err)).To(Equal(http.StatusUnauthorized))
		})

		It("rejects duplicates and deletes", func() {
			_, err := users.CreateUser(ctx, model.User{Username: "admin", Password: "other"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusConflict))

			Expect(users.DeleteUser(ctx, "admin")).To(Succeed())
			_, err = users.GetUser(ctx, "admin")
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})
	})

	Context("persistence failures", func() {
		It("surfaces a failed write as a persistence error and keeps the collection", func() {
			dir := s.Collections().Dir()
			Expect(os.Chmod(dir, 0o500)).To(Succeed())
			DeferCleanup(os.Chmod, dir, os.FileMode(0o755))
			if f, err := os.CreateTemp(dir, "probe"); err == nil {
				// running as root, permissions are not enforced
				_ = f.Close()
				_ = os.Remove(f.Name())
				Skip("directory permissions are not enforced")
			}

			_, err := service.NewNetworkService(s).CreateNetwork(ctx, model.Network{
				Name: "wan", IPAddress: "10.1.0.0", SubnetMask: "255.255.0.0", Gateway: "10.1.0.1",
			})
			Expect(service.KindOf(err)).To(Equal(service.KindPersistence))
			Expect(service.StatusCode(err)).To(Equal(http.StatusInternalServerError))

			all, err := s.Network().List(ctx)
			Expect(err).To(BeNil())
			Expect(all).To(HaveLen(2))
		})
	})
})

var _ = Describe("error kinds", func() {
	DescribeTable("map to status codes",
		func(err error, kind service.Kind, code int) {
			Expect(service.KindOf(err)).To(Equal(kind))
			Expect(service.StatusCode(err)).To(Equal(code))
		},
		Entry("not found", service.NewErrResourceNotFound("s1", "server"), service.KindNotFound, http.StatusNotFound),
		Entry("store not found", store.NewErrNotFound(store.CollectionRacks, "r1"), service.KindNotFound, http.StatusNotFound),
		Entry("conflict", service.NewErrAlreadyExists("server", "s1"), service.KindConflict, http.StatusConflict),
		Entry("wrapped conflict", fmt.Errorf("creating: %w", store.NewErrConflict(store.CollectionServers, "s1")), service.KindConflict, http.StatusConflict),
		Entry("validation", service.NewErrMandatoryComponentMissing("CPU"), service.KindValidation, http.StatusBadRequest),
		Entry("unauthorized", service.NewErrUnauthorized(), service.KindUnauthorized, http.StatusUnauthorized),
		Entry("persistence", &store.PersistenceError{Collection: store.CollectionServers, Op: "write", Err: errors.New("disk full")}, service.KindPersistence, http.StatusInternalServerError),
		Entry("unknown collection", store.ErrUnknownCollection, service.KindInternal, http.StatusInternalServerError),
		Entry("anything else", errors.New("boom"), service.KindInternal, http.StatusInternalServerError),
	)
})
