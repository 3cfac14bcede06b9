package service_test

import (
	"context"
	"net/http"

	"github.com/dcsim/rack-planner/internal/service"
	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("rack service", func() {
	var (
		ctx     context.Context
		s       store.Store
		racks   *service.RackService
		servers *service.ServerService
		rackID  string
	)

	BeforeEach(func() {
		ctx = context.TODO()
		s = newTestStore(baseState())
		racks = service.NewRackService(s)
		servers = service.NewServerService(s)
		rackID = baseState().Racks[0].ID
	})

	createServer := func(name string, components ...string) {
		_, err := servers.CreateServer(ctx, mappers.ServerCreateForm{Name: name, Components: refs(components...), RackName: "r1"})
		Expect(err).To(BeNil())
	}

	Context("create", func() {
		It("stores the rack and registers it in its workspace", func() {
			rack, err := racks.CreateRack(ctx, mappers.RackCreateForm{Name: "r2", Units: 10, WorkspaceName: "dc1"})
			Expect(err).To(BeNil())
			Expect(uuid.Validate(rack.ID)).To(Succeed())
			Expect(rack.Servers).To(BeEmpty())
			Expect(rack.HealthStatus).To(Equal(model.HealthStatusUnknown))
			Expect(rack.PowerStatus).To(Equal(model.PowerStatusUnknown))

			workspace, err := s.Workspace().Get(ctx, "dc1")
			Expect(err).To(BeNil())
			Expect(workspace.Racks).To(Equal([]string{"r1", "r2"}))

			stored, err := s.Rack().Get(ctx, rack.ID)
			Expect(err).To(BeNil())
			Expect(stored.Name).To(Equal("r2"))
		})

		It("defaults to a full height rack", func() {
			rack, err := racks.CreateRack(ctx, mappers.RackCreateForm{Name: "r2", WorkspaceName: "dc1"})
			Expect(err).To(BeNil())
			Expect(rack.Units).To(Equal(model.MaxRackUnits))
		})

		It("requires an existing workspace", func() {
			_, err := racks.CreateRack(ctx, mappers.RackCreateForm{Name: "r2", Units: 10, WorkspaceName: "ghost"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})

		It("keeps names unique per workspace only", func() {
			_, err := racks.CreateRack(ctx, mappers.RackCreateForm{Name: "r1", Units: 10, WorkspaceName: "dc1"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusConflict))

			_, err = service.NewWorkspaceService(s).CreateWorkspace(ctx, mappers.WorkspaceCreateForm{Name: "dc2", Network: "lan"})
			Expect(err).To(BeNil())
			_, err = racks.CreateRack(ctx, mappers.RackCreateForm{Name: "r1", Units: 10, WorkspaceName: "dc2"})
			Expect(err).To(BeNil())
		})

		It("rejects more than 42 units without touching the workspace", func() {
			_, err := racks.CreateRack(ctx, mappers.RackCreateForm{Name: "r2", Units: 43, WorkspaceName: "dc1"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))

			workspace, err := s.Workspace().Get(ctx, "dc1")
			Expect(err).To(BeNil())
			Expect(workspace.Racks).To(Equal([]string{"r1"}))
		})
	})

	Context("delete", func() {
		It("removes the rack from both collections", func() {
			rack, err := racks.CreateRack(ctx, mappers.RackCreateForm{Name: "r2", Units: 10, WorkspaceName: "dc1"})
			Expect(err).To(BeNil())

			Expect(racks.DeleteRack(ctx, rack.ID)).To(Succeed())

			workspace, err := s.Workspace().Get(ctx, "dc1")
			Expect(err).To(BeNil())
			Expect(workspace.Racks).NotTo(ContainElement("r2"))
			_, err = s.Rack().Get(ctx, rack.ID)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("tolerates a missing workspace", func() {
			state := baseState()
			state.Workspaces = nil
			s = newTestStore(state)
			racks = service.NewRackService(s)

			Expect(racks.DeleteRack(ctx, rackID)).To(Succeed())
			all, err := s.Rack().List(ctx)
			Expect(err).To(BeNil())
			Expect(all).To(BeEmpty())
		})

		It("releases the servers it held", func() {
			createServer("web-01", "xeon", "CPU")
			_, err := racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01"})
			Expect(err).To(BeNil())

			Expect(racks.DeleteRack(ctx, rackID)).To(Succeed())
			server, err := s.Server().Get(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(server.RackName).To(BeEmpty())
		})

		It("fails with not found for an unknown id", func() {
			Expect(service.StatusCode(racks.DeleteRack(ctx, uuid.NewString()))).To(Equal(http.StatusNotFound))
		})
	})

	Context("servers", func() {
		BeforeEach(func() {
			createServer("web-01", "xeon", "CPU", "ddr4", "RAM")
			createServer("web-02", "epyc", "CPU")
		})

		It("mounts a server and adds its price", func() {
			rack, err := racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01", Units: 2})
			Expect(err).To(BeNil())
			Expect(rack.Servers).To(Equal([]model.RackServer{{Name: "web-01", Units: 2}}))
			Expect(rack.TotalCost).To(Equal(480.0))

			server, err := s.Server().Get(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(server.RackName).To(Equal("r1"))
		})

		It("enforces the remaining capacity", func() {
			small, err := racks.CreateRack(ctx, mappers.RackCreateForm{Name: "tiny", Units: 1, WorkspaceName: "dc1"})
			Expect(err).To(BeNil())
			_, err = racks.AddServer(ctx, small.ID, mappers.RackServerForm{Name: "web-01"})
			Expect(err).To(BeNil())

			_, err = racks.AddServer(ctx, small.ID, mappers.RackServerForm{Name: "web-02", Units: 1})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))

			stored, err := s.Rack().Get(ctx, small.ID)
			Expect(err).To(BeNil())
			Expect(stored.Servers).To(Equal([]model.RackServer{{Name: "web-01", Units: 1}}))
		})

		It("refuses to mount a server twice", func() {
			_, err := racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01"})
			Expect(err).To(BeNil())
			_, err = racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusConflict))
		})

		It("requires both the rack and the server", func() {
			_, err := racks.AddServer(ctx, uuid.NewString(), mappers.RackServerForm{Name: "web-01"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
			_, err = racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "ghost"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})

		It("unmounts a server and lowers the total cost", func() {
			_, err := racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01"})
			Expect(err).To(BeNil())
			_, err = racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-02"})
			Expect(err).To(BeNil())

			rack, err := racks.RemoveServer(ctx, rackID, "web-01")
			Expect(err).To(BeNil())
			Expect(rack.Servers).To(Equal([]model.RackServer{{Name: "web-02", Units: 1}}))
			Expect(rack.TotalCost).To(Equal(500.0))

			server, err := s.Server().Get(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(server.RackName).To(BeEmpty())

			_, err = racks.RemoveServer(ctx, rackID, "web-01")
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})

		Context("when a mounted server changes its components", func() {
			BeforeEach(func() {
				_, err := racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01"})
				Expect(err).To(BeNil())
				_, err = racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-02"})
				Expect(err).To(BeNil())
			})

			rackTotal := func() float64 {
				rack, err := s.Rack().Get(ctx, rackID)
				Expect(err).To(BeNil())
				return rack.TotalCost
			}

			It("follows an added component and stays right after unmounting a neighbour", func() {
				_, err := servers.AddComponent(ctx, "web-01", model.ComponentRef{Name: "ssd", Type: "Storage"})
				Expect(err).To(BeNil())
				Expect(rackTotal()).To(Equal(1100.0))

				rack, err := racks.RemoveServer(ctx, rackID, "web-02")
				Expect(err).To(BeNil())
				Expect(rack.TotalCost).To(Equal(600.0))
			})

			It("follows a removed component", func() {
				_, err := servers.RemoveComponent(ctx, "web-01", "ddr4", "")
				Expect(err).To(BeNil())
				Expect(rackTotal()).To(Equal(900.0))
			})

			It("follows a replaced component list", func() {
				components := refs("epyc", "CPU", "ssd", "Storage")
				_, err := servers.UpdateServer(ctx, "web-02", mappers.ServerUpdateForm{Components: &components})
				Expect(err).To(BeNil())
				Expect(rackTotal()).To(Equal(1100.0))

				Expect(servers.DeleteServer(ctx, "web-01")).To(Succeed())
				Expect(rackTotal()).To(Equal(620.0))
			})
		})

		It("sums the maintenance cost of every mounted server", func() {
			_, err := racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01"})
			Expect(err).To(BeNil())
			_, err = racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-02"})
			Expect(err).To(BeNil())

			cost, err := racks.MaintenanceCost(ctx, rackID)
			Expect(err).To(BeNil())
			Expect(cost).To(Equal(98.0))
		})

		It("ignores servers that no longer exist in the maintenance cost", func() {
			state := baseState()
			state.Racks[0].Servers = []model.RackServer{{Name: "gone", Units: 1}}
			s = newTestStore(state)
			racks = service.NewRackService(s)

			cost, err := racks.MaintenanceCost(ctx, rackID)
			Expect(err).To(BeNil())
			Expect(cost).To(Equal(0.0))
		})
	})

	Context("update", func() {
		It("does not shrink below the units in use", func() {
			createServer("web-01", "xeon", "CPU")
			_, err := racks.AddServer(ctx, rackID, mappers.RackServerForm{Name: "web-01", Units: 3})
			Expect(err).To(BeNil())

			units := 2
			_, err = racks.UpdateRack(ctx, rackID, mappers.RackUpdateForm{Units: &units})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))

			units = 3
			power := model.PowerStatusOn
			rack, err := racks.UpdateRack(ctx, rackID, mappers.RackUpdateForm{Units: &units, PowerStatus: &power})
			Expect(err).To(BeNil())
			Expect(rack.Units).To(Equal(3))
			Expect(rack.PowerStatus).To(Equal(model.PowerStatusOn))
		})
	})
})
