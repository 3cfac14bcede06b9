package service_test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dcsim/rack-planner/internal/service"
	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("server service", func() {
	var (
		ctx context.Context
		s   store.Store
		srv *service.ServerService
	)

	BeforeEach(func() {
		ctx = context.TODO()
		s = newTestStore(baseState())
		srv = service.NewServerService(s)
	})

	Context("create", func() {
		It("derives costs, network and operating system", func() {
			server, err := srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-01",
				Components: refs("xeon", "CPU", "ddr4", "RAM", "linux", "OS"),
				RackName:   "r1",
			})
			Expect(err).To(BeNil())
			Expect(server.Components).To(Equal([]string{"xeon", "ddr4", "linux"}))
			Expect(server.TotalPrice).To(Equal(480.0))
			Expect(server.TotalMaintenanceCost).To(Equal(53.0))
			Expect(server.Network).To(Equal("lan"))
			Expect(server.OperatingSystem).To(Equal("linux"))
			Expect(server.HealthStatus).To(Equal(model.HealthStatusUnknown))
			Expect(server.RackName).To(Equal("r1"))

			stored, err := s.Server().Get(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(*stored).To(Equal(*server))
		})

		It("never trusts client supplied prices", func() {
			body := []byte(`{"name": "web-01", "rackName": "r1", "totalPrice": 999999, "network": "dmz",
				"components": [{"name": "xeon", "type": "CPU", "price": 1}]}`)
			var form mappers.ServerCreateForm
			Expect(json.Unmarshal(body, &form)).To(Succeed())

			server, err := srv.CreateServer(ctx, form)
			Expect(err).To(BeNil())
			Expect(server.TotalPrice).To(Equal(400.0))
			Expect(server.Network).To(Equal("lan"))
		})

		It("falls back to the supplied operating system and then to N/A", func() {
			server, err := srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:            "web-01",
				Components:      refs("xeon", "CPU"),
				OperatingSystem: "custom",
				RackName:        "r1",
			})
			Expect(err).To(BeNil())
			Expect(server.OperatingSystem).To(Equal("custom"))

			server, err = srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-02",
				Components: refs("xeon", "CPU"),
				RackName:   "r1",
			})
			Expect(err).To(BeNil())
			Expect(server.OperatingSystem).To(Equal(model.OperatingSystemNone))
		})

		DescribeTable("rejects component lists without a CPU",
			func(components []model.ComponentRef) {
				_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{Name: "web-01", Components: components, RackName: "r1"})
				Expect(err).NotTo(BeNil())
				Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))
				Expect(err.Error()).To(Equal("mandatory component CPU is missing"))

				servers, err := s.Server().List(ctx)
				Expect(err).To(BeNil())
				Expect(servers).To(BeEmpty())
			},
			Entry("empty list", refs()),
			Entry("only ram", refs("ddr4", "RAM")),
			Entry("everything but a cpu", refs("ddr4", "RAM", "ssd", "Storage", "linux", "OS")),
			Entry("cpu typed reference to a non cpu component", refs("ddr4", "CPU")),
		)

		It("checks the cpu gate before existence", func() {
			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-01",
				Components: refs("ghost", "RAM"),
				RackName:   "r1",
			})
			Expect(err).To(MatchError("mandatory component CPU is missing"))
		})

		It("names the first unknown component", func() {
			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-01",
				Components: refs("xeon", "CPU", "ghost", "RAM", "phantom", "GPU"),
				RackName:   "r1",
			})
			Expect(service.KindOf(err)).To(Equal(service.KindValidation))
			Expect(err.Error()).To(Equal("component ghost does not exist"))
		})

		It("rejects incompatible components", func() {
			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-01",
				Components: refs("epyc", "CPU", "board-x", "Motherboard"),
				RackName:   "r1",
			})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))
			Expect(err.Error()).To(Equal("component epyc is not compatible with board-x"))

			_, err = srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-01",
				Components: refs("xeon", "CPU", "board-x", "Motherboard"),
				RackName:   "r1",
			})
			Expect(err).To(BeNil())
		})

		It("requires a rack to infer the network", func() {
			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{Name: "web-01", Components: refs("xeon", "CPU")})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))

			_, err = srv.CreateServer(ctx, mappers.ServerCreateForm{Name: "web-01", Components: refs("xeon", "CPU"), RackName: "nowhere"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))
			Expect(err.Error()).To(ContainSubstring("no workspace owns rack nowhere"))
		})

		It("fails with not found when the inferred network is gone", func() {
			state := baseState()
			state.Networks = nil
			s = newTestStore(state)
			srv = service.NewServerService(s)

			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{Name: "web-01", Components: refs("xeon", "CPU"), RackName: "r1"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})

		It("surfaces the first shape violation", func() {
			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-01",
				Components: refs("xeon", "CPU"),
				RackName:   "r1",
				IPAddress:  "not-an-ip",
			})
			Expect(service.KindOf(err)).To(Equal(service.KindValidation))
			Expect(err.Error()).To(Equal("ipAddress must be a valid IPv4 address"))
		})

		It("rejects a duplicate name with a conflict", func() {
			form := mappers.ServerCreateForm{Name: "web-01", Components: refs("xeon", "CPU"), RackName: "r1"}
			_, err := srv.CreateServer(ctx, form)
			Expect(err).To(BeNil())

			_, err = srv.CreateServer(ctx, form)
			Expect(service.StatusCode(err)).To(Equal(http.StatusConflict))
		})
	})

	Context("update", func() {
		BeforeEach(func() {
			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-01",
				Components: refs("xeon", "CPU", "linux", "OS"),
				RackName:   "r1",
			})
			Expect(err).To(BeNil())
		})

		It("recomputes costs and clears the operating system when its component is dropped", func() {
			components := refs("xeon", "CPU", "ddr4", "RAM")
			server, err := srv.UpdateServer(ctx, "web-01", mappers.ServerUpdateForm{Components: &components})
			Expect(err).To(BeNil())
			Expect(server.TotalPrice).To(Equal(480.0))
			Expect(server.TotalMaintenanceCost).To(Equal(48.0))
			Expect(server.OperatingSystem).To(Equal(model.OperatingSystemNone))
		})

		It("keeps derived fields when only plain fields change", func() {
			description := "frontend"
			health := model.HealthStatusHealthy
			server, err := srv.UpdateServer(ctx, "web-01", mappers.ServerUpdateForm{Description: &description, HealthStatus: &health})
			Expect(err).To(BeNil())
			Expect(server.Description).To(Equal("frontend"))
			Expect(server.HealthStatus).To(Equal(model.HealthStatusHealthy))
			Expect(server.TotalPrice).To(Equal(400.0))
			Expect(server.OperatingSystem).To(Equal("linux"))
			Expect(server.Network).To(Equal("lan"))
		})

		It("validates a new component list", func() {
			components := refs("ddr4", "RAM")
			_, err := srv.UpdateServer(ctx, "web-01", mappers.ServerUpdateForm{Components: &components})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))

			stored, err := s.Server().Get(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(stored.Components).To(Equal([]string{"xeon", "linux"}))
		})

		It("rejects invalid plain fields", func() {
			health := "Sick"
			_, err := srv.UpdateServer(ctx, "web-01", mappers.ServerUpdateForm{HealthStatus: &health})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))
		})

		It("fails with not found for an unknown server", func() {
			_, err := srv.UpdateServer(ctx, "ghost", mappers.ServerUpdateForm{})
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})
	})

	Context("components", func() {
		BeforeEach(func() {
			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{
				Name:       "web-01",
				Components: refs("xeon", "CPU"),
				RackName:   "r1",
			})
			Expect(err).To(BeNil())
		})

		It("adds a component and its cost", func() {
			server, err := srv.AddComponent(ctx, "web-01", model.ComponentRef{Name: "ddr4", Type: "RAM"})
			Expect(err).To(BeNil())
			Expect(server.Components).To(Equal([]string{"xeon", "ddr4"}))
			Expect(server.TotalPrice).To(Equal(480.0))
			Expect(server.TotalMaintenanceCost).To(Equal(48.0))
		})

		It("sets and clears the operating system", func() {
			server, err := srv.AddComponent(ctx, "web-01", model.ComponentRef{Name: "linux", Type: "OS"})
			Expect(err).To(BeNil())
			Expect(server.OperatingSystem).To(Equal("linux"))

			server, err = srv.RemoveComponent(ctx, "web-01", "linux", "OS")
			Expect(err).To(BeNil())
			Expect(server.OperatingSystem).To(Equal(model.OperatingSystemNone))
			Expect(server.TotalMaintenanceCost).To(Equal(40.0))
		})

		It("rejects an unknown component", func() {
			_, err := srv.AddComponent(ctx, "web-01", model.ComponentRef{Name: "ghost", Type: "RAM"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))
		})

		It("rechecks compatibility", func() {
			_, err := srv.AddComponent(ctx, "web-01", model.ComponentRef{Name: "epyc", Type: "CPU"})
			Expect(err).To(BeNil())

			_, err = srv.AddComponent(ctx, "web-01", model.ComponentRef{Name: "board-x", Type: "Motherboard"})
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))
		})

		It("never removes a CPU", func() {
			_, err := srv.AddComponent(ctx, "web-01", model.ComponentRef{Name: "epyc", Type: "CPU"})
			Expect(err).To(BeNil())

			for _, c := range []struct{ name, typ string }{{"xeon", "CPU"}, {"epyc", ""}, {"xeon", "RAM"}} {
				_, err := srv.RemoveComponent(ctx, "web-01", c.name, c.typ)
				Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest), c.name)
			}

			stored, err := s.Server().Get(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(stored.Components).To(Equal([]string{"xeon", "epyc"}))
		})

		It("fails with not found when the component is not attached", func() {
			_, err := srv.RemoveComponent(ctx, "web-01", "ddr4", "RAM")
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})

		It("reports missing display types", func() {
			missing, err := srv.MissingComponents(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(missing).To(Equal([]string{"RAM", "Storage", "Motherboard", "PSU"}))

			_, err = srv.AddComponent(ctx, "web-01", model.ComponentRef{Name: "ssd", Type: "Storage"})
			Expect(err).To(BeNil())
			missing, err = srv.MissingComponents(ctx, "web-01")
			Expect(err).To(BeNil())
			Expect(missing).To(Equal([]string{"RAM", "Motherboard", "PSU"}))
		})
	})

	Context("delete", func() {
		It("detaches the server from its rack", func() {
			_, err := srv.CreateServer(ctx, mappers.ServerCreateForm{Name: "web-01", Components: refs("xeon", "CPU"), RackName: "r1"})
			Expect(err).To(BeNil())
			racks := service.NewRackService(s)
			_, err = racks.AddServer(ctx, baseState().Racks[0].ID, mappers.RackServerForm{Name: "web-01"})
			Expect(err).To(BeNil())

			Expect(srv.DeleteServer(ctx, "web-01")).To(Succeed())

			_, err = s.Server().Get(ctx, "web-01")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
			rack, err := s.Rack().Get(ctx, baseState().Racks[0].ID)
			Expect(err).To(BeNil())
			Expect(rack.Servers).To(BeEmpty())
			Expect(rack.TotalCost).To(Equal(0.0))
		})

		It("fails with not found for an unknown server", func() {
			Expect(service.StatusCode(srv.DeleteServer(ctx, "ghost"))).To(Equal(http.StatusNotFound))
		})
	})
})
