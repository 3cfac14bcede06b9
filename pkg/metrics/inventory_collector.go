package metrics

import (
	"context"
	"fmt"

	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// StatisticsProvider is implemented by the store.
type StatisticsProvider interface {
	Statistics(ctx context.Context) (model.InventoryStats, error)
}

type inventoryStatsCollector struct {
	provider          StatisticsProvider
	totalWorkspaces   *prometheus.Desc
	totalRacks        *prometheus.Desc
	totalServers      *prometheus.Desc
	totalComponents   *prometheus.Desc
	totalServerCost   *prometheus.Desc
	serversByHealth   *prometheus.Desc
	usedUnitsByWspace *prometheus.Desc
}

func NewInventoryStatsCollector(p StatisticsProvider) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_inventory_%s", rackPlanner, name)
	}

	return &inventoryStatsCollector{
		provider: p,
		totalWorkspaces: prometheus.NewDesc(
			fqName("workspaces_total"),
			"Total number of workspaces.",
			nil,
			prometheus.Labels{},
		),
		totalRacks: prometheus.NewDesc(
			fqName("racks_total"),
			"Total number of racks.",
			nil,
			prometheus.Labels{},
		),
		totalServers: prometheus.NewDesc(
			fqName("servers_total"),
			"Total number of servers.",
			nil,
			prometheus.Labels{},
		),
		totalComponents: prometheus.NewDesc(
			fqName("components_total"),
			"Total number of components in the catalog.",
			nil,
			prometheus.Labels{},
		),
		totalServerCost: prometheus.NewDesc(
			fqName("server_price_sum"),
			"Sum of the derived total price of every server.",
			nil,
			prometheus.Labels{},
		),
		serversByHealth: prometheus.NewDesc(
			fqName("servers_by_health_total"),
			"Total servers by health status",
			[]string{"health"},
			prometheus.Labels{},
		),
		usedUnitsByWspace: prometheus.NewDesc(
			fqName("rack_units_used"),
			"Rack units taken by servers per workspace",
			[]string{"workspace"},
			prometheus.Labels{},
		),
	}
}

func (c *inventoryStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalWorkspaces
	ch <- c.totalRacks
	ch <- c.totalServers
	ch <- c.totalComponents
	ch <- c.totalServerCost
	ch <- c.serversByHealth
	ch <- c.usedUnitsByWspace
}

// Collect implements Collector.
func (c *inventoryStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.provider.Statistics(context.Background())
	if err != nil {
		zap.S().Named("inventory_collector").Errorf("failed to collect inventory statistics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalWorkspaces, prometheus.GaugeValue, float64(stats.Workspaces))
	ch <- prometheus.MustNewConstMetric(c.totalRacks, prometheus.GaugeValue, float64(stats.Racks))
	ch <- prometheus.MustNewConstMetric(c.totalServers, prometheus.GaugeValue, float64(stats.Servers))
	ch <- prometheus.MustNewConstMetric(c.totalComponents, prometheus.GaugeValue, float64(stats.Components))
	ch <- prometheus.MustNewConstMetric(c.totalServerCost, prometheus.GaugeValue, stats.TotalServerPrice)

	for health, total := range stats.ServersByHealth {
		ch <- prometheus.MustNewConstMetric(c.serversByHealth, prometheus.GaugeValue, float64(total), health)
	}

	for workspace, used := range stats.UsedUnitsByWorkspace {
		ch <- prometheus.MustNewConstMetric(c.usedUnitsByWspace, prometheus.GaugeValue, float64(used), workspace)
	}
}
