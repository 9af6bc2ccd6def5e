package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Counter reports the number of records per entity.
type Counter interface {
	Counts() (map[string]int, error)
}

var storeEntitiesDesc = prometheus.NewDesc(
	"todograph_store_entities",
	"Records currently held by the store, by entity.",
	[]string{"entity"}, nil,
)

// StoreCollector samples entity counts from a store on every scrape.
type StoreCollector struct {
	store  Counter
	logger Logger
}

var _ prometheus.Collector = (*StoreCollector)(nil)

func NewStoreCollector(store Counter, logger Logger) *StoreCollector {
	return &StoreCollector{store: store, logger: logger}
}

func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- storeEntitiesDesc
}

func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.store.Counts()
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("sampling store counts: %v", err)
		}
		return
	}
	for entity, n := range counts {
		ch <- prometheus.MustNewConstMetric(storeEntitiesDesc, prometheus.GaugeValue, float64(n), entity)
	}
}
