package discovery

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

// Discoverer coordinates all discovery methods
type Discoverer struct {
	scanner *Scanner
	getenv  Getenv
}

// NewDiscoverer creates a new discoverer. A nil getenv reads the process
// environment.
func NewDiscoverer(timeout time.Duration, getenv Getenv) *Discoverer {
	return &Discoverer{
		scanner: NewScanner(timeout),
		getenv:  getenv,
	}
}

// DiscoverAll runs all discovery methods
func (d *Discoverer) DiscoverAll(ctx context.Context) []models.DiscoveredInstance {
	instances := ParseEnvironment(d.getenv)
	instances = append(instances, d.scanner.ScanLocalhost(ctx)...)

	instances = deduplicateInstances(instances)

	// Sort by source priority
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].Source < instances[j].Source
	})

	return instances
}

// Suggest returns the config of the highest priority instance, or nil
func Suggest(instances []models.DiscoveredInstance) *models.ConnectionConfig {
	for _, instance := range instances {
		if instance.Config != nil {
			cfg := *instance.Config
			return &cfg
		}
	}
	if len(instances) == 0 {
		return nil
	}
	first := instances[0]
	return &models.ConnectionConfig{
		Driver:                 first.Driver,
		Host:                   first.Host,
		Port:                   first.Port,
		Encrypt:                true,
		TrustServerCertificate: true,
	}
}

// Hint renders instances as "driver host:port" for the connect screen
func Hint(instances []models.DiscoveredInstance) string {
	parts := make([]string, 0, len(instances))
	for _, instance := range instances {
		parts = append(parts, instance.Driver+" "+instance.Host+":"+strconv.Itoa(instance.Port)+" ("+instance.Source.String()+")")
	}
	return strings.Join(parts, ", ")
}

// deduplicateInstances removes duplicate host:port combinations
func deduplicateInstances(instances []models.DiscoveredInstance) []models.DiscoveredInstance {
	seen := make(map[string]int)
	result := make([]models.DiscoveredInstance, 0, len(instances))

	for _, instance := range instances {
		key := strings.ToLower(instance.Host) + ":" + strconv.Itoa(instance.Port)

		// Keep the one with higher priority source
		if i, exists := seen[key]; exists {
			if instance.Source < result[i].Source {
				result[i] = instance
			}
			continue
		}
		seen[key] = len(result)
		result = append(result, instance)
	}

	return result
}
