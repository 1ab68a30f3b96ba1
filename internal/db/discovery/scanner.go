package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

// Probe is a driver expected to listen on a port
type Probe struct {
	Driver string
	Port   int
}

// DefaultProbes are the well-known SQL Server and PostgreSQL ports
var DefaultProbes = []Probe{
	{Driver: models.DriverSQLServer, Port: 1433},
	{Driver: models.DriverPostgres, Port: 5432},
}

// Scanner discovers listening database servers
type Scanner struct {
	timeout time.Duration
}

// NewScanner creates a new scanner
func NewScanner(timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &Scanner{timeout: timeout}
}

// Scan probes host concurrently and returns the open ports in probe order
func (s *Scanner) Scan(ctx context.Context, host string, probes []Probe) []models.DiscoveredInstance {
	if len(probes) == 0 {
		probes = DefaultProbes
	}

	results := make([]models.DiscoveredInstance, len(probes))
	var wg sync.WaitGroup
	for i, probe := range probes {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			results[i] = s.scanPort(ctx, host, p)
		}(i, probe)
	}
	wg.Wait()

	instances := make([]models.DiscoveredInstance, 0, len(probes))
	for _, instance := range results {
		if instance.Available {
			instances = append(instances, instance)
		}
	}
	return instances
}

// scanPort checks if a port accepts TCP connections
func (s *Scanner) scanPort(ctx context.Context, host string, probe Probe) models.DiscoveredInstance {
	instance := models.DiscoveredInstance{
		Driver: probe.Driver,
		Host:   host,
		Port:   probe.Port,
		Source: models.SourcePortScan,
	}

	start := time.Now()
	dialer := &net.Dialer{Timeout: s.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, fmt.Sprint(probe.Port)))
	instance.ResponseTime = time.Since(start)
	if err != nil {
		return instance
	}

	_ = conn.Close()
	instance.Available = true
	return instance
}

// ScanLocalhost probes the default ports on localhost
func (s *Scanner) ScanLocalhost(ctx context.Context) []models.DiscoveredInstance {
	return s.Scan(ctx, "localhost", DefaultProbes)
}
