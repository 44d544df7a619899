// Package config loads and exposes per-client configuration: route
// tables, truck-type capacities, grouping/adherence/consolidation flags,
// and per-channel overrides. Configuration is loaded once at startup and
// read-only afterwards.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"truckload/internal/domain"
	"truckload/internal/groups"
	"truckload/internal/stacking"
)

// Env is the process-wide environment configuration.
type Env struct {
	FrontendOrigin      string
	GzipMinSize         int
	MaxCamionesCPSat    int
	MaxTiempoPorGrupo   time.Duration
	GroupMaxWorkers     int
	ThreadWorkersNormal int
	ParquetCacheDir     string
	ExcelCacheDisable   bool
}

// ChannelOverride narrows a client's configuration for one sales channel.
type ChannelOverride struct {
	MaxOrdenes     int
	VCUMin         float64
	VCUMinBackhaul float64
}

// ClientConfig is everything one client's optimisation run needs.
type ClientConfig struct {
	Name string

	Routes             groups.RouteConfig
	TruckCapacities    map[domain.TruckType]domain.TruckCapacity
	StackingConfig     stacking.Config
	Budget             groups.BudgetConfig
	AgruparPorPO       bool
	MaxOrdenes         int
	MaxOrdenesCentre   int // walmart multi_cd per-centre cap; zero means no cap
	ValidarAltura      bool
	AdherenciaBackhaul float64
	ModoAdherencia     string
	ChannelOverrides   map[string]ChannelOverride
}

// ForChannel applies a channel override on top of the client's base config,
// returning a copy; the base is left untouched.
func (c ClientConfig) ForChannel(channel string) ClientConfig {
	override, ok := c.ChannelOverrides[channel]
	if !ok {
		return c
	}
	out := c
	if override.MaxOrdenes > 0 {
		out.MaxOrdenes = override.MaxOrdenes
	}
	if override.VCUMin > 0 {
		paquetera := out.TruckCapacities[domain.TruckPaquetera]
		paquetera.MinVCU = override.VCUMin
		out.TruckCapacities = cloneCapacities(out.TruckCapacities)
		out.TruckCapacities[domain.TruckPaquetera] = paquetera
	}
	return out
}

func cloneCapacities(in map[domain.TruckType]domain.TruckCapacity) map[domain.TruckType]domain.TruckCapacity {
	out := make(map[domain.TruckType]domain.TruckCapacity, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Registry holds every client's configuration, loaded once at startup.
type Registry struct {
	clients map[string]ClientConfig
	env     Env
}

// Client looks up a client's configuration by name.
func (r *Registry) Client(name string) (ClientConfig, error) {
	cfg, ok := r.clients[strings.ToLower(name)]
	if !ok {
		return ClientConfig{}, fmt.Errorf("unknown client %q", name)
	}
	return cfg, nil
}

// Env returns the process environment configuration.
func (r *Registry) Env() Env {
	return r.env
}

// Load builds the Registry from per-client YAML files plus environment
// variable overrides. Each clientFiles entry (client name to file path)
// becomes one ClientConfig entry keyed by the lower-cased name; configDir
// is not read.
func Load(configDir string, clientFiles map[string]string) (*Registry, error) {
	clients := make(map[string]ClientConfig, len(clientFiles))
	for name, path := range clientFiles {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading client %s from %s: %w", name, path, err)
		}
		cfg, err := decodeClientConfig(name, k)
		if err != nil {
			return nil, fmt.Errorf("config: decoding client %s: %w", name, err)
		}
		clients[strings.ToLower(name)] = cfg
	}

	envK := koanf.New(".")
	_ = envK.Load(confmap.Provider(defaultEnvValues(), "."), nil)
	_ = envK.Load(env.Provider("", ".", strings.ToUpper), nil)

	return &Registry{
		clients: clients,
		env:     decodeEnv(envK),
	}, nil
}

func defaultEnvValues() map[string]interface{} {
	return map[string]interface{}{
		"GZIP_MIN_SIZE":          1024,
		"MAX_CAMIONES_CP_SAT":    20,
		"MAX_TIEMPO_POR_GRUPO":   "30s",
		"GROUP_MAX_WORKERS":      8,
		"THREAD_WORKERS_NORMAL":  8,
		"PARQUET_CACHE_DIR":      "",
		"EXCEL_CACHE_DISABLE":    false,
		"FRONTEND_ORIGIN":        "*",
	}
}

func decodeEnv(k *koanf.Koanf) Env {
	timeout, err := time.ParseDuration(k.String("MAX_TIEMPO_POR_GRUPO"))
	if err != nil {
		timeout = 30 * time.Second
	}
	return Env{
		FrontendOrigin:      k.String("FRONTEND_ORIGIN"),
		GzipMinSize:         k.Int("GZIP_MIN_SIZE"),
		MaxCamionesCPSat:    k.Int("MAX_CAMIONES_CP_SAT"),
		MaxTiempoPorGrupo:   timeout,
		GroupMaxWorkers:     k.Int("GROUP_MAX_WORKERS"),
		ThreadWorkersNormal: k.Int("THREAD_WORKERS_NORMAL"),
		ParquetCacheDir:     k.String("PARQUET_CACHE_DIR"),
		ExcelCacheDisable:   k.Bool("EXCEL_CACHE_DISABLE"),
	}
}
