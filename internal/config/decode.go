package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"

	"truckload/internal/domain"
	"truckload/internal/groups"
	"truckload/internal/stacking"
)

// defaultTotalTimeout bounds a whole pipeline run when the client file
// does not set total_timeout.
const defaultTotalTimeout = 150 * time.Second

type rawRouteEntry struct {
	Origins    []string `koanf:"origins"`
	Centres    []string `koanf:"centres"`
	TruckTypes []string `koanf:"truck_types"`
	Flow       string   `koanf:"flow"`
	FlowTags   []string `koanf:"flow_tags"`
	NoFlow     bool     `koanf:"no_flow"`
}

type rawCapacity struct {
	WeightKg       float64 `koanf:"weight_kg"`
	VolumeM3       float64 `koanf:"volume_m3"`
	MaxPositions   int     `koanf:"max_positions"`
	MaxPallets     float64 `koanf:"max_pallets"`
	VerticalLevels int     `koanf:"vertical_levels"`
	MinVCU         float64 `koanf:"min_vcu"`
	HeightCm       float64 `koanf:"height_cm"`
}

type rawChannelOverride struct {
	MaxOrdenes     int     `koanf:"max_ordenes"`
	VCUMin         float64 `koanf:"vcu_min"`
	VCUMinBackhaul float64 `koanf:"vcu_min_backhaul"`
}

type rawClientConfig struct {
	UsaOC                   bool                           `koanf:"usa_oc"`
	AgruparPorPO            bool                           `koanf:"agrupar_por_po"`
	MaxOrdenes              int                            `koanf:"max_ordenes"`
	MaxOrdenesCentre        int                            `koanf:"max_ordenes_centro"`
	ValidarAltura           bool                           `koanf:"validar_altura"`
	PermiteConsolidacion    bool                           `koanf:"permite_consolidacion"`
	MaxSKUsPorPallet        int                            `koanf:"max_skus_por_pallet"`
	AlturaMaxPickingApilado float64                        `koanf:"altura_max_picking_apilado_cm"`
	AdherenciaBackhaul      float64                        `koanf:"adherencia_backhaul"`
	ModoAdherencia          string                         `koanf:"modo_adherencia"`
	MixGrupos               [][]string                     `koanf:"mix_grupos"`
	MaxTiempoPorGrupo       string                         `koanf:"max_tiempo_por_grupo"`
	TotalTimeout            string                         `koanf:"total_timeout"`
	Routes                  map[string][]rawRouteEntry     `koanf:"rutas_posibles"`
	BinpackingTiposRuta     []string                       `koanf:"binpacking_tipos_ruta"`
	TruckTypes              map[string]rawCapacity         `koanf:"truck_types"`
	ChannelConfig           map[string]rawChannelOverride  `koanf:"channel_config"`
}

func decodeClientConfig(name string, k *koanf.Koanf) (ClientConfig, error) {
	var raw rawClientConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return ClientConfig{}, err
	}

	capacities := make(map[domain.TruckType]domain.TruckCapacity, len(raw.TruckTypes))
	for typeName, rc := range raw.TruckTypes {
		tt, err := parseTruckType(typeName)
		if err != nil {
			return ClientConfig{}, err
		}
		capacities[tt] = domain.TruckCapacity{
			WeightKg:       rc.WeightKg,
			VolumeM3:       rc.VolumeM3,
			MaxPositions:   rc.MaxPositions,
			MaxPallets:     rc.MaxPallets,
			VerticalLevels: rc.VerticalLevels,
			MinVCU:         rc.MinVCU,
			HeightCm:       rc.HeightCm,
		}
	}

	routes := make(map[domain.RouteType][]domain.RouteTableEntry, len(raw.Routes))
	for routeName, entries := range raw.Routes {
		rt, err := parseRouteType(routeName)
		if err != nil {
			return ClientConfig{}, err
		}
		for _, e := range entries {
			allowed := make([]domain.TruckType, 0, len(e.TruckTypes))
			for _, tn := range e.TruckTypes {
				tt, err := parseTruckType(tn)
				if err != nil {
					return ClientConfig{}, err
				}
				allowed = append(allowed, tt)
			}
			routes[rt] = append(routes[rt], domain.RouteTableEntry{
				Origins:           e.Origins,
				Centres:           e.Centres,
				AllowedTruckTypes: allowed,
				FlowFilter:        parseFlowFilter(e),
			})
		}
	}

	binpackingRoutes := make([]domain.RouteType, 0, len(raw.BinpackingTiposRuta))
	for _, rn := range raw.BinpackingTiposRuta {
		rt, err := parseRouteType(rn)
		if err != nil {
			return ClientConfig{}, err
		}
		binpackingRoutes = append(binpackingRoutes, rt)
	}

	channelOverrides := make(map[string]ChannelOverride, len(raw.ChannelConfig))
	for channel, o := range raw.ChannelConfig {
		channelOverrides[channel] = ChannelOverride{
			MaxOrdenes:     o.MaxOrdenes,
			VCUMin:         o.VCUMin,
			VCUMinBackhaul: o.VCUMinBackhaul,
		}
	}

	maxPerGroup, err := parseDurationOrZero(raw.MaxTiempoPorGrupo)
	if err != nil {
		return ClientConfig{}, err
	}
	totalTimeout, err := parseDurationOrZero(raw.TotalTimeout)
	if err != nil {
		return ClientConfig{}, err
	}
	if totalTimeout <= 0 {
		totalTimeout = defaultTotalTimeout
	}

	return ClientConfig{
		Name: name,
		Routes: groups.RouteConfig{
			Routes:               routes,
			BinpackingRouteTypes: binpackingRoutes,
			UsaOC:                raw.UsaOC,
			MixGrupos:            raw.MixGrupos,
		},
		TruckCapacities: capacities,
		StackingConfig: stacking.Config{
			PermiteConsolidacion:    raw.PermiteConsolidacion,
			MaxSKUsPorPallet:        raw.MaxSKUsPorPallet,
			AlturaMaxPickingApilado: raw.AlturaMaxPickingApilado,
		},
		Budget:             groups.BudgetConfig{TotalTimeout: totalTimeout, MaxPerGroup: maxPerGroup},
		AgruparPorPO:       raw.AgruparPorPO,
		MaxOrdenes:         raw.MaxOrdenes,
		MaxOrdenesCentre:   raw.MaxOrdenesCentre,
		ValidarAltura:      raw.ValidarAltura,
		AdherenciaBackhaul: raw.AdherenciaBackhaul,
		ModoAdherencia:     raw.ModoAdherencia,
		ChannelOverrides:   channelOverrides,
	}, nil
}

func parseFlowFilter(e rawRouteEntry) *domain.FlowFilter {
	switch {
	case e.NoFlow:
		return &domain.FlowFilter{NoFlow: true}
	case e.Flow != "":
		return &domain.FlowFilter{Tag: e.Flow}
	case len(e.FlowTags) > 0:
		return &domain.FlowFilter{Tags: e.FlowTags}
	default:
		return nil
	}
}

func parseDurationOrZero(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func parseRouteType(s string) (domain.RouteType, error) {
	switch strings.ToLower(s) {
	case "normal":
		return domain.RouteNormal, nil
	case "multi_ce":
		return domain.RouteMultiCE, nil
	case "multi_ce_prioridad":
		return domain.RouteMultiCEPriority, nil
	case "multi_cd":
		return domain.RouteMultiCD, nil
	case "backhaul", "backhaul-only", "backhaul_only":
		return domain.RouteBackhaulOnly, nil
	default:
		return 0, fmt.Errorf("unknown route type %q", s)
	}
}

func parseTruckType(s string) (domain.TruckType, error) {
	switch strings.ToLower(s) {
	case "paquetera":
		return domain.TruckPaquetera, nil
	case "rampla_directa":
		return domain.TruckRamplaDirecta, nil
	case "backhaul":
		return domain.TruckBackhaul, nil
	case "mediano":
		return domain.TruckMediano, nil
	case "pequeno", "pequeño":
		return domain.TruckPequeno, nil
	default:
		return 0, fmt.Errorf("unknown truck type %q", s)
	}
}
