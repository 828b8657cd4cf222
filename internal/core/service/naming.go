package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/berfenger/eta2mqtt/internal/config"
	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/internal/core/port"
	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	UNKNOWN_NAME     = "unknown"
	ENTITY_ID_PREFIX = "eta_"
)

// MenuNameResolver looks up display names in the controller menu tree.
type MenuNameResolver struct {
	Menu          *eta_rest.Menu
	IncludeParent bool
}

func (r MenuNameResolver) Resolve(uri string) string {
	if r.Menu == nil {
		return UNKNOWN_NAME
	}
	name := UNKNOWN_NAME
	r.Menu.Walk(func(node, parent *eta_rest.MenuNode) bool {
		if node.URI != uri {
			return true
		}
		name = node.Name
		if r.IncludeParent && parent != nil && parent.Name != "" {
			name = parent.Name + " " + node.Name
		}
		return false
	})
	return name
}

// UniqueId is stable across restarts: it only depends on the controller
// serial numbers and the display name.
func UniqueId(serial1, serial2, name string) string {
	return fmt.Sprintf("eta_%s.%s.%s", serial1, serial2, strings.ReplaceAll(name, " ", "_"))
}

// EntityIdGenerator hands out entity ids derived from display names,
// appending _2, _3... when a name was already taken.
type EntityIdGenerator struct {
	used map[string]bool
}

func NewEntityIdGenerator() *EntityIdGenerator {
	return &EntityIdGenerator{used: make(map[string]bool)}
}

func (g *EntityIdGenerator) Generate(name string) string {
	base := ENTITY_ID_PREFIX + slugify(name)
	id := base
	for n := 2; g.used[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	g.used[id] = true
	return id
}

func slugify(name string) string {
	s := strings.ReplaceAll(strings.ToLower(name), "ß", "ss")
	// transformers are stateful, build one per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if t, _, err := transform.String(stripMarks, s); err == nil {
		s = t
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '_' || r == '-' || r == '.':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "_")
	if slug == "" {
		return UNKNOWN_NAME
	}
	return slug
}

// BindSensors resolves names and identifiers for every endpoint. Order is
// preserved. Endpoints with an explicit name skip the menu lookup.
func BindSensors(endpoints []domain.Endpoint, info *eta_rest.ControllerInfo, resolver port.NameResolver) []domain.ETASensor {
	ids := NewEntityIdGenerator()
	sensors := make([]domain.ETASensor, 0, len(endpoints))
	for _, e := range endpoints {
		name := e.Name
		if name == "" {
			name = resolver.Resolve(e.URI)
		}
		name += e.NameSuffix
		sensors = append(sensors, domain.ETASensor{
			Endpoint: e.WithDefaults(),
			Id:       ids.Generate(name),
			Name:     name,
			UniqueId: UniqueId(info.Serial1, info.Serial2, name),
		})
	}
	return sensors
}

// DuplicateUniqueIds lists unique ids shared by more than one sensor.
func DuplicateUniqueIds(sensors []domain.ETASensor) []string {
	seen := make(map[string]int)
	var dups []string
	for _, s := range sensors {
		seen[s.UniqueId]++
		if seen[s.UniqueId] == 2 {
			dups = append(dups, s.UniqueId)
		}
	}
	return dups
}

func EndpointsFromConfig(sensors []config.SensorConfig) []domain.Endpoint {
	if len(sensors) == 0 {
		return domain.DefaultEndpoints()
	}
	endpoints := make([]domain.Endpoint, 0, len(sensors))
	for _, s := range sensors {
		endpoints = append(endpoints, domain.Endpoint{
			URI:         s.URI,
			Name:        s.Name,
			NameSuffix:  s.NameSuffix,
			Unit:        s.Unit,
			DeviceClass: s.DeviceClass,
			StateClass:  s.StateClass,
			Factor:      s.Factor,
			Decimals:    s.Decimals,
		}.WithDefaults())
	}
	return endpoints
}

// ensure interface compliance
var _ port.NameResolver = MenuNameResolver{}
