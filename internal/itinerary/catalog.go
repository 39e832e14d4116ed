package itinerary

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"grassmap/internal/models/domain_models"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// PointType describes how a grass point category is displayed and summarised.
type PointType struct {
	Key       string   `yaml:"key" json:"key"`
	Label     string   `yaml:"label" json:"label"`
	Aliases   []string `yaml:"aliases" json:"-"`
	Icon      string   `yaml:"icon" json:"icon"`
	Color     string   `yaml:"color" json:"color"`
	Summaries []string `yaml:"summaries" json:"-"`
}

type City struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Catalog holds the locale data the parser heuristics and the share flow
// depend on: point types, the known city shortlist and title markers.
type Catalog struct {
	DefaultTitle   string      `yaml:"default_title"`
	UnknownCity    string      `yaml:"unknown_city"`
	DayTripMarkers []string    `yaml:"day_trip_markers"`
	Types          []PointType `yaml:"types"`
	Cities         []City      `yaml:"cities"`

	typeIndex map[string]int
	cityIndex map[string]string
	cityRe    *regexp.Regexp
	titleRe   *regexp.Regexp
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// titleQuotes are the opening/closing pairs a quoted plan title may use.
var titleQuotes = [][2]string{{`"`, `"`}, {"“", "”"}, {"「", "」"}, {"'", "'"}}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(embeddedCatalog)
		if err != nil {
			panic(fmt.Sprintf("itinerary: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.typeIndex = make(map[string]int)
	for i, t := range c.Types {
		c.typeIndex[strings.ToLower(t.Key)] = i
		c.typeIndex[strings.ToLower(t.Label)] = i
		for _, alias := range t.Aliases {
			c.typeIndex[strings.ToLower(alias)] = i
		}
	}
	if _, ok := c.typeIndex[domain_models.DefaultPointType]; !ok {
		return fmt.Errorf("catalog has no %q type", domain_models.DefaultPointType)
	}

	c.cityIndex = make(map[string]string)
	var alternatives []string
	for _, city := range c.Cities {
		for _, alias := range append([]string{city.Name}, city.Aliases...) {
			key := strings.ToLower(alias)
			if _, seen := c.cityIndex[key]; seen {
				continue
			}
			c.cityIndex[key] = city.Name
			alternatives = append(alternatives, regexp.QuoteMeta(alias))
		}
	}
	if len(alternatives) > 0 {
		c.cityRe = regexp.MustCompile(`(?i)(` + strings.Join(alternatives, "|") + `)`)
	}

	if len(c.DayTripMarkers) > 0 {
		markers := make([]string, 0, len(c.DayTripMarkers))
		for _, m := range c.DayTripMarkers {
			markers = append(markers, regexp.QuoteMeta(m))
		}
		marker := `(?:` + strings.Join(markers, "|") + `)`
		pairs := make([]string, 0, len(titleQuotes))
		for _, q := range titleQuotes {
			open, closing := regexp.QuoteMeta(q[0]), regexp.QuoteMeta(q[1])
			body := `[^` + closing + `\n]*?`
			pairs = append(pairs, open+`(`+body+marker+body+`)`+closing)
		}
		c.titleRe = regexp.MustCompile(`(?i)` + strings.Join(pairs, "|"))
	}
	return nil
}

// PointType resolves a free-form type tag. Unknown tags resolve to "other".
func (c *Catalog) PointType(tag string) PointType {
	if i, ok := c.typeIndex[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return c.Types[i]
	}
	return c.Types[c.typeIndex[domain_models.DefaultPointType]]
}

// CatalogHeuristics derives plan titles and cities from assistant text using
// the catalog's markers and closed city list.
type CatalogHeuristics struct {
	catalog *Catalog
}

func NewCatalogHeuristics(c *Catalog) *CatalogHeuristics {
	if c == nil {
		c = DefaultCatalog()
	}
	return &CatalogHeuristics{catalog: c}
}

func (h *CatalogHeuristics) Title(text string) string {
	if h.catalog.titleRe != nil {
		if m := h.catalog.titleRe.FindStringSubmatch(text); m != nil {
			for _, group := range m[1:] {
				if title := strings.TrimSpace(group); title != "" {
					return title
				}
			}
		}
	}
	firstLine, _, _ := strings.Cut(text, "\n")
	if title := strings.TrimSpace(firstLine); title != "" {
		return title
	}
	return h.catalog.DefaultTitle
}

func (h *CatalogHeuristics) City(text string) string {
	if h.catalog.cityRe != nil {
		if m := h.catalog.cityRe.FindString(text); m != "" {
			return h.catalog.cityIndex[strings.ToLower(m)]
		}
	}
	return h.catalog.UnknownCity
}
