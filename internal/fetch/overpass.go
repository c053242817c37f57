package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// BBox is a lat/lon bounding box in Overpass order: south, west, north, east.
type BBox struct {
	South float64 `yaml:"south" mapstructure:"south"`
	West  float64 `yaml:"west" mapstructure:"west"`
	North float64 `yaml:"north" mapstructure:"north"`
	East  float64 `yaml:"east" mapstructure:"east"`
}

// bounds converts the box to a go-geom XY bounds (x=lon, y=lat).
func (b BBox) bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(b.West, b.South, b.East, b.North)
}

func (b BBox) query() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", b.South, b.West, b.North, b.East)
}

// OverpassConfig configures the Overpass fetcher.
type OverpassConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
	// QueryBox is the wide box sent to Overpass; StrictBox is the tighter
	// city-limits filter applied to the response. Points between the two
	// only pass when their addr:city tag names the city.
	QueryBox  BBox   `yaml:"query_box" mapstructure:"query_box"`
	StrictBox BBox   `yaml:"strict_box" mapstructure:"strict_box"`
	City      string `yaml:"city" mapstructure:"city"`
}

// Overpass fetches OSM features and maps them to dataset records.
type Overpass struct {
	client *Client
	cfg    OverpassConfig
	strict *geom.Bounds
}

// NewOverpass creates an Overpass fetcher.
func NewOverpass(client *Client, cfg OverpassConfig) *Overpass {
	if cfg.URL == "" {
		cfg.URL = "https://overpass-api.de/api/interpreter"
	}
	return &Overpass{client: client, cfg: cfg, strict: cfg.StrictBox.bounds()}
}

// osmElement is one feature in an Overpass JSON response. Ways and relations
// carry their centroid in Center.
type osmElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *osmCenter        `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type osmCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []osmElement `json:"elements"`
}

// buildQuery assembles the OverpassQL statement for a dataset kind.
func (o *Overpass) buildQuery(kind model.Kind) string {
	box := o.cfg.QueryBox.query()

	var b strings.Builder
	b.WriteString("[out:json][timeout:180];\n(\n")
	switch kind {
	case model.KindHikes:
		for _, selector := range []string{
			`node["leisure"="park"]`,
			`way["leisure"="park"]`,
			`node["leisure"="nature_reserve"]`,
			`way["leisure"="nature_reserve"]`,
			`node["leisure"="trailhead"]`,
			`way["leisure"="trailhead"]`,
			`relation["route"="hiking"]`,
		} {
			fmt.Fprintf(&b, "  %s%s;\n", selector, box)
		}
	default:
		for _, element := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s[\"amenity\"=\"restaurant\"]%s;\n", element, box)
		}
	}
	b.WriteString(");\nout center tags;")
	return b.String()
}

// Fetch queries Overpass for the kind's features and returns dataset
// records for the ones inside the configured city.
func (o *Overpass) Fetch(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	query := o.buildQuery(kind)

	var resp overpassResponse
	form := url.Values{"data": {query}}
	if err := o.client.PostFormJSON(ctx, o.cfg.URL, form, &resp); err != nil {
		return nil, eris.Wrap(err, "overpass: query")
	}

	records := make([]model.Record, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if r, ok := o.toRecord(kind, el); ok {
			records = append(records, r)
		}
	}

	zap.L().Info("overpass fetch complete",
		zap.String("kind", string(kind)),
		zap.Int("elements", len(resp.Elements)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (o *Overpass) toRecord(kind model.Kind, el osmElement) (model.Record, bool) {
	name := el.Tags["name"]
	if name == "" {
		return nil, false
	}

	lat, lon, ok := elementLatLon(el)
	if !ok || !o.inCity(el.Tags, lat, lon) {
		return nil, false
	}

	latStr := strconv.FormatFloat(lat, 'f', -1, 64)
	lonStr := strconv.FormatFloat(lon, 'f', -1, 64)

	r := model.Record{
		model.FieldName:      name,
		model.FieldAddress:   buildAddress(el.Tags),
		model.FieldLatitude:  latStr,
		model.FieldLongitude: lonStr,
		model.FieldHours:     el.Tags["opening_hours"],
		model.FieldWebsite:   pickWebsite(el.Tags),
		model.FieldPhone:     pickPhone(el.Tags),
		model.FieldSource:    "osm",
		model.FieldMapsLink:  mapsLinkFromCoords(name, latStr, lonStr),
	}

	switch kind {
	case model.KindHikes:
		r[model.FieldType] = hikeType(el.Tags)
	default:
		r[model.FieldCuisine] = el.Tags["cuisine"]
	}

	return r, true
}

// inCity applies the strict-bounds filter: an explicit addr:city tag decides
// directly, otherwise the coordinates must fall inside the strict box.
func (o *Overpass) inCity(tags map[string]string, lat, lon float64) bool {
	if city := tags["addr:city"]; city != "" {
		return strings.EqualFold(city, o.cfg.City)
	}
	return o.strict.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

func elementLatLon(el osmElement) (lat, lon float64, ok bool) {
	if el.Lat != 0 || el.Lon != 0 {
		return el.Lat, el.Lon, true
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

// buildAddress composes a display address from OSM addr:* tags.
func buildAddress(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])

	parts := make([]string, 0, 4)
	for _, p := range []string{street, tags["addr:city"], tags["addr:state"], tags["addr:postcode"]} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func pickWebsite(tags map[string]string) string {
	for _, key := range []string{"website", "contact:website", "url", "contact:url"} {
		if tags[key] != "" {
			return tags[key]
		}
	}
	return ""
}

func pickPhone(tags map[string]string) string {
	if tags["phone"] != "" {
		return tags["phone"]
	}
	return tags["contact:phone"]
}

// hikeType derives a human label for an outdoor feature, most specific
// tag first.
func hikeType(tags map[string]string) string {
	switch {
	case tags["route"] == "hiking":
		return "Hiking Route"
	case tags["leisure"] == "trailhead":
		return "Trailhead"
	case tags["tourism"] == "viewpoint":
		return "Viewpoint"
	case tags["leisure"] == "nature_reserve":
		return "Nature Reserve"
	case tags["leisure"] == "park":
		return "Park"
	case tags["leisure"] != "":
		return tags["leisure"]
	case tags["tourism"] != "":
		return tags["tourism"]
	}
	return "Outdoor"
}

func mapsLinkFromCoords(name, lat, lon string) string {
	query := name + " " + lat + "," + lon
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}
