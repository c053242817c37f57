package fetch

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/magic-city-guide/poi-cli/internal/ingest"
	"github.com/magic-city-guide/poi-cli/internal/model"
)

// PlacesConfig configures the Google Places fetcher.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// DetailWorkers bounds the concurrent place-details lookups.
	DetailWorkers int `yaml:"detail_workers" mapstructure:"detail_workers"`
}

// Places fetches restaurants from the Google Places API.
type Places struct {
	client *Client
	cfg    PlacesConfig
}

// NewPlaces creates a Places fetcher.
func NewPlaces(client *Client, cfg PlacesConfig) *Places {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if cfg.DetailWorkers <= 0 {
		cfg.DetailWorkers = 4
	}
	return &Places{client: client, cfg: cfg}
}

type placesSearchResponse struct {
	Results []placeResult `json:"results"`
	Status  string        `json:"status"`
}

type placeResult struct {
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	PlaceID          string   `json:"place_id"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type placeDetailsResponse struct {
	Result placeDetails `json:"result"`
	Status string       `json:"status"`
}

type placeDetails struct {
	Website string `json:"website"`
	Menu    string `json:"menu"`
}

// Search runs a text search and resolves each result's details, returning
// dataset records with source "google_places".
func (p *Places) Search(ctx context.Context, query string) ([]model.Record, error) {
	if p.cfg.Key == "" {
		return nil, eris.New("places: API key is required (POI_PLACES_KEY)")
	}

	var search placesSearchResponse
	params := url.Values{"query": {query}, "key": {p.cfg.Key}}
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/textsearch/json", params, &search); err != nil {
		return nil, eris.Wrap(err, "places: text search")
	}
	if search.Status != "OK" && search.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("places: text search status %s", search.Status)
	}

	details := make([]placeDetails, len(search.Results))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.DetailWorkers)
	for i, item := range search.Results {
		g.Go(func() error {
			d, err := p.details(gctx, item.PlaceID)
			if err != nil {
				// Details are enrichment only; log and keep the search hit.
				zap.L().Warn("places: details lookup failed",
					zap.String("place_id", item.PlaceID),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			details[i] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(search.Results))
	for i, item := range search.Results {
		records = append(records, model.Record{
			model.FieldName:      item.Name,
			model.FieldAddress:   item.FormattedAddress,
			model.FieldLatitude:  strconv.FormatFloat(item.Geometry.Location.Lat, 'f', -1, 64),
			model.FieldLongitude: strconv.FormatFloat(item.Geometry.Location.Lng, 'f', -1, 64),
			model.FieldCategory:  strings.Join(item.Types, ","),
			model.FieldWebsite:   details[i].Website,
			model.FieldMenu:      details[i].Menu,
			model.FieldSource:    "google_places",
			model.FieldMapsLink:  ingest.MapsLink(item.Name, item.FormattedAddress),
		})
	}

	zap.L().Info("places search complete",
		zap.String("query", query),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (p *Places) details(ctx context.Context, placeID string) (placeDetails, error) {
	if placeID == "" {
		return placeDetails{}, nil
	}

	var resp placeDetailsResponse
	params := url.Values{
		"place_id": {placeID},
		"key":      {p.cfg.Key},
		"fields":   {"website,menu"},
	}
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/details/json", params, &resp); err != nil {
		return placeDetails{}, err
	}
	if resp.Status != "OK" {
		return placeDetails{}, eris.Errorf("places: details status %s", resp.Status)
	}
	return resp.Result, nil
}
