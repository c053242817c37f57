package fetch

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// NominatimConfig configures the reverse geocoder.
type NominatimConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// Nominatim resolves coordinates to display addresses. Lookups are
// serialized by the shared client's 1 rps limiter per the OSM usage policy.
type Nominatim struct {
	client *Client
	cfg    NominatimConfig
}

// NewNominatim creates a Nominatim reverse geocoder.
func NewNominatim(client *Client, cfg NominatimConfig) *Nominatim {
	if cfg.URL == "" {
		cfg.URL = "https://nominatim.openstreetmap.org/reverse"
	}
	return &Nominatim{client: client, cfg: cfg}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse returns the display address for a coordinate pair, or "" when
// Nominatim has nothing.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon string) (string, error) {
	var resp nominatimResponse
	params := url.Values{
		"lat":    {lat},
		"lon":    {lon},
		"format": {"jsonv2"},
	}
	if err := n.client.GetJSON(ctx, n.cfg.URL, params, &resp); err != nil {
		return "", eris.Wrap(err, "nominatim: reverse geocode")
	}
	return resp.DisplayName, nil
}

// FillAddresses backfills the address field, in place, for records that have
// coordinates but no address. Returns the number of records updated.
// Failures on individual records are logged and skipped so one bad lookup
// does not abort the batch.
func (n *Nominatim) FillAddresses(ctx context.Context, records []model.Record) (int, error) {
	filled := 0
	for _, r := range records {
		if r.Has(model.FieldAddress) || !r.Has(model.FieldLatitude) || !r.Has(model.FieldLongitude) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return filled, eris.Wrap(err, "nominatim: cancelled")
		}

		address, err := n.Reverse(ctx, r.Get(model.FieldLatitude), r.Get(model.FieldLongitude))
		if err != nil {
			zap.L().Warn("nominatim: lookup failed",
				zap.String("name", r.Get(model.FieldName)),
				zap.Error(err),
			)
			continue
		}
		if r.SetIfEmpty(model.FieldAddress, address) {
			filled++
		}
	}

	zap.L().Info("address backfill complete",
		zap.Int("records", len(records)),
		zap.Int("filled", filled),
	)
	return filled, nil
}
