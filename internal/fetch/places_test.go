package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

func TestPlaces_Search(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "restaurants in Birmingham AL", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"status":"OK","results":[
			{"name":"Saw's BBQ","formatted_address":"1008 Oxmoor Rd, Homewood, AL 35209",
			 "place_id":"p1","types":["restaurant","food"],
			 "geometry":{"location":{"lat":33.4726,"lng":-86.7976}}},
			{"name":"El Barrio","formatted_address":"2211 2nd Ave N, Birmingham, AL 35203",
			 "place_id":"p2","types":["restaurant"],
			 "geometry":{"location":{"lat":33.5156,"lng":-86.8055}}}
		]}`))
	})
	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "website,menu", r.URL.Query().Get("fields"))
		switch r.URL.Query().Get("place_id") {
		case "p1":
			w.Write([]byte(`{"status":"OK","result":{"website":"https://sawsbbq.com","menu":"https://sawsbbq.com/menu"}}`))
		default:
			w.Write([]byte(`{"status":"NOT_FOUND"}`))
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewPlaces(NewClient(Options{}), PlacesConfig{Key: "test-key", BaseURL: srv.URL})

	records, err := p.Search(context.Background(), "restaurants in Birmingham AL")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Saw's BBQ", first.Get(model.FieldName))
	assert.Equal(t, "1008 Oxmoor Rd, Homewood, AL 35209", first.Get(model.FieldAddress))
	assert.Equal(t, "33.4726", first.Get(model.FieldLatitude))
	assert.Equal(t, "-86.7976", first.Get(model.FieldLongitude))
	assert.Equal(t, "restaurant,food", first.Get(model.FieldCategory))
	assert.Equal(t, "https://sawsbbq.com", first.Get(model.FieldWebsite))
	assert.Equal(t, "https://sawsbbq.com/menu", first.Get(model.FieldMenu))
	assert.Equal(t, "google_places", first.Get(model.FieldSource))

	// A failed details lookup keeps the search hit without a website.
	assert.Equal(t, "El Barrio", records[1].Get(model.FieldName))
	assert.Equal(t, "", records[1].Get(model.FieldWebsite))
	assert.Equal(t, "", records[1].Get(model.FieldMenu))
}

func TestPlaces_SearchZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	p := NewPlaces(NewClient(Options{}), PlacesConfig{Key: "test-key", BaseURL: srv.URL})

	records, err := p.Search(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPlaces_SearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED","results":[]}`))
	}))
	defer srv.Close()

	p := NewPlaces(NewClient(Options{}), PlacesConfig{Key: "bad-key", BaseURL: srv.URL})

	_, err := p.Search(context.Background(), "restaurants")
	assert.ErrorContains(t, err, "REQUEST_DENIED")
}

func TestPlaces_SearchRequiresKey(t *testing.T) {
	p := NewPlaces(NewClient(Options{}), PlacesConfig{})

	_, err := p.Search(context.Background(), "restaurants")
	assert.ErrorContains(t, err, "API key")
}
