package astrology

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var birth BirthData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&birth))
		assert.Equal(t, "1990-01-15", birth.Date)

		w.Write([]byte(`{"positions":[{"planet":"Sun","sign":"Capricorn","degree":24.7,"house":10}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	chart, err := client.ComputeChart(context.Background(), BirthData{
		Date: "1990-01-15", Time: "08:30", Lat: -23.55, Lon: -46.63,
	})
	require.NoError(t, err)
	require.Len(t, chart.Positions, 1)
	assert.Equal(t, "Capricorn", chart.Positions[0].Sign)
}

func TestComputeChart_NotConfigured(t *testing.T) {
	client := NewClient("", "")
	_, err := client.ComputeChart(context.Background(), BirthData{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestComputeChart_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	_, err := client.ComputeChart(context.Background(), BirthData{Date: "1990-01-15"})
	assert.Error(t, err)
}

func TestFormatChart(t *testing.T) {
	chart := &Chart{Positions: []PlanetPosition{
		{Planet: "Sun", Sign: "Capricorn", Degree: 24.7, House: 10},
		{Planet: "Moon", Sign: "Pisces", Degree: 3.2},
	}}

	out := FormatChart("Maria", chart)
	assert.Contains(t, out, "Birth chart for Maria")
	assert.Contains(t, out, "Sun in Capricorn (24.7°), house 10")
	assert.Contains(t, out, "Moon in Pisces (3.2°)")

	assert.Empty(t, FormatChart("Maria", nil))
	assert.Empty(t, FormatChart("Maria", &Chart{}))
}
