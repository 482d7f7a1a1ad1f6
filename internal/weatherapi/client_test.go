package weatherapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Disabled(t *testing.T) {
	c := NewClient("http://localhost", "", time.Second)
	assert.False(t, c.Enabled())

	_, err := c.Current(context.Background(), 33.95, -83.37)
	require.Error(t, err)
	assert.True(t, IsDisabled(err), "A keyless client should report the disabled error")
}

func TestCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		assert.Equal(t, "33.9500", r.URL.Query().Get("lat"))

		w.Write([]byte(`{
			"dt": 1730000000,
			"main": {"temp": 58.3, "humidity": 62},
			"wind": {"speed": 9.2, "deg": 270},
			"weather": [{"main": "Clouds"}],
			"rain": {"1h": 2.54}
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", 5*time.Second)
	obs, err := c.Current(context.Background(), 33.95, -83.37)
	require.NoError(t, err)

	assert.Equal(t, 58.3, obs.Temperature)
	assert.Equal(t, 9.2, obs.WindSpeed)
	assert.Equal(t, 270, obs.WindDegrees)
	assert.Equal(t, "Clouds", obs.Condition)
	assert.InDelta(t, 0.1, obs.Precipitation, 1e-9, "2.54mm of rain should convert to 0.1 inches")
	assert.Equal(t, time.Unix(1730000000, 0).UTC(), obs.Timestamp)
}

func TestForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		w.Write([]byte(`{"list": [
			{"dt": 1730000000, "main": {"temp": 55}, "wind": {"speed": 8}},
			{"dt": 1730010800, "main": {"temp": 52}, "wind": {"speed": 11}, "snow": {"3h": 5.08}}
		]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", 5*time.Second)
	entries, err := c.Forecast(context.Background(), 43.0, -89.4)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 55.0, entries[0].Temperature)
	assert.InDelta(t, 0.2, entries[1].Precipitation, 1e-9, "Snow volume should convert to inches")
}

func TestHistorical(t *testing.T) {
	at := time.Date(2025, time.October, 1, 18, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/3.0/onecall/timemachine", r.URL.Path)
		assert.Equal(t, "1759341600", r.URL.Query().Get("dt"))
		w.Write([]byte(`{"data": [{"dt": 1759341600, "main": {"temp": 47}, "wind": {"speed": 14, "deg": 315}}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", 5*time.Second)
	obs, err := c.Historical(context.Background(), 40.8, -96.7, at)
	require.NoError(t, err)
	assert.Equal(t, 47.0, obs.Temperature)
	assert.Equal(t, 315, obs.WindDegrees)
}

func TestHistorical_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", 5*time.Second)
	_, err := c.Historical(context.Background(), 40.8, -96.7, time.Now())
	assert.Error(t, err, "Empty historical payloads should error")
}

func TestGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		assert.Equal(t, "Athens,GA,US", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"lat": 33.96, "lon": -83.38}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", 5*time.Second)
	coords, err := c.Geocode(context.Background(), "Athens,GA")
	require.NoError(t, err)
	assert.Equal(t, 33.96, coords.Latitude)
	assert.Equal(t, -83.38, coords.Longitude)
}

func TestGet_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod": 401}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "bad-key", 5*time.Second)
	_, err := c.Current(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
