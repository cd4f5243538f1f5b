package myfitnesspal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/food/note", r.URL.Path)
		require.Equal(t, "2023-05-10", r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"item": {"body": "fish &amp;amp; chips", "type": "food", "date": "2023-05-10"}}`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	note, err := client.Notes(context.Background(), day(10))
	require.NoError(t, err)
	// note bodies arrive double entity-encoded
	require.Equal(t, "fish & chips", note.Body)
	require.Equal(t, "food", note.Type)
	require.Equal(t, day(10), note.Date)
	require.Equal(t, "fish & chips", note.String())
}

func TestWater(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/food/water", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"item": {"milliliters": 1250}}`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	ml, err := client.Water(context.Background(), day(10))
	require.NoError(t, err)
	require.Equal(t, 1250.0, ml)
}

func TestReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/services/reports/results/nutrition/Net Calories/9.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"outcome": {"results": [
			{"total": 1800}, {"total": 1900}, {"total": 2000},
			{"total": 2100}, {"total": 2200}, {"total": 2300},
			{"total": 1700}, {"total": 1600}, {"total": 1500}
		]}}`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)
	client.Now = func() time.Time { return day(10) }

	entries, err := client.Report(context.Background(), "Net Calories", "Nutrition", day(1), day(10))
	require.NoError(t, err)
	require.Len(t, entries, 9)

	// dates are reconstructed from position, ending on today
	require.Equal(t, day(2), entries[0].Date)
	require.Equal(t, 1800.0, entries[0].Value)
	require.Equal(t, day(10), entries[8].Date)
	require.Equal(t, 1500.0, entries[8].Value)
}

func TestReportEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"outcome": {"results": []}}`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)
	client.Now = func() time.Time { return day(10) }

	_, err = client.Report(context.Background(), "Net Calories", "Nutrition", day(1), day(10))
	require.Error(t, err)
}
