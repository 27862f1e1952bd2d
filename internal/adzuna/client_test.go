package adzuna

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPage_Unauthenticated(t *testing.T) {
	c := NewClient(Options{})
	_, err := c.SearchPage(context.Background(), "electrician", "Toronto", 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSearchPage_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/ca/search/1")
		assert.Equal(t, "electrician", r.URL.Query().Get("what"))
		assert.Equal(t, "Toronto", r.URL.Query().Get("where"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":"101","title":"Electrician","company":{"display_name":"Acme"},
			 "location":{"display_name":"Toronto, ON"},
			 "description":"Red Seal required. 3+ years experience.","redirect_url":"https://x/101"},
			{"id":"","title":"missing id","description":"skipped"},
			{"id":"103","title":"no description","description":""}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{AppID: "id", AppKey: "key", BaseURL: srv.URL})
	got, err := c.SearchPage(context.Background(), "electrician", "Toronto", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "101", got[0].ID)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, "Toronto, ON", got[0].Location)
}

func TestSearchPage_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(Options{AppID: "id", AppKey: "key", BaseURL: srv.URL})
	_, err := c.SearchPage(context.Background(), "welder", "", 1)
	assert.ErrorContains(t, err, "status 403")
}

func TestSearchPage_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(Options{AppID: "id", AppKey: "key", BaseURL: srv.URL})
	_, err := c.SearchPage(ctx, "welder", "", 1)
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Options{AppID: "id", AppKey: "key"})
	assert.Equal(t, "ca", c.country)
	assert.Equal(t, 20, c.pageSize)
	assert.True(t, c.Configured())
}

func TestNewClient_PageSizeCap(t *testing.T) {
	c := NewClient(Options{PageSize: 500})
	assert.Equal(t, 50, c.pageSize)
}
