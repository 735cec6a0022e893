package compat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryListerVersions(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"name": "@embroider/core", "versions": {"1.0.0": {}, "1.1.0": {}, "garbage": {}}}`))
	}))
	defer srv.Close()

	l := NewRegistryLister(srv.URL + "/")
	versions, err := l.Versions(context.Background(), "@embroider/core")
	require.NoError(t, err)

	assert.Equal(t, "/@embroider%2Fcore", gotPath)
	assert.Equal(t, "application/vnd.npm.install-v1+json", gotAccept)
	assert.ElementsMatch(t, []string{"1.0.0", "1.1.0"}, versionStrings(versions))
}

func TestRegistryListerNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewRegistryLister(srv.URL).Versions(context.Background(), "missing-pkg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
