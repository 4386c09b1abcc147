package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DoSendsQueryAndToken(t *testing.T) {
	var gotAuth string
	var gotReq request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"data":{"bookCount":7}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.SetToken("abc")

	var out struct {
		BookCount int `json:"bookCount"`
	}
	require.NoError(t, c.Do(context.Background(), "{ bookCount }", map[string]interface{}{"x": 1}, &out))

	assert.Equal(t, 7, out.BookCount)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "{ bookCount }", gotReq.Query)
	assert.EqualValues(t, 1, gotReq.Variables["x"])
}

func TestClient_AnonymousSendsNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"me":null}}`))
	}))
	defer srv.Close()

	var out struct{ Me *struct{} }
	require.NoError(t, NewClient(srv.URL, nil).Do(context.Background(), "{ me { username } }", nil, &out))
	assert.Nil(t, out.Me)
}

func TestClient_SurfacesErrorCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"not authenticated","path":["addBook"],"extensions":{"code":"UNAUTHENTICATED"}}],"data":{"addBook":null}}`))
	}))
	defer srv.Close()

	var out struct {
		AddBook *struct{ Title string } `json:"addBook"`
	}
	err := NewClient(srv.URL, nil).Do(context.Background(), "mutation", nil, &out)

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeUnauthenticated))
	assert.False(t, HasCode(err, CodeBadUserInput))
	assert.Equal(t, "graphql: not authenticated (UNAUTHENTICATED)", err.Error())

	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, []interface{}{"addBook"}, re.Errors[0].Path)
	assert.Nil(t, out.AddBook)
}

func TestClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Do(context.Background(), "{ bookCount }", nil, nil)
	assert.ErrorContains(t, err, "unexpected status 429")
	assert.False(t, HasCode(err, CodeInternal))
}
