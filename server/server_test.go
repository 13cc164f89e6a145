package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dekarrin/greibach/server/api"
	"github.com/dekarrin/greibach/server/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a test secret that is at least thirty-two bytes"

func Test_GNFServer_conversions(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	srv := newTestServer(t, nil)

	// create
	resp := doRequest(t, srv, http.MethodPost, "/conversions", `{"terminals": ["a", "b"], "rules": ["S -> A A | a", "A -> S S | b"], "order": ["A", "S"]}`, "")
	require.Equal(http.StatusCreated, resp.Code, resp.Body.String())

	var created api.ConversionModel
	require.NoError(json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal("S", created.Input.Start)
	require.Len(created.Outcomes, 1)
	assert.Equal([]string{"A", "S"}, created.Outcomes[0].Order)
	require.NotNil(created.Outcomes[0].Grammar)
	assert.Empty(created.Outcomes[0].Error)
	assert.Equal(api.PathPrefix+"/conversions/"+created.ID, created.URI)

	// list
	resp = doRequest(t, srv, http.MethodGet, "/conversions", "", "")
	require.Equal(http.StatusOK, resp.Code)
	var all []api.ConversionModel
	require.NoError(json.Unmarshal(resp.Body.Bytes(), &all))
	require.Len(all, 1)
	assert.Equal(created.ID, all[0].ID)

	// get one
	resp = doRequest(t, srv, http.MethodGet, "/conversions/"+created.ID, "", "")
	require.Equal(http.StatusOK, resp.Code)
	var got api.ConversionModel
	require.NoError(json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(created, got)

	// delete, then it is gone
	resp = doRequest(t, srv, http.MethodDelete, "/conversions/"+created.ID, "", "")
	assert.Equal(http.StatusNoContent, resp.Code)

	resp = doRequest(t, srv, http.MethodGet, "/conversions/"+created.ID, "", "")
	assert.Equal(http.StatusNotFound, resp.Code)

	resp = doRequest(t, srv, http.MethodDelete, "/conversions/"+created.ID, "", "")
	assert.Equal(http.StatusNotFound, resp.Code)
}

func Test_GNFServer_createConversionErrors(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		contentType string
		expect      int
	}{
		{
			name:   "malformed JSON",
			body:   `{"rules": [`,
			expect: http.StatusBadRequest,
		},
		{
			name:        "wrong content type",
			body:        `{"terminals": ["a"], "rules": ["S -> a"]}`,
			contentType: "text/plain",
			expect:      http.StatusBadRequest,
		},
		{
			name:   "no rules",
			body:   `{"terminals": ["a"]}`,
			expect: http.StatusBadRequest,
		},
		{
			name:   "undeclared terminal",
			body:   `{"terminals": ["a"], "rules": ["S -> a b"]}`,
			expect: http.StatusBadRequest,
		},
		{
			name:   "order and all orders together",
			body:   `{"terminals": ["a"], "rules": ["S -> a"], "order": ["S"], "allOrders": true}`,
			expect: http.StatusBadRequest,
		},
		{
			name:   "order missing a variable",
			body:   `{"terminals": ["a", "b"], "rules": ["S -> A A | a", "A -> S S | b"], "order": ["S"]}`,
			expect: http.StatusBadRequest,
		},
		{
			name:   "recursion cannot be removed",
			body:   `{"terminals": ["a"], "rules": ["A -> A a"]}`,
			expect: http.StatusUnprocessableEntity,
		},
		{
			name:   "variable left at head",
			body:   `{"terminals": ["+", "*", "(", ")", "a"], "rules": ["E -> E + T | T", "T -> T * F | F", "F -> ( E ) | a"], "order": ["F", "T", "E"]}`,
			expect: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			srv := newTestServer(t, nil)

			req := httptest.NewRequest(http.MethodPost, api.PathPrefix+"/conversions", strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			} else {
				req.Header.Set("Content-Type", "application/json")
			}
			resp := httptest.NewRecorder()
			srv.Handler().ServeHTTP(resp, req)

			assert.Equal(tc.expect, resp.Code, resp.Body.String())

			// nothing is kept from a failed request
			list := doRequest(t, srv, http.MethodGet, "/conversions", "", "")
			assert.JSONEq(`[]`, list.Body.String())
		})
	}
}

func Test_GNFServer_allOrders(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	srv := newTestServer(t, nil)

	resp := doRequest(t, srv, http.MethodPost, "/conversions", `{"terminals": ["a"], "rules": ["A -> A a | B", "B -> a"], "allOrders": true}`, "")
	require.Equal(http.StatusCreated, resp.Code, resp.Body.String())

	var created api.ConversionModel
	require.NoError(json.Unmarshal(resp.Body.Bytes(), &created))
	assert.True(created.AllOrders)
	assert.Len(created.Outcomes, 2)
}

func Test_GNFServer_cancelledConversion(t *testing.T) {
	assert := assert.New(t)

	srv := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := `{"terminals": ["a", "b"], "rules": ["S -> A A | a", "A -> S S | b"], "allOrders": true}`
	req := httptest.NewRequest(http.MethodPost, api.PathPrefix+"/conversions", strings.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Handler().ServeHTTP(resp, req)

	assert.Equal(http.StatusServiceUnavailable, resp.Code, resp.Body.String())
}

func Test_GNFServer_auth(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	srv := newTestServer(t, []byte(testSecret))
	body := `{"terminals": ["a", "b"], "rules": ["S -> a S | b"]}`

	resp := doRequest(t, srv, http.MethodPost, "/conversions", body, "")
	assert.Equal(http.StatusUnauthorized, resp.Code)

	resp = doRequest(t, srv, http.MethodPost, "/conversions", body, "not-a-token")
	assert.Equal(http.StatusUnauthorized, resp.Code)

	tok, err := token.Generate([]byte(testSecret), "tester", time.Hour)
	require.NoError(err)

	resp = doRequest(t, srv, http.MethodPost, "/conversions", body, tok)
	require.Equal(http.StatusCreated, resp.Code, resp.Body.String())

	var created api.ConversionModel
	require.NoError(json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal("tester", created.Subject)

	// reading does not need a token
	resp = doRequest(t, srv, http.MethodGet, "/conversions/"+created.ID, "", "")
	assert.Equal(http.StatusOK, resp.Code)

	resp = doRequest(t, srv, http.MethodDelete, "/conversions/"+created.ID, "", "")
	assert.Equal(http.StatusUnauthorized, resp.Code)

	resp = doRequest(t, srv, http.MethodDelete, "/conversions/"+created.ID, "", tok)
	assert.Equal(http.StatusNoContent, resp.Code)
}

func Test_GNFServer_info(t *testing.T) {
	testCases := []struct {
		name         string
		secret       []byte
		expectAuthed bool
	}{
		{name: "no secret", secret: nil, expectAuthed: false},
		{name: "with secret", secret: []byte(testSecret), expectAuthed: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			srv := newTestServer(t, tc.secret)

			resp := doRequest(t, srv, http.MethodGet, "/info", "", "")
			require.Equal(http.StatusOK, resp.Code)

			var info api.InfoModel
			require.NoError(json.Unmarshal(resp.Body.Bytes(), &info))
			assert.Equal(tc.expectAuthed, info.AuthRequired)
			assert.NotEmpty(info.Version.Server)
			assert.NotEmpty(info.Version.Converter)
		})
	}
}

func Test_GNFServer_routing(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		path   string
		expect int
	}{
		{name: "unknown path", method: http.MethodGet, path: "/grammars", expect: http.StatusNotFound},
		{name: "id is not a uuid", method: http.MethodGet, path: "/conversions/12", expect: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: "/conversions", expect: http.StatusMethodNotAllowed},
		{name: "trailing slash on info", method: http.MethodGet, path: "/info/", expect: http.StatusPermanentRedirect},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, nil)

			resp := doRequest(t, srv, tc.method, tc.path, "", "")

			assert.Equal(t, tc.expect, resp.Code)
		})
	}
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "secret", cfg: Config{TokenSecret: []byte(testSecret)}},
		{name: "short secret", cfg: Config{TokenSecret: []byte("short")}, expectErr: true},
		{name: "long secret", cfg: Config{TokenSecret: []byte(strings.Repeat("s", MaxSecretSize+1))}, expectErr: true},
		{name: "sqlite without dir", cfg: Config{DB: Database{Type: DatabaseSQLite}}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.FillDefaults().Validate()

			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_ParseDBConnString(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Database
		expectErr bool
	}{
		{name: "inmem", input: "inmem", expect: Database{Type: DatabaseInMemory}},
		{name: "sqlite", input: "sqlite:/data", expect: Database{Type: DatabaseSQLite, DataDir: "/data"}},
		{name: "sqlite without dir", input: "sqlite", expectErr: true},
		{name: "inmem with params", input: "inmem:/data", expectErr: true},
		{name: "none", input: "none", expectErr: true},
		{name: "unknown engine", input: "postgres:db", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ParseDBConnString(tc.input)

			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func newTestServer(t *testing.T, secret []byte) *GNFServer {
	srv, err := New(Config{TokenSecret: secret, UnauthDelayMillis: -1, Workers: 2}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

// doRequest sends a request to the API path under the API prefix. tok is sent
// as a bearer token if not empty.
func doRequest(t *testing.T, srv *GNFServer, method, path, body, tok string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, api.PathPrefix+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, api.PathPrefix+path, nil)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp := httptest.NewRecorder()
	srv.Handler().ServeHTTP(resp, req)
	return resp
}
