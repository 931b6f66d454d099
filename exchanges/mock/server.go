package mock

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/thrasher-corp/bfxclient/common/crypto"
	"github.com/thrasher-corp/bfxclient/log"
)

// Exchange error payloads mirrored by the mock
const (
	errInvalidKeyPayload   = `["error",10100,"apikey: invalid"]`
	errNonceSmallPayload   = `["error",10114,"nonce: small"]`
	errRouteMissingPayload = `["error",10020,"request not matched"]`
)

const authPrefix = "/v2/auth/"

var errNoRoutes = errors.New("mock has no routes")

// HTTPResponse is a canned response. QueryString and BodyParams are matched
// against the request when set, BodyParams being compared with the fields of
// the JSON body.
type HTTPResponse struct {
	Data        json.RawMessage `json:"data"`
	QueryString string          `json:"queryString,omitempty"`
	BodyParams  string          `json:"bodyParams,omitempty"`
	StatusCode  int             `json:"statusCode,omitempty"`
}

// VCRMock holds canned responses keyed by path then HTTP method
type VCRMock struct {
	Routes map[string]map[string][]HTTPResponse `json:"routes"`
}

// Server serves a VCRMock and verifies the signature of requests made to
// authenticated paths against one credential pair
type Server struct {
	key    string
	secret []byte

	mu        sync.Mutex
	lastNonce uint64
	nonces    []uint64
}

// NewServer returns a Server for the supplied credentials
func NewServer(key, secret string) *Server {
	return &Server{key: key, secret: []byte(secret)}
}

// Router builds the route table for m
func (s *Server) Router(m *VCRMock) (*mux.Router, error) {
	if m == nil || len(m.Routes) == 0 {
		return nil, errNoRoutes
	}
	router := mux.NewRouter()
	for path, methods := range m.Routes {
		for method, responses := range methods {
			router.
				Methods(method).
				Path(path).
				Handler(s.handler(path, responses))
		}
	}
	return router, nil
}

// Start serves m on a local test listener. Callers must Close the returned
// server.
func (s *Server) Start(m *VCRMock) (*httptest.Server, error) {
	router, err := s.Router(m)
	if err != nil {
		return nil, err
	}
	return httptest.NewServer(router), nil
}

// NewVCRServer loads a VCRMock from a JSON file and starts serving it,
// returning its URL and a client for it
func NewVCRServer(path, key, secret string) (string, *http.Client, error) {
	if path == "" {
		return "", nil, errors.New("no path to mock file set")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var m VCRMock
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, err
	}
	srv, err := NewServer(key, secret).Start(&m)
	if err != nil {
		return "", nil, err
	}
	return srv.URL, srv.Client(), nil
}

// Nonces returns the nonces of every authenticated request that passed
// verification, in arrival order
func (s *Server) Nonces() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, len(s.nonces))
	copy(out, s.nonces)
	return out
}

func (s *Server) handler(path string, responses []HTTPResponse) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeRaw(w, http.StatusBadRequest, []byte(err.Error()))
			return
		}

		if strings.HasPrefix(path, authPrefix) {
			if status, payload := s.verify(r, body); status != http.StatusOK {
				writeRaw(w, status, []byte(payload))
				return
			}
		}

		resp, ok := match(r.URL.Query(), body, responses)
		if !ok {
			log.Warnf(log.RequestSys, "mock: no response matched %s %s", r.Method, r.URL)
			writeRaw(w, http.StatusNotFound, []byte(errRouteMissingPayload))
			return
		}
		status := resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		writeRaw(w, status, resp.Data)
	})
}

// verify checks the key, signature and nonce ordering the way the exchange
// does. Rejections use the exchange's error payloads and status codes.
func (s *Server) verify(r *http.Request, body []byte) (int, string) {
	if r.Header.Get("bfx-apikey") != s.key {
		return http.StatusUnauthorized, errInvalidKeyPayload
	}
	nonceStr := r.Header.Get("bfx-nonce")
	n, err := strconv.ParseUint(nonceStr, 10, 64)
	if err != nil {
		return http.StatusUnauthorized, errInvalidKeyPayload
	}

	msg := "/api" + r.URL.Path + nonceStr + string(body)
	mac, err := crypto.GetHMAC(crypto.HashSHA512_384, []byte(msg), s.secret)
	if err != nil || crypto.HexEncodeToString(mac) != r.Header.Get("bfx-signature") {
		return http.StatusUnauthorized, errInvalidKeyPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= s.lastNonce {
		return http.StatusInternalServerError, errNonceSmallPayload
	}
	s.lastNonce = n
	s.nonces = append(s.nonces, n)
	return http.StatusOK, ""
}

func match(query url.Values, body []byte, responses []HTTPResponse) (*HTTPResponse, bool) {
	for i := range responses {
		if responses[i].QueryString != "" {
			want, err := url.ParseQuery(responses[i].QueryString)
			if err != nil || !MatchURLVals(want, query) {
				continue
			}
		}
		if responses[i].BodyParams != "" {
			want, err := url.ParseQuery(responses[i].BodyParams)
			if err != nil {
				continue
			}
			got, err := DeriveURLValsFromJSONMap(body)
			if err != nil || !MatchURLVals(want, got) {
				continue
			}
		}
		return &responses[i], true
	}
	return nil, false
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Errorf(log.RequestSys, "mock: %v", fmt.Errorf("write response: %w", err))
	}
}
