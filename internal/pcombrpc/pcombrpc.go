// Package pcombrpc exposes registered grammars over HTTP/3, so a
// long-running daemon can parse input for callers that would rather
// make a request than link pcomb directly (a different process, a
// different language, a sandboxed caller).
//
// Built on the kept internal/runtime/netstack package: certutil.go's
// self-signed TLS config for local/dev use, http3.go's HTTP3Server/
// HTTP3Client wrapping github.com/quic-go/quic-go/http3.
package pcombrpc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/orizon-lang/pcomb/internal/runtime/netstack"
)

// GrammarFunc parses input against one concrete, already-instantiated
// grammar and returns a JSON-marshalable result. Callers get one of
// these per grammar by closing over a call to pcomb.ParseToEndString
// (or ParseAllString) for a specific Grammar[T] — pcombrpc itself
// stays type-erased at the registry boundary the same way
// grammar.go's untypedGrammar stays type-erased within the engine.
type GrammarFunc func(input string) (interface{}, error)

// Registry maps a grammar name to the GrammarFunc that parses it.
type Registry struct {
	grammars map[string]GrammarFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{grammars: make(map[string]GrammarFunc)}
}

// Register adds or replaces the GrammarFunc served under name.
func (r *Registry) Register(name string, fn GrammarFunc) {
	r.grammars[name] = fn
}

// ParseRequest is the JSON body POSTed to /parse.
type ParseRequest struct {
	Grammar string `json:"grammar"`
	Input   string `json:"input"`
}

// ParseResponse is the JSON body returned from /parse: exactly one of
// Result or Error is set.
type ParseResponse struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Server serves a Registry's grammars over HTTP/3 at POST /parse.
type Server struct {
	http3 *netstack.HTTP3Server
}

// NewServer builds a Server bound to addr (":0" for an ephemeral
// port), serving reg's grammars under the given TLS config. Use
// netstack.GenerateSelfSignedTLS for local/dev use.
func NewServer(addr string, tlsCfg *tls.Config, reg *Registry) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/parse", handleParse(reg))
	return &Server{http3: netstack.NewHTTP3Server(addr, tlsCfg, mux)}
}

func handleParse(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var pr ParseRequest
		if err := json.NewDecoder(req.Body).Decode(&pr); err != nil {
			writeJSON(w, http.StatusBadRequest, ParseResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
			return
		}
		fn, ok := reg.grammars[pr.Grammar]
		if !ok {
			writeJSON(w, http.StatusNotFound, ParseResponse{Error: fmt.Sprintf("unknown grammar %q", pr.Grammar)})
			return
		}
		v, err := fn(pr.Input)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, ParseResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, ParseResponse{Result: v})
	}
}

func writeJSON(w http.ResponseWriter, status int, resp ParseResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Start begins serving and returns the bound address.
func (s *Server) Start() (string, error) {
	return s.http3.Start()
}

// Stop stops the server.
func (s *Server) Stop() error {
	return s.http3.Stop()
}

// Client calls a remote Server's /parse endpoint over HTTP/3.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a Client against baseURL (e.g. "https://host:port")
// using the given TLS config and request timeout.
func NewClient(baseURL string, tlsCfg *tls.Config, timeout time.Duration) *Client {
	return &Client{httpClient: netstack.HTTP3Client(tlsCfg, timeout), baseURL: baseURL}
}

// Parse sends {grammar, input} to the server and returns its parsed
// result (the raw decoded JSON value) or the server-reported error.
func (c *Client) Parse(ctx context.Context, grammar, input string) (interface{}, error) {
	body, err := json.Marshal(ParseRequest{Grammar: grammar, Input: input})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var pr ParseResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("pcombrpc: decoding response: %w", err)
	}
	if pr.Error != "" {
		return nil, fmt.Errorf("pcombrpc: %s", pr.Error)
	}
	return pr.Result, nil
}

// Close releases the client's HTTP/3 transport.
func (c *Client) Close() {
	netstack.ShutdownHTTP3(c.httpClient)
}
