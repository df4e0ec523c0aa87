// Package rpc serves Connect unary procedures over plain Go structs.
//
// Messages are encoded with encoding/json instead of protobuf, so request and
// response types are ordinary structs with json tags.
package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

// JSONCodec is a connect.Codec backed by encoding/json. It takes the "json"
// name so Connect negotiates it for application/json requests.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Mux collects procedures under one service prefix.
type Mux struct {
	prefix string
	mux    *http.ServeMux
	opts   []connect.HandlerOption
}

// NewMux creates a Mux for the service with the given fully qualified name,
// e.g. "tourledger.v1.TourService".
func NewMux(serviceName string, opts ...connect.HandlerOption) *Mux {
	return &Mux{
		prefix: "/" + serviceName + "/",
		mux:    http.NewServeMux(),
		opts:   append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...),
	}
}

// Handle registers fn as the unary procedure with the given method name.
func Handle[Req, Res any](m *Mux, method string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)) {
	procedure := m.prefix + method
	m.mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, m.opts...))
}

// Path returns the route prefix the service is mounted on.
func (m *Mux) Path() string { return m.prefix }

// ServeHTTP implements http.Handler.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.ServeHTTP(w, r)
}

// NewClient returns a Connect client for one procedure speaking JSONCodec.
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, opts...)
}
