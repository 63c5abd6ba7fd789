// Package handlers implements the HTTP surface of the report service.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eccleston-labs/lfg-hackathon/pkg/ai"
	"github.com/eccleston-labs/lfg-hackathon/pkg/geocode"
	"github.com/eccleston-labs/lfg-hackathon/pkg/realtime"
	"github.com/eccleston-labs/lfg-hackathon/store"
)

// API bundles the dependencies shared by all handlers.
type API struct {
	Store    *store.Store
	Geocoder *geocode.Client
	Places   *geocode.PlaceSearcher
	AI       *ai.Client
	Hub      *realtime.Hub
	Live     *realtime.Collection
}

// NewAPI creates the handler set.
func NewAPI(s *store.Store, g *geocode.Client, p *geocode.PlaceSearcher, a *ai.Client, hub *realtime.Hub, live *realtime.Collection) *API {
	return &API{Store: s, Geocoder: g, Places: p, AI: a, Hub: hub, Live: live}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
