package httpapi

import "stat-wizard/internal/quiz"

type API struct {
	service *quiz.Service
	history quiz.ResultReader
	hub     *Hub
}

// NewAPI wires the handlers. history may be nil, in which case the result
// endpoints answer 503. hub may be nil when live session feeds are not served.
func NewAPI(service *quiz.Service, history quiz.ResultReader, hub *Hub) *API {
	return &API{
		service: service,
		history: history,
		hub:     hub,
	}
}
