// Package api exposes the expense and balance services over JSON HTTP.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitledger/internal/service"
)

// Server wires the service layer to HTTP routes.
type Server struct {
	groups   *service.GroupService
	expenses *service.ExpenseService
	balances *service.BalanceService
}

func NewServer(groups *service.GroupService, expenses *service.ExpenseService, balances *service.BalanceService) *Server {
	return &Server{
		groups:   groups,
		expenses: expenses,
		balances: balances,
	}
}

// Handler builds the route table and wraps it with the standard middleware
// chain: CORS, request logging, and request metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/groups", s.handleCreateGroup)
	mux.HandleFunc("GET /v1/groups", s.handleListGroups)
	mux.HandleFunc("GET /v1/groups/{id}", s.handleGetGroup)
	mux.HandleFunc("PUT /v1/groups/{id}", s.handleUpdateGroup)
	mux.HandleFunc("DELETE /v1/groups/{id}", s.handleDeleteGroup)
	mux.HandleFunc("POST /v1/groups/{id}/members", s.handleAddMembers)

	mux.HandleFunc("POST /v1/groups/{id}/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /v1/groups/{id}/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /v1/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("DELETE /v1/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /v1/groups/{id}/balances", s.handleGroupBalances)
	mux.HandleFunc("POST /v1/groups/{id}/settlements", s.handleCreateSettlement)
	mux.HandleFunc("GET /v1/groups/{id}/settlements", s.handleListSettlements)
	mux.HandleFunc("GET /v1/users/{id}/summary", s.handleUserSummary)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return corsMiddleware(loggingMiddleware(metricsMiddleware(mux)))
}
