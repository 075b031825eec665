package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

type groupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

type addMembersRequest struct {
	Members []string `json:"members"`
}

type shareBody struct {
	ParticipantID string          `json:"participant_id"`
	Value         decimal.Decimal `json:"value"`
}

type expenseRequest struct {
	Description string       `json:"description"`
	PayerID     string       `json:"payer_id"`
	Amount      money.Amount `json:"amount"`
	SplitMethod string       `json:"split_method"`
	Shares      []shareBody  `json:"shares"`
}

type contributionBody struct {
	ParticipantID string       `json:"participant_id"`
	Owed          money.Amount `json:"owed"`
}

type expenseResponse struct {
	ID            string             `json:"id"`
	GroupID       string             `json:"group_id"`
	Description   string             `json:"description"`
	PayerID       string             `json:"payer_id"`
	Amount        money.Amount       `json:"amount"`
	SplitMethod   string             `json:"split_method"`
	Shares        []shareBody        `json:"shares"`
	Contributions []contributionBody `json:"contributions,omitempty"`
	CreatedAt     int64              `json:"created_at"`
}

type settlementRequest struct {
	FromUserID string       `json:"from_user_id"`
	ToUserID   string       `json:"to_user_id"`
	Amount     money.Amount `json:"amount"`
	Note       string       `json:"note"`
}

type settlementResponse struct {
	ID         string       `json:"id"`
	GroupID    string       `json:"group_id"`
	FromUserID string       `json:"from_user_id"`
	ToUserID   string       `json:"to_user_id"`
	Amount     money.Amount `json:"amount"`
	Note       string       `json:"note,omitempty"`
	CreatedAt  int64        `json:"created_at"`
}

type pairBody struct {
	User         string       `json:"user"`
	Counterparty string       `json:"counterparty"`
	Net          money.Amount `json:"net"`
}

type memberNetBody struct {
	UserID string       `json:"user_id"`
	Net    money.Amount `json:"net"`
}

type debtEdgeBody struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Amount money.Amount `json:"amount"`
}

type balancesResponse struct {
	GroupID  string          `json:"group_id"`
	Pairs    []pairBody      `json:"pairs"`
	Members  []memberNetBody `json:"members"`
	SettleUp []debtEdgeBody  `json:"settle_up"`
}

type groupSummaryBody struct {
	GroupID    string       `json:"group_id"`
	OwedToUser money.Amount `json:"owed_to_user"`
	UserOwes   money.Amount `json:"user_owes"`
}

type summaryResponse struct {
	UserID          string             `json:"user_id"`
	TotalOwedToUser money.Amount       `json:"total_owed_to_user"`
	TotalUserOwes   money.Amount       `json:"total_user_owes"`
	Groups          []groupSummaryBody `json:"groups"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses: not-found to 404, split
// inconsistencies to 422, malformed input to 400, everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidSplit):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", service.ErrInvalidInput, err)
	}
	return nil
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name, Members: g.Members, CreatedAt: g.CreatedAt}
}

func toExpenseResponse(e *models.Expense, contributions []ledger.Contribution) expenseResponse {
	shares := make([]shareBody, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = shareBody{ParticipantID: s.ParticipantID, Value: s.Value}
	}
	body := expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		PayerID:     e.PayerID,
		Amount:      e.Amount,
		SplitMethod: string(e.SplitMethod),
		Shares:      shares,
		CreatedAt:   e.CreatedAt,
	}
	for _, c := range contributions {
		body.Contributions = append(body.Contributions, contributionBody{
			ParticipantID: c.ParticipantID,
			Owed:          c.Owed,
		})
	}
	return body
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Note:       s.Note,
		CreatedAt:  s.CreatedAt,
	}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group := &models.Group{Name: req.Name, Members: req.Members}
	if err := s.groups.Create(r.Context(), group); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	body := make([]groupResponse, len(groups))
	for i, g := range groups {
		body[i] = toGroupResponse(g)
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group := &models.Group{ID: r.PathValue("id"), Name: req.Name, Members: req.Members}
	updated, err := s.groups.Update(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(updated))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddMembers(w http.ResponseWriter, r *http.Request) {
	var req addMembersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group, err := s.groups.AddMembers(r.Context(), r.PathValue("id"), req.Members)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !models.SplitMethod(req.SplitMethod).Valid() {
		writeError(w, fmt.Errorf("%w: unknown split method %q", service.ErrInvalidInput, req.SplitMethod))
		return
	}
	shares := make([]models.Share, len(req.Shares))
	for i, sh := range req.Shares {
		shares[i] = models.Share{ParticipantID: sh.ParticipantID, Value: sh.Value}
	}
	expense := &models.Expense{
		GroupID:     r.PathValue("id"),
		Description: req.Description,
		PayerID:     req.PayerID,
		Amount:      req.Amount,
		SplitMethod: models.SplitMethod(req.SplitMethod),
		Shares:      shares,
	}
	contributions, err := s.expenses.Create(r.Context(), expense)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense, contributions))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	body := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		body[i] = toExpenseResponse(e, nil)
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, contributions, err := s.expenses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense, contributions))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	settlement := &models.Settlement{
		GroupID:    r.PathValue("id"),
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Note:       req.Note,
	}
	if err := s.groups.RecordSettlement(r.Context(), settlement); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.groups.ListSettlements(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	body := make([]settlementResponse, len(settlements))
	for i, st := range settlements {
		body[i] = toSettlementResponse(st)
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	view, err := s.balances.GroupBalances(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	body := balancesResponse{
		GroupID:  view.GroupID,
		Pairs:    make([]pairBody, len(view.Pairs)),
		Members:  make([]memberNetBody, len(view.Members)),
		SettleUp: make([]debtEdgeBody, len(view.Simplified)),
	}
	for i, p := range view.Pairs {
		body.Pairs[i] = pairBody{User: p.User, Counterparty: p.Counterparty, Net: p.Net}
	}
	for i, m := range view.Members {
		body.Members[i] = memberNetBody{UserID: m.UserID, Net: m.Net}
	}
	for i, e := range view.Simplified {
		body.SettleUp[i] = debtEdgeBody{From: e.From, To: e.To, Amount: e.Amount}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleUserSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.balances.UserSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	body := summaryResponse{
		UserID:          summary.UserID,
		TotalOwedToUser: summary.TotalOwedToUser,
		TotalUserOwes:   summary.TotalUserOwes,
		Groups:          make([]groupSummaryBody, len(summary.Groups)),
	}
	for i, g := range summary.Groups {
		body.Groups[i] = groupSummaryBody{GroupID: g.GroupID, OwedToUser: g.OwedToUser, UserOwes: g.UserOwes}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
