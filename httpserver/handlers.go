// Package httpserver exposes the REST surface (accounts, groups, search)
// and the websocket endpoint of the chat server.
package httpserver

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"group-chat/chat"
	"group-chat/contract"
	"group-chat/domain"
	"group-chat/errors"
	"group-chat/services"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

type Server struct {
	log            *slog.Logger
	auth           services.IAuthService
	groups         services.IGroupService
	chat           services.IChatService
	tokens         contract.ITokenVerifier
	upgrader       websocket.Upgrader
	sendBufferSize int
}

func New(log *slog.Logger, authService services.IAuthService, groupService services.IGroupService,
	chatService services.IChatService, tokens contract.ITokenVerifier, sendBufferSize int) *Server {
	return &Server{
		log:    log,
		auth:   authService,
		groups: groupService,
		chat:   chatService,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sendBufferSize: sendBufferSize,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/verify", s.requireAuth(s.handleVerify))
	mux.HandleFunc("GET /api/groups", s.requireAuth(s.handleListGroups))
	mux.HandleFunc("POST /api/groups", s.requireAuth(s.handleCreateGroup))
	mux.HandleFunc("POST /api/groups/join", s.requireAuth(s.handleJoinGroup))
	mux.HandleFunc("GET /api/groups/{id}/search", s.requireAuth(s.handleSearchMessages))
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// identity is the verified caller of an authenticated REST request.
type identity struct {
	UserID   string
	Username string
}

type authedHandler func(w http.ResponseWriter, r *http.Request, who identity)

// requireAuth validates the Bearer token and injects the caller identity,
// the REST counterpart of the websocket admission gate's token step.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "authorization token is missing")
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		userID, username, err := s.tokens.Verify(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r, identity{UserID: userID, Username: username})
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  wireUser `json:"user"`
	Token string   `json:"token"`
}

type wireUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type wireGroup struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Members   []string  `json:"members"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	result, err := s.auth.Register(req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:  wireUser{ID: result.UserID, Username: result.Username},
		Token: result.Token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	result, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:  wireUser{ID: result.UserID, Username: result.Username},
		Token: result.Token,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, _ *http.Request, who identity) {
	writeJSON(w, http.StatusOK, map[string]wireUser{
		"user": {ID: who.UserID, Username: who.Username},
	})
}

func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request, who identity) {
	groups, err := s.groups.ListGroups(who.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWireGroups(groups))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request, who identity) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "group name required")
		return
	}

	group, err := s.groups.CreateGroup(req.Name, who.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWireGroup(group))
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request, who identity) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "group code required")
		return
	}

	group, err := s.groups.JoinGroup(req.Code, who.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWireGroup(group))
}

func (s *Server) handleSearchMessages(w http.ResponseWriter, r *http.Request, who identity) {
	groupID := domain.GroupID(r.PathValue("id"))
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}

	messages, err := s.chat.Search(r.Context(), groupID, who.UserID, query)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": chat.ToWireMessages(messages),
	})
}

// writeServiceError maps domain sentinels onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case stderrors.Is(err, errors.ErrNotAMember):
		writeError(w, http.StatusForbidden, err.Error())
	case stderrors.Is(err, errors.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case stderrors.Is(err, errors.ErrUserAlreadyExists),
		stderrors.Is(err, errors.ErrInvalidPassword),
		stderrors.Is(err, errors.ErrGroupNameRequired),
		stderrors.Is(err, errors.ErrGroupCodeRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func toWireGroup(group domain.Group) wireGroup {
	return wireGroup{
		ID:        string(group.ID),
		Name:      group.Name,
		Code:      group.Code,
		Members:   group.Members,
		CreatedBy: group.CreatedBy,
		CreatedAt: group.CreatedAt,
	}
}

func toWireGroups(groups []domain.Group) []wireGroup {
	return lo.Map(groups, func(group domain.Group, _ int) wireGroup {
		return toWireGroup(group)
	})
}
