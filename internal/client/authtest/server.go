// Package authtest provides an in-process fake of the taskboard auth service
// for tests. It issues opaque tokens A1/R1, A2/R2, ... in order, keeps a
// single valid pair, and records every request it sees.
package authtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/common"
)

// PathTasks is an authenticated feature endpoint served by the fake.
const PathTasks = "/tasks"

// Request is what the fake recorded for one incoming request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type account struct {
	password string
	user     models.User
}

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	accounts     map[string]*account
	current      string
	access       string
	refresh      string
	issued       int
	refreshCalls int
	requests     []Request
	broken       map[string]bool

	rotateRefresh bool
	refreshStatus int
	refreshDelay  time.Duration
}

// NewServer starts a fake with one account, alice/secret-pass.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		accounts:      map[string]*account{},
		broken:        map[string]bool{},
		rotateRefresh: true,
	}
	s.AddUser("alice", "secret-pass", "Alice")

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// AddUser registers an account.
func (s *Server) AddUser(username, password, name string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password, name)
}

func (s *Server) addUserLocked(username, password, name string) models.User {
	u := models.User{
		ID:        fmt.Sprintf("u%d", len(s.accounts)+1),
		Name:      name,
		Username:  username,
		IsActive:  true,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	s.accounts[username] = &account{password: password, user: u}
	return u
}

// SignIn starts a session for username as if it had logged in, returning the
// issued pair.
func (s *Server) SignIn(username string) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = username
	s.issueLocked(true)
	return s.access, s.refresh
}

// ExpireAccess invalidates the current access token; the refresh token
// stays valid.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
}

// KeepRefreshToken makes /auth/refresh answer without a new refresh token.
func (s *Server) KeepRefreshToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotateRefresh = false
}

// RejectRefresh makes every /auth/refresh answer with status.
func (s *Server) RejectRefresh(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

// DelayRefresh holds every /auth/refresh for d before it answers.
func (s *Server) DelayRefresh(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// Break makes requests to path drop the connection without a response.
func (s *Server) Break(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken[path] = true
}

func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo filters Requests by path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) issueLocked(rotate bool) {
	s.issued++
	s.access = fmt.Sprintf("A%d", s.issued)
	if rotate {
		s.refresh = fmt.Sprintf("R%d", s.issued)
	}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get(common.AuthorizationHeaderName),
		RequestID:     r.Header.Get(common.RequestIDHeaderName),
	})
	broken := s.broken[r.URL.Path]
	s.mu.Unlock()

	if broken {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
				return
			}
		}
		panic(http.ErrAbortHandler)
	}

	switch r.URL.Path {
	case common.PathLogin:
		s.login(w, r)
	case common.PathRegister:
		s.register(w, r)
	case common.PathRefresh:
		s.refreshTokens(w, r)
	case common.PathVerify, common.PathLogout, common.PathProfile, common.PathChangePassword, PathTasks:
		s.authenticated(w, r)
	default:
		writeMessage(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[in.Username]
	if !ok || acc.password != in.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.current = in.Username
	s.issueLocked(true)
	s.writeSessionLocked(w, acc.user)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.Registration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[in.Username]; ok {
		writeMessage(w, http.StatusConflict, "Username already taken")
		return
	}
	u := s.addUserLocked(in.Username, in.Password, in.Name)
	s.current = in.Username
	s.issueLocked(true)
	s.writeSessionLocked(w, u)
}

func (s *Server) writeSessionLocked(w http.ResponseWriter, u models.User) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user":          u,
		"access_token":  s.access,
		"refresh_token": s.refresh,
	})
}

func (s *Server) refreshTokens(w http.ResponseWriter, r *http.Request) {

	s.mu.Lock()
	s.refreshCalls++
	delay, status := s.refreshDelay, s.refreshStatus
	s.mu.Unlock()

	time.Sleep(delay)

	if status != 0 {
		writeMessage(w, status, "Refresh rejected")
		return
	}

	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.RefreshToken == "" || in.RefreshToken != s.refresh {
		writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	s.issueLocked(s.rotateRefresh)
	out := map[string]string{"access_token": s.access}
	if s.rotateRefresh {
		out["refresh_token"] = s.refresh
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) authenticated(w http.ResponseWriter, r *http.Request) {

	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerScheme+" ")
	acc := s.accounts[s.current]
	if !ok || s.access == "" || token != s.access || acc == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	switch r.URL.Path {
	case common.PathVerify:
		writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})

	case common.PathLogout:
		s.access, s.refresh, s.current = "", "", ""
		w.WriteHeader(http.StatusNoContent)

	case common.PathProfile:
		var in models.ProfileUpdate
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeMessage(w, http.StatusBadRequest, "Malformed request")
			return
		}
		if in.Username != nil {
			if _, taken := s.accounts[*in.Username]; taken && *in.Username != acc.user.Username {
				writeMessage(w, http.StatusConflict, "Username already taken")
				return
			}
			delete(s.accounts, acc.user.Username)
			acc.user.Username = *in.Username
			s.accounts[acc.user.Username] = acc
			s.current = acc.user.Username
		}
		if in.Name != nil {
			acc.user.Name = *in.Name
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})

	case common.PathChangePassword:
		var in struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeMessage(w, http.StatusBadRequest, "Malformed request")
			return
		}
		if in.CurrentPassword != acc.password {
			writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		acc.password = in.NewPassword
		w.WriteHeader(http.StatusNoContent)

	case PathTasks:
		writeJSON(w, http.StatusOK, map[string]any{"tasks": []string{}})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
