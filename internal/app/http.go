package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"dyreklinik/api/internal/auth"
	"dyreklinik/api/internal/order"
	"dyreklinik/api/internal/store"
)

// maxUploadBytes caps image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
			"redis":    map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{"status": "error", "error": err.Error()}
		}
		if err := s.service.PingSessions(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["redis"] = map[string]any{"status": "error", "error": err.Error()}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	// Session routes
	if r.Method == http.MethodPost && r.URL.Path == "/api/session/login" {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":        session.Token,
			"refreshToken": session.RefreshToken,
			"userId":       session.UserID,
			"userName":     session.UserName,
			"expiresAt":    session.ExpiresAt.Unix(),
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/refresh" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Refresh(r.Context(), body.RefreshToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":        session.Token,
			"refreshToken": session.RefreshToken,
			"userName":     session.UserName,
			"expiresAt":    session.ExpiresAt.Unix(),
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		session, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "userName": session.UserName, "userId": session.UserID})
		return
	}

	// Password reset
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/reset-password/request" {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		devToken, _ := s.service.RequestPasswordReset(r.Context(), body.Email)
		response := map[string]any{
			"message": "If an account exists, a reset email has been sent",
		}
		if devToken != "" {
			response["devResetToken"] = devToken
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/reset-password" {
		var body struct {
			Token       string `json:"token"`
			NewPassword string `json:"newPassword"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.ResetPassword(r.Context(), body.Token, body.NewPassword); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
		return
	}

	// Public content routes
	if r.Method == http.MethodGet && r.URL.Path == "/api/reviews" {
		writeJSON(w, http.StatusOK, s.service.Reviews(r.Context()))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/contact" {
		var body ContactInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.SubmitContact(r.Context(), body); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	// Media upload / delete (editor only)
	if r.Method == http.MethodPost && r.URL.Path == "/api/media/upload" {
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		s.handleMediaUpload(w, r)
		return
	}

	if r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/media/") {
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/api/media/")
		if err := s.service.DeleteMedia(r.Context(), path); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	// Price list PDF
	if r.Method == http.MethodPost && r.URL.Path == "/api/prices/export" {
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		result, err := s.service.ExportPriceList(r.Context())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
		w.Header().Set("Content-Type", result.MimeType)
		_, _ = w.Write(result.Data)
		return
	}

	// Content collections
	parts := splitPath(r.URL.Path)
	if len(parts) >= 2 && parts[0] == "api" {
		if _, ok := collectionTables[parts[1]]; ok {
			s.handleCollection(w, r, parts[1], parts[2:])
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleCollection dispatches the shared CRUD+reorder surface every content
// collection exposes. Reads are public; everything else needs a session.
func (s *HTTPServer) handleCollection(w http.ResponseWriter, r *http.Request, collection string, rest []string) {
	if len(rest) == 0 && r.Method == http.MethodGet {
		includeInactive := r.URL.Query().Get("all") == "1"
		if includeInactive {
			if _, ok := s.requireSession(w, r); !ok {
				return
			}
		}
		items, err := s.listCollection(r.Context(), collection, includeInactive)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
		return
	}

	// All remaining collection routes are writes.
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if len(rest) == 0 && r.Method == http.MethodPost {
		item, err := s.createCollectionItem(r.Context(), collection, r)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, item)
		return
	}

	if len(rest) == 1 && rest[0] == "reorder" && r.Method == http.MethodPut {
		var body ReorderInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		orderedIDs, err := s.service.Reorder(r.Context(), collection, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orderedIds": orderedIDs})
		return
	}

	if len(rest) == 1 && r.Method == http.MethodPut {
		item, err := s.updateCollectionItem(r.Context(), collection, rest[0], r)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, item)
		return
	}

	if len(rest) == 1 && r.Method == http.MethodDelete {
		if err := s.deleteCollectionItem(r.Context(), collection, rest[0]); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}

func (s *HTTPServer) listCollection(ctx context.Context, collection string, includeInactive bool) ([]map[string]any, error) {
	switch collection {
	case "categories":
		return s.service.ListCategories(ctx, includeInactive)
	case "services":
		return s.service.ListClinicServices(ctx, includeInactive)
	case "price-categories":
		return s.service.ListPriceCategories(ctx, includeInactive)
	case "prices":
		return s.service.ListPriceItems(ctx, includeInactive)
	case "faqs":
		return s.service.ListFAQs(ctx, includeInactive)
	case "team":
		return s.service.ListTeamMembers(ctx, includeInactive)
	case "instagram":
		return s.service.ListInstagramPosts(ctx, includeInactive)
	}
	return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Unknown collection", nil)
}

func (s *HTTPServer) createCollectionItem(ctx context.Context, collection string, r *http.Request) (map[string]any, error) {
	switch collection {
	case "categories":
		var body CategoryInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.CreateCategory(ctx, body)
	case "services":
		var body ServiceInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.CreateClinicService(ctx, body)
	case "price-categories":
		var body PriceCategoryInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.CreatePriceCategory(ctx, body)
	case "prices":
		var body PriceItemInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.CreatePriceItem(ctx, body)
	case "faqs":
		var body FAQInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.CreateFAQ(ctx, body)
	case "team":
		var body TeamMemberInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.CreateTeamMember(ctx, body)
	case "instagram":
		var body InstagramPostInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.CreateInstagramPost(ctx, body)
	}
	return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Unknown collection", nil)
}

func (s *HTTPServer) updateCollectionItem(ctx context.Context, collection, id string, r *http.Request) (map[string]any, error) {
	switch collection {
	case "categories":
		var body CategoryInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.UpdateCategory(ctx, id, body)
	case "services":
		var body ServiceInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.UpdateClinicService(ctx, id, body)
	case "price-categories":
		var body PriceCategoryInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.UpdatePriceCategory(ctx, id, body)
	case "prices":
		var body PriceItemInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.UpdatePriceItem(ctx, id, body)
	case "faqs":
		var body FAQInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.UpdateFAQ(ctx, id, body)
	case "team":
		var body TeamMemberInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.UpdateTeamMember(ctx, id, body)
	case "instagram":
		var body InstagramPostInput
		if err := decodeBody(r, &body); err != nil {
			return nil, domainError(http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		}
		return s.service.UpdateInstagramPost(ctx, id, body)
	}
	return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Unknown collection", nil)
}

func (s *HTTPServer) deleteCollectionItem(ctx context.Context, collection, id string) error {
	switch collection {
	case "categories":
		return s.service.DeleteCategory(ctx, id)
	case "services":
		return s.service.DeleteClinicService(ctx, id)
	case "price-categories":
		return s.service.DeletePriceCategory(ctx, id)
	case "prices":
		return s.service.DeletePriceItem(ctx, id)
	case "faqs":
		return s.service.DeleteFAQ(ctx, id)
	case "team":
		return s.service.DeleteTeamMember(ctx, id)
	case "instagram":
		return s.service.DeleteInstagramPost(ctx, id)
	}
	return domainError(http.StatusNotFound, "NOT_FOUND", "Unknown collection", nil)
}

func (s *HTTPServer) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "multipart form required", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "file field is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "could not read upload", nil)
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "upload exceeds 10 MiB", nil)
		return
	}

	folder := strings.TrimSpace(r.FormValue("folder"))
	if folder == "" {
		folder = "uploads"
	}
	if strings.ContainsAny(folder, "./\\") {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid folder", nil)
		return
	}

	payload, err := s.service.UploadMedia(r.Context(), folder, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return Session{}, false
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Session lookup failed", nil)
		return Session{}, false
	}
	return session, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var referenced *store.ReferencedError
	if errors.As(err, &referenced) {
		return http.StatusBadRequest, "CATEGORY_IN_USE",
			fmt.Sprintf("Cannot delete: %d dependent %s still reference it", referenced.Dependents, referenced.Collection),
			map[string]any{"dependents": referenced.Dependents, "collection": referenced.Collection}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, order.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND", "Id not in collection", nil
	}
	if errors.Is(err, order.ErrOrderMismatch) {
		return http.StatusBadRequest, "VALIDATION_ERROR", "Ordering must be a permutation of the collection", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", err.Error(), nil
}
