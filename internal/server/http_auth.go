package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shirkaty/portal/internal/auth"
	"github.com/shirkaty/portal/internal/events"
	"github.com/shirkaty/portal/internal/idgen"
	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

type signUpInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
}

type signInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
	User      *model.User `json:"user"`
}

// handleSignUp handles POST /v1/auth/signup.
func (s *PortalServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in signUpInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := model.ValidateSignup(in.Email, in.Name, in.Password, in.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Phone != "" && !model.ValidPhone(in.Phone) {
		writeError(w, http.StatusBadRequest, "invalid phone number")
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	id, err := idgen.Generate(idgen.PrefixUser)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           id,
		Email:        in.Email,
		Name:         in.Name,
		Role:         model.RoleUser,
		CompanyName:  in.CompanyName,
		Phone:        in.Phone,
		CreatedAt:    now,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	// A signup with a company name starts the formation pipeline with a
	// pending company record.
	if in.CompanyName != "" {
		companyID, err := idgen.Generate(idgen.PrefixCompany)
		if err == nil {
			company := &model.Company{
				ID:        companyID,
				UserID:    user.ID,
				Name:      in.CompanyName,
				Status:    model.CompanyPending,
				CreatedAt: now,
			}
			if err := s.store.CreateCompany(r.Context(), company); err != nil {
				s.logger.Warn("failed to create company for signup", "user_id", user.ID, "error", err)
			}
		}
	}

	s.publish(r.Context(), events.TopicUserCreated, events.UserCreated{User: user})

	token, err := s.tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Token:     token,
		ExpiresAt: s.tokens.ExpiresAt(now).Unix(),
		User:      user,
	})
}

// handleSignIn handles POST /v1/auth/signin.
func (s *PortalServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in signInInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), in.Email)
	if errors.Is(err, store.ErrNotFound) {
		// Same response as a bad password so account existence is not
		// observable.
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up account")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: s.tokens.ExpiresAt(time.Now().UTC()).Unix(),
		User:      user,
	})
}

// handleSignOut handles POST /v1/auth/signout. Tokens are stateless, so the
// server's part is announcing the revocation on the change feed.
func (s *PortalServer) handleSignOut(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	s.publish(r.Context(), events.TopicSessionRevoked, events.SessionRevoked{
		UserID: identity.UserID,
		Reason: "signout",
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleRefresh handles POST /v1/auth/refresh.
func (s *PortalServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	user, err := s.store.GetUser(r.Context(), identity.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up account")
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: s.tokens.ExpiresAt(time.Now().UTC()).Unix(),
		User:      user,
	})
}

// handlePasswordReset handles POST /v1/auth/reset. The request is
// best-effort and always succeeds so that account existence is not
// observable.
func (s *PortalServer) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !model.ValidEmail(in.Email) {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), in.Email)
	if err == nil {
		id, idErr := idgen.Generate(idgen.PrefixNotification)
		if idErr == nil {
			n := &model.Notification{
				ID:        id,
				UserID:    user.ID,
				Title:     "إعادة تعيين كلمة المرور",
				Body:      "تم استلام طلب إعادة تعيين كلمة المرور الخاصة بك",
				Kind:      model.NotifyInfo,
				CreatedAt: time.Now().UTC(),
			}
			if err := s.store.CreateNotification(r.Context(), n); err != nil {
				s.logger.Warn("failed to record reset notification", "user_id", user.ID, "error", err)
			} else {
				s.publish(r.Context(), events.TopicNotificationCreated, events.NotificationCreated{Notification: n})
			}
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("password reset lookup failed", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /v1/auth/me.
func (s *PortalServer) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	user, err := s.store.GetUser(r.Context(), identity.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up account")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileInput struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
}

// handleUpdateMe handles PATCH /v1/auth/me: the account settings form.
// Email and role are not editable here.
func (s *PortalServer) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var in updateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.store.GetUser(r.Context(), identity.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up account")
		return
	}

	changes := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		user.Name = name
		changes["name"] = name
	}
	if in.Phone != nil {
		if *in.Phone != "" && !model.ValidPhone(*in.Phone) {
			writeError(w, http.StatusBadRequest, "invalid phone number")
			return
		}
		user.Phone = *in.Phone
		changes["phone"] = *in.Phone
	}
	if in.CompanyName != nil {
		user.CompanyName = strings.TrimSpace(*in.CompanyName)
		changes["company_name"] = user.CompanyName
	}
	if len(changes) == 0 {
		writeJSON(w, http.StatusOK, user)
		return
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update account")
		return
	}

	s.publish(r.Context(), events.TopicUserUpdated, events.UserUpdated{User: user, Changes: changes})
	writeJSON(w, http.StatusOK, user)
}
