package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/handlers/render"
	"github.com/nkiryanov/booklend/internal/logger"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/service/auth"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

type tokenResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func handleRegister(as authService, l logger.Logger) http.Handler {
	type request struct {
		Email     string `json:"email" validate:"required,email,max=255"`
		Username  string `json:"username" validate:"required,min=2,max=50"`
		FirstName string `json:"first_name" validate:"required,max=100"`
		LastName  string `json:"last_name" validate:"required,max=100"`
		Password  string `json:"password" validate:"required,min=8"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := as.Register(r.Context(), auth.RegisterParams{
			Email:     data.Email,
			Username:  data.Username,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Password:  data.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				l.Error("register failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		as.SetToken(w, token)
		render.JSONWithStatus(w, tokenResponse{
			Message:   "User registered successfully",
			Token:     token.Value,
			ExpiresAt: token.ExpiresAt,
			User:      newUserResponse(user),
		}, http.StatusCreated)
	})
}

func handleLogin(as authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := as.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
			default:
				l.Error("login failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		as.SetToken(w, token)
		render.JSON(w, tokenResponse{
			Message:   "User logged in successfully",
			Token:     token.Value,
			ExpiresAt: token.ExpiresAt,
			User:      newUserResponse(user),
		})
	})
}

func handleUserMe(us userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		user, err := us.GetUser(r.Context(), p.ID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("get user failed", "user_id", p.ID, "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}
