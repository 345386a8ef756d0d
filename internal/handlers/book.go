package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/handlers/render"
	"github.com/nkiryanov/booklend/internal/logger"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
)

type bookResponse struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Language    string    `json:"language"`
	ISBN        *string   `json:"isbn"`
	Genre       *string   `json:"genre"`
	Description *string   `json:"description"`
	CoverImage  *string   `json:"cover_image"`
	CreatedAt   time.Time `json:"created_at"`
}

func newBookResponse(b models.Book) bookResponse {
	return bookResponse{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Title:       b.Title,
		Author:      b.Author,
		Language:    b.Language,
		ISBN:        b.ISBN,
		Genre:       b.Genre,
		Description: b.Description,
		CoverImage:  b.CoverImage,
		CreatedAt:   b.CreatedAt,
	}
}

func renderBookError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrBookNotFound):
		render.ServiceError(w, "Book not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrBookNotOwned):
		render.ServiceError(w, "Book is owned by another user", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrBookHasLoans):
		render.ServiceError(w, "Book has loan requests", http.StatusConflict)
	case errors.Is(err, apperrors.ErrISBNInvalid):
		render.ServiceError(w, "Invalid ISBN", http.StatusUnprocessableEntity)
	default:
		l.Error("book operation failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func handleCreateBook(bs bookService, l logger.Logger) http.Handler {
	type request struct {
		Title       string  `json:"title" validate:"required,max=255"`
		Author      string  `json:"author" validate:"max=255"`
		Language    string  `json:"language" validate:"max=50"`
		ISBN        *string `json:"isbn" validate:"omitempty,isbn"`
		Genre       *string `json:"genre" validate:"omitempty,max=100"`
		Description *string `json:"description"`
		CoverImage  *string `json:"cover_image"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		book, err := bs.Create(r.Context(), p.ID, repository.CreateBookParams{
			Title:       data.Title,
			Author:      data.Author,
			Language:    data.Language,
			ISBN:        data.ISBN,
			Genre:       data.Genre,
			Description: data.Description,
			CoverImage:  data.CoverImage,
		})
		if err != nil {
			renderBookError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newBookResponse(book), http.StatusCreated)
	})
}

func handleListBooks(bs bookService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		books, err := bs.List(r.Context())
		if err != nil {
			renderBookError(w, l, err)
			return
		}

		res := make([]bookResponse, 0, len(books))
		for _, b := range books {
			res = append(res, newBookResponse(b))
		}
		render.JSON(w, res)
	})
}

func handleGetBook(bs bookService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		book, err := bs.Get(r.Context(), id)
		if err != nil {
			renderBookError(w, l, err)
			return
		}

		render.JSON(w, newBookResponse(book))
	})
}

func handleUpdateBook(bs bookService, l logger.Logger) http.Handler {
	type request struct {
		Title       *string `json:"title" validate:"omitnil,min=1,max=255"`
		Author      *string `json:"author" validate:"omitnil,min=1,max=255"`
		Language    *string `json:"language" validate:"omitnil,min=1,max=50"`
		ISBN        *string `json:"isbn" validate:"omitempty,isbn"`
		Genre       *string `json:"genre" validate:"omitempty,max=100"`
		Description *string `json:"description"`
		CoverImage  *string `json:"cover_image"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		book, err := bs.Update(r.Context(), id, p.ID, repository.UpdateBookParams{
			Title:       data.Title,
			Author:      data.Author,
			Language:    data.Language,
			ISBN:        data.ISBN,
			Genre:       data.Genre,
			Description: data.Description,
			CoverImage:  data.CoverImage,
		})
		if err != nil {
			renderBookError(w, l, err)
			return
		}

		render.JSON(w, newBookResponse(book))
	})
}

func handleDeleteBook(bs bookService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := bs.Delete(r.Context(), id, p.ID); err != nil {
			renderBookError(w, l, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
