package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
	"github.com/nkiryanov/booklend/internal/service/validate"
)

type BookService struct {
	bookRepo repository.BookRepo
}

func NewService(bookRepo repository.BookRepo) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// Create book owned by ownerID
// Empty author and language replaced with defaults
func (s *BookService) Create(ctx context.Context, ownerID int64, p repository.CreateBookParams) (models.Book, error) {
	p.OwnerID = ownerID
	if p.Author == "" {
		p.Author = models.DefaultBookAuthor
	}
	if p.Language == "" {
		p.Language = models.DefaultBookLanguage
	}

	isbn, err := normalizeISBN(p.ISBN)
	if err != nil {
		return models.Book{}, err
	}
	p.ISBN = isbn

	book, err := s.bookRepo.CreateBook(ctx, p)
	if err != nil {
		return book, fmt.Errorf("can't create book. Err: %w", err)
	}

	return book, nil
}

func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.bookRepo.ListBooks(ctx)
}

func (s *BookService) Get(ctx context.Context, bookID int64) (models.Book, error) {
	return s.bookRepo.GetBook(ctx, bookID)
}

// Update book fields if actor owns the book
func (s *BookService) Update(ctx context.Context, bookID int64, actorID int64, p repository.UpdateBookParams) (models.Book, error) {
	isbn, err := normalizeISBN(p.ISBN)
	if err != nil {
		return models.Book{}, err
	}
	p.ISBN = isbn

	affected, err := s.bookRepo.UpdateBook(ctx, bookID, actorID, p)
	if err != nil {
		return models.Book{}, fmt.Errorf("can't update book. Err: %w", err)
	}
	if affected == 0 {
		return models.Book{}, s.explainMiss(ctx, bookID)
	}

	return s.bookRepo.GetBook(ctx, bookID)
}

// Delete book if actor owns it and nobody has ever requested it
func (s *BookService) Delete(ctx context.Context, bookID int64, actorID int64) error {
	affected, err := s.bookRepo.DeleteBook(ctx, bookID, actorID)
	if err != nil {
		return fmt.Errorf("can't delete book. Err: %w", err)
	}
	if affected == 0 {
		return s.explainMiss(ctx, bookID)
	}

	return nil
}

// Conditional write matched nothing: tell missing book from foreign one
func (s *BookService) explainMiss(ctx context.Context, bookID int64) error {
	_, err := s.bookRepo.OwnerOf(ctx, bookID)
	switch {
	case err == nil:
		return apperrors.ErrBookNotOwned
	case errors.Is(err, apperrors.ErrBookNotFound):
		return apperrors.ErrBookNotFound
	default:
		return fmt.Errorf("can't check book owner. Err: %w", err)
	}
}

func normalizeISBN(isbn *string) (*string, error) {
	if isbn == nil {
		return nil, nil
	}

	normalized := validate.NormalizeISBN(*isbn)
	if err := validate.ISBN(normalized); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrISBNInvalid, err)
	}

	return &normalized, nil
}
