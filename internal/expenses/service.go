package expenses

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
)

// Service records day-to-day shop expenses for the reports.
type Service interface {
	Add(ctx context.Context, input AddExpenseInput) (*models.Expense, error)
	List(ctx context.Context, from, to time.Time) ([]models.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AddExpenseInput is one expense entry.
type AddExpenseInput struct {
	Reason   string
	Amount   int
	Category enums.ExpenseCategory
	AddedBy  *string
}

type service struct {
	repo Repository
}

// NewService wires the expense service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expense repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Add(ctx context.Context, input AddExpenseInput) (*models.Expense, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, errors.New(errors.CodeValidation, "expense reason is required")
	}
	if input.Amount <= 0 {
		return nil, errors.New(errors.CodeValidation, "expense amount must be positive")
	}
	category := input.Category
	if category == "" {
		category = enums.ExpenseCategoryOther
	}
	if !category.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid expense category %q", input.Category))
	}

	expense := &models.Expense{
		Reason:   strings.TrimSpace(input.Reason),
		Amount:   input.Amount,
		Category: category,
		AddedBy:  input.AddedBy,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating expense")
	}
	return expense, nil
}

func (s *service) List(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	list, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing expenses")
	}
	return list, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "expense not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "deleting expense")
	}
	return nil
}
