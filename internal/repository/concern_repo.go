package repository

import (
	"errors"
	"strings"

	"scholarly/internal/domain"
	"scholarly/internal/models"

	"gorm.io/gorm"
)

// ListOptions narrows and orders concern listings. The zero value means
// all statuses, no search, newest first.
type ListOptions struct {
	Status    string // pending | in_progress | resolved | all/""
	Search    string // case-insensitive substring, OR-combined across fields
	SortBy    string // date (default) | status | category
	Ascending bool
}

type ConcernRepository struct {
	db *gorm.DB
}

func NewConcernRepository(db *gorm.DB) *ConcernRepository {
	return &ConcernRepository{db: db}
}

func (r *ConcernRepository) Create(c *models.Concern) error {
	return r.db.Create(c).Error
}

func (r *ConcernRepository) GetByID(id uint) (*models.Concern, error) {
	var c models.Concern
	err := r.db.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update persists every mutable field of an existing concern. Last write
// wins; there is no version check.
func (r *ConcernRepository) Update(c *models.Concern) error {
	res := r.db.Model(&models.Concern{}).Where("id = ?", c.ID).Updates(map[string]any{
		"status":         c.Status,
		"admin_response": c.AdminResponse,
		"is_read":        c.IsRead,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConcernRepository) ListByOwner(ownerID uint, opts ListOptions) ([]models.Concern, error) {
	return r.list(r.db.Where("concerns.user_id = ?", ownerID), opts)
}

func (r *ConcernRepository) ListAll(opts ListOptions) ([]models.Concern, error) {
	return r.list(r.db, opts)
}

func (r *ConcernRepository) list(tx *gorm.DB, opts ListOptions) ([]models.Concern, error) {
	q := tx.Model(&models.Concern{}).
		Select("concerns.*, users.full_name AS owner_name").
		Joins("LEFT JOIN users ON users.id = concerns.user_id")

	if s := strings.TrimSpace(opts.Status); s != "" && s != "all" {
		q = q.Where("concerns.status = ?", s)
	}
	if s := strings.ToLower(strings.TrimSpace(opts.Search)); s != "" {
		p := "%" + s + "%"
		cond := "LOWER(concerns.title) LIKE ? OR LOWER(concerns.message) LIKE ? OR LOWER(users.full_name) LIKE ?"
		args := []any{p, p, p}
		if cats := categoriesMatching(s); len(cats) > 0 {
			cond += " OR concerns.category IN ?"
			args = append(args, cats)
		}
		q = q.Where(cond, args...)
	}

	var out []models.Concern
	err := q.Order(orderClause(opts.SortBy, opts.Ascending)).Find(&out).Error
	return out, err
}

// categoriesMatching returns category values whose value or display label
// contains the query.
func categoriesMatching(q string) []string {
	var out []string
	for value, label := range domain.CategoryLabels {
		if strings.Contains(strings.ToLower(label), q) || strings.Contains(value, q) {
			out = append(out, value)
		}
	}
	return out
}

// orderClause whitelists sort keys; anything unrecognized falls back to
// the date ordering.
func orderClause(sortBy string, asc bool) string {
	dir := "DESC"
	if asc {
		dir = "ASC"
	}
	switch sortBy {
	case "status":
		return "concerns.status " + dir
	case "category":
		return "concerns.category " + dir
	default:
		return "concerns.updated_at " + dir + ", concerns.created_at " + dir
	}
}
