package crm

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, l *Lead) error
	Save(db *gorm.DB, l *Lead) error
	Delete(db *gorm.DB, l *Lead) error
	FindByIDForProfile(db *gorm.DB, id, profileID uint) (*Lead, error)
	ListByProfile(db *gorm.DB, profileID uint, status string) ([]Lead, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, l *Lead) error {
	return db.Create(l).Error
}

func (r *repositoryImpl) Save(db *gorm.DB, l *Lead) error {
	return db.Save(l).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, l *Lead) error {
	return db.Delete(l).Error
}

// FindByIDForProfile scopes lookups to the owner: a foreign lead reads the
// same as a missing one.
func (r *repositoryImpl) FindByIDForProfile(db *gorm.DB, id, profileID uint) (*Lead, error) {
	var l Lead
	err := db.Where("id = ? AND profile_id = ?", id, profileID).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repositoryImpl) ListByProfile(db *gorm.DB, profileID uint, status string) ([]Lead, error) {
	var list []Lead
	q := db.Where("profile_id = ?", profileID).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}
