package resource

import (
	"gorm.io/gorm"
)

type Repository interface {
	ListActive(db *gorm.DB, category string) ([]Resource, error)
	FindActiveByID(db *gorm.DB, id uint) (*Resource, error)
	Save(db *gorm.DB, res *Resource) error
	CategoryTotals(db *gorm.DB, category string) (count int64, downloads int64, err error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) ListActive(db *gorm.DB, category string) ([]Resource, error) {
	var list []Resource
	q := db.Where("is_active = ?", true).Order("order_index")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) FindActiveByID(db *gorm.DB, id uint) (*Resource, error) {
	var res Resource
	err := db.Where("id = ? AND is_active = ?", id, true).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repositoryImpl) Save(db *gorm.DB, res *Resource) error {
	return db.Save(res).Error
}

func (r *repositoryImpl) CategoryTotals(db *gorm.DB, category string) (int64, int64, error) {
	var count int64
	if err := db.Model(&Resource{}).
		Where("is_active = ? AND category = ?", true, category).
		Count(&count).Error; err != nil {
		return 0, 0, err
	}
	var downloads int64
	if err := db.Model(&Resource{}).
		Where("is_active = ? AND category = ?", true, category).
		Select("COALESCE(SUM(download_count), 0)").
		Scan(&downloads).Error; err != nil {
		return 0, 0, err
	}
	return count, downloads, nil
}
