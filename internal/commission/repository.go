package commission

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, c *Commission) error
	Save(db *gorm.DB, c *Commission) error
	FindByProfileAndLead(db *gorm.DB, profileID, leadID uint) (*Commission, error)
	ListByProfile(db *gorm.DB, profileID uint, status string) ([]Commission, error)
	ListByProfileAndStatuses(db *gorm.DB, profileID uint, statuses ...string) ([]Commission, error)
	RecentByProfile(db *gorm.DB, profileID uint, limit int) ([]Commission, error)
	TotalByStatuses(db *gorm.DB, profileID uint, statuses ...string) (float64, error)
	CountByStatuses(db *gorm.DB, profileID uint, statuses ...string) (int64, error)
	OutstandingTotal(db *gorm.DB, profileID uint) (float64, error)
	ClearLeadReference(db *gorm.DB, leadID uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, c *Commission) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) Save(db *gorm.DB, c *Commission) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) FindByProfileAndLead(db *gorm.DB, profileID, leadID uint) (*Commission, error) {
	var c Commission
	err := db.Where("profile_id = ? AND lead_id = ?", profileID, leadID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) ListByProfile(db *gorm.DB, profileID uint, status string) ([]Commission, error) {
	var list []Commission
	q := db.Where("profile_id = ?", profileID).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByProfileAndStatuses(db *gorm.DB, profileID uint, statuses ...string) ([]Commission, error) {
	var list []Commission
	err := db.Where("profile_id = ? AND status IN ?", profileID, statuses).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) RecentByProfile(db *gorm.DB, profileID uint, limit int) ([]Commission, error) {
	var list []Commission
	err := db.Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) TotalByStatuses(db *gorm.DB, profileID uint, statuses ...string) (float64, error) {
	var total float64
	err := db.Model(&Commission{}).
		Where("profile_id = ? AND status IN ?", profileID, statuses).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repositoryImpl) CountByStatuses(db *gorm.DB, profileID uint, statuses ...string) (int64, error) {
	var count int64
	err := db.Model(&Commission{}).
		Where("profile_id = ? AND status IN ?", profileID, statuses).
		Count(&count).Error
	return count, err
}

// OutstandingTotal is the running-balance source of truth: the sum of all
// PENDING and APPROVED commission amounts for a strategist.
func (r *repositoryImpl) OutstandingTotal(db *gorm.DB, profileID uint) (float64, error) {
	return r.TotalByStatuses(db, profileID, OutstandingStatuses...)
}

// ClearLeadReference detaches commissions from a lead being deleted. The
// records themselves survive.
func (r *repositoryImpl) ClearLeadReference(db *gorm.DB, leadID uint) error {
	return db.Model(&Commission{}).
		Where("lead_id = ?", leadID).
		Update("lead_id", nil).Error
}
