package onboarding

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FindByProfile(db *gorm.DB, profileID uint) (*Meeting, error)
	Upsert(db *gorm.DB, profileID uint, at time.Time, eventRef string) (*Meeting, error)
	DeleteByProfile(db *gorm.DB, profileID uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindByProfile(db *gorm.DB, profileID uint) (*Meeting, error) {
	var m Meeting
	err := db.Where("profile_id = ?", profileID).Order("time DESC").First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert records or overwrites the profile's meeting. The scheduler delivers
// events at least once, so this must be safe to repeat.
func (r *repositoryImpl) Upsert(db *gorm.DB, profileID uint, at time.Time, eventRef string) (*Meeting, error) {
	m, err := r.FindByProfile(db, profileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = &Meeting{ProfileID: profileID, Time: at, EventRef: eventRef}
		if err := db.Create(m).Error; err != nil {
			return nil, err
		}
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	m.Time = at
	m.EventRef = eventRef
	if err := db.Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repositoryImpl) DeleteByProfile(db *gorm.DB, profileID uint) error {
	return db.Where("profile_id = ?", profileID).Delete(&Meeting{}).Error
}
