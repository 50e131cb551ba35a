package training

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	ListActive(db *gorm.DB) ([]Module, error)
	ListActiveUpToStep(db *gorm.DB, step int) ([]Module, error)
	FindActiveByID(db *gorm.DB, id uint) (*Module, error)
	ProgressByProfile(db *gorm.DB, profileID uint) (map[uint]Progress, error)
	FindProgress(db *gorm.DB, profileID, moduleID uint) (*Progress, error)
	MarkCompleted(db *gorm.DB, profileID, moduleID uint) (*Progress, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) ListActive(db *gorm.DB) ([]Module, error) {
	var list []Module
	err := db.Where("is_active = ?", true).Order("order_index").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListActiveUpToStep(db *gorm.DB, step int) ([]Module, error) {
	var list []Module
	err := db.Where("is_active = ? AND required_step <= ?", true, step).
		Order("order_index").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) FindActiveByID(db *gorm.DB, id uint) (*Module, error) {
	var m Module
	err := db.Where("id = ? AND is_active = ?", id, true).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repositoryImpl) ProgressByProfile(db *gorm.DB, profileID uint) (map[uint]Progress, error) {
	var list []Progress
	if err := db.Where("profile_id = ?", profileID).Find(&list).Error; err != nil {
		return nil, err
	}
	byModule := make(map[uint]Progress, len(list))
	for _, p := range list {
		byModule[p.ModuleID] = p
	}
	return byModule, nil
}

func (r *repositoryImpl) FindProgress(db *gorm.DB, profileID, moduleID uint) (*Progress, error) {
	var p Progress
	err := db.Where("profile_id = ? AND module_id = ?", profileID, moduleID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkCompleted creates or completes the progress row. Completion sticks:
// re-marking a done module changes nothing.
func (r *repositoryImpl) MarkCompleted(db *gorm.DB, profileID, moduleID uint) (*Progress, error) {
	p, err := r.FindProgress(db, profileID, moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		p = &Progress{ProfileID: profileID, ModuleID: moduleID, Completed: true, CompletedAt: &now}
		if err := db.Create(p).Error; err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	if !p.Completed {
		now := time.Now()
		p.Completed = true
		p.CompletedAt = &now
		if err := db.Save(p).Error; err != nil {
			return nil, err
		}
	}
	return p, nil
}
