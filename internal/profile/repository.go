package profile

import (
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	GetOrCreateByAuthKey(db *gorm.DB, authKey, email string) (*Profile, error)
	FindByID(db *gorm.DB, id uint) (*Profile, error)
	FindByEmail(db *gorm.DB, email string) (*Profile, error)
	Save(db *gorm.DB, p *Profile) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// GetOrCreateByAuthKey resolves an identity key to its profile, creating one
// at step 0 on first sight. Safe to call redundantly: the identity provider
// may retry-deliver the same token any number of times.
func (r *repositoryImpl) GetOrCreateByAuthKey(db *gorm.DB, authKey, email string) (*Profile, error) {
	var p Profile
	err := db.Where("auth_key = ?", authKey).
		Attrs(Profile{
			AuthKey:              authKey,
			Email:                strings.ToLower(email),
			OnboardingStep:       StepRegistration,
			CommissionPercentage: 5,
		}).
		FirstOrCreate(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Profile, error) {
	var p Profile
	if err := db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*Profile, error) {
	var p Profile
	if err := db.Where("LOWER(email) = LOWER(?)", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) Save(db *gorm.DB, p *Profile) error {
	return db.Save(p).Error
}
