package repository

import (
	"context"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyProfileRepository interface {
	Create(ctx context.Context, profile *model.CompanyProfile) error
	Update(ctx context.Context, profile *model.CompanyProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CompanyProfile, error)
	FindByName(ctx context.Context, name string) (*model.CompanyProfile, error)
	FindDefault(ctx context.Context) (*model.CompanyProfile, error)
	ClearDefault(ctx context.Context, except uuid.UUID) error
	List(ctx context.Context) ([]model.CompanyProfile, error)
}

type companyProfileRepository struct {
	db *gorm.DB
}

func NewCompanyProfileRepository(db *gorm.DB) CompanyProfileRepository {
	return &companyProfileRepository{db: db}
}

func (r *companyProfileRepository) Create(ctx context.Context, profile *model.CompanyProfile) error {
	return GetDB(ctx, r.db).Create(profile).Error
}

func (r *companyProfileRepository) Update(ctx context.Context, profile *model.CompanyProfile) error {
	return GetDB(ctx, r.db).Save(profile).Error
}

func (r *companyProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.CompanyProfile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *companyProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	if err := GetDB(ctx, r.db).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *companyProfileRepository) FindByName(ctx context.Context, name string) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	err := GetDB(ctx, r.db).
		Where("LOWER(name) = LOWER(?)", name).
		Order("created_at asc").
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *companyProfileRepository) FindDefault(ctx context.Context) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	if err := GetDB(ctx, r.db).Where("is_default = ?", true).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ClearDefault unsets the default flag on every profile except one
func (r *companyProfileRepository) ClearDefault(ctx context.Context, except uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.CompanyProfile{}).
		Where("is_default = ? AND id <> ?", true, except).
		Update("is_default", false).Error
}

func (r *companyProfileRepository) List(ctx context.Context) ([]model.CompanyProfile, error) {
	var profiles []model.CompanyProfile
	if err := GetDB(ctx, r.db).Order("is_default desc, name asc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
