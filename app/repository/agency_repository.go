package repository

import (
	"github.com/dealerseo/seodash/app/models"
	"gorm.io/gorm"
)

type agencyRepository struct {
	db *gorm.DB
}

// NewAgencyRepository creates a new agency repository instance
func NewAgencyRepository(db *gorm.DB) AgencyRepository {
	return &agencyRepository{db: db}
}

func (r *agencyRepository) Create(agency *models.Agency) error {
	return r.db.Create(agency).Error
}

func (r *agencyRepository) GetByID(id string) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.Where("id = ?", id).First(&agency).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepository) GetBySlug(slug string) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.Where("slug = ?", slug).First(&agency).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepository) List() ([]models.Agency, error) {
	var agencies []models.Agency
	err := r.db.Order("name ASC").Find(&agencies).Error
	return agencies, err
}
