package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/project"
)

// ProjectRepo matches the domain project repository contract.
type ProjectRepo interface {
	project.Repository
	WithTx(tx *gorm.DB) ProjectRepo
}

type DBProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *DBProjectRepo {
	return &DBProjectRepo{
		db: db,
	}
}

func (r *DBProjectRepo) Create(p *project.Project) error {
	return r.db.Create(p).Error
}

func (r *DBProjectRepo) FindByID(id uuid.UUID) (*project.Project, error) {
	var p project.Project
	err := r.db.First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DBProjectRepo) FindByOwnerID(ownerID uuid.UUID) ([]project.Project, error) {
	var projects []project.Project
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *DBProjectRepo) Update(p *project.Project) error {
	return r.db.Save(p).Error
}

func (r *DBProjectRepo) WithTx(tx *gorm.DB) ProjectRepo {
	if tx == nil {
		return r
	}
	return &DBProjectRepo{
		db: tx,
	}
}
