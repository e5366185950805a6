package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/report"
)

// ReportRepo matches the domain report repository contract.
type ReportRepo interface {
	report.Repository
	WithTx(tx *gorm.DB) ReportRepo
}

type DBReportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) *DBReportRepo {
	return &DBReportRepo{
		db: db,
	}
}

func (r *DBReportRepo) CreateWithIssues(rep *report.Report, issues []report.Issue) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rep).Error; err != nil {
			return err
		}
		for i := range issues {
			issues[i].ReportID = rep.ID
			if err := tx.Create(&issues[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DBReportRepo) FindByTicketID(ticketID uuid.UUID) (*report.Report, error) {
	var rep report.Report
	err := r.db.First(&rep, "ticket_id = ?", ticketID).Error
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *DBReportRepo) FindIssues(reportID uuid.UUID) ([]report.Issue, error) {
	var issues []report.Issue
	err := r.db.Where("report_id = ?", reportID).
		Order("severity, created_at").
		Find(&issues).Error
	return issues, err
}

func (r *DBReportRepo) WithTx(tx *gorm.DB) ReportRepo {
	if tx == nil {
		return r
	}
	return &DBReportRepo{
		db: tx,
	}
}
