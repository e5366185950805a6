package repository

import (
	"gorm.io/gorm"
)

type Repos struct {
	Job     JobQueue
	Ticket  TicketRepo
	Report  ReportRepo
	Project ProjectRepo
	User    UserRepo
	Chat    ChatRepo

	db *gorm.DB
}

func NewRepositories(db *gorm.DB) *Repos {
	return &Repos{
		Job:     NewJobQueue(db),
		Ticket:  NewTicketRepo(db),
		Report:  NewReportRepo(db),
		Project: NewProjectRepo(db),
		User:    NewUserRepo(db),
		Chat:    NewChatRepo(db),
		db:      db,
	}
}

func (r *Repos) WithTx(tx *gorm.DB) *Repos {
	return &Repos{
		Job:     r.Job.WithTx(tx),
		Ticket:  r.Ticket.WithTx(tx),
		Report:  r.Report.WithTx(tx),
		Project: r.Project.WithTx(tx),
		User:    r.User.WithTx(tx),
		Chat:    r.Chat.WithTx(tx),
		db:      tx,
	}
}

func (r *Repos) ExecTx(fn func(*Repos) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
