package postgres

import (
	"context"
	"database/sql"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"
)

type sqlUnitOfWork struct {
	db *sql.DB
	tx *sql.Tx
}

// NewUnitOfWork creates a unit of work over db; repositories handed out inside Execute share one transaction
func NewUnitOfWork(db *sql.DB) port.UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) querier() SQLQuerier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *sqlUnitOfWork) ResourceRepo() port.ResourceRepository {
	return NewSqlResourceRepository(u.querier())
}

func (u *sqlUnitOfWork) UploadRepo() port.UploadRepository {
	return NewSqlUploadRepository(u.querier())
}

func (u *sqlUnitOfWork) FolderRepo() port.FolderRepository {
	return NewSqlFolderRepository(u.querier())
}

func (u *sqlUnitOfWork) FolderTagRepo() port.FolderTagRepository {
	return NewFolderTagRepository(u.querier())
}

func (u *sqlUnitOfWork) TagRepo() port.TagRepository {
	return NewSqlTagRepository(u.querier())
}

func (u *sqlUnitOfWork) ClassificationRepo() port.ClassificationRepository {
	return NewSqlClassificationRepository(u.querier())
}

func (u *sqlUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	uowWithTx := &sqlUnitOfWork{db: u.db, tx: tx}

	if err := fn(uowWithTx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
