package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/dbx"
	"github.com/dkovalenko/fileharbor/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {

	query :=
		`INSERT INTO folders (name, user_id, parent_id)
         VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		folder.Name, folder.UserID, folder.ParentID).Scan(&folder.ID, &folder.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return folder, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query :=
		`SELECT id, name, user_id, parent_id, created_at FROM folders
		 WHERE id = $1
		 `

	folder := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&folder.ID, &folder.Name, &folder.UserID, &folder.ParentID, &folder.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return folder, nil
}

func (r *PostgresRepository) ListRoots(ctx context.Context, userID string) ([]*models.Folder, error) {
	query :=
		`SELECT id, name, user_id, parent_id, created_at FROM folders
		 WHERE user_id = $1 AND parent_id IS NULL
		 ORDER BY created_at DESC
		 `
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListChildren(ctx context.Context, parentID string) ([]*models.Folder, error) {
	query :=
		`SELECT id, name, user_id, parent_id, created_at FROM folders
		 WHERE parent_id = $1
		 ORDER BY created_at DESC
		 `
	return r.list(ctx, query, parentID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Folder{}
	for rows.Next() {
		item := models.Folder{}
		if err := rows.Scan(&item.ID, &item.Name, &item.UserID, &item.ParentID, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, id string, name string) (*models.Folder, error) {
	query :=
		`UPDATE folders SET name = $2
		 WHERE id = $1
		 RETURNING id, name, user_id, parent_id, created_at
		 `

	folder := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, id, name).Scan(
		&folder.ID, &folder.Name, &folder.UserID, &folder.ParentID, &folder.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return folder, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM folders WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) HasChildren(ctx context.Context, id string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM folders WHERE parent_id = $1)
		     OR EXISTS (SELECT 1 FROM files WHERE folder_id = $1)
		 `

	var has bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&has); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return has, nil
}
