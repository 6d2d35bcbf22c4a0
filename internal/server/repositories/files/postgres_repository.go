package files

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

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {

	query :=
		`INSERT INTO files (name, size, mime_type, storage_key, thumbnail_key, user_id, folder_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.Name, file.Size, file.MimeType, file.StorageKey, file.ThumbnailKey,
		file.UserID, file.FolderID).Scan(&file.ID, &file.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query :=
		`SELECT id, name, size, mime_type, storage_key, thumbnail_key, user_id, folder_id, created_at
		 FROM files
		 WHERE id = $1
		 `

	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.Name, &file.Size, &file.MimeType, &file.StorageKey,
		&file.ThumbnailKey, &file.UserID, &file.FolderID, &file.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string, folderID *string) ([]*models.File, error) {

	query :=
		`SELECT id, name, size, mime_type, storage_key, thumbnail_key, user_id, folder_id, created_at
		 FROM files
		 WHERE user_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		item := models.File{}
		err := rows.Scan(&item.ID, &item.Name, &item.Size, &item.MimeType, &item.StorageKey,
			&item.ThumbnailKey, &item.UserID, &item.FolderID, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`

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
