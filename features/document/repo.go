package document

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, doc *Document) error {
	query := `INSERT INTO documents (filename, storage_path, content) VALUES ($1, $2, $3) RETURNING id, upload_date`
	return r.db.QueryRowContext(ctx, query, doc.Filename, doc.StoragePath, doc.Content).
		Scan(&doc.ID, &doc.UploadDate)
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (*Document, error) {
	doc := &Document{}
	query := `SELECT id, filename, storage_path, content, upload_date FROM documents WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&doc.ID, &doc.Filename, &doc.StoragePath, &doc.Content, &doc.UploadDate)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT id, filename, storage_path, upload_date FROM documents ORDER BY upload_date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.StoragePath, &d.UploadDate); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
