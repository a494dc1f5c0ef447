package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"firewatch-backend/internal/models"
)

// EmployeesRepository stores registered employees and their face embeddings
type EmployeesRepository struct {
	db *sql.DB
}

// NewEmployeesRepository creates an employees repository
func NewEmployeesRepository(db *sql.DB) *EmployeesRepository {
	return &EmployeesRepository{db: db}
}

// CreateEmployee inserts an employee. The embedding may be nil when face
// detection was unavailable at registration time.
func (r *EmployeesRepository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	var embedding interface{}
	if len(employee.Embedding) > 0 {
		data, err := json.Marshal(employee.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		embedding = data
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO employees (name, email, embedding)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		employee.Name, employee.Email, embedding,
	).Scan(&employee.ID, &employee.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// GetEmployee fetches an employee by id. Returns ErrNotFound when missing.
func (r *EmployeesRepository) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	var (
		employee  models.Employee
		email     sql.NullString
		embedding []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, embedding, created_at FROM employees WHERE id = $1`, id,
	).Scan(&employee.ID, &employee.Name, &email, &embedding, &employee.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("employee %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get employee %d: %w", id, err)
	}

	employee.Email = email.String
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &employee.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding: %w", err)
		}
	}
	return &employee, nil
}

// ListEmbeddings returns the cached identity records for face matching.
// Employees without a stored embedding are skipped.
func (r *EmployeesRepository) ListEmbeddings(ctx context.Context) ([]models.EmbeddingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, embedding FROM employees WHERE embedding IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	defer rows.Close()

	records := make([]models.EmbeddingRecord, 0)
	for rows.Next() {
		var (
			record models.EmbeddingRecord
			data   []byte
		)
		if err := rows.Scan(&record.EmployeeID, &record.Name, &data); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		if err := json.Unmarshal(data, &record.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding for employee %d: %w", record.EmployeeID, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetEmployeesByIDs returns id -> employee for occupancy enrichment
func (r *EmployeesRepository) GetEmployeesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Employee, error) {
	result := make(map[int64]*models.Employee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email FROM employees WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get employees by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			employee models.Employee
			email    sql.NullString
		)
		if err := rows.Scan(&employee.ID, &employee.Name, &email); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employee.Email = email.String
		result[employee.ID] = &employee
	}
	return result, rows.Err()
}
