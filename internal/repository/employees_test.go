package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-backend/internal/models"
)

func newEmployeesRepo(t *testing.T) (*EmployeesRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEmployeesRepository(db), mock
}

func TestCreateEmployee_WithEmbedding(t *testing.T) {
	repo, mock := newEmployeesRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO employees").
		WithArgs("Ada Lovelace", "ada@example.com", []byte(`[0.1,0.2]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	employee := &models.Employee{Name: "Ada Lovelace", Email: "ada@example.com", Embedding: []float64{0.1, 0.2}}
	require.NoError(t, repo.CreateEmployee(context.Background(), employee))
	assert.Equal(t, int64(5), employee.ID)
}

func TestCreateEmployee_WithoutEmbedding(t *testing.T) {
	repo, mock := newEmployeesRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO employees").
		WithArgs("Ada Lovelace", "", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(6), now))

	employee := &models.Employee{Name: "Ada Lovelace"}
	require.NoError(t, repo.CreateEmployee(context.Background(), employee))
	assert.Equal(t, int64(6), employee.ID)
}

func TestListEmbeddings_SkipsRowlessAndDecodes(t *testing.T) {
	repo, mock := newEmployeesRepo(t)

	mock.ExpectQuery("SELECT id, name, embedding FROM employees WHERE embedding IS NOT NULL").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "embedding"}).
			AddRow(int64(1), "Ada Lovelace", []byte(`[0.1,0.2]`)).
			AddRow(int64(2), "Grace Hopper", []byte(`[0.3,0.4]`)))

	records, err := repo.ListEmbeddings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []float64{0.1, 0.2}, records[0].Embedding)
	assert.Equal(t, "Grace Hopper", records[1].Name)
}

func TestGetEmployeesByIDs_EmptyInputSkipsQuery(t *testing.T) {
	repo, mock := newEmployeesRepo(t)

	result, err := repo.GetEmployeesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEmployee_NotFound(t *testing.T) {
	repo, mock := newEmployeesRepo(t)

	mock.ExpectQuery("SELECT id, name, email, embedding, created_at FROM employees").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetEmployee(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
