package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var userColumns = []string{"id", "email", "name", "password_hash", "role", "active", "created_at"}

const (
	qInsert     = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*name,\s*password_hash,\s*role,\s*active\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+created_at\s*$`
	qByID       = `(?s)^SELECT\s+id,\s*email,\s*name,\s*password_hash,\s*role,\s*active,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	qByEmail    = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+LOWER\(email\)\s*=\s*LOWER\(\$1\)\s+AND\s+active\s*$`
	qUpdate     = `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$2,\s*name\s*=\s*\$3,\s*password_hash\s*=\s*\$4,\s*role\s*=\s*\$5,\s*active\s*=\s*\$6\s+WHERE\s+id\s*=\s*\$1\s*$`
	qListByName = `(?s)^SELECT\s+id,.*FROM\s+users\s+ORDER\s+BY\s+name\s+ASC\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(qInsert).
		WithArgs("u-1", "alice@example.com", "Alice", "hash", "user", true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &models.User{ID: "u-1", Email: "alice@example.com", Name: "Alice", PasswordHash: "hash", Role: models.RoleUser, Active: true}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_AssignsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).
		WithArgs(sqlmock.AnyArg(), "bob@example.com", "Bob", "hash", "admin", true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	got, err := repo.Create(context.Background(), &models.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "hash", Role: models.RoleAdmin, Active: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(got.ID) != 36 {
		t.Fatalf("expected uuid id, got %q", got.ID)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_active_email_unique"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u-2", Email: "alice@example.com", Active: true})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: "u-3"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_SerializationFailure(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).WillReturnError(&pgconn.PgError{Code: "40001"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u-4"})
	if !errors.Is(err, common.ErrTxConflict) {
		t.Fatalf("expected ErrTxConflict, got %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("driver error lost from chain: %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).
		AddRow("u-1", "alice@example.com", "Alice", "hash", "tester", true, time.Now())
	mock.ExpectQuery(qByID).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Email != "alice@example.com" || got.Role != models.RoleTester || !got.Active {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByID).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_MalformedUUID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByID).WithArgs("not-a-uuid").WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_UnknownRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).
		AddRow("u-1", "a@b.c", "A", "hash", "superuser", true, time.Now())
	mock.ExpectQuery(qByID).WithArgs("u-1").WillReturnRows(rows)

	_, err := repo.GetByID(context.Background(), "u-1")
	if !errors.Is(err, common.ErrUnknownRole) {
		t.Fatalf("want common.ErrUnknownRole, got %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByEmail).WithArgs("Alice@Example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "alice@example.com", "Alice", "hash", "user", true, time.Now()))
	mock.ExpectQuery(qByEmail).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(qByEmail).WithArgs("x@example.com").WillReturnError(errors.New("db err"))

	got, err := repo.GetByEmail(context.Background(), "Alice@Example.com")
	if err != nil || got.ID != "u-1" {
		t.Fatalf("GetByEmail: got (%+v, %v)", got, err)
	}

	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}

	_, err = repo.GetByEmail(context.Background(), "x@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := &models.User{ID: "u-1", Email: "new@example.com", Name: "Alice", PasswordHash: "h2", Role: models.RoleAdmin, Active: true}

	mock.ExpectExec(qUpdate).
		WithArgs("u-1", "new@example.com", "Alice", "h2", "admin", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qUpdate).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(qUpdate).WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.Update(context.Background(), u); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := repo.Update(context.Background(), u); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := repo.Update(context.Background(), u); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).
		AddRow("u-1", "a@example.com", "Alice", "h", "admin", true, time.Now()).
		AddRow("u-2", "b@example.com", "Bob", "h", "user", false, time.Now())
	mock.ExpectQuery(qListByName).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Alice" || got[1].Active {
		t.Fatalf("unexpected users: %+v", got)
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qListByName).WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
