package warehouse

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/groblegark/loom/internal/compiler"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var testRel = compiler.Relation{Database: "main_db", Schema: "scatter", Name: "root_scatter"}

func TestPostgres_EnsureSchema(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS "scatter"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewPostgres(db).EnsureSchema(context.Background(), "scatter"); err != nil {
		t.Fatalf("EnsureSchema() error: %v", err)
	}
}

func TestPostgres_CreateView(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DROP VIEW IF EXISTS "scatter"\."root_scatter" CASCADE`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE VIEW "scatter"\."root_scatter" AS select 1 as id`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewPostgres(db).CreateView(context.Background(), testRel, "select 1 as id"); err != nil {
		t.Fatalf("CreateView() error: %v", err)
	}
}

func TestPostgres_CreateTable(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DROP TABLE IF EXISTS "scatter"\."root_scatter" CASCADE`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "scatter"\."root_scatter" AS select 1 as id`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewPostgres(db).CreateTable(context.Background(), testRel, "select 1 as id"); err != nil {
		t.Fatalf("CreateTable() error: %v", err)
	}
}

func TestPostgres_RowCount(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "scatter"\."root_scatter"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewPostgres(db).RowCount(context.Background(), testRel)
	if err != nil {
		t.Fatalf("RowCount() error: %v", err)
	}
	if n != 4 {
		t.Errorf("RowCount() = %d, want 4", n)
	}
}

func TestPostgres_CreateView_DropFails(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DROP VIEW IF EXISTS "scatter"\."root_scatter" CASCADE`).
		WillReturnError(sql.ErrConnDone)

	if err := NewPostgres(db).CreateView(context.Background(), testRel, "select 1"); err == nil {
		t.Fatal("expected error when drop fails")
	}
}
