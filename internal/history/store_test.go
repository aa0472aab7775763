package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ininit/OpenTranslate/internal/models"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs    []execCall
	affected string
	row      pgx.Row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	tag := f.affected
	if tag == "" {
		tag = "INSERT 0 1"
	}
	return pgconn.NewCommandTag(tag), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return f.row
}

type rowFunc func(dest ...any) error

func (r rowFunc) Scan(dest ...any) error { return r(dest...) }

func TestRecord(t *testing.T) {
	db := &fakeDB{}
	s := NewStore(db)
	res := &translator.Result{Engine: "deepl", Text: "Hi", From: "en", To: "de", Trans: translator.Paragraphs{Paragraphs: []string{"Hallo"}}}

	id, err := s.Record(context.Background(), "deepl", translator.Request{Text: "Hi", From: "auto", To: "de"}, res)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if id == uuid.Nil || len(db.execs) != 1 {
		t.Fatalf("unexpected insert: id=%s execs=%d", id, len(db.execs))
	}
	args := db.execs[0].args
	if args[3] != "en" || args[6] != models.TranslationCompleted {
		t.Fatalf("resolved source language or status not stored: %v", args)
	}
	var stored translator.Result
	if err := json.Unmarshal(args[5].([]byte), &stored); err != nil || stored.Trans.Paragraphs[0] != "Hallo" {
		t.Fatalf("unexpected stored result %s", args[5])
	}
}

func TestCompleteAndFailMissingJob(t *testing.T) {
	db := &fakeDB{affected: "UPDATE 0"}
	s := NewStore(db)
	job := uuid.New()

	if err := s.Complete(context.Background(), job, &translator.Result{From: "en"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("complete: expected ErrNotFound, got %v", err)
	}
	if err := s.Fail(context.Background(), job, "boom"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("fail: expected ErrNotFound, got %v", err)
	}

	db.affected = "UPDATE 1"
	if err := s.Fail(context.Background(), job, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}
}

func TestGetByJob(t *testing.T) {
	job := uuid.New()
	now := time.Now()
	db := &fakeDB{row: rowFunc(func(dest ...any) error {
		*dest[0].(*uuid.UUID) = uuid.New()
		*dest[1].(**uuid.UUID) = &job
		*dest[2].(*string) = "deepl"
		*dest[3].(*string) = "Hi"
		*dest[4].(*string) = "en"
		*dest[5].(*string) = "de"
		*dest[6].(*[]byte) = []byte(`{"engine":"deepl"}`)
		*dest[7].(*models.TranslationStatus) = models.TranslationCompleted
		*dest[9].(*time.Time) = now
		*dest[10].(*time.Time) = now
		return nil
	})}

	tr, err := NewStore(db).GetByJob(context.Background(), job)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *tr.JobID != job || tr.Status != models.TranslationCompleted || string(tr.Result) != `{"engine":"deepl"}` {
		t.Fatalf("unexpected translation %+v", tr)
	}
}

func TestGetByJobNotFound(t *testing.T) {
	db := &fakeDB{row: rowFunc(func(...any) error { return pgx.ErrNoRows })}
	if _, err := NewStore(db).GetByJob(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct{ limit, offset, wantLimit, wantOffset int }{
		{0, 0, defaultLimit, 0},
		{10, 5, 10, 5},
		{1000, -3, maxLimit, 0},
	}
	for _, tt := range tests {
		l, o := clampPage(tt.limit, tt.offset)
		if l != tt.wantLimit || o != tt.wantOffset {
			t.Errorf("clampPage(%d, %d) = %d, %d", tt.limit, tt.offset, l, o)
		}
	}
}
