package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"kupipodariday/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func TestOfferRepository_Contribute(t *testing.T) {
	amount := decimal.RequireFromString("1000")

	tests := []struct {
		name       string
		mockExpect func(sqlmock.Sqlmock)
		wantID     int64
		wantErr    error
		errContain string
	}{
		{
			name: "raise and insert commit together",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(raiseWishSQL)).
					WithArgs(amount, sqlmock.AnyArg(), int64(3), int64(2), amount).
					WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectQuery(regexp.QuoteMeta(insertOfferSQL)).
					WithArgs(int64(2), int64(3), amount, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))
				m.ExpectCommit()
			},
			wantID: 15,
		},
		{
			name: "overfund leaves nothing behind",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(raiseWishSQL)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectRollback()
			},
			wantErr: ErrConflict,
		},
		{
			name: "insert failure rolls back the raise",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(raiseWishSQL)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectQuery(regexp.QuoteMeta(insertOfferSQL)).
					WillReturnError(errors.New("disk full"))
				m.ExpectRollback()
			},
			errContain: "insert offer for wish 3",
		},
		{
			name: "commit failure",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(raiseWishSQL)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectQuery(regexp.QuoteMeta(insertOfferSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(16))
				m.ExpectCommit().WillReturnError(errors.New("busy"))
			},
			errContain: "commit tx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := newMockDB(t)
			defer cleanup()
			tt.mockExpect(mock)

			o := &models.Offer{UserID: 2, WishID: 3, Amount: amount, Hidden: true}
			id, err := NewOfferRepository(db).Contribute(t.Context(), o)

			if tt.wantErr != nil || tt.errContain != "" {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				if tt.errContain != "" && !contains(err.Error(), tt.errContain) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContain, err.Error())
				}
				if o.ID != 0 {
					t.Fatalf("offer id must stay unset on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.wantID || o.ID != tt.wantID || o.CreatedAt.IsZero() {
				t.Fatalf("unexpected offer %+v (id %d)", o, id)
			}
		})
	}
}

func TestOfferRepository_ListByWish(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "wish_id", "amount", "hidden", "created_at", "updated_at", "username", "avatar"}).
		AddRow(1, 2, 3, "3000.00", false, now, now, "bob", "https://b").
		AddRow(2, 4, 3, "1999.99", true, now, now, "carol", "https://c")
	mock.ExpectQuery(regexp.QuoteMeta(selectOffersByWishSQL)).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	offers, err := NewOfferRepository(db).ListByWish(t.Context(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("want 2 offers, got %d", len(offers))
	}
	if offers[1].Username != "carol" || !offers[1].Hidden || !offers[1].Amount.Equal(decimal.RequireFromString("1999.99")) {
		t.Fatalf("unexpected offer %+v", offers[1])
	}
}

func TestOfferRepository_GetByID_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectOfferByIDSQL)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	o, err := NewOfferRepository(db).GetByID(t.Context(), 99)
	if err != nil || o != nil {
		t.Fatalf("want (nil, nil), got (%+v, %v)", o, err)
	}
}
