package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTransactionUnmarshalVariants(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		amount   float64
		typeID   int64
		category int64
		catName  string
	}{
		{
			name:     "flat ids",
			in:       `{"id":1,"description":"Sueldo","amount":1500.5,"date":"2022-03-01","type_id":1,"category_id":4}`,
			amount:   1500.5,
			typeID:   1,
			category: 4,
		},
		{
			name:     "decimal string and embedded category",
			in:       `{"id":2,"description":"Cine","amount":"12.50","date":"2022-03-02T00:00:00.000Z","type":2,"category":{"id":3,"name":"Ocio"}}`,
			amount:   12.5,
			typeID:   2,
			category: 3,
			catName:  "Ocio",
		},
		{
			name:     "explicit id wins over embedded object",
			in:       `{"id":3,"amount":1,"category_id":7,"category":{"id":3,"name":"Ocio"}}`,
			amount:   1,
			category: 7,
			catName:  "Ocio",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tr Transaction
			if err := json.Unmarshal([]byte(tc.in), &tr); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tr.Amount != tc.amount || tr.TypeID != tc.typeID || tr.CategoryID != tc.category || tr.CategoryName != tc.catName {
				t.Fatalf("unexpected transaction: %+v", tr)
			}
		})
	}
}

func TestTransactionUnmarshalBadAmount(t *testing.T) {
	var tr Transaction
	if err := json.Unmarshal([]byte(`{"id":1,"amount":"abc"}`), &tr); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestShortDate(t *testing.T) {
	if got := (Transaction{Date: "2022-03-02T00:00:00.000Z"}).ShortDate(); got != "2022-03-02" {
		t.Fatalf("ShortDate = %q", got)
	}
	if got := (Transaction{Date: "bad"}).ShortDate(); got != "bad" {
		t.Fatalf("ShortDate = %q", got)
	}
}

func TestDefaultsAndFormFromTransaction(t *testing.T) {
	now := time.Date(2022, 3, 15, 10, 0, 0, 0, time.UTC)
	f := DefaultTransactionForm(now)
	if f.Date != "2022-03-15" || f.Description != "" || f.Amount != "" {
		t.Fatalf("unexpected default form: %+v", f)
	}

	sf := DefaultSearchFilter()
	if sf.CurrentPage != 1 || sf.Sort != SortDesc || sf.SearchType != FilterAll || sf.SearchCategory != FilterAll {
		t.Fatalf("unexpected default filter: %+v", sf)
	}

	got := FormFromTransaction(Transaction{ID: 9, Description: "Luz", Amount: 30.25, Date: "2022-01-05T00:00:00Z", TypeID: 2, CategoryID: 5})
	want := TransactionForm{Description: "Luz", Amount: "30.25", Type: "2", Date: "2022-01-05", Category: "5"}
	if got != want {
		t.Fatalf("FormFromTransaction = %+v, want %+v", got, want)
	}
}

func TestFormSet(t *testing.T) {
	var f TransactionForm
	for _, field := range []string{FieldDescription, FieldAmount, FieldType, FieldDate, FieldCategory} {
		if !f.Set(field, "x") {
			t.Fatalf("field %q should be accepted", field)
		}
	}
	if f.Set("searchType", "x") {
		t.Fatal("filter field must not be accepted by the form")
	}

	var sf SearchFilter
	if sf.Set(FieldDescription, "x") {
		t.Fatal("form field must not be accepted by the filter")
	}
	if !sf.Set(FieldSort, "asc") || sf.Sort != SortAsc {
		t.Fatalf("sort not set: %+v", sf)
	}
}

func TestFormPayload(t *testing.T) {
	good := TransactionForm{Description: " Sueldo ", Amount: "1000,50", Type: "1", Date: "2022-03-01", Category: "2"}
	p, err := good.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Description != "Sueldo" || p.Amount != 1000.5 || p.Type != 1 || p.CategoryID != 2 {
		t.Fatalf("unexpected payload: %+v", p)
	}

	bad := []struct {
		name  string
		form  TransactionForm
		field string
	}{
		{"missing description", TransactionForm{Amount: "1", Type: "1", Date: "2022-03-01", Category: "1"}, ""},
		{"negative amount", TransactionForm{Description: "a", Amount: "-1", Type: "1", Date: "2022-03-01", Category: "1"}, FieldAmount},
		{"bad date", TransactionForm{Description: "a", Amount: "1", Type: "1", Date: "01/03/2022", Category: "1"}, FieldDate},
		{"non numeric category", TransactionForm{Description: "a", Amount: "1", Type: "1", Date: "2022-03-01", Category: "x"}, FieldCategory},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.form.Payload()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	login := Credentials{Email: "a@b.com", Password: "x"}
	if err := ValidateCredentials(login, "", false); err != nil {
		t.Fatalf("login should validate: %v", err)
	}

	reg := Credentials{Name: "A", Surname: "B", Email: "a@b.com", Password: "x"}
	if err := ValidateCredentials(reg, "y", true); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := ValidateCredentials(Credentials{Email: "a@b.com", Password: "x"}, "x", true); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("expected missing fields, got %v", err)
	}
	if err := ValidateCredentials(reg, "x", true); err != nil {
		t.Fatalf("register should validate: %v", err)
	}
}

func TestValidatePasswordChangeAndProfile(t *testing.T) {
	if err := ValidatePasswordChange("", ""); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("expected empty field, got %v", err)
	}
	if err := ValidatePasswordChange("a", "b"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := ValidatePasswordChange("a", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateProfile(Profile{Name: "A"}); err == nil {
		t.Fatal("expected error for missing surname")
	}
}
