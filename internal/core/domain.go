package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	AlertSuccess AlertType = "success"
	AlertDanger  AlertType = "danger"
)

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterAll selects every transaction type or category.
const FilterAll = "all"

type (
	AlertType string

	SortOrder string

	// Profile is the authenticated user's identity record.
	Profile struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Surname string `json:"surname"`
		Email   string `json:"email"`
	}

	// Credentials is the body sent to the login and register endpoints.
	// Login only carries Email and Password.
	Credentials struct {
		Name     string `json:"name,omitempty"`
		Surname  string `json:"surname,omitempty"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	TransactionType struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	Transaction struct {
		ID           int64
		Description  string
		Amount       float64
		Date         string
		TypeID       int64
		TypeName     string
		CategoryID   int64
		CategoryName string
	}

	// TransactionStats is passed through from the server untouched.
	TransactionStats struct {
		GroupByType          json.RawMessage `json:"groupByType"`
		GroupByCategory      json.RawMessage `json:"groupByCategory"`
		GroupByLastSixMonths json.RawMessage `json:"groupByLastSixMonths"`
	}
)

var (
	ErrEmptyField       = errors.New("empty field")
	ErrInvalidDate      = errors.New("invalid date")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ValidationError is raised before any request leaves the client.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValid reports whether the alert type is one the UI knows how to render.
func (a AlertType) IsValid() bool {
	return a == AlertSuccess || a == AlertDanger
}

func (s SortOrder) IsValid() bool {
	return s == SortAsc || s == SortDesc
}

// Valid reports whether the profile identifies a user.
func (p *Profile) Valid() bool {
	return p != nil && p.Email != ""
}

// ShortDate trims a server timestamp to the YYYY-MM-DD form used by forms.
func (t Transaction) ShortDate() string {
	if len(t.Date) >= 10 {
		return t.Date[:10]
	}
	return t.Date
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          int64           `json:"id"`
		Description string          `json:"description"`
		Amount      json.RawMessage `json:"amount"`
		Date        string          `json:"date"`
		Type        json.RawMessage `json:"type"`
		TypeID      json.RawMessage `json:"type_id"`
		Category    json.RawMessage `json:"category"`
		CategoryID  json.RawMessage `json:"category_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amount, err := decodeNumber(raw.Amount)
	if err != nil {
		return fmt.Errorf("transaction %d amount: %w", raw.ID, err)
	}

	*t = Transaction{
		ID:          raw.ID,
		Description: raw.Description,
		Amount:      amount,
		Date:        raw.Date,
	}
	t.TypeID, t.TypeName = decodeRef(raw.TypeID, raw.Type)
	t.CategoryID, t.CategoryName = decodeRef(raw.CategoryID, raw.Category)
	return nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           int64   `json:"id"`
		Description  string  `json:"description"`
		Amount       float64 `json:"amount"`
		Date         string  `json:"date"`
		TypeID       int64   `json:"type_id"`
		TypeName     string  `json:"type_name,omitempty"`
		CategoryID   int64   `json:"category_id"`
		CategoryName string  `json:"category_name,omitempty"`
	}{t.ID, t.Description, t.Amount, t.Date, t.TypeID, t.TypeName, t.CategoryID, t.CategoryName})
}

// decodeNumber accepts both JSON numbers and numeric strings; DECIMAL
// columns are commonly serialized as strings.
func decodeNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// decodeRef resolves a reference that may be sent as an explicit id field,
// a bare id, or an embedded {id, name} object.
func decodeRef(idField, ref json.RawMessage) (int64, string) {
	var id int64
	if f, err := decodeNumber(idField); err == nil && f != 0 {
		id = int64(f)
	}
	if len(ref) == 0 || string(ref) == "null" {
		return id, ""
	}
	if f, err := decodeNumber(ref); err == nil {
		if id == 0 {
			id = int64(f)
		}
		return id, ""
	}
	var obj struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(ref, &obj); err == nil {
		if id == 0 {
			id = obj.ID
		}
		return id, obj.Name
	}
	return id, ""
}

// Session pairs the authenticated profile with its bearer token. Both are
// set together and cleared together.
type Session struct {
	User  *Profile `json:"user"`
	Token string   `json:"token"`
}

// LoggedIn reports whether the session carries both a user and a token.
func (s Session) LoggedIn() bool {
	return s.User != nil && s.Token != ""
}
