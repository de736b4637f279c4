package core

import (
	"strconv"
	"strings"
	"time"
)

// Field names accepted by the transaction form.
const (
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldType        = "type"
	FieldDate        = "date"
	FieldCategory    = "category"
)

// Field names accepted by the search filter.
const (
	FieldSearch         = "search"
	FieldSearchType     = "searchType"
	FieldSearchCategory = "searchCategory"
	FieldSort           = "sort"
)

const DateLayout = "2006-01-02"

// User-facing messages for client-side validation.
const (
	MsgMissingFields    = "Por favor llene todos los campos antes de enviar."
	MsgPasswordMismatch = "Las contraseñas no coinciden."
	MsgInvalidAmount    = "El monto debe ser un número positivo."
	MsgInvalidDate      = "La fecha debe tener el formato AAAA-MM-DD."
)

type (
	// TransactionForm holds the raw input of the create/edit form.
	TransactionForm struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Type        string `json:"type"`
		Date        string `json:"date"`
		Category    string `json:"category"`
	}

	SearchFilter struct {
		Search         string    `json:"search"`
		SearchType     string    `json:"searchType"`
		SearchCategory string    `json:"searchCategory"`
		Sort           SortOrder `json:"sort"`
		CurrentPage    int       `json:"currentPage"`
	}

	// TransactionPayload is the validated body for create and update calls.
	TransactionPayload struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Type        int64   `json:"type,omitempty"`
		Date        string  `json:"date"`
		CategoryID  int64   `json:"category_id"`
	}
)

// DefaultTransactionForm returns an empty form dated today.
func DefaultTransactionForm(now time.Time) TransactionForm {
	return TransactionForm{
		Type:     "1",
		Category: "1",
		Date:     now.Format(DateLayout),
	}
}

func DefaultSearchFilter() SearchFilter {
	return SearchFilter{
		SearchType:     FilterAll,
		SearchCategory: FilterAll,
		Sort:           SortDesc,
		CurrentPage:    1,
	}
}

// FormFromTransaction fills the form from a loaded transaction.
func FormFromTransaction(t Transaction) TransactionForm {
	return TransactionForm{
		Description: t.Description,
		Amount:      FormatAmount(t.Amount),
		Type:        strconv.FormatInt(t.TypeID, 10),
		Date:        t.ShortDate(),
		Category:    strconv.FormatInt(t.CategoryID, 10),
	}
}

// Set assigns a named field and reports whether the name is known.
func (f *TransactionForm) Set(field, value string) bool {
	switch field {
	case FieldDescription:
		f.Description = value
	case FieldAmount:
		f.Amount = value
	case FieldType:
		f.Type = value
	case FieldDate:
		f.Date = value
	case FieldCategory:
		f.Category = value
	default:
		return false
	}
	return true
}

// Set assigns a named filter field and reports whether the name is known.
func (f *SearchFilter) Set(field, value string) bool {
	switch field {
	case FieldSearch:
		f.Search = value
	case FieldSearchType:
		f.SearchType = value
	case FieldSearchCategory:
		f.SearchCategory = value
	case FieldSort:
		f.Sort = SortOrder(value)
	default:
		return false
	}
	return true
}

// Payload validates the form and converts it into a request body.
func (f TransactionForm) Payload() (TransactionPayload, error) {
	if strings.TrimSpace(f.Description) == "" || strings.TrimSpace(f.Amount) == "" ||
		strings.TrimSpace(f.Date) == "" || strings.TrimSpace(f.Type) == "" ||
		strings.TrimSpace(f.Category) == "" {
		return TransactionPayload{}, &ValidationError{Message: MsgMissingFields, Err: ErrEmptyField}
	}

	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return TransactionPayload{}, &ValidationError{Field: FieldAmount, Message: MsgInvalidAmount, Err: err}
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(f.Date)); err != nil {
		return TransactionPayload{}, &ValidationError{Field: FieldDate, Message: MsgInvalidDate, Err: ErrInvalidDate}
	}
	typeID, err := strconv.ParseInt(strings.TrimSpace(f.Type), 10, 64)
	if err != nil || typeID <= 0 {
		return TransactionPayload{}, &ValidationError{Field: FieldType, Message: MsgMissingFields, Err: ErrEmptyField}
	}
	categoryID, err := strconv.ParseInt(strings.TrimSpace(f.Category), 10, 64)
	if err != nil || categoryID <= 0 {
		return TransactionPayload{}, &ValidationError{Field: FieldCategory, Message: MsgMissingFields, Err: ErrEmptyField}
	}

	return TransactionPayload{
		Description: strings.TrimSpace(f.Description),
		Amount:      amount,
		Type:        typeID,
		Date:        strings.TrimSpace(f.Date),
		CategoryID:  categoryID,
	}, nil
}

// ValidateCredentials mirrors the login/register form checks: email and
// password are always required, name, surname and a matching confirmation
// only when registering.
func ValidateCredentials(c Credentials, confirmPassword string, register bool) error {
	if c.Email == "" || c.Password == "" || (register && (c.Name == "" || c.Surname == "")) {
		return &ValidationError{Message: MsgMissingFields, Err: ErrEmptyField}
	}
	if register && c.Password != confirmPassword {
		return &ValidationError{Field: "confirmPassword", Message: MsgPasswordMismatch, Err: ErrPasswordMismatch}
	}
	return nil
}

func ValidateProfile(p Profile) error {
	if p.Name == "" || p.Surname == "" {
		return &ValidationError{Message: MsgMissingFields, Err: ErrEmptyField}
	}
	return nil
}

func ValidatePasswordChange(password, confirm string) error {
	if password == "" || confirm == "" {
		return &ValidationError{Message: MsgMissingFields, Err: ErrEmptyField}
	}
	if password != confirm {
		return &ValidationError{Field: "confirmPassword", Message: MsgPasswordMismatch, Err: ErrPasswordMismatch}
	}
	return nil
}
