package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"fintrack/internal/core"
)

// AuthMode selects the credential endpoint.
type AuthMode string

const (
	ModeLogin    AuthMode = "login"
	ModeRegister AuthMode = "register"
)

func (m AuthMode) IsValid() bool {
	return m == ModeLogin || m == ModeRegister
}

// AuthResult is returned by login, register and profile update.
type AuthResult struct {
	User  core.Profile `json:"user"`
	Token string       `json:"token"`
}

// TransactionPage is one page of the filtered transaction list.
type TransactionPage struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int                `json:"total"`
	NumOfPages   int                `json:"numOfPages"`
}

// Authenticate posts credentials to /users/login or /users/register.
func (c *Client) Authenticate(ctx context.Context, mode AuthMode, creds core.Credentials) (AuthResult, error) {
	if !mode.IsValid() {
		return AuthResult{}, fmt.Errorf("unknown auth mode %q", mode)
	}
	if mode == ModeLogin {
		creds.Name, creds.Surname = "", ""
	}
	return c.auth(ctx, c.Post, "/users/"+string(mode), creds, true)
}

func (c *Client) Login(ctx context.Context, creds core.Credentials) (AuthResult, error) {
	return c.Authenticate(ctx, ModeLogin, creds)
}

func (c *Client) Register(ctx context.Context, creds core.Credentials) (AuthResult, error) {
	return c.Authenticate(ctx, ModeRegister, creds)
}

// UpdateUser saves the profile. The reply may omit the token.
func (c *Client) UpdateUser(ctx context.Context, p core.Profile) (AuthResult, error) {
	return c.auth(ctx, c.Put, "/users/update", p, false)
}

// UpdatePassword changes the password and returns the server message.
func (c *Client) UpdatePassword(ctx context.Context, password string) (string, error) {
	resp, err := c.Put(ctx, "/users/update-password", map[string]string{"password": password})
	if err != nil {
		return "", err
	}
	return resp.Message(), nil
}

func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	if err := c.getResult(ctx, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TransactionTypes(ctx context.Context) ([]core.TransactionType, error) {
	var out []core.TransactionType
	if err := c.getResult(ctx, "/transaction-types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Transactions(ctx context.Context, query url.Values) (TransactionPage, error) {
	var page TransactionPage
	if err := c.getResult(ctx, "/transactions", query, &page); err != nil {
		return TransactionPage{}, err
	}
	return page, nil
}

func (c *Client) Stats(ctx context.Context) (core.TransactionStats, error) {
	var stats core.TransactionStats
	if err := c.getResult(ctx, "/transactions/stats", nil, &stats); err != nil {
		return core.TransactionStats{}, err
	}
	return stats, nil
}

// CreateTransaction posts a new transaction and returns the server message.
func (c *Client) CreateTransaction(ctx context.Context, p core.TransactionPayload) (string, error) {
	resp, err := c.Post(ctx, "/transactions/add", p)
	if err != nil {
		return "", err
	}
	return resp.Message(), nil
}

// UpdateTransaction edits a transaction. The type of a transaction cannot
// change, so it is never sent.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPayload) (string, error) {
	p.Type = 0
	resp, err := c.Put(ctx, transactionPath(id), p)
	if err != nil {
		return "", err
	}
	return resp.Message(), nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) (string, error) {
	resp, err := c.Delete(ctx, transactionPath(id))
	if err != nil {
		return "", err
	}
	return resp.Message(), nil
}

// auth decodes a session reply. A reply without a user, or without a token
// when requireToken is set, is malformed.
func (c *Client) auth(ctx context.Context, send func(context.Context, string, any) (*Response, error), path string, body any, requireToken bool) (AuthResult, error) {
	resp, err := send(ctx, path, body)
	if err != nil {
		return AuthResult{}, err
	}
	var res AuthResult
	if err := resp.DecodeResult(&res); err != nil {
		return AuthResult{}, fmt.Errorf("decode %s: %w", path, err)
	}
	switch {
	case res.User.ID == 0:
		return AuthResult{}, fmt.Errorf("decode %s: %w: missing user", path, ErrMalformedResponse)
	case requireToken && res.Token == "":
		return AuthResult{}, fmt.Errorf("decode %s: %w: missing token", path, ErrMalformedResponse)
	}
	return res, nil
}

func (c *Client) getResult(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := resp.DecodeResult(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func transactionPath(id int64) string {
	return "/transactions/" + strconv.FormatInt(id, 10)
}
