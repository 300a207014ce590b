// Package rental talks to the rental service's employee directory
// ("aluguel"). Workflow operations resolve the acting employee here
// before opening their transaction.
package rental

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrLookupFailed     = errors.New("employee lookup failed")
)

// Employee is the subset of the directory record the workflows need.
// Matricula is the badge number written into audit records.
type Employee struct {
	ID        string `json:"id"`
	Matricula string `json:"matricula"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Funcao    string `json:"funcao"`
}

// Client is an interface for employee directory lookups.
type Client interface {
	GetEmployee(ctx context.Context, id string) (*Employee, error)
}

// HTTPClient implements Client against the rental service's HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *HTTPClient) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	url := fmt.Sprintf("%s/funcionario/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrEmployeeNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var employee Employee
	if err := json.NewDecoder(resp.Body).Decode(&employee); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	return &employee, nil
}
