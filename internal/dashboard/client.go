package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/isdelr/user-directory-be/internal/models"
)

// Form carries the fields of a create or update submission. PhotoPath, when
// set, names a local file streamed as the photo part.
type Form struct {
	Name      string
	DOB       string
	Email     string
	Mobile    string
	PhotoPath string
}

// APIError is a non-2xx response decoded from the service's error contract.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the Directory Service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: http.DefaultClient}
}

// List fetches all users.
func (c *Client) List(ctx context.Context) ([]models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/users", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode user list: %w", err)
	}
	return users, nil
}

// Get fetches a single user.
func (c *Client) Get(ctx context.Context, id string) (models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/users/"+id, nil)
	if err != nil {
		return models.User{}, err
	}
	return c.doUser(req)
}

// Create submits a new user as multipart form data.
func (c *Client) Create(ctx context.Context, form Form) (models.User, error) {
	return c.submit(ctx, http.MethodPost, c.BaseURL+"/api/users", form, http.StatusCreated)
}

// Update submits changed fields for an existing user.
func (c *Client) Update(ctx context.Context, id string, form Form) (models.User, error) {
	return c.submit(ctx, http.MethodPut, c.BaseURL+"/api/users/"+id, form, http.StatusOK)
}

// Delete removes a user.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/api/users/"+id, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// submit encodes the form as multipart and expects a user body back.
func (c *Client) submit(ctx context.Context, method, url string, form Form, wantStatus int) (models.User, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writeForm(writer, form); err != nil {
		return models.User{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, &body)
	if err != nil {
		return models.User{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return models.User{}, decodeError(resp)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}

func (c *Client) doUser(req *http.Request) (models.User, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.User{}, decodeError(resp)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}

// writeForm appends the form's fields and optional photo file to the writer
// and closes it.
func writeForm(writer *multipart.Writer, form Form) error {
	fields := map[string]string{
		"name":   form.Name,
		"dob":    form.DOB,
		"email":  form.Email,
		"mobile": form.Mobile,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return err
		}
	}

	if form.PhotoPath != "" {
		file, err := os.Open(form.PhotoPath)
		if err != nil {
			return fmt.Errorf("failed to open photo: %w", err)
		}
		defer file.Close()

		part, err := writer.CreateFormFile("photo", filepath.Base(form.PhotoPath))
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file); err != nil {
			return err
		}
	}

	return writer.Close()
}

// decodeError turns a non-2xx response into an APIError, falling back to a
// generic message when the body carries no usable detail.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}
