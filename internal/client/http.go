package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/shirkaty/portal/internal/model"
)

// HTTPClient implements PortalClient using the portal HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// SetToken replaces the bearer token used on subsequent requests. The session
// store calls this after sign-in and refresh.
func (c *HTTPClient) SetToken(token string) { c.token = token }

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Auth ---

func (c *HTTPClient) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signin", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/signout", nil, nil)
}

func (c *HTTPClient) Refresh(ctx context.Context) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/reset", body, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodGet, "/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/auth/me", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Tickets ---

func (c *HTTPClient) CreateTicket(ctx context.Context, req *CreateTicketRequest) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tickets", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *HTTPClient) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tickets/"+url.PathEscape(id), nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *HTTPClient) ListTickets(ctx context.Context, req *ListTicketsRequest) (*ListTicketsResponse, error) {
	q := url.Values{}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if len(req.Priority) > 0 {
		q.Set("priority", strings.Join(req.Priority, ","))
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/tickets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListTicketsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListAllTickets(ctx context.Context, req *ListTicketsRequest) (*ListTicketsResponse, error) {
	q := url.Values{}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}

	path := "/v1/admin/tickets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListTicketsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateTicket(ctx context.Context, id string, req *UpdateTicketRequest) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/tickets/"+url.PathEscape(id), req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *HTTPClient) DeleteTicket(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/tickets/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) AddMessage(ctx context.Context, ticketID, body string) (*model.Message, error) {
	reqBody := map[string]string{"body": body}
	var msg model.Message
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tickets/"+url.PathEscape(ticketID)+"/messages", reqBody, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *HTTPClient) GetMessages(ctx context.Context, ticketID string) ([]*model.Message, error) {
	var resp struct {
		Messages []*model.Message `json:"messages"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tickets/"+url.PathEscape(ticketID)+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// --- Notifications ---

func (c *HTTPClient) ListNotifications(ctx context.Context, unreadOnly bool) (*ListNotificationsResponse, error) {
	path := "/v1/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	var resp ListNotificationsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) MarkNotificationRead(ctx context.Context, id string) error {
	body := map[string]string{"id": id}
	return c.doJSON(ctx, http.MethodPost, "/v1/notifications/read", body, nil)
}

func (c *HTTPClient) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/notifications/read", map[string]string{}, nil)
}

// --- Company ---

func (c *HTTPClient) GetCompany(ctx context.Context) (*model.Company, error) {
	var company model.Company
	if err := c.doJSON(ctx, http.MethodGet, "/v1/company", nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// --- Documents ---

func (c *HTTPClient) ListDocuments(ctx context.Context, status string) ([]*model.Document, error) {
	path := "/v1/documents"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp struct {
		Documents []*model.Document `json:"documents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

func (c *HTTPClient) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := c.doJSON(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) RequestDocument(ctx context.Context, req *RequestDocumentRequest) (*model.Document, error) {
	var doc model.Document
	if err := c.doJSON(ctx, http.MethodPost, "/v1/documents", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UploadDocument sends the file body as multipart/form-data alongside the
// document metadata and returns the created record.
func (c *HTTPClient) UploadDocument(ctx context.Context, name, docType, filename string, data []byte) (*model.Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	if err := mw.WriteField("type", docType); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/documents/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, respBody)
	}

	var doc model.Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &doc, nil
}

// DownloadDocument fetches the stored file body for a completed document.
func (c *HTTPClient) DownloadDocument(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/documents/"+url.PathEscape(id)+"/file", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// --- Transactions ---

func (c *HTTPClient) ListTransactions(ctx context.Context, status string) ([]*model.Transaction, error) {
	path := "/v1/transactions"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp struct {
		Transactions []*model.Transaction `json:"transactions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

func (c *HTTPClient) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	var txn model.Transaction
	if err := c.doJSON(ctx, http.MethodGet, "/v1/transactions/"+url.PathEscape(id), nil, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// --- Admin ---

func (c *HTTPClient) GetStats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/admin/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error) {
	q := url.Values{}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}
	path := "/v1/admin/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListUsersResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ReplyTicket(ctx context.Context, ticketID, body string) (*model.Message, error) {
	reqBody := map[string]string{"body": body}
	var msg model.Message
	if err := c.doJSON(ctx, http.MethodPost, "/v1/admin/tickets/"+url.PathEscape(ticketID)+"/reply", reqBody, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *HTTPClient) UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) (*model.Document, error) {
	var doc model.Document
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/admin/documents/"+url.PathEscape(id), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) ListCompanies(ctx context.Context) ([]*model.Company, error) {
	var resp struct {
		Companies []*model.Company `json:"companies"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/admin/companies", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Companies, nil
}

func (c *HTTPClient) UpdateCompany(ctx context.Context, id string, req *UpdateCompanyRequest) (*model.Company, error) {
	var company model.Company
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/admin/companies/"+url.PathEscape(id), req, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *HTTPClient) SetSubscription(ctx context.Context, companyID string, req *SetSubscriptionRequest) (*model.Subscription, error) {
	var sub model.Subscription
	if err := c.doJSON(ctx, http.MethodPut, "/v1/admin/companies/"+url.PathEscape(companyID)+"/subscription", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *HTTPClient) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*model.Transaction, error) {
	var txn model.Transaction
	if err := c.doJSON(ctx, http.MethodPost, "/v1/admin/transactions", req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *HTTPClient) UpdateTransaction(ctx context.Context, id string, req *UpdateTransactionRequest) (*model.Transaction, error) {
	var txn model.Transaction
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/admin/transactions/"+url.PathEscape(id), req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *HTTPClient) AddTransactionUpdate(ctx context.Context, id, note string) (*model.TransactionUpdate, error) {
	body := map[string]string{"note": note}
	var update model.TransactionUpdate
	if err := c.doJSON(ctx, http.MethodPost, "/v1/admin/transactions/"+url.PathEscape(id)+"/updates", body, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

func (c *HTTPClient) CreateNotification(ctx context.Context, req *CreateNotificationRequest) (*model.Notification, error) {
	var ntf model.Notification
	if err := c.doJSON(ctx, http.MethodPost, "/v1/admin/notifications", req, &ntf); err != nil {
		return nil, err
	}
	return &ntf, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func apiError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for 204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
