package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tribunal/internal/logging"
	"tribunal/internal/types"
)

// HTTPClient talks to a ledger service over its JSON/HTTP gateway.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPConfig holds configuration for the HTTP ledger client.
type HTTPConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// NewHTTPClient creates a ledger client for the given endpoint.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// wireCase is the gateway's case representation. Identifiers are decimal
// strings because the ledger uses arbitrary-precision integers.
type wireCase struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Filer       string       `json:"filer"`
	EvidenceURI string       `json:"evidence_uri"`
	FiledAt     time.Time    `json:"filed_at"`
	Status      string       `json:"status"`
	Verdict     *wireVerdict `json:"verdict,omitempty"`
}

type wireVerdict struct {
	CaseID    string    `json:"case_id"`
	Verdict   string    `json:"verdict"`
	Reasoning string    `json:"reasoning"`
	Final     bool      `json:"final"`
	Recorded  time.Time `json:"recorded"`
}

type wireError struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *wireCase) toCase(op string) (*types.Case, error) {
	id, ok := new(big.Int).SetString(c.ID, 10)
	if !ok {
		return nil, newError(KindUnknown, op, "malformed case id %q", c.ID)
	}
	out := &types.Case{
		ID:          id,
		Title:       c.Title,
		Filer:       c.Filer,
		EvidenceURI: c.EvidenceURI,
		FiledAt:     c.FiledAt,
		Status:      types.ParseCaseStatus(c.Status),
	}
	if c.Verdict != nil {
		v, err := c.Verdict.toRecord(op)
		if err != nil {
			return nil, err
		}
		out.Verdict = v
	}
	return out, nil
}

func (v *wireVerdict) toRecord(op string) (*types.VerdictRecord, error) {
	id, ok := new(big.Int).SetString(v.CaseID, 10)
	if !ok {
		return nil, newError(KindUnknown, op, "malformed case id %q", v.CaseID)
	}
	verdict := types.VerdictNone
	switch v.Verdict {
	case "GUILTY":
		verdict = types.VerdictGuilty
	case "NOT_GUILTY":
		verdict = types.VerdictNotGuilty
	}
	return &types.VerdictRecord{
		CaseID:    id,
		Verdict:   verdict,
		Reasoning: v.Reasoning,
		Final:     v.Final,
		Recorded:  v.Recorded,
	}, nil
}

// do performs a JSON round trip and decodes either the result or the
// gateway's classified error body.
func (h *HTTPClient) do(ctx context.Context, op, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return newError(KindUnknown, op, "encode request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return newError(KindUnknown, op, "build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		logging.Get(logging.CategoryLedger).Error("%s %s failed after %v: %v", method, path, time.Since(start), err)
		return newError(KindUnavailable, op, "ledger unreachable: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(KindUnavailable, op, "read response: %v", err)
	}
	logging.LedgerDebug("%s %s -> %d in %v (%d bytes)", method, path, resp.StatusCode, time.Since(start), len(data))

	if resp.StatusCode >= 400 {
		var we wireError
		if jsonErr := json.Unmarshal(data, &we); jsonErr == nil && we.Error.Message != "" {
			return newError(ParseKind(we.Error.Kind), op, "%s", we.Error.Message)
		}
		return newError(kindFromStatus(resp.StatusCode), op, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return newError(KindUnknown, op, "decode response: %v", err)
		}
	}
	return nil
}

func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return KindNotAuthorized
	case http.StatusConflict:
		return KindInvalidState
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// FileCase files a new case.
func (h *HTTPClient) FileCase(ctx context.Context, filer, title, evidenceURI string) (*types.Case, error) {
	req := map[string]string{"filer": filer, "title": title, "evidence_uri": evidenceURI}
	var wc wireCase
	if err := h.do(ctx, "fileCase", http.MethodPost, "/cases", req, &wc); err != nil {
		return nil, err
	}
	return wc.toCase("fileCase")
}

// GetCase returns a single case.
func (h *HTTPClient) GetCase(ctx context.Context, id *big.Int) (*types.Case, error) {
	var wc wireCase
	if err := h.do(ctx, "getCase", http.MethodGet, "/cases/"+id.String(), nil, &wc); err != nil {
		return nil, err
	}
	return wc.toCase("getCase")
}

// GetUserCases returns all cases filed by an address.
func (h *HTTPClient) GetUserCases(ctx context.Context, filer string) ([]*types.Case, error) {
	var wcs []wireCase
	path := "/cases?filer=" + url.QueryEscape(filer)
	if err := h.do(ctx, "getUserCases", http.MethodGet, path, nil, &wcs); err != nil {
		return nil, err
	}
	out := make([]*types.Case, 0, len(wcs))
	for i := range wcs {
		c, err := wcs[i].toCase("getUserCases")
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// StartTrial starts the trial for a case.
func (h *HTTPClient) StartTrial(ctx context.Context, id *big.Int) error {
	return h.do(ctx, "startTrial", http.MethodPost, fmt.Sprintf("/cases/%s/start", id), nil, nil)
}

// RecordVerdict records a trial outcome.
func (h *HTTPClient) RecordVerdict(ctx context.Context, id *big.Int, v types.Verdict, reasoning string, final bool) error {
	req := map[string]interface{}{
		"verdict":   v.String(),
		"reasoning": reasoning,
		"final":     final,
	}
	return h.do(ctx, "recordVerdict", http.MethodPost, fmt.Sprintf("/cases/%s/verdict", id), req, nil)
}

// GetVerdict returns the recorded verdict.
func (h *HTTPClient) GetVerdict(ctx context.Context, id *big.Int) (*types.VerdictRecord, error) {
	var wv wireVerdict
	if err := h.do(ctx, "getVerdict", http.MethodGet, fmt.Sprintf("/cases/%s/verdict", id), nil, &wv); err != nil {
		return nil, err
	}
	return wv.toRecord("getVerdict")
}

// HasVerdict reports whether a verdict exists.
func (h *HTTPClient) HasVerdict(ctx context.Context, id *big.Int) (bool, error) {
	var out struct {
		HasVerdict bool `json:"has_verdict"`
	}
	if err := h.do(ctx, "hasVerdict", http.MethodGet, fmt.Sprintf("/cases/%s/verdict/exists", id), nil, &out); err != nil {
		return false, err
	}
	return out.HasVerdict, nil
}

// AppealCase appeals a completed case.
func (h *HTTPClient) AppealCase(ctx context.Context, id *big.Int, grounds string) error {
	req := map[string]string{"grounds": grounds}
	return h.do(ctx, "appealCase", http.MethodPost, fmt.Sprintf("/cases/%s/appeal", id), req, nil)
}

// RequestAdjournment requests a pause of an in-trial case.
func (h *HTTPClient) RequestAdjournment(ctx context.Context, id *big.Int, until time.Time, reason string) error {
	req := map[string]interface{}{
		"until":  until.Format(time.RFC3339),
		"reason": reason,
	}
	return h.do(ctx, "requestAdjournment", http.MethodPost, fmt.Sprintf("/cases/%s/adjourn", id), req, nil)
}

// GetOwner returns the ledger owner's address.
func (h *HTTPClient) GetOwner(ctx context.Context) (string, error) {
	var out struct {
		Owner string `json:"owner"`
	}
	if err := h.do(ctx, "getOwner", http.MethodGet, "/owner", nil, &out); err != nil {
		return "", err
	}
	return out.Owner, nil
}

var _ Client = (*HTTPClient)(nil)
