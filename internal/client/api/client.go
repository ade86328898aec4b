// Package api is the HTTP client for the chesstalk REST API.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"chess/internal/client/display"
	"chess/internal/server/core"
)

// HealthResponse mirrors the /health payload
type HealthResponse struct {
	Status   string `json:"status"`
	Time     int64  `json:"time"`
	Storage  string `json:"storage"`
	Sessions int    `json:"sessions"`
}

type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) SetToken(token string) {
	c.AuthToken = token
}

func (c *Client) doRequest(method, path string, body interface{}, result interface{}) error {
	url := c.BaseURL + path

	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	// Request line only in verbose mode, the conversation stays readable
	if c.Verbose {
		fmt.Fprintf(c.Out, "\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
		if bodyStr != "" {
			fmt.Fprintf(c.Out, "%s%s%s\n", display.Blue, bodyStr, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if c.Verbose {
		statusColor := display.Green
		if resp.StatusCode >= 400 {
			statusColor = display.Red
		}
		fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
		if len(respBody) > 0 {
			var prettyResp interface{}
			if err := json.Unmarshal(respBody, &prettyResp); err == nil {
				prettyJSON, _ := json.MarshalIndent(prettyResp, "", "  ")
				fmt.Fprintf(c.Out, "%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, string(prettyJSON))
			} else {
				fmt.Fprintf(c.Out, "%sResponse:%s\n%s\n", display.Cyan, display.Reset, string(respBody))
			}
		}
	}

	if resp.StatusCode >= 400 {
		var errResp core.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Response: errResp}
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("response parse error: %w", err)
		}
	}

	return nil
}

// APIError is a structured error returned by the server
type APIError struct {
	Status   int
	Response core.ErrorResponse
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (%s)", e.Response.Error, e.Response.Code)
	if e.Response.Details != "" {
		msg += ": " + e.Response.Details
	}
	return msg
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateSession(fen string) (*core.SessionResponse, error) {
	var resp core.SessionResponse
	err := c.doRequest("POST", "/api/v1/sessions", &core.CreateSessionRequest{FEN: fen}, &resp)
	return &resp, err
}

func (c *Client) GetSession(sessionID string) (*core.SessionResponse, error) {
	var resp core.SessionResponse
	err := c.doRequest("GET", "/api/v1/sessions/"+sessionID, nil, &resp)
	return &resp, err
}

func (c *Client) DeleteSession(sessionID string) error {
	return c.doRequest("DELETE", "/api/v1/sessions/"+sessionID, nil, nil)
}

// Say sends one utterance to the session
func (c *Client) Say(sessionID, text string) (*core.UtteranceResponse, error) {
	var resp core.UtteranceResponse
	err := c.doRequest("POST", "/api/v1/sessions/"+sessionID+"/utterances", &core.UtteranceRequest{Text: text}, &resp)
	return &resp, err
}

func (c *Client) OpponentMove(sessionID, move string) (*core.SessionResponse, error) {
	var resp core.SessionResponse
	err := c.doRequest("POST", "/api/v1/sessions/"+sessionID+"/opponent-moves", &core.OpponentMoveRequest{Move: move}, &resp)
	return &resp, err
}

func (c *Client) Undo(sessionID string, count int) (*core.SessionResponse, error) {
	var resp core.SessionResponse
	err := c.doRequest("POST", "/api/v1/sessions/"+sessionID+"/undo", &core.UndoRequest{Count: count}, &resp)
	return &resp, err
}

func (c *Client) GetBoard(sessionID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest("GET", "/api/v1/sessions/"+sessionID+"/board", nil, &resp)
	return &resp, err
}

func (c *Client) Parse(kind, text string) (*core.ParseResponse, error) {
	var resp core.ParseResponse
	err := c.doRequest("POST", "/api/v1/parse", &core.ParseRequest{Kind: kind, Text: text}, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData interface{}
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			// Try as raw string
			bodyData = body
		}
	}

	var result interface{}
	if err := c.doRequest(method, path, bodyData, &result); err != nil {
		return err
	}
	if !c.Verbose && result != nil {
		display.PrettyPrintJSON(c.Out, result)
	}
	return nil
}
