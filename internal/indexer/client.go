// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package indexer wraps the private-tracker JSON API this system
// resolves and uploads releases against: a rate-limited HTTP client,
// the `{status, response, error}` ajax envelope, and multipart upload.
//
// Grounded on the teacher's gazellemusic.Client (same shared-transport,
// rate.Limiter, and ajax-envelope shape), generalized from a read-only
// cross-seed matcher to a full torrent/group/upload client, and on
// cehbz-qbittorrent's multipart request construction for Upload.
package indexer

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
	"time"

	"golang.org/x/time/rate"
)

// DefaultRateLimit and DefaultRatePeriod bound requests per spec.md
// §4.12: at most 10 requests per 10 seconds.
const (
	DefaultRateLimit  = 10
	DefaultRatePeriod = 10 * time.Second
)

var sharedTransport = func() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 90 * time.Second
	t.ForceAttemptHTTP2 = true
	return t
}()

// Client is a rate-limited, shared-connection-pool client for one
// indexer's JSON API.
type Client struct {
	baseURL    string
	apiKey     string
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New builds a Client against baseURL, authenticating with apiKey. name
// identifies the indexer for error messages (e.g. "EXAMPLE").
func New(baseURL, apiKey, name string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		name:    name,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: sharedTransport,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultRatePeriod/DefaultRateLimit), DefaultRateLimit),
	}
}

// ResponseError reports a non-"success" ajax envelope status or a
// non-2xx HTTP status, per spec.md §4.12's ApiResponse issue.
type ResponseError struct {
	Action     string
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("indexer %s request failed (http %d): %s", e.Action, e.StatusCode, e.Message)
}

type envelope struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
}

func (c *Client) ajax(ctx context.Context, action string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("indexer: rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("action", action)
	reqURL := fmt.Sprintf("%s/ajax.php?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("indexer: build request for %s: %w", action, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indexer: request %s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("indexer: read response for %s: %w", action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{Action: action, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("indexer: decode envelope for %s: %w", action, err)
	}
	if env.Status != "success" {
		return nil, &ResponseError{Action: action, StatusCode: resp.StatusCode, Message: env.Error}
	}
	return env.Response, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "relic/1.0")
	req.Header.Set("Authorization", c.apiKey)
}

// Torrent mirrors the indexer's torrent record, per spec.md §3.
type Torrent struct {
	ID                       int64  `json:"id"`
	GroupID                  int64  `json:"groupId"`
	Media                    string `json:"media"`
	Format                   string `json:"format"`
	Encoding                 string `json:"encoding"`
	Remastered               bool   `json:"remastered"`
	RemasterYear             int    `json:"remasterYear"`
	RemasterTitle            string `json:"remasterTitle"`
	RemasterRecordLabel      string `json:"remasterRecordLabel"`
	RemasterCatalogueNumber  string `json:"remasterCatalogueNumber"`
	Scene                    bool   `json:"scene"`
	LossyMasterApproved      bool   `json:"lossyMasterApproved"`
	LossyWebApproved         bool   `json:"lossyWebApproved"`
	Trumpable                bool   `json:"trumpable"`
	FileList                 string `json:"fileList"`
	FilePath                 string `json:"filePath"`
	FileCount                int    `json:"fileCount"`
	Size                     int64  `json:"size"`
}

// Artist is one contributor in a group's music_info.
type Artist struct {
	Name string `json:"name"`
}

// MusicInfo lists a group's credited artists.
type MusicInfo struct {
	Artists []Artist `json:"artists"`
}

// Group mirrors the indexer's torrent-group record.
type Group struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Year         int        `json:"year"`
	CategoryName string     `json:"categoryName"`
	Tags         []string   `json:"tags"`
	MusicInfo    *MusicInfo `json:"musicInfo,omitempty"`
}

// GetTorrentResponse is get_torrent's response payload: the torrent
// plus its parent group.
type GetTorrentResponse struct {
	Torrent Torrent `json:"torrent"`
	Group   Group   `json:"group"`
}

// GetTorrent fetches a torrent record and its parent group.
func (c *Client) GetTorrent(ctx context.Context, id int64) (GetTorrentResponse, error) {
	params := url.Values{}
	params.Set("id", fmt.Sprintf("%d", id))
	raw, err := c.ajax(ctx, "torrent", params)
	if err != nil {
		return GetTorrentResponse{}, err
	}
	var out GetTorrentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return GetTorrentResponse{}, fmt.Errorf("indexer: decode get_torrent: %w", err)
	}
	return out, nil
}

// GetTorrentGroupResponse is get_torrent_group's response: the group
// plus every sibling torrent in it.
type GetTorrentGroupResponse struct {
	Group     Group     `json:"group"`
	Torrents  []Torrent `json:"torrents"`
}

// GetTorrentGroup fetches a group and all torrents belonging to it.
func (c *Client) GetTorrentGroup(ctx context.Context, id int64) (GetTorrentGroupResponse, error) {
	params := url.Values{}
	params.Set("id", fmt.Sprintf("%d", id))
	raw, err := c.ajax(ctx, "torrentgroup", params)
	if err != nil {
		return GetTorrentGroupResponse{}, err
	}
	var out GetTorrentGroupResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return GetTorrentGroupResponse{}, fmt.Errorf("indexer: decode get_torrent_group: %w", err)
	}
	return out, nil
}

// GetTorrentFileAsBuffer downloads a torrent's raw .torrent bytes.
func (c *Client) GetTorrentFileAsBuffer(ctx context.Context, id int64) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("indexer: rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/torrents.php?action=download&id=%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("indexer: build download request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indexer: download torrent %d: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("indexer: read torrent %d body: %w", id, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{Action: "get_torrent_file_as_buffer", StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return body, nil
}

// UploadForm carries the multipart fields spec.md §6 names for
// upload_torrent, plus the encoded .torrent file bytes.
type UploadForm struct {
	TorrentBytes            []byte
	TorrentFilename         string
	Type                    string
	RemasterTitle           string
	RemasterRecordLabel     string
	RemasterCatalogueNumber string
	RemasterYear            string
	Format                  string
	Bitrate                 string
	Media                   string
	ReleaseDesc             string
	GroupID                 string
}

// UploadResponse is upload_torrent's response payload.
type UploadResponse struct {
	TorrentID int64 `json:"torrentid"`
	GroupID   int64 `json:"groupid"`
}

// UploadTorrent submits a new format of an existing group.
func (c *Client) UploadTorrent(ctx context.Context, form UploadForm) (UploadResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: rate limit wait: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file_input", form.TorrentFilename)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: build upload file part: %w", err)
	}
	if _, err := fw.Write(form.TorrentBytes); err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: write upload file part: %w", err)
	}

	fields := map[string]string{
		"type":                        form.Type,
		"remaster_title":              form.RemasterTitle,
		"remaster_record_label":       form.RemasterRecordLabel,
		"remaster_catalogue_number":   form.RemasterCatalogueNumber,
		"remaster_year":               form.RemasterYear,
		"format":                      form.Format,
		"bitrate":                     form.Bitrate,
		"media":                       form.Media,
		"release_desc":                form.ReleaseDesc,
		"groupid":                     form.GroupID,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return UploadResponse{}, fmt.Errorf("indexer: write field %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: close multipart body: %w", err)
	}

	reqURL := fmt.Sprintf("%s/ajax.php?action=upload", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: build upload request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UploadResponse{}, &ResponseError{Action: "upload_torrent", StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: decode upload envelope: %w", err)
	}
	if env.Status != "success" {
		return UploadResponse{}, &ResponseError{Action: "upload_torrent", StatusCode: resp.StatusCode, Message: env.Error}
	}

	var out UploadResponse
	if err := json.Unmarshal(env.Response, &out); err != nil {
		return UploadResponse{}, fmt.Errorf("indexer: decode upload response: %w", err)
	}
	return out, nil
}
