package vault

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	"github.com/kanohealth/vitalvault/internal/xslog"
)

// StoreResult identifies an uploaded object. ContentHash may legitimately
// differ between uploads of identical payloads: the vault appends upload
// metadata before hashing.
type StoreResult struct {
	URI         string `json:"uri"`
	ContentHash string `json:"content_hash"`
	Size        int64  `json:"size"`
}

// ObjectInfo describes one stored object for a wallet.
type ObjectInfo struct {
	URI         string            `json:"uri"`
	ContentHash string            `json:"content_hash"`
	Size        int64             `json:"size"`
	UploadedAt  time.Time         `json:"uploaded_at"`
	DataType    string            `json:"data_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type storeRequest struct {
	Data     string            `json:"data"` // base64
	DataType string            `json:"data_type"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Store uploads an encrypted payload.
func (c *Client) Store(ctx context.Context, payload []byte, dataType string, metadata map[string]string) (*StoreResult, error) {
	const route = "/v1/objects"

	req := storeRequest{
		Data:     base64.StdEncoding.EncodeToString(payload),
		DataType: dataType,
		Metadata: metadata,
	}

	var result StoreResult
	if err := c.do(ctx, http.MethodPost, route, nil, req, &result); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "stored object",
		xslog.URI(result.URI),
		xslog.ContentHash(result.ContentHash))

	return &result, nil
}

// List returns the stored objects for a wallet, newest first.
func (c *Client) List(ctx context.Context, walletAddress, dataType string) ([]ObjectInfo, error) {
	const route = "/v1/objects"

	query := url.Values{
		"wallet": []string{walletAddress},
	}
	if dataType != "" {
		query.Set("data_type", dataType)
	}

	var resp struct {
		Objects []ObjectInfo `json:"objects"`
	}
	if err := c.do(ctx, http.MethodGet, route, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Objects, nil
}
