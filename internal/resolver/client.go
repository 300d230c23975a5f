package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// maxResponseBytes limita lo que se lee de la API de extracción
const maxResponseBytes = 8 << 20

// ErrLookupStatus indica que la API respondió con un status no exitoso
var ErrLookupStatus = errors.New("resolver returned non-success status")

// ClientConfig contiene los datos de conexión al resolver primario
type ClientConfig struct {
	Endpoint string
	APIKey   string
	APIHost  string
	Timeout  time.Duration
}

// Client hace la llamada HTTP al resolver primario
type Client struct {
	endpoint   string
	apiKey     string
	apiHost    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient crea un cliente del resolver primario
func NewClient(cfg ClientConfig, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		apiHost:  cfg.APIHost,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type lookupRequest struct {
	URL string `json:"url"`
}

// Lookup envía la URL al resolver y retorna el cuerpo crudo de la respuesta
func (c *Client) Lookup(ctx context.Context, mediaURL string) ([]byte, error) {
	body, err := json.Marshal(lookupRequest{URL: mediaURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)

	c.logger.WithFields(logrus.Fields{
		"endpoint": c.endpoint,
		"url":      mediaURL,
	}).Debug("Querying primary resolver")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolver request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drenar para reusar la conexión
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d", ErrLookupStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return data, nil
}
