package analysis

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studybuddy/internal/ingest"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// Config holds the analysis service connection settings.
type Config struct {
	// Endpoint is the URL the document is POSTed to.
	Endpoint string `yaml:"endpoint"`

	// FileField is the multipart field carrying the document.
	FileField string `yaml:"file_field"`

	// Questions asks the service for this many quiz questions.
	// Zero leaves the choice to the service.
	Questions int `yaml:"questions"`

	// RequestTimeout limits a single request. Zero means no limit.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns settings for a locally running service.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "http://localhost:8000/api/analyze",
		FileField: "file",
	}
}

// Client submits documents for analysis. It never retries.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a Client. A nil httpClient uses a default client and a
// nil logger discards output.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FileField == "" {
		cfg.FileField = "file"
	}
	return &Client{cfg: cfg, http: httpClient, log: logger}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string { return c.cfg.Endpoint }

// Analyze uploads the candidate and returns the decoded result.
//
// Errors are *TransportError when no usable response arrived and
// *ApplicationError when the service answered with a failure status.
func (c *Client) Analyze(ctx context.Context, cand ingest.Candidate) (*Result, error) {
	f, err := cand.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cand.Name, err)
	}
	defer f.Close()

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(c.writeForm(mw, cand.Name, f))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, pr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ApplicationError{
			Status:  resp.StatusCode,
			Message: errorMessage(body),
		}
	}

	res, err := decodeResult(body, c.log.With(zap.String("file", cand.Name)))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return res, nil
}

func (c *Client) writeForm(mw *multipart.Writer, name string, r io.Reader) error {
	part, err := mw.CreateFormFile(c.cfg.FileField, name)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	if c.cfg.Questions > 0 {
		if err := mw.WriteField("n", strconv.Itoa(c.cfg.Questions)); err != nil {
			return fmt.Errorf("write n: %w", err)
		}
	}
	return mw.Close()
}
