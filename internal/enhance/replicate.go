package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/anchor/internal/netx"
	"github.com/sethvargo/go-retry"
)

// maxOutputSize bounds a downloaded generation result.
const maxOutputSize = 32 << 20

const (
	DefaultReplicateURL = "https://api.replicate.com"
	DefaultLineartModel = "jagilley/controlnet-scribble:435061a1b5a4c1e26740464bf786efdfa9cb3a3ac488595a2de23e143fdb0117"
	DefaultCannyModel   = "jagilley/controlnet-canny:aff48af9c68d162388d230a2ab003f68d2638d88307bdaf1c2f1ac95079c9613"
)

var (
	ErrPredictionFailed = errors.New("prediction failed")
	ErrNoOutput         = errors.New("prediction returned no output")
	errPending          = errors.New("prediction pending")
)

// ReplicateConfig configures ReplicateClient.
type ReplicateConfig struct {
	BaseURL      string
	Token        string
	LineartModel string
	CannyModel   string
	// PollInterval is the first poll delay, doubled up to PollCap.
	PollInterval time.Duration
	PollCap      time.Duration
	// Timeout bounds the whole prediction.
	Timeout time.Duration
}

// ReplicateClient is a Backend on the Replicate predictions API.
type ReplicateClient struct {
	cfg  ReplicateConfig
	http *http.Client
}

func NewReplicateClient(cfg ReplicateConfig, hc *http.Client) *ReplicateClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultReplicateURL
	}
	if cfg.LineartModel == "" {
		cfg.LineartModel = DefaultLineartModel
	}
	if cfg.CannyModel == "" {
		cfg.CannyModel = DefaultCannyModel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollCap <= 0 {
		cfg.PollCap = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ReplicateClient{cfg: cfg, http: hc}
}

// Configured reports whether an API token is set.
func (c *ReplicateClient) Configured() bool {
	return c.cfg.Token != ""
}

func (c *ReplicateClient) model(controlType string) string {
	if controlType == ControlCanny {
		return c.cfg.CannyModel
	}
	return c.cfg.LineartModel
}

// modelVersion returns the version part of "owner/name:version".
func modelVersion(model string) string {
	if i := strings.LastIndexByte(model, ':'); i >= 0 {
		return model[i+1:]
	}
	return model
}

// BuildParams is the prediction input for in.
func BuildParams(in GenerationInput) map[string]any {
	p := in.Params
	return map[string]any{
		"image":                         in.ControlImage,
		"prompt":                        in.Style.Prompt,
		"negative_prompt":               in.Style.NegativePrompt,
		"num_outputs":                   1,
		"width":                         1024,
		"height":                        1024,
		"conditioning_scale":            p.ConditioningScale,
		"guidance_scale":                p.GuidanceScale,
		"num_inference_steps":           p.InferenceSteps,
		"strength":                      p.DenoiseStrength,
		"controlnet_conditioning_scale": p.ConditioningScale,
		"control_guidance_start":        p.GuidanceStart,
		"control_guidance_end":          p.GuidanceEnd,
		"seed":                          in.Seed,
	}
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// outputURL accepts either a list of URLs or a single URL.
func (p *prediction) outputURL() (string, error) {
	if len(p.Output) == 0 || string(p.Output) == "null" {
		return "", ErrNoOutput
	}
	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil {
		if len(list) == 0 {
			return "", ErrNoOutput
		}
		return list[0], nil
	}
	var one string
	if err := json.Unmarshal(p.Output, &one); err != nil {
		return "", fmt.Errorf("unexpected output format: %w", err)
	}
	return one, nil
}

func (c *ReplicateClient) do(ctx context.Context, method, url string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("replicate %s %s: status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Generate creates a prediction, polls it until it settles and downloads
// the first output image.
func (c *ReplicateClient) Generate(ctx context.Context, in GenerationInput) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var p prediction
	err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/predictions", map[string]any{
		"version": modelVersion(c.model(in.Style.ControlNetType)),
		"input":   BuildParams(in),
	}, &p)
	if err != nil {
		return nil, fmt.Errorf("create prediction: %w", err)
	}

	getURL := p.URLs.Get
	if getURL == "" {
		getURL = c.cfg.BaseURL + "/v1/predictions/" + p.ID
	}

	settled := func() (bool, error) {
		switch p.Status {
		case "succeeded":
			return true, nil
		case "failed", "canceled":
			return true, fmt.Errorf("%w: %v", ErrPredictionFailed, p.Error)
		}
		return false, nil
	}

	backoff := retry.WithCappedDuration(c.cfg.PollCap, retry.NewExponential(c.cfg.PollInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if done, err := settled(); done {
			return err
		}
		if err := c.do(ctx, http.MethodGet, getURL, nil, &p); err != nil {
			return retry.RetryableError(err)
		}
		if done, err := settled(); done {
			return err
		}
		return retry.RetryableError(errPending)
	})
	if err != nil {
		return nil, err
	}

	u, err := p.outputURL()
	if err != nil {
		return nil, err
	}
	return c.download(ctx, u)
}

func (c *ReplicateClient) download(ctx context.Context, url string) (image.Image, error) {
	if strings.HasPrefix(url, "data:") {
		return DecodeImage(url)
	}
	data, err := netx.Fetch(ctx, c.http, url, maxOutputSize)
	if err != nil {
		return nil, fmt.Errorf("download output: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return img, nil
}
