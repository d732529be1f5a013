package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/models"
)

const (
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	geminiImageModel = "gemini-3-pro-image-preview"
	geminiVideoModel = "veo-3.1-generate-preview"
)

// GeminiImageGenerator calls the Gemini image model over REST.
type GeminiImageGenerator struct {
	apiKey string
	http   *http.Client
	logger *zap.Logger
}

// NewGeminiImageGenerator creates the image service client.
func NewGeminiImageGenerator(apiKey string, logger *zap.Logger) *GeminiImageGenerator {
	return &GeminiImageGenerator{
		apiKey: apiKey,
		http:   &http.Client{},
		logger: logger.Named("gemini-image"),
	}
}

var _ ImageGenerator = (*GeminiImageGenerator)(nil)

type geminiGenerateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
		ImageConfig        struct {
			AspectRatio string `json:"aspectRatio"`
		} `json:"imageConfig"`
	} `json:"generationConfig"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateImage implements ImageGenerator. All failures are folded into
// a terminal failed status; the call never returns an error.
func (g *GeminiImageGenerator) GenerateImage(ctx context.Context, prompt string) models.MediaStatus {
	var req geminiGenerateRequest
	req.Contents = make([]struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}, 1)
	req.Contents[0].Parts = []struct {
		Text string `json:"text"`
	}{{Text: prompt}}
	req.GenerationConfig.ResponseModalities = []string{"IMAGE"}
	req.GenerationConfig.ImageConfig.AspectRatio = "16:9"

	var resp geminiGenerateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", geminiBaseURL, geminiImageModel)
	if err := g.postJSON(ctx, url, req, &resp); err != nil {
		g.logger.Warn("image generation failed", zap.Error(err))
		return models.MediaFailed(err.Error())
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			mimeType := part.InlineData.MimeType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return models.MediaCompleted(fmt.Sprintf("data:%s;base64,%s", mimeType, part.InlineData.Data))
		}
	}

	return models.MediaFailed("no image data in response")
}

func (g *GeminiImageGenerator) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("image generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("image generation: status %d: %s", resp.StatusCode, string(msg))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// GeminiVideoGenerator drives the Veo long-running video API over REST.
type GeminiVideoGenerator struct {
	apiKey string
	http   *http.Client
	logger *zap.Logger
}

// NewGeminiVideoGenerator creates the video service client.
func NewGeminiVideoGenerator(apiKey string, logger *zap.Logger) *GeminiVideoGenerator {
	return &GeminiVideoGenerator{
		apiKey: apiKey,
		http:   &http.Client{},
		logger: logger.Named("gemini-video"),
	}
}

var _ VideoGenerator = (*GeminiVideoGenerator)(nil)

type veoSubmitRequest struct {
	Instances []struct {
		Prompt string `json:"prompt"`
	} `json:"instances"`
	Parameters struct {
		AspectRatio     string `json:"aspectRatio"`
		DurationSeconds int    `json:"durationSeconds"`
	} `json:"parameters"`
}

type veoOperationResponse struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

// Submit implements VideoGenerator.
func (g *GeminiVideoGenerator) Submit(ctx context.Context, prompt string, cfg VideoConfig) (Operation, error) {
	var req veoSubmitRequest
	req.Instances = []struct {
		Prompt string `json:"prompt"`
	}{{Prompt: prompt}}
	req.Parameters.AspectRatio = cfg.AspectRatio
	req.Parameters.DurationSeconds = cfg.DurationSeconds

	url := fmt.Sprintf("%s/models/%s:predictLongRunning", geminiBaseURL, geminiVideoModel)
	var resp veoOperationResponse
	if err := g.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return Operation{}, fmt.Errorf("submit video job: %w", err)
	}
	if resp.Name == "" {
		return Operation{}, fmt.Errorf("submit video job: no operation name in response")
	}

	return operationFromResponse(resp), nil
}

// Poll implements VideoGenerator.
func (g *GeminiVideoGenerator) Poll(ctx context.Context, op Operation) (Operation, error) {
	url := fmt.Sprintf("%s/%s", geminiBaseURL, op.Name)
	var resp veoOperationResponse
	if err := g.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return op, fmt.Errorf("poll video job: %w", err)
	}
	if resp.Name == "" {
		resp.Name = op.Name
	}
	return operationFromResponse(resp), nil
}

// Download implements VideoGenerator.
func (g *GeminiVideoGenerator) Download(ctx context.Context, resultRef, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultRef, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download video: status %d", resp.StatusCode)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create video file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("write video file: %w", err)
	}
	return nil
}

func (g *GeminiVideoGenerator) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(msg))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func operationFromResponse(resp veoOperationResponse) Operation {
	op := Operation{Name: resp.Name, Done: resp.Done}
	if resp.Error != nil {
		op.Error = resp.Error.Message
		if op.Error == "" {
			op.Error = "video generation returned an error"
		}
	}
	if resp.Response != nil {
		samples := resp.Response.GenerateVideoResponse.GeneratedSamples
		if len(samples) > 0 {
			op.ResultRef = samples[0].Video.URI
		}
	}
	return op
}
