package gemini

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"
)

// Client implements analysis.Vision on top of the Gemini API.
type Client struct {
	c     *genai.Client
	model string
}

func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: missing api key")
	}
	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: false,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
	}
	hc := &http.Client{
		Transport: otelhttp.NewTransport(tr,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return operation + " " + r.URL.Path
			}),
		),
		Timeout: timeout,
	}
	cl, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
		HTTPOptions: genai.HTTPOptions{
			Timeout: &timeout,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Client{c: cl, model: model}, nil
}

func (g *Client) Close() error { return nil }

// Describe sends the prompt and a single inline image and returns the model's
// text. The response is constrained to the feedback JSON shape, but parsing
// and validation are left to the caller.
func (g *Client) Describe(ctx context.Context, prompt string, img []byte, mime string) (string, error) {
	parts := []*genai.Part{
		{Text: prompt},
		{InlineData: &genai.Blob{Data: img, MIMEType: mime}},
	}
	resp, err := g.c.Models.GenerateContent(ctx, g.model, []*genai.Content{{Role: "user", Parts: parts}}, generateConfig())
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func generateConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	topP := float32(0.8)
	list := &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"asanaName":           {Type: genai.TypeString},
				"alignmentHighlights": list,
				"improvementTips":     list,
				"riskWarnings":        list,
				"coachingCopy":        {Type: genai.TypeString},
			},
			Required: []string{"asanaName", "alignmentHighlights", "improvementTips", "riskWarnings", "coachingCopy"},
		},
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: 2048,
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.MIMEType == "application/json" {
				return string(p.InlineData.Data)
			}
			if p.Text != "" && !p.Thought {
				sb.WriteString(p.Text)
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}
