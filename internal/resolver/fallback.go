package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/elsanchez/linkgrab/internal/domain"
)

const (
	// StockThumbnail se usa siempre que no hay miniatura real
	StockThumbnail = "https://images.unsplash.com/photo-1611162617474-5b21e879e113?w=800"

	fallbackThumbnail = StockThumbnail + "&q=80"
	fallbackTitle     = "Social Media Video"
	placeholderTitle  = "Content Preview"
	placeholderTag    = "Media"
	defaultDuration   = "HD"

	DefaultGeminiModel = "gemini-3-flash-preview"
)

// ErrNoGenerator indica que no hay API key para el servicio generativo
var ErrNoGenerator = errors.New("generative fallback not configured")

// Generator produce texto JSON a partir de un prompt
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator implementa Generator usando la API de Gemini
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator crea el cliente de Gemini. Sin API key retorna
// ErrNoGenerator y el fallback usa el placeholder.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNoGenerator
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// fallbackSchema describe la respuesta estructurada que se le pide al modelo
var fallbackSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":         {Type: genai.TypeString},
		"platform":      {Type: genai.TypeString},
		"thumbnailHint": {Type: genai.TypeString},
	},
}

// GenerateJSON pide una respuesta JSON de baja temperatura
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
		ResponseSchema:   fallbackSchema,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Fallback produce metadatos sin medias cuando el resolver primario falla
type Fallback struct {
	gen    Generator
	logger *logrus.Logger
}

// NewFallback crea el resolver secundario. gen puede ser nil.
func NewFallback(gen Generator, logger *logrus.Logger) *Fallback {
	return &Fallback{gen: gen, logger: logger}
}

func fallbackPrompt(url string) string {
	return fmt.Sprintf("Analyze this social media URL: %s. Identify the platform and create a catchy, "+
		"professional title for this content. Return strictly valid JSON: "+
		`{"title": "String", "platform": "String", "thumbnailHint": "String"}`, url)
}

// Resolve nunca falla: cualquier error termina en el placeholder genérico.
// Medias siempre queda vacío.
func (f *Fallback) Resolve(ctx context.Context, url string) *domain.VideoInfo {
	if f.gen == nil {
		f.logger.WithField("url", url).Debug("No generative fallback configured, using placeholder")
		return placeholderInfo(url)
	}

	text, err := f.gen.GenerateJSON(ctx, fallbackPrompt(url))
	if err != nil {
		f.logger.WithFields(logrus.Fields{
			"url":   url,
			"error": err,
		}).Warn("Generative fallback failed")
		return placeholderInfo(url)
	}

	doc := ParseValue([]byte(strings.TrimSpace(text)))
	if doc.Kind != KindObject {
		f.logger.WithField("url", url).Warn("Generative fallback returned unparseable response")
		return placeholderInfo(url)
	}

	// thumbnailHint se ignora: siempre se usa la miniatura de stock
	title := strings.TrimSpace(doc.GetText("title"))
	if title == "" {
		title = fallbackTitle
	}
	platform := strings.TrimSpace(doc.GetText("platform"))
	if platform == "" {
		platform = Classify(url)
	}

	return &domain.VideoInfo{
		Title:       title,
		Platform:    platform,
		Thumbnail:   fallbackThumbnail,
		Duration:    defaultDuration,
		OriginalURL: url,
		Medias:      []domain.MediaDescriptor{},
		Source:      domain.SourceFallback,
	}
}

func placeholderInfo(url string) *domain.VideoInfo {
	return &domain.VideoInfo{
		Title:       placeholderTitle,
		Platform:    placeholderTag,
		Thumbnail:   StockThumbnail,
		Duration:    defaultDuration,
		OriginalURL: url,
		Medias:      []domain.MediaDescriptor{},
		Source:      domain.SourceFallback,
	}
}
