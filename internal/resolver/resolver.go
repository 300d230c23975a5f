package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/elsanchez/linkgrab/internal/domain"
)

const defaultTitle = "Social Video"

// ErrEmptyURL es el único error que retorna Resolve
var ErrEmptyURL = errors.New("please paste a valid video link first")

// Lookuper consulta el resolver primario
type Lookuper interface {
	Lookup(ctx context.Context, url string) ([]byte, error)
}

// MetadataResolver es el resolver secundario, que nunca falla
type MetadataResolver interface {
	Resolve(ctx context.Context, url string) *domain.VideoInfo
}

// Resolver orquesta resolver primario, normalizador y fallback
type Resolver struct {
	primary  Lookuper
	fallback MetadataResolver
	logger   *logrus.Logger
}

// New crea un Resolver. primary puede ser nil: entonces todo va al fallback.
func New(primary Lookuper, fallback MetadataResolver, logger *logrus.Logger) *Resolver {
	return &Resolver{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Resolve obtiene metadatos y medias para la URL. Los fallos del resolver
// primario no son errores: degradan al fallback.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*domain.VideoInfo, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, ErrEmptyURL
	}

	log := r.logger.WithField("url", url)

	if info := r.resolvePrimary(ctx, url, log); info != nil {
		info.Platform = Classify(url)
		log.WithFields(logrus.Fields{
			"platform": info.Platform,
			"medias":   len(info.Medias),
		}).Info("Resolved media")
		return info, nil
	}

	info := r.fallback.Resolve(ctx, url)
	info.OriginalURL = url
	info.Platform = finalPlatform(url, info.Platform)

	log.WithField("platform", info.Platform).Info("Resolved metadata only via fallback")
	return info, nil
}

// resolvePrimary retorna nil si hay que pasar al fallback
func (r *Resolver) resolvePrimary(ctx context.Context, url string, log *logrus.Entry) *domain.VideoInfo {
	if r.primary == nil {
		log.Debug("Primary resolver not configured")
		return nil
	}

	raw, err := r.primary.Lookup(ctx, url)
	if err != nil {
		log.WithError(err).Warn("Primary resolver failed")
		return nil
	}

	doc := ParseValue(raw)
	medias := NormalizeValue(doc)
	if len(medias) == 0 {
		log.Warn("Primary resolver returned no usable media")
		return nil
	}

	title := doc.GetText("title")
	if title == "" {
		title = defaultTitle
	}
	thumbnail := doc.GetText("thumbnail")
	if thumbnail == "" {
		thumbnail = StockThumbnail
	}
	duration := defaultDuration
	if d, ok := doc.Get("duration"); ok && d.Truthy() && d.Text() != "" {
		duration = d.Text() + "s"
	}

	return &domain.VideoInfo{
		Title:       title,
		Thumbnail:   thumbnail,
		Duration:    duration,
		OriginalURL: url,
		Medias:      RankMedias(medias),
		Source:      domain.SourcePrimary,
	}
}

// finalPlatform da prioridad al clasificador. La pista del fallback solo se
// usa si también coincide con una firma conocida.
func finalPlatform(url, hint string) string {
	if tag := Classify(url); tag != domain.PlatformGeneric {
		return tag
	}
	return Classify(hint)
}
