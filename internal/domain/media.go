package domain

// MediaKind distingue los flujos de video de los de audio
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// MIMEType retorna el tipo con el que se guarda el archivo descargado
func (k MediaKind) MIMEType() string {
	if k == KindAudio {
		return "audio/mpeg"
	}
	return "video/mp4"
}

// Extension retorna la extensión de archivo sin punto
func (k MediaKind) Extension() string {
	if k == KindAudio {
		return "mp3"
	}
	return "mp4"
}

// Platform tags canónicos
const (
	PlatformTikTok    = "TIKTOK"
	PlatformInstagram = "INSTAGRAM"
	PlatformFacebook  = "FACEBOOK"
	PlatformYouTube   = "YOUTUBE"
	PlatformTwitter   = "X / TWITTER"
	PlatformPinterest = "PINTEREST"
	PlatformReddit    = "REDDIT"
	PlatformSnapchat  = "SNAPCHAT"
	PlatformVimeo     = "VIMEO"
	PlatformLinkedIn  = "LINKEDIN"

	// PlatformGeneric se usa cuando ninguna firma coincide
	PlatformGeneric = "SOCIAL VIDEO"
)

// ResolveSource indica qué camino produjo un VideoInfo
type ResolveSource string

const (
	SourcePrimary  ResolveSource = "primary"
	SourceFallback ResolveSource = "fallback"
)

// MediaDescriptor describe un flujo descargable
type MediaDescriptor struct {
	URL     string    `json:"url"`
	Quality string    `json:"quality"`
	Kind    MediaKind `json:"kind"`

	// Estimated es true cuando la etiqueta fue inferida por posición y no
	// leída de la respuesta
	Estimated bool `json:"estimated,omitempty"`
}

// VideoInfo es el resultado de resolver una URL
type VideoInfo struct {
	Title       string            `json:"title"`
	Platform    string            `json:"platform"`
	Thumbnail   string            `json:"thumbnail"`
	Duration    string            `json:"duration"`
	OriginalURL string            `json:"originalUrl"`
	Medias      []MediaDescriptor `json:"medias"`
	Source      ResolveSource     `json:"source"`
}

// HasMedia retorna true si hay algo que descargar
func (v *VideoInfo) HasMedia() bool {
	return len(v.Medias) > 0
}

// Videos retorna hasta limit entradas de video en el orden del ranking
func (v *VideoInfo) Videos(limit int) []MediaDescriptor {
	return v.filter(KindVideo, limit)
}

// Audios retorna hasta limit entradas de audio
func (v *VideoInfo) Audios(limit int) []MediaDescriptor {
	return v.filter(KindAudio, limit)
}

func (v *VideoInfo) filter(kind MediaKind, limit int) []MediaDescriptor {
	var out []MediaDescriptor
	for _, m := range v.Medias {
		if limit > 0 && len(out) >= limit {
			break
		}
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}
