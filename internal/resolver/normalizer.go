package resolver

import (
	"strings"

	"github.com/elsanchez/linkgrab/internal/domain"
)

// recordHints decide el tipo de un registro de "medias"
type recordHints struct {
	urlAny      []string
	qualityAny  []string
	qualityNone []string
}

func (h recordHints) match(url, quality string) bool {
	if containsAny(url, h.urlAny) {
		return true
	}
	return containsAny(quality, h.qualityAny) && !containsAny(quality, h.qualityNone)
}

// leafHints decide el tipo de una URL encontrada recorriendo el árbol
type leafHints struct {
	keyAny  []string
	urlAny  []string
	keyNone []string
	urlNone []string
}

func (h leafHints) match(key, url string) bool {
	if !containsAny(key, h.keyAny) && !containsAny(url, h.urlAny) {
		return false
	}
	return !containsAny(key, h.keyNone) && !containsAny(url, h.urlNone)
}

var (
	recordAudioHints = recordHints{
		urlAny:      []string{".mp3", ".m4a"},
		qualityAny:  []string{"audio"},
		qualityNone: []string{"video", "hd"},
	}
	recordVideoHints = recordHints{
		urlAny:     []string{".mp4", ".mov", ".webm"},
		qualityAny: []string{"video", "hd", "watermark", "1080", "720"},
	}

	leafAudioHints = leafHints{
		keyAny:  []string{"audio"},
		urlAny:  []string{".mp3", "m4a"},
		keyNone: []string{"video"},
		urlNone: []string{".mp4"},
	}
	leafVideoHints = leafHints{
		keyAny: []string{"video", "hd"},
		urlAny: []string{".mp4", "video", ".mov", ".webm", "googlevideo"},
	}
)

// Normalize convierte la respuesta cruda del resolver en descriptores sin
// duplicados. Nunca falla: una respuesta vacía o irreconocible da nil.
func Normalize(raw []byte) []domain.MediaDescriptor {
	return NormalizeValue(ParseValue(raw))
}

// NormalizeValue es Normalize sobre un documento ya parseado
func NormalizeValue(root Value) []domain.MediaDescriptor {
	if medias, ok := root.Get("medias"); ok && medias.Kind == KindArray {
		return normalizeRecords(medias.Items)
	}

	w := &walker{seen: make(map[string]bool)}
	w.walk("", root)
	relabelVideos(w.out)
	return w.out
}

func normalizeRecords(records []Value) []domain.MediaDescriptor {
	seen := make(map[string]bool)
	out := make([]domain.MediaDescriptor, 0, len(records))

	for _, rec := range records {
		url := rec.GetText("url")
		if url == "" || seen[url] {
			continue
		}

		quality := rec.GetText("quality")
		kind, ok := recordKind(rec.GetText("type"), url, quality)
		if !ok {
			continue
		}

		seen[url] = true
		out = append(out, domain.MediaDescriptor{
			URL:     url,
			Quality: FormatQuality(quality),
			Kind:    kind,
		})
	}

	return out
}

// recordKind parte del "type" explícito y lo corrige según URL y calidad
func recordKind(explicit, url, quality string) (domain.MediaKind, bool) {
	kind := domain.MediaKind(strings.ToLower(explicit))
	if kind == "" {
		kind = domain.KindVideo
	}

	lowerURL := strings.ToLower(url)
	lowerQuality := strings.ToLower(quality)

	switch {
	case recordAudioHints.match(lowerURL, lowerQuality):
		kind = domain.KindAudio
	case recordVideoHints.match(lowerURL, lowerQuality):
		kind = domain.KindVideo
	}

	return kind, kind == domain.KindVideo || kind == domain.KindAudio
}

type walker struct {
	seen map[string]bool
	out  []domain.MediaDescriptor
}

// walk recorre el árbol llevando la última clave de objeto vista
func (w *walker) walk(key string, v Value) {
	if !v.Truthy() {
		return
	}

	switch v.Kind {
	case KindObject:
		for _, f := range v.Fields {
			w.walk(f.Key, f.Value)
		}
	case KindArray:
		for _, item := range v.Items {
			w.walk(key, item)
		}
	case KindString:
		w.visitLeaf(key, v.Str)
	}
}

func (w *walker) visitLeaf(key, s string) {
	url, ok := candidateURL(s)
	if !ok || w.seen[url] {
		return
	}

	lowerKey := strings.ToLower(key)
	lowerURL := strings.ToLower(url)

	var media domain.MediaDescriptor
	switch {
	case leafAudioHints.match(lowerKey, lowerURL):
		media = domain.MediaDescriptor{URL: url, Quality: LabelAudioDefault, Kind: domain.KindAudio}
	case leafVideoHints.match(lowerKey, lowerURL):
		media = domain.MediaDescriptor{URL: url, Quality: LabelHD, Kind: domain.KindVideo}
	default:
		return
	}

	w.seen[url] = true
	w.out = append(w.out, media)
}

// candidateURL acepta URLs absolutas y relativas al protocolo
func candidateURL(s string) (string, bool) {
	switch {
	case strings.HasPrefix(s, "//"):
		return "https:" + s, true
	case strings.HasPrefix(s, "http"):
		return s, true
	default:
		return "", false
	}
}

// relabelVideos asigna la escalera de calidades por posición cuando todos
// los videos tienen la etiqueta genérica. Las etiquetas así inventadas
// quedan marcadas como Estimated.
func relabelVideos(medias []domain.MediaDescriptor) {
	var idx []int
	for i, m := range medias {
		if m.Kind != domain.KindVideo {
			continue
		}
		if m.Quality != LabelHD {
			return
		}
		idx = append(idx, i)
	}

	for pos, i := range idx {
		label := LabelHD
		if pos < len(qualityLadder) {
			label = qualityLadder[pos]
		}
		medias[i].Quality = label
		medias[i].Estimated = true
	}
}
