package chunking

import "strings"

const titleMarker = "##"

// TagTitle prefixes chunk with ##title## unless title is blank.
func TagTitle(title, chunk string) string {
	if strings.TrimSpace(title) == "" {
		return chunk
	}
	return titleMarker + title + titleMarker + chunk
}

// StripTitle returns the text after the second ## of a tagged chunk, or the
// chunk unchanged when it carries no tag.
func StripTitle(chunk string) string {
	if !strings.HasPrefix(chunk, titleMarker) {
		return chunk
	}
	parts := strings.SplitN(chunk, titleMarker, 3)
	if len(parts) < 3 {
		return chunk
	}
	return parts[2]
}

// IsBlank reports whether a chunk has no text once its title tag is gone.
func IsBlank(chunk string) bool {
	return strings.TrimSpace(StripTitle(chunk)) == ""
}
