package patient

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textSanitizer strips all markup from free-text patient fields. The strict
// policy escapes entities, which are turned back into plain text since the
// API serves JSON, not HTML.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) Clean(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

func (s *textSanitizer) cleanPtr(in *string) *string {
	if in == nil {
		return nil
	}
	out := s.Clean(*in)
	return &out
}
