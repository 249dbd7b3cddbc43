package sanitizer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/sanitizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	metadata.NoopSink
	causes []metadata.ErrorCause
}

func (r *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	r.causes = append(r.causes, cause)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "clean paragraph untouched",
			fragment: "<p>We present a model.</p>",
			want:     "<p>We present a model.</p>",
		},
		{
			name:     "script removed",
			fragment: "<p>Text<script>track()</script></p>",
			want:     "<p>Text</p>",
		},
		{
			name:     "comment removed",
			fragment: "<p>Text<!-- hydration marker --></p>",
			want:     "<p>Text</p>",
		},
		{
			name:     "button and svg removed",
			fragment: `<p>Text<button><svg viewBox="0 0 1 1"></svg>Copy</button></p>`,
			want:     "<p>Text</p>",
		},
		{
			name:     "nested empty containers removed",
			fragment: "<p>Text<span><em> </em></span></p>",
			want:     "<p>Text</p>",
		},
		{
			name:     "void element kept",
			fragment: "<p>Line<br/>break</p>",
			want:     "<p>Line<br/>break</p>",
		},
		{
			name:     "inline markup kept",
			fragment: `<p>A <em>fast</em> <a href="https://x.org">model</a>.</p>`,
			want:     `<p>A <em>fast</em> <a href="https://x.org">model</a>.</p>`,
		},
	}

	s := sanitizer.NewFragmentSanitizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Sanitize(tt.fragment)
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize_NothingLeft(t *testing.T) {
	sink := &recordingSink{}
	s := sanitizer.NewFragmentSanitizer(sink)

	_, err := s.Sanitize("<p> <script>x()</script></p>")
	require.NotNil(t, err)

	var sanErr *sanitizer.SanitizationError
	require.True(t, errors.As(err, &sanErr))
	assert.Equal(t, sanitizer.ErrCauseEmptyFragment, sanErr.Cause)
	assert.Equal(t, []metadata.ErrorCause{metadata.CauseContentInvalid}, sink.causes)
}
