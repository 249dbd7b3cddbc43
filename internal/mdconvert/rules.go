package mdconvert

import (
	"errors"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/sanitizer"
	"github.com/rohmanhakim/paper-review/pkg/failure"
)

/*
Converts small HTML fragments (paper abstracts) into Markdown for the
digest, plus a whitespace-collapsed plain text rendition for prompts and
spreadsheet notes.

- Inline emphasis, code and links survive as Markdown
- Math stays as the literal text the page shows
- DOM order preserved
*/

type Converter interface {
	Convert(fragment string) (ConversionResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ Converter = (*FragmentConverter)(nil)

type FragmentConverter struct {
	metadataSink metadata.MetadataSink
	sanitizer    *sanitizer.FragmentSanitizer
	conv         *converter.Converter
}

func NewFragmentConverter(metadataSink metadata.MetadataSink) *FragmentConverter {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &FragmentConverter{
		metadataSink: metadataSink,
		sanitizer:    sanitizer.NewFragmentSanitizer(metadataSink),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (f *FragmentConverter) Convert(fragment string) (ConversionResult, failure.ClassifiedError) {
	result, err := f.convert(fragment)
	if err != nil {
		f.metadataSink.RecordError(
			time.Now(),
			"mdconvert",
			"FragmentConverter.Convert",
			mapConversionErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{},
		)
		return ConversionResult{}, err
	}
	return result, nil
}

func (f *FragmentConverter) convert(fragment string) (ConversionResult, *ConversionError) {
	if strings.TrimSpace(fragment) == "" {
		return ConversionResult{}, &ConversionError{
			Message:   "fragment has no content",
			Retryable: false,
			Cause:     ErrCauseEmptyFragment,
		}
	}

	cleaned, sanErr := f.sanitizer.Sanitize(fragment)
	if sanErr != nil {
		cause := ErrCauseConversionFailure
		var se *sanitizer.SanitizationError
		if errors.As(sanErr, &se) && se.Cause == sanitizer.ErrCauseEmptyFragment {
			cause = ErrCauseEmptyFragment
		}
		return ConversionResult{}, &ConversionError{
			Message:   sanErr.Error(),
			Retryable: false,
			Cause:     cause,
		}
	}
	fragment = cleaned

	markdown, err := f.conv.ConvertString(fragment)
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}

	return NewConversionResult(strings.TrimSpace(markdown), CollapseWhitespace(doc.Text())), nil
}

// CollapseWhitespace trims s and replaces every run of whitespace,
// newlines included, with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
