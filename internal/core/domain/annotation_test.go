package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawAnnotation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ann     RawAnnotation
		textLen int
		wantErr bool
	}{
		{name: "valid range", ann: RawAnnotation{Start: 0, End: 5}, textLen: 10},
		{name: "range at end", ann: RawAnnotation{Start: 5, End: 10}, textLen: 10},
		{name: "negative start", ann: RawAnnotation{Start: -1, End: 5}, textLen: 10, wantErr: true},
		{name: "empty range", ann: RawAnnotation{Start: 5, End: 5}, textLen: 10, wantErr: true},
		{name: "inverted range", ann: RawAnnotation{Start: 6, End: 5}, textLen: 10, wantErr: true},
		{name: "past end of text", ann: RawAnnotation{Start: 5, End: 11}, textLen: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ann.Validate(tt.textLen)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	outer := Span{Start: 2, End: 10}

	assert.True(t, outer.Contains(Span{Start: 2, End: 10}))
	assert.True(t, outer.Contains(Span{Start: 4, End: 6}))
	assert.False(t, outer.Contains(Span{Start: 1, End: 6}))
	assert.False(t, outer.Contains(Span{Start: 4, End: 11}))
}

func TestAnnotatedStream_AnnotationCount(t *testing.T) {
	stream := AnnotatedStream{
		Tokens: []DecoratedToken{
			{Token: Token{Text: "let"}},
			{Token: Token{Text: "x"}, Annotation: &TypeAnnotation{Type: "i32"}},
			{Token: Token{Text: ";"}},
		},
	}

	assert.Equal(t, 1, stream.AnnotationCount())
}
