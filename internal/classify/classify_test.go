package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/omara/internal/airesponse"
	"github.com/erazemk/omara/internal/llm"
	"github.com/erazemk/omara/internal/model"
)

type fakeGenerator struct {
	text        string
	err         error
	attachments []llm.Attachment
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, attachments ...llm.Attachment) (string, error) {
	f.attachments = attachments
	return f.text, f.err
}

func TestClassify(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"type\": \"Bottom\", \"color\": \"Black\", \"style\": \"Slim Fit Jeans\"}\n```"}
	c := New(gen)

	got, err := c.Classify(context.Background(), []byte("jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != (model.Classification{Type: model.TypeBottom, Color: "Black", Style: "Slim Fit Jeans"}) {
		t.Errorf("unexpected classification %+v", got)
	}
	if len(gen.attachments) != 1 || gen.attachments[0].MIME != "image/jpeg" || string(gen.attachments[0].Data) != "jpeg" {
		t.Errorf("image not forwarded: %+v", gen.attachments)
	}
}

func TestClassifyFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		kind error
	}{
		{"upstream", &fakeGenerator{err: errors.New("connection refused")}, airesponse.ErrUpstreamFailure},
		{"malformed", &fakeGenerator{text: "I think this is a shirt."}, airesponse.ErrMalformedDocument},
		{"schema", &fakeGenerator{text: `{"type": "Top", "color": "Red"}`}, airesponse.ErrSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.gen).Classify(context.Background(), []byte("x"), "image/png")
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
			if tt.gen.text != "" && airesponse.RawText(err) != tt.gen.text {
				t.Errorf("raw text not preserved: %q", airesponse.RawText(err))
			}
		})
	}
}
