// Package classify identifies the type, color and style of a garment photo.
package classify

import (
	"context"
	"log/slog"

	"github.com/erazemk/omara/internal/airesponse"
	"github.com/erazemk/omara/internal/llm"
	"github.com/erazemk/omara/internal/model"
)

const prompt = `Classify the clothing item in this image.
Respond ONLY with a JSON object of the form {"type": "...", "color": "...", "style": "..."} and no other text.
"type" must be one of: Top, Bottom, Outerwear, Dress, Shoes, Accessory.
"color" is the dominant color in plain words, for example "Navy Blue".
"style" names the cut or material, for example "Plain Shirt" or "Slim Fit Jeans".`

// Classifier asks a model to classify garment images.
type Classifier struct {
	gen llm.Generator
}

// New returns a classifier backed by gen.
func New(gen llm.Generator) *Classifier {
	return &Classifier{gen: gen}
}

// Classify sends the image to the model and validates its answer against
// the classification contract. Failures are *airesponse.Error values.
func (c *Classifier) Classify(ctx context.Context, image []byte, mime string) (model.Classification, error) {
	raw, err := c.gen.Generate(ctx, prompt, llm.Attachment{Data: image, MIME: mime})
	if err != nil {
		slog.Error("classification request failed", "error", err)
		return model.Classification{}, airesponse.Upstream(airesponse.ClassificationContract.Name, err)
	}

	result, err := airesponse.ParseClassification(raw)
	if err != nil {
		slog.Warn("classification response rejected", "error", err, "raw", raw)
		return model.Classification{}, err
	}

	slog.Info("item classified", "type", result.Type, "color", result.Color, "style", result.Style)
	return result, nil
}
