package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"sort"

	"github.com/sashabaranov/go-openai"

	"github.com/paleolab/fossilscan/internal/config"
	"github.com/paleolab/fossilscan/internal/fossil"
)

const visionMaxTokens = 1024

const visionSystemPrompt = `You are a paleontology assistant. Identify the fossil in the image.
Respond with a single JSON object with these keys:
classification (one of: permineralized_bone, petrified_wood, shell_fragment, trace_fossil, amber_inclusion, unknown),
geological_period (string),
age_low and age_high (estimated age bounds in million years, age_low <= age_high),
preservation_quality (0.0-1.0),
confidence (0.0-1.0),
species_candidates (array of {name, confidence} objects).`

// Vision classifies specimens with an OpenAI vision model.
type Vision struct {
	client *openai.Client
	model  string
}

// NewVision builds the OpenAI-backed classifier. The API key must be present
// in the config (or OPENAI_API_KEY).
func NewVision(cfg config.OpenAIConfig) (*Vision, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision classifier requires an OpenAI API key (set OPENAI_API_KEY)")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Vision{client: openai.NewClient(cfg.APIKey), model: model}, nil
}

// visionResponse is the JSON shape the model is instructed to return.
type visionResponse struct {
	Classification      string                    `json:"classification"`
	GeologicalPeriod    string                    `json:"geological_period"`
	AgeLow              float64                   `json:"age_low"`
	AgeHigh             float64                   `json:"age_high"`
	PreservationQuality float64                   `json:"preservation_quality"`
	Confidence          float64                   `json:"confidence"`
	SpeciesCandidates   []fossil.SpeciesCandidate `json:"species_candidates"`
}

func (v *Vision) Classify(ctx context.Context, img image.Image) (Observation, error) {
	dataURL, err := encodeDataURL(img)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}

	req := openai.ChatCompletionRequest{
		Model:     v.model,
		MaxTokens: visionMaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: visionSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Identify this fossil specimen."},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	}

	resp, err := v.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if len(resp.Choices) == 0 {
		return Observation{}, fmt.Errorf("%w: empty completion", ErrClassification)
	}

	var parsed visionResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return Observation{}, fmt.Errorf("%w: malformed model response: %v", ErrClassification, err)
	}
	return parsed.observation(), nil
}

// observation normalizes the model output: bounds clamped, age ordered,
// candidates sorted descending.
func (r visionResponse) observation() Observation {
	if r.AgeLow > r.AgeHigh {
		r.AgeLow, r.AgeHigh = r.AgeHigh, r.AgeLow
	}
	candidates := make([]fossil.SpeciesCandidate, 0, len(r.SpeciesCandidates))
	for _, c := range r.SpeciesCandidates {
		c.Confidence = clamp01(c.Confidence)
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	period := r.GeologicalPeriod
	if period == "" {
		period = "unknown"
	}

	return Observation{
		Type:                fossil.ParseType(r.Classification),
		GeologicalPeriod:    period,
		AgeRange:            fossil.AgeRange{Low: r.AgeLow, High: r.AgeHigh},
		PreservationQuality: clamp01(r.PreservationQuality),
		SpeciesCandidates:   candidates,
		Confidence:          clamp01(r.Confidence),
	}
}

func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
