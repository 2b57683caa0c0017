// Package greeting suggests short greeting-card messages for event campaigns.
package greeting

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"
)

// BedrockClientInterface defines the interface for Bedrock client.
type BedrockClientInterface interface {
	InvokeModel(modelID string, prompt string) (string, error)
}

// Occasion is the event a card is written for.
type Occasion string

const (
	OccasionMothersDay Occasion = "mothers_day"
	OccasionFathersDay Occasion = "fathers_day"
)

// Valid reports whether o is a supported occasion.
func (o Occasion) Valid() bool {
	return o == OccasionMothersDay || o == OccasionFathersDay
}

// ErrInvalidOccasion is returned for an unsupported occasion.
var ErrInvalidOccasion = errors.New("invalid occasion")

const (
	maxRecipientLen = 40
	maxToneLen      = 20
)

// Request describes the card to write.
type Request struct {
	Occasion  Occasion `json:"occasion"`
	Recipient string   `json:"recipient"`
	Tone      string   `json:"tone"`
}

// Validate checks the occasion and trims free-text fields.
func (r *Request) Validate() error {
	if !r.Occasion.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOccasion, r.Occasion)
	}
	r.Recipient = truncate(strings.TrimSpace(r.Recipient), maxRecipientLen)
	r.Tone = truncate(strings.TrimSpace(r.Tone), maxToneLen)
	return nil
}

// ClaudeResponse represents the response from Claude.
type ClaudeResponse struct {
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a content block in Claude's response.
type ContentBlock struct {
	Text string `json:"text"`
}

// Claude 3 Haiku model ID
const claudeHaikuModelID = "anthropic.claude-3-haiku-20240307-v1:0"

var fallbackMessages = map[Occasion][]string{
	OccasionMothersDay: {
		"お母さん、いつもありがとう。これからも元気でいてね。",
		"毎日の美味しいごはん、本当にありがとう。",
		"いつも見守ってくれてありがとう。大好きです。",
	},
	OccasionFathersDay: {
		"お父さん、いつもお仕事おつかれさま。ありがとう。",
		"いつも家族を支えてくれてありがとう。",
		"これからも健康に気をつけて、元気でいてね。",
	},
}

// Suggester writes greeting messages using Bedrock.
type Suggester struct {
	client          BedrockClientInterface
	region          string
	fallbackEnabled bool
	intn            func(n int) int
}

// NewSuggester creates a new Suggester.
func NewSuggester(client BedrockClientInterface, region string) *Suggester {
	return &Suggester{
		client:          client,
		region:          region,
		fallbackEnabled: false,
		intn:            rand.Intn,
	}
}

// EnableFallback enables or disables fallback mode.
// When enabled, a canned message is returned instead of an error when the API fails.
func (s *Suggester) EnableFallback(enabled bool) {
	s.fallbackEnabled = enabled
}

// Suggest returns a greeting message for req.
func (s *Suggester) Suggest(req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	if s.client == nil {
		if s.fallbackEnabled {
			return s.fallbackMessage(req.Occasion), nil
		}
		return "", errors.New("bedrock client not configured")
	}

	response, err := s.client.InvokeModel(claudeHaikuModelID, s.buildPrompt(req))
	if err != nil {
		if s.fallbackEnabled {
			return s.fallbackMessage(req.Occasion), nil
		}
		return "", fmt.Errorf("failed to invoke Bedrock: %w", err)
	}

	result, err := s.parseResponse(response)
	if err != nil {
		if s.fallbackEnabled {
			return s.fallbackMessage(req.Occasion), nil
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func (s *Suggester) buildPrompt(req Request) string {
	event := "母の日"
	if req.Occasion == OccasionFathersDay {
		event = "父の日"
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = "家族"
	}
	tone := req.Tone
	if tone == "" {
		tone = "あたたかい"
	}

	return fmt.Sprintf(`あなたはショッピングモールの%sイベントで、メッセージカードの文面を提案するアシスタントです。
宛先: %s
雰囲気: %s

子どもでも書き写せるやさしい日本語で、1-2文のメッセージを1つだけ提案してください。
前置きや説明は書かず、メッセージ本文だけを返してください。`, event, recipient, tone)
}

func (s *Suggester) parseResponse(response string) (string, error) {
	var claudeResp ClaudeResponse
	if err := json.Unmarshal([]byte(response), &claudeResp); err != nil {
		return "", err
	}

	for _, block := range claudeResp.Content {
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
	}

	return "", errors.New("empty content in response")
}

func (s *Suggester) fallbackMessage(occasion Occasion) string {
	messages := fallbackMessages[occasion]
	return messages[s.intn(len(messages))]
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
