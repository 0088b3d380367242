package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"speakersite/internal/models"
)

const FallbackReply = "I apologize, but I could not generate a response."

const personaTemplate = `You are an AI assistant representing {owner_name}, {owner_headline}. You have access to their portfolio information and should answer questions about their background, expertise, projects, and experience. Be professional, knowledgeable, and helpful.

Portfolio Information:
{reference}`

var chatTemplate = prompt.FromMessages(schema.FString,
	schema.SystemMessage(personaTemplate),
	schema.MessagesPlaceholder("history", false),
)

// PortfolioLine flattens one portfolio record into a single line.
func PortfolioLine(p models.PortfolioContent) string {
	return fmt.Sprintf("%s: %s - %s", p.Section, p.Title, p.Content)
}

// TalkLine flattens one talk record into a single line.
func TalkLine(t models.Talk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Talk: %s", t.Title)
	if t.Subtitle != "" {
		fmt.Fprintf(&b, " (%s)", t.Subtitle)
	}
	fmt.Fprintf(&b, " - %s", t.Abstract)
	if len(t.KeyTakeaways) > 0 {
		fmt.Fprintf(&b, " Key takeaways: %s.", strings.Join(t.KeyTakeaways, "; "))
	}
	if t.AudienceFit != "" {
		fmt.Fprintf(&b, " Audience: %s.", t.AudienceFit)
	}
	if len(t.FormatOptions) > 0 {
		fmt.Fprintf(&b, " Formats: %s.", strings.Join(t.FormatOptions, "; "))
	}
	return b.String()
}

// ReferenceText joins every record into the grounding block. Entries are
// separated by blank lines and the talks block follows the portfolio block.
func ReferenceText(portfolio []models.PortfolioContent, talks []models.Talk) string {
	blocks := make([]string, 0, 2)
	if len(portfolio) > 0 {
		lines := make([]string, 0, len(portfolio))
		for _, p := range portfolio {
			lines = append(lines, PortfolioLine(p))
		}
		blocks = append(blocks, strings.Join(lines, "\n\n"))
	}
	if len(talks) > 0 {
		lines := make([]string, 0, len(talks))
		for _, t := range talks {
			lines = append(lines, TalkLine(t))
		}
		blocks = append(blocks, strings.Join(lines, "\n\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// Persona identifies whose portfolio the assistant speaks for.
type Persona struct {
	OwnerName     string
	OwnerHeadline string
}

// BuildRequest renders the system message followed by the history, roles preserved.
func BuildRequest(ctx context.Context, persona Persona, reference string, history []models.Message) ([]*schema.Message, error) {
	msgs, err := chatTemplate.Format(ctx, map[string]any{
		"owner_name":     persona.OwnerName,
		"owner_headline": persona.OwnerHeadline,
		"reference":      reference,
		"history":        convertMessages(history),
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}
	return msgs, nil
}

func convertMessages(history []models.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		role := schema.User
		if msg.Role == models.RoleAssistant {
			role = schema.Assistant
		}
		messages = append(messages, &schema.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages
}
