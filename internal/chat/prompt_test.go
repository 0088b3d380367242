package chat

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speakersite/internal/models"
)

func TestReferenceTextLayout(t *testing.T) {
	portfolio := []models.PortfolioContent{
		{Section: "A", Title: "one", Content: "first"},
		{Section: "B", Title: "two", Content: "second"},
	}
	talks := []models.Talk{{Title: "T", Subtitle: "S", Abstract: "Abs.", KeyTakeaways: models.StringList{"x", "y"}, AudienceFit: "all", FormatOptions: models.StringList{"Keynote"}}}

	assert.Equal(t, "A: one - first\n\nB: two - second", ReferenceText(portfolio, nil))
	assert.Equal(t,
		"A: one - first\n\nB: two - second\n\nTalk: T (S) - Abs. Key takeaways: x; y. Audience: all. Formats: Keynote.",
		ReferenceText(portfolio, talks))
	assert.Equal(t, "", ReferenceText(nil, nil))
}

func TestTalkLineSkipsEmptyFields(t *testing.T) {
	assert.Equal(t, "Talk: Bare - Only an abstract.", TalkLine(models.Talk{Title: "Bare", Abstract: "Only an abstract."}))
}

func TestBuildRequestKeepsOneSystemMessage(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "hi there"},
		{Role: models.Role("system"), Content: "stray row"},
	}
	msgs, err := BuildRequest(context.Background(), Persona{OwnerName: "Jordan", OwnerHeadline: "a speaker"}, "ref", history)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, schema.User, msgs[3].Role)
	for _, m := range msgs[1:] {
		assert.NotEqual(t, schema.System, m.Role)
	}
}
