package memory

import (
	"fmt"
	"strings"

	"github.com/sandevgo/lobug/internal/core"
)

const factProbeQuery = "user information and preferences"

const extractionSystemPrompt = `You pull durable facts about the user out of a single exchange between the user and an assistant.

Rules:
- Reply with a JSON array and nothing else. No prose, no markdown fences.
- Every element looks like {"fact": "...", "type": "..."}.
- type is one of: personal, preference, knowledge, event.
- Write each fact as a self-contained third-person sentence, for example "The user's name is Alex."
- Skip greetings, chitchat and filler. Keep only what will matter in a later conversation.
- When nothing is worth keeping, reply with [].`

const summarizerSystemPrompt = `You compress a stretch of conversation into one paragraph of 3-5 sentences.

Rules:
- Third person, past tense.
- Keep concrete details: names, dates, numbers and decisions.
- Leave out greetings and small talk.
- Reply with the paragraph only.`

const distillerSystemPrompt = `You maintain the long-term memory document of a small desk voice assistant called Lo-Bug. The document describes the user.

Input:
1. The current document, possibly empty.
2. Summaries of recent conversations.
3. Facts extracted recently.

Rules:
- Merge the new material into the document.
- Use the sections User Profile, Preferences, Ongoing Topics, Key History.
- Drop anything the new material shows to be stale or contradicted.
- Stay under 400 words.
- Reply with the updated document only.`

func extractionMessages(user, assistant string) []core.Message {
	return []core.Message{
		{Role: core.RoleSystem, Content: extractionSystemPrompt},
		{Role: core.RoleUser, Content: fmt.Sprintf(
			"User said: %s\nAssistant said: %s\n\nExtract facts as a JSON array.", user, assistant)},
	}
}

func summaryMessages(msgs []core.StoredMessage) []core.Message {
	return []core.Message{
		{Role: core.RoleSystem, Content: summarizerSystemPrompt},
		{Role: core.RoleUser, Content: formatTranscript(msgs)},
	}
}

func distillMessages(base string, summaries []core.Summary, facts []core.FactMatch) []core.Message {
	if strings.TrimSpace(base) == "" {
		base = "(empty)"
	}

	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		parts = append(parts, s.Content)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Current base memory ===\n%s\n\n", base)
	fmt.Fprintf(&b, "=== New conversation summaries ===\n%s\n\n", strings.Join(parts, "\n\n"))
	fmt.Fprintf(&b, "=== Recent facts ===\n%s\n\n", bulletList(factContents(facts)))
	b.WriteString("Produce the updated base memory document.")

	return []core.Message{
		{Role: core.RoleSystem, Content: distillerSystemPrompt},
		{Role: core.RoleUser, Content: b.String()},
	}
}

// formatTranscript renders one "Role: content" line per message.
func formatTranscript(msgs []core.StoredMessage) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m.Role.Label()+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, "- "+it)
	}
	return strings.Join(lines, "\n")
}

func factContents(facts []core.FactMatch) []string {
	out := make([]string, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.Content)
	}
	return out
}
