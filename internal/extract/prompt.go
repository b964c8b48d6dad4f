package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/concordia/internal/model"
)

// ContextSeparator joins retained chunks into one combined context
const ContextSeparator = "\n\n---\n\n"

const systemPrompt = "You are a careful historian extracting factual and interpretive claims " +
	"about key events in Abraham Lincoln's life. You must only use the provided " +
	"text and avoid speculation. Return concise JSON only."

// BuildPrompt returns the system and user instructions for one (event, context) pair
func BuildPrompt(event model.Event, context string) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Event: %s (%s)\n\n", event.Name, event.ID)
	fmt.Fprintf(&b, "Event description:\n%s\n\n", event.Description)

	b.WriteString("Task:\n")
	b.WriteString("1. From the text below, list all concrete claims related to this event.\n")
	b.WriteString("   - Each claim should be a short, self-contained sentence.\n")
	b.WriteString("   - Include both factual statements and interpretive statements (e.g., about motives or attitudes).\n")
	b.WriteString("2. Extract any dates, times, and places mentioned specifically for this event.\n")
	b.WriteString("3. Classify the tone of the author toward Lincoln in this context as one of:\n")
	b.WriteString(`   "Sympathetic", "Critical", "Neutral", "Mixed", or "Not discussed".` + "\n\n")

	b.WriteString("Text:\n\"\"\"\n")
	b.WriteString(context)
	b.WriteString("\n\"\"\"\n\n")

	b.WriteString("Return your answer as valid JSON with this exact structure:\n\n")
	b.WriteString(`{
  "claims": [ "<claim 1>", "<claim 2>", "..."],
  "temporal_details": {
    "date": "<date if given, else empty string>",
    "time": "<time if given, else empty string>",
    "place": "<place if given, else empty string>"
  },
  "tone": "<one of: Sympathetic, Critical, Neutral, Mixed, Not discussed>"
}
`)

	return systemPrompt, b.String()
}
