package openai

import (
	"fmt"
	"strings"
)

const rerankResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "scores": {
      "type": "array",
      "items": {
        "type": "number",
        "minimum": 0,
        "maximum": 10
      }
    }
  },
  "required": ["scores"],
  "additionalProperties": false
}`

const rerankPromptTemplate = `You are a product search relevance judge. Given a shopper query and a
numbered list of product passages, rate how well EACH passage answers the query.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this schema:

%s

Rules:
- "scores" must contain exactly one number per passage, in passage order.
- Each score is from 0 (irrelevant) to 10 (a perfect answer to the query).
- Judge only relevance to the query; ignore price and stock unless the query mentions them.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

// buildRerankSystemPrompt returns the system prompt for passage scoring.
func buildRerankSystemPrompt() string {
	return fmt.Sprintf(rerankPromptTemplate, rerankResponseSchema)
}

// buildRerankUserPrompt renders the query and numbered passages.
func buildRerankUserPrompt(query string, passages []string) string {
	var b strings.Builder
	b.WriteString("Query: ")
	b.WriteString(query)
	b.WriteString("\n\nPassages:\n")
	for i, passage := range passages {
		fmt.Fprintf(&b, "%d. %s\n", i+1, passage)
	}
	return b.String()
}

const answerSystemPrompt = `You are a helpful product catalog assistant. Answer the shopper's question
using ONLY the numbered product sources provided. Recommend specific products by name when they fit.
Cite sources by their number in square brackets, like [1]. If the sources do not contain enough
information to answer, say so plainly instead of guessing.`

// buildAnswerUserPrompt renders the query and numbered source passages.
func buildAnswerUserPrompt(query string, passages []string) string {
	var b strings.Builder
	b.WriteString("Sources:\n")
	for i, passage := range passages {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, passage)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
