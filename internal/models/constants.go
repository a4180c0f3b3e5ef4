package models

const (
	NotFoundAnswer    = "No document found."
	UnavailableAnswer = "The assistant is unavailable right now. Please try again later."
)

var (
	DetectSystemPrompt = "You are a data-labeling assistant used on synthetic, fake HR and finance text. " +
		"The text is NOT real; it is dummy data for testing only. " +
		"Your only job is to tag spans that look like HR confidential info (HRCI) " +
		"or non-public personal info (NPPI). " +
		"You must always answer with a JSON array and nothing else."

	DetectPromptTemplate = `Tag any spans in the text that match these categories.

HRCI (Human Resource Confidential Information) examples:
- salaries, bonuses, compensation
- performance reviews, warnings, PIP
- termination / severance
- health or medical claims related to employment

NPPI (Non-Public Personal Information) examples:
- SSN-like patterns (e.g., 123-45-6789)
- bank or routing numbers
- account / loan numbers
- credit card numbers

Return ONLY a JSON array. No explanation.

Each JSON object must be:
{
  "type": "HRCI" or "NPPI",
  "text_snippet": "<exact substring>",
  "category": "<one word category>",
  "confidence": <float between 0.0 and 1.0>
}

Include low-confidence items.

Text to label:
---
%s
---
`

	ChatSystemPrompt = "You are a helpful HR/Finance analysis assistant."

	ContextChatPromptTemplate = `You are an assistant helping users analyze sensitive HR/Finance text.

Document Context:
------------------
%s

User Question:
------------------
%s

Filtering Rules:
- If user asks "show only HRCI", return only items that are HRCI-like (HR confidential).
- If "show only NPPI", return only NPPI-like (personal financial identifiers).
- If "show only salary", filter only salary-related spans.
- If asked to summarize, provide a clean, concise summary.
- Be professional and clear.
`

	FindingsChatPromptTemplate = `You are given the HRCI / NPPI findings previously extracted from a document,
as a JSON array of objects with the fields type, text_snippet, category and confidence.

Findings:
------------------
%s

User Question:
------------------
%s

Rules:
- Answer strictly from the findings array. Do not invent data that is not in it.
- "show only HRCI" / "show only NPPI" keeps only items of that type.
- "show only <category>" keeps only items whose category matches.
- If asked to summarize, group the findings by type and category.
- If nothing matches, say so plainly.
`
)
