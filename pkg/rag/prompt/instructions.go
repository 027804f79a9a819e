package prompt

// SourceDeclarationSymbol delimits one source block inside the grounded
// prompt. The instruction block forbids the model from ever echoing it.
const SourceDeclarationSymbol = "@@:"

const groundedInstructionHeader = `# REQUIRED RESPONSE STRUCTURE
FIRST LINE MUST BE:
[Confidence: X.XX]

FOLLOWED BY:
- Answer text with inline citations [1][2]
- Final line: "Sources: [1]filenameX.extension, [2]filenameY.extension"

PROVIDED CONTEXT:
`

const groundedInstructionFooter = `

# HEADER IMPLEMENTATION RULES
- 0.00 confidence if any answer part is unsupported
- Calculate confidence before writing response
- Header exists even when confidence is 0.00
- Client never sees "Confidence:" text (system-stripped)

# CURRENT CONVERSATION HISTORY
`

// repeatedInstruction is appended as a trailing system message. Generative
// backends attend more reliably to instructions near the end of context, so
// the format rules are stated twice on purpose.
const repeatedInstruction = `# MANDATORY RESPONSE HEADER
Your response MUST ALWAYS begin with:
"[Confidence: X.XX]" (X.XX = 0.00-1.00 float)

# CONTEXT PROCESSING RULES
- If answer isn't in context:
    - Header: "[Confidence: 0.00]"
    - Body: "No response."
- If using context:
    1. Header shows calculated confidence score
    2. First line after header is answer text
    3. A source in context is declared using the source declaration symbol "@@:"
    4. Do not include the source declaration symbol in your response
    5. Embed citations like [1][2] after relevant facts
    6. Final line: "Sources: [1]filenameX.extension, [2]filenameY.extension"

# STRICT COMPLIANCE ITEMS
- Header format EXACTLY "[Confidence: X.XX]"
- Never reference confidence score in body text
- System will strip header before client delivery
- Never include the source declaration symbol

# ANTI-REQUIREMENTS (STRICT PROHIBITIONS)
- NO information beyond provided context
- NO disclaimers about being an AI
- NO explanations of your process
- NO repeating conversation history`

// HyDEInstruction primes the model to synthesize a hypothetical answer
// document whose embedding stands in for the raw query at retrieval time.
const HyDEInstruction = `You are a retrieval optimization agent. Your task is to generate a detailed and structured
hypothetical document that answers the user's query for similarity search purposes.

# INSTRUCTIONS:
- Prioritize factual depth and domain-specific terminology
- The document should be structured into clear, logical sections
- Avoid direct answers - focus on synthesizing a comprehensive document
- Include domain-specific keywords related to the query

# STRICT PROHIBITIONS
- Return only the answer
- Do not repeat conversation history in the answer

# CURRENT CONVERSATION HISTORY`
