package prompt

import (
	"fmt"
	"strings"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

// BuildGroundedPrompt renders retrieved chunks into the grounded system
// prompt. Chunks are grouped by source file name; each group becomes one
// indexed citation block, indexed by first appearance (1-based), so the model
// can cite [1][2] and list sources by the same numbers.
func BuildGroundedPrompt(chunks []store.RetrievedChunk) string {
	var blocks []string
	seen := make(map[string]int)

	grouped := make([][]string, 0)
	names := make([]string, 0)

	for _, chunk := range chunks {
		idx, ok := seen[chunk.SourceFileName]
		if !ok {
			idx = len(names)
			seen[chunk.SourceFileName] = idx
			names = append(names, chunk.SourceFileName)
			grouped = append(grouped, nil)
		}
		grouped[idx] = append(grouped[idx], chunk.Content)
	}

	for i, name := range names {
		blocks = append(blocks, fmt.Sprintf("%s [%d] File: %s\nContent: %s",
			SourceDeclarationSymbol, i+1, name, strings.Join(grouped[i], "\n")))
	}

	context := strings.Join(blocks, "\n\n")
	return groundedInstructionHeader + context + groundedInstructionFooter
}

// BuildMessageList assembles the full message list for generation: the
// grounded system prompt, the conversation history in chronological order,
// and the repeated format instruction as a trailing system message.
func BuildMessageList(chunks []store.RetrievedChunk, history []llm.Message) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: BuildGroundedPrompt(chunks)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: repeatedInstruction})
	return messages
}
