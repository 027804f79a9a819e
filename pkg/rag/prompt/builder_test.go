package prompt

import (
	"strings"
	"testing"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

func TestBuildGroundedPromptGroupsByFile(t *testing.T) {
	chunks := []store.RetrievedChunk{
		{SourceFileName: "a.pdf", Content: "x"},
		{SourceFileName: "b.pdf", Content: "y"},
		{SourceFileName: "a.pdf", Content: "z"},
	}

	got := BuildGroundedPrompt(chunks)

	if !strings.Contains(got, "@@: [1] File: a.pdf\nContent: x\nz") {
		t.Errorf("group for a.pdf missing or not joined, prompt:\n%s", got)
	}
	if !strings.Contains(got, "@@: [2] File: b.pdf\nContent: y") {
		t.Errorf("group for b.pdf missing, prompt:\n%s", got)
	}
	if strings.Count(got, "@@: [") != 2 {
		t.Errorf("want exactly 2 citation blocks, prompt:\n%s", got)
	}

	// First-appearance order: a.pdf before b.pdf
	if strings.Index(got, "File: a.pdf") > strings.Index(got, "File: b.pdf") {
		t.Error("citation groups not in first-appearance order")
	}
}

func TestBuildGroundedPromptContainsFormatRules(t *testing.T) {
	got := BuildGroundedPrompt([]store.RetrievedChunk{{SourceFileName: "f.txt", Content: "c"}})

	for _, want := range []string{
		"[Confidence: X.XX]",
		"PROVIDED CONTEXT:",
		"# HEADER IMPLEMENTATION RULES",
		"# CURRENT CONVERSATION HISTORY",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("grounded prompt missing %q", want)
		}
	}
}

func TestBuildMessageList(t *testing.T) {
	chunks := []store.RetrievedChunk{{SourceFileName: "f.txt", Content: "c"}}
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleAssistant, Content: "hi"},
		{Role: llm.RoleUser, Content: "what is c?"},
	}

	got := BuildMessageList(chunks, history)

	if len(got) != 5 {
		t.Fatalf("message count = %d, want 5", len(got))
	}
	if got[0].Role != llm.RoleSystem || !strings.Contains(got[0].Content, "PROVIDED CONTEXT:") {
		t.Error("first message must be the grounded system prompt")
	}
	for i, msg := range history {
		if got[i+1] != msg {
			t.Errorf("history message %d altered or reordered", i)
		}
	}
	last := got[len(got)-1]
	if last.Role != llm.RoleSystem || !strings.Contains(last.Content, "MANDATORY RESPONSE HEADER") {
		t.Error("last message must be the repeated instruction system message")
	}
}
