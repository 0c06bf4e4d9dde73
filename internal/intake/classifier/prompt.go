package classifier

import (
	_ "embed"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/classifier_prompt.txt
var classifierSystemPrompt string

const (
	varSystemMessages = "system_messages"
	varComplaint      = "complaint"
)

// renderSystemPrompt substitutes only known tokens so the template may
// contain braces of its own.
func renderSystemPrompt() string {
	var cats strings.Builder
	for _, c := range Categories() {
		cats.WriteString("- ")
		cats.WriteString(c)
		cats.WriteByte('\n')
	}
	return strings.NewReplacer(
		"{TD}", tupDelim,
		"{RD}", recDelim,
		"{CD}", endDelim,
		"{categories}", strings.TrimRight(cats.String(), "\n"),
	).Replace(classifierSystemPrompt)
}

// newChatTemplate keeps the system prompt in a placeholder so FString only
// formats the user turn.
func newChatTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder(varSystemMessages, false),
		schema.UserMessage("Complaint:\n{"+varComplaint+"}"),
	)
}

func templateVars(system, complaint string) map[string]any {
	return map[string]any{
		varSystemMessages: []*schema.Message{schema.SystemMessage(system)},
		varComplaint:      complaint,
	}
}
