package embed_data

import _ "embed"

//go:embed prompts/code_assistant_prompt.tmpl
var CodeAssistantPrompt []byte
