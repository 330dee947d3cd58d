package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fncall/registry"
	"github.com/fncall/toolcall"
	"github.com/fncall/types"
)

// ChatML role markers used to flatten a conversation into one prompt.
const (
	imStart = "<|im_start|>"
	imEnd   = "<|im_end|>"

	toolResponseOpen  = "<tool_response>"
	toolResponseClose = "</tool_response>"
)

// TextPreamble is the system prompt of the text protocol: the calling
// convention, every function signature and the one-call-at-a-time rule.
func TextPreamble(reg *registry.Registry) string {
	var sb strings.Builder
	sb.WriteString("You are a function calling AI model. You are provided with function signatures within <tools></tools> XML tags. ")
	sb.WriteString("You may call one or more functions to assist with the user query.\n")
	sb.WriteString("Always make one function call at a time, and don't make assumptions about what values to plug into functions. ")
	sb.WriteString("When a call needs a value that another call returns, wait for that result before making the second call.\n")
	sb.WriteString("Here are the available tools:\n<tools>\n")
	for _, d := range reg.Definitions() {
		line, _ := json.Marshal(map[string]any{
			"type":     "function",
			"function": d,
		})
		sb.Write(line)
		sb.WriteString("\n")
	}
	sb.WriteString("</tools>\n")
	sb.WriteString("Use the following JSON schema for each tool call you will make: ")
	sb.WriteString(`{"type": "object", "properties": {"name": {"type": "string"}, "arguments": {"type": "object"}}, "required": ["name", "arguments"]}` + "\n")
	sb.WriteString(fmt.Sprintf("For each function call return a JSON object with function name and arguments within %s%s XML tags as follows:\n", toolcall.OpenTag, toolcall.CloseTag))
	sb.WriteString(toolcall.OpenTag + "\n")
	sb.WriteString(`{"name": "FUNCTION_NAME", "arguments": {"ARGUMENT_NAME": "ARGUMENT_VALUE"}}` + "\n")
	sb.WriteString(toolcall.CloseTag + "\n")
	sb.WriteString("Function results are returned to you within " + toolResponseOpen + toolResponseClose + " XML tags. ")
	sb.WriteString("When you have all the information you need, answer the user without any " + toolcall.OpenTag + " tags.")
	return sb.String()
}

// RenderChatML flattens conv into a single prompt with explicit role tags,
// ending with an open assistant turn. preamble is prepended as the system
// turn unless conv already starts with a system message.
func RenderChatML(preamble string, conv []types.Message) string {
	var sb strings.Builder
	if len(conv) == 0 || conv[0].Role != types.RoleSystem {
		writeTurn(&sb, types.RoleSystem, preamble)
	}
	for _, m := range conv {
		content := m.Content
		if m.Role == types.RoleTool {
			content = toolResponseOpen + "\n" + content + "\n" + toolResponseClose
		}
		writeTurn(&sb, m.Role, content)
	}
	sb.WriteString(imStart + string(types.RoleAssistant) + "\n")
	return sb.String()
}

func writeTurn(sb *strings.Builder, role types.Role, content string) {
	sb.WriteString(imStart)
	sb.WriteString(string(role))
	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(content))
	sb.WriteString(imEnd)
	sb.WriteString("\n")
}
