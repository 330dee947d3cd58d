package types

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ToolResultMessage builds the tool-role message answering the call with the
// given correlation id.
func ToolResultMessage(toolCallID, name, content string) Message {
	return Message{
		Role:       RoleTool,
		Name:       name,
		Content:    content,
		ToolCallID: toolCallID,
	}
}

// Last returns the final message of a conversation, or false when it is empty.
func Last(conv []Message) (Message, bool) {
	if len(conv) == 0 {
		return Message{}, false
	}
	return conv[len(conv)-1], true
}
