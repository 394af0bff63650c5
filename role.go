package relay

// Role represents the role of a message sender. Tool results travel under a
// user-role message on the wire but keep a distinct role here because they do
// not represent real user input.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)
