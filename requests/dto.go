package requests

// Command names one editor tool operation
type Command string

const (
	CommandView       Command = "view"
	CommandCreate     Command = "create"
	CommandStrReplace Command = "str_replace"
	CommandInsert     Command = "insert"
	CommandRename     Command = "rename"
	CommandDelete     Command = "delete"
	CommandMkdir      Command = "mkdir"
)

// Commands lists every supported command
var Commands = []Command{
	CommandView, CommandCreate, CommandStrReplace, CommandInsert,
	CommandRename, CommandDelete, CommandMkdir,
}

// ToolRequestDTO is the JSON representation of [Request] as sent by an agent's
// file editor tool
//
// Fields used per command:
//
//	view:        path
//	create:      path, file_text (default "")
//	str_replace: path, old_str, new_str (default "")
//	insert:      path, insert_line, new_str
//	rename:      path, new_path
//	delete:      path
//	mkdir:       path
type ToolRequestDTO struct {
	Command    Command `json:"command"`
	Path       string  `json:"path"`
	FileText   *string `json:"file_text,omitempty"`
	OldStr     *string `json:"old_str,omitempty"`
	NewStr     *string `json:"new_str,omitempty"`
	InsertLine *int    `json:"insert_line,omitempty"`
	NewPath    *string `json:"new_path,omitempty"`
}
