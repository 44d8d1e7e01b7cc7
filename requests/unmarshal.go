package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidRequest indicates a tool request that is malformed or lacks a
// field its command needs
var ErrInvalidRequest = errors.New("invalid request")

// Request is a validated tool request with defaults applied
type Request struct {
	Command    Command
	Path       string
	FileText   string
	OldStr     string
	NewStr     string
	InsertLine int
	NewPath    string
}

// GetCommand extracts the command from JSON without full unmarshaling
func GetCommand(data []byte) (Command, error) {
	var meta struct {
		Command Command `json:"command"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return meta.Command, nil
}

// Unmarshal decodes and validates a tool request
func Unmarshal(data []byte) (*Request, error) {
	var dto ToolRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return convertDTO(dto)
}

// Validation and defaults live in the unmarshaling layer
func convertDTO(dto ToolRequestDTO) (*Request, error) {
	if !slices.Contains(Commands, dto.Command) {
		return nil, fmt.Errorf("%w: unknown command %q", ErrInvalidRequest, dto.Command)
	}
	if dto.Path == "" {
		return nil, fmt.Errorf("%w: %s requires path", ErrInvalidRequest, dto.Command)
	}

	req := &Request{
		Command:    dto.Command,
		Path:       dto.Path,
		FileText:   valueOrDefault(dto.FileText, ""),
		OldStr:     valueOrDefault(dto.OldStr, ""),
		NewStr:     valueOrDefault(dto.NewStr, ""),
		InsertLine: valueOrDefault(dto.InsertLine, 0),
		NewPath:    valueOrDefault(dto.NewPath, ""),
	}

	switch dto.Command {
	case CommandStrReplace:
		if dto.OldStr == nil {
			return nil, fmt.Errorf("%w: str_replace requires old_str", ErrInvalidRequest)
		}
	case CommandInsert:
		if dto.InsertLine == nil || dto.NewStr == nil {
			return nil, fmt.Errorf("%w: insert requires insert_line and new_str", ErrInvalidRequest)
		}
	case CommandRename:
		if req.NewPath == "" {
			return nil, fmt.Errorf("%w: rename requires new_path", ErrInvalidRequest)
		}
	}
	return req, nil
}

func valueOrDefault[T any](ptr *T, defaultVal T) T {
	if ptr != nil {
		return *ptr
	}
	return defaultVal
}
