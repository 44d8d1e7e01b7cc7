package requests

import (
	"fmt"

	"github.com/brettbedarf/previewfs"
	"github.com/brettbedarf/previewfs/internal/util"
)

// Apply runs req against fs and returns the message reported back to the
// agent. create overwrites an existing file.
func Apply(fs previewfs.FileSystemOperator, req *Request) (string, error) {
	logger := util.GetLogger("requests.Apply")
	logger.Debug().Str("command", string(req.Command)).Str("path", req.Path).Msg("Applying tool request")

	switch req.Command {
	case CommandView:
		return fs.ViewFile(req.Path)

	case CommandCreate:
		if fs.Exists(req.Path) {
			if err := fs.UpdateFile(req.Path, req.FileText); err != nil {
				return "", err
			}
			return fmt.Sprintf("File updated: %s", req.Path), nil
		}
		if err := fs.CreateFile(req.Path, req.FileText); err != nil {
			return "", err
		}
		return fmt.Sprintf("File created: %s", req.Path), nil

	case CommandStrReplace:
		n, err := fs.ReplaceInFile(req.Path, req.OldStr, req.NewStr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Replaced %d occurrence(s) in %s", n, req.Path), nil

	case CommandInsert:
		if err := fs.InsertInFile(req.Path, req.InsertLine, req.NewStr); err != nil {
			return "", err
		}
		return fmt.Sprintf("Text inserted at line %d in %s", req.InsertLine, req.Path), nil

	case CommandRename:
		if err := fs.Rename(req.Path, req.NewPath); err != nil {
			return "", err
		}
		return fmt.Sprintf("Renamed %s to %s", req.Path, req.NewPath), nil

	case CommandDelete:
		if err := fs.DeleteNode(req.Path); err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted %s", req.Path), nil

	case CommandMkdir:
		if err := fs.CreateDirectory(req.Path); err != nil {
			return "", err
		}
		return fmt.Sprintf("Directory created: %s", req.Path), nil
	}
	return "", fmt.Errorf("%w: unknown command %q", ErrInvalidRequest, req.Command)
}

// Handle unmarshals a raw tool request and applies it
func Handle(fs previewfs.FileSystemOperator, data []byte) (string, error) {
	req, err := Unmarshal(data)
	if err != nil {
		return "", err
	}
	return Apply(fs, req)
}
