package cli

import (
	"encoding/json"
	"io"

	"crateview/internal/core/errors"
)

const (
	formatText = "text"
	formatLSP  = "lsp"
)

func validateFormat(f string) error {
	switch f {
	case formatText, formatLSP:
		return nil
	default:
		return errors.AddContext(errors.New(errors.CodeValidationError, "--format must be text or lsp"), "format", f)
	}
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
