package cli

import (
	"encoding/json"
	"io"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
)

// Exit codes by error kind.
const (
	ExitOK            = 0
	ExitInternal      = 1
	ExitInvalidConfig = 2
	ExitNotFound      = 3
	ExitRejected      = 4
	ExitConflict      = 5
)

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch common.Kind(err) {
	case common.KindInvalidConfig:
		return ExitInvalidConfig
	case common.KindNotFound:
		return ExitNotFound
	case common.KindRejected:
		return ExitRejected
	case common.KindConflict:
		return ExitConflict
	default:
		return ExitInternal
	}
}

type errorOutput struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeError(w io.Writer, err error) {
	_ = writeJSON(w, errorOutput{Error: err.Error(), Kind: common.Kind(err), Reason: common.Reason(err)})
}
