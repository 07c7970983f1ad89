package output

import (
	"encoding/json"
	"io"

	"github.com/domainsweep/domainsweep/internal/core"
)

func renderJSON(w io.Writer, results []*core.CheckResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if results == nil {
		results = []*core.CheckResult{}
	}
	return encoder.Encode(results)
}
