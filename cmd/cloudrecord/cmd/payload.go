package cmd

import (
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/ssargent/cloudrecord/pkg/response"
	"github.com/ssargent/cloudrecord/pkg/wire"
)

// readPayload loads a response body from path. Comments and trailing
// commas are allowed so hand-edited fixtures can be annotated. Server
// error payloads come back as a *response.ServerError.
func readPayload(path string) (wire.Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return response.Parse(jsonc.ToJSON(data))
}
