package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pgavriel/MOADv2/internal/cli/prompt"
)

// confirmFunc answers yes to everything when assumeYes is set and asks the
// operator otherwise. It is converted to the dataset and blender Confirmers.
func confirmFunc(assumeYes bool) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, question string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return prompt.ConfirmWithForce(question, assumeYes)
	}
}

// skipChoice is the Select value for skipping a folder.
const skipChoice = ""

// chooseMesh asks the operator which of several meshes in dir to convert.
func chooseMesh(dir string, meshes []string) (string, error) {
	options := make([]prompt.SelectOption, 0, len(meshes)+1)
	for _, m := range meshes {
		options = append(options, prompt.SelectOption{Label: filepath.Base(m), Value: m})
	}
	options = append(options, prompt.SelectOption{Label: "skip this folder", Value: skipChoice})

	return prompt.Select(fmt.Sprintf("Several meshes in %s", dir), options)
}
