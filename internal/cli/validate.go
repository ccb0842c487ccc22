package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wsinspect/wsinspect"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <endpoint|preset>",
		Short: "Check that an endpoint is a well-formed URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := GetContext(cmd).Config.Resolve(args[0])
			if !wsinspect.ValidateEndpoint(endpoint) {
				return wsinspect.NewError(wsinspect.ErrorInvalidEndpoint, fmt.Sprintf("invalid endpoint %q", endpoint))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", endpoint)
			return nil
		},
	}
}
