package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/quack-go/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(provide ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, credentials and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := provide(cmd.Context())
			if err != nil {
				return err
			}
			report, err := container.Doctor.Run(cmd.Context())

			// Display report even if there were errors
			displayDoctorReport(cmd.OutOrStdout(), report)

			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			return nil
		},
	}
}

func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
		if check.Hint != "" && check.Status != domain.HealthOK {
			fmt.Fprintf(out, "       hint: %s\n", check.Hint)
		}
	}
}
