package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var instanceVersionCmd = &cobra.Command{
	Use:   "instance-version HOST",
	Short: "Print the software identity recorded for a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := backgroundContext()
		host := args[0]

		st, err := openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer st.Close()

		instance, err := st.GetInstance(ctx, host)
		if err != nil {
			return err
		}
		if instance == nil {
			return fmt.Errorf("no instance recorded for %v", host)
		}

		fmt.Printf("Software:        %v\n", formatString(instance.Software))
		fmt.Printf("SoftwareVersion: %v\n", formatString(instance.SoftwareVersion))
		fmt.Printf("MastodonVersion: %v\n", formatString(instance.MastodonVersion))
		fmt.Printf("NodeinfoVersion: %v\n", formatString(instance.NodeinfoVersion))
		fmt.Printf("Version:         %v\n", formatString(instance.Version))
		return nil
	},
}
