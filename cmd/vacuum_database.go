package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var vacuumDatabaseCmd = &cobra.Command{
	Use:   "vacuum-database",
	Short: "Run storage-engine maintenance over the heavily-written tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := backgroundContext()

		st, err := openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.VacuumDatabase(ctx); err != nil {
			return err
		}

		fmt.Println("vacuum complete")
		return nil
	},
}
