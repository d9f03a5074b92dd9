package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var instanceBlocksCmd = &cobra.Command{
	Use:   "instance-blocks HOST",
	Short: "List the moderation bans a host currently publishes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := backgroundContext()
		host := args[0]

		st, err := openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer st.Close()

		bans, err := st.ListBans(ctx, host)
		if err != nil {
			return err
		}

		if len(bans) == 0 {
			fmt.Printf("%v has no recorded bans\n", host)
			return nil
		}

		for _, b := range bans {
			comment := formatString(b.Comment)
			keywords := strings.Join(b.Keywords, ",")
			fmt.Printf("%v\t%v\t%v\t%v\n", b.BannedHost, b.Severity, comment, keywords)
		}
		return nil
	},
}
