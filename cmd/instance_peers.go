package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var instancePeersCmd = &cobra.Command{
	Use:   "instance-peers HOST",
	Short: "List the peers currently on record for a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := backgroundContext()
		host := args[0]

		st, err := openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer st.Close()

		peers, err := st.ListPeers(ctx, host)
		if err != nil {
			return err
		}

		if len(peers) == 0 {
			fmt.Printf("%v has no recorded peers\n", host)
			return nil
		}

		for _, p := range peers {
			fmt.Println(p.PeerHost)
		}
		return nil
	},
}
