package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var instanceCmd = &cobra.Command{
	Use:   "instance HOST",
	Short: "Print the stored Instance row for a host",
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

		fmt.Printf("Host:               %v\n", instance.Host)
		fmt.Printf("BaseDomain:         %v\n", instance.BaseDomain)
		fmt.Printf("WWWHost:            %v\n", instance.WWWHost)
		fmt.Printf("LastIngest:         %v\n", formatTime(instance.LastIngest))
		fmt.Printf("LastIngestSuccess:  %v\n", formatTime(instance.LastIngestSuccess))
		fmt.Printf("FirstIngestSuccess: %v\n", formatTime(instance.FirstIngestSuccess))
		fmt.Printf("LastIngestStatus:   %v\n", formatStatus(instance.LastIngestStatus))
		fmt.Printf("Title:              %v\n", formatString(instance.Title))
		fmt.Printf("ShortDescription:   %v\n", formatString(instance.ShortDescription))
		fmt.Printf("Software:           %v\n", formatString(instance.Software))
		fmt.Printf("SoftwareVersion:    %v\n", formatString(instance.SoftwareVersion))
		fmt.Printf("MastodonVersion:    %v\n", formatString(instance.MastodonVersion))
		fmt.Printf("UserCount:          %v\n", formatInt(instance.CurrentUserCount))
		fmt.Printf("StatusCount:        %v\n", formatInt(instance.CurrentStatusCount))
		fmt.Printf("DomainCount:        %v\n", formatInt(instance.CurrentDomainCount))
		fmt.Printf("RegistrationOpen:   %v\n", formatBool(instance.RegistrationOpen))
		fmt.Printf("IPAddress:          %v\n", formatString(instance.IPAddress))
		fmt.Printf("ASN:                %v\n", formatString(instance.ASN))
		return nil
	},
}
