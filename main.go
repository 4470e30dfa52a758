package main

import (
	"context"
	"fmt"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/giantswarm/azure-peering-demo/client"
	"github.com/giantswarm/azure-peering-demo/pkg/project"
	"github.com/giantswarm/azure-peering-demo/service"
)

const (
	flagAdminPassword = "admin-password"
	flagAdminUsername = "admin-username"
	flagClientID      = "client-id"
	flagClientSecret  = "client-secret"
	flagGroupName     = "group-name"
	flagLocation      = "location"
	flagPeeringName   = "peering-name"
	flagSubscription  = "subscription-id"
	flagTenantID      = "tenant-id"
)

func main() {
	err := mainError()
	if err != nil {
		panic(fmt.Sprintf("%#v\n", err))
	}
}

func mainError() error {
	var err error

	ctx := context.Background()

	var logger micrologger.Logger
	{
		logger, err = micrologger.New(micrologger.Config{})
		if err != nil {
			return microerror.Mask(err)
		}
	}

	v := viper.New()

	rootCommand := &cobra.Command{
		Use:           project.Name(),
		Short:         project.Description(),
		Version:       project.Version(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := service.Config{
				Logger: logger,

				Azure: client.AzureClientSetConfig{
					ClientID:       v.GetString(flagClientID),
					ClientSecret:   v.GetString(flagClientSecret),
					SubscriptionID: v.GetString(flagSubscription),
					TenantID:       v.GetString(flagTenantID),
				},

				AdminPassword: v.GetString(flagAdminPassword),
				AdminUsername: v.GetString(flagAdminUsername),
				GroupName:     v.GetString(flagGroupName),
				Location:      v.GetString(flagLocation),
				PeeringName:   v.GetString(flagPeeringName),
			}

			newService, err := service.New(c)
			if err != nil {
				return microerror.Mask(err)
			}

			err = newService.Run(ctx)
			if err != nil {
				return microerror.Mask(err)
			}

			return nil
		},
	}

	rootCommand.Flags().String(flagAdminPassword, "", "Admin password of the demo virtual machines.")
	rootCommand.Flags().String(flagAdminUsername, "demo-admin", "Admin username of the demo virtual machines.")
	rootCommand.Flags().String(flagClientID, "", "ID of the Active Directory Service Principal.")
	rootCommand.Flags().String(flagClientSecret, "", "Secret of the Active Directory Service Principal.")
	rootCommand.Flags().String(flagGroupName, "peering-demo", "Name of the resource group to create and tear down.")
	rootCommand.Flags().String(flagLocation, "westus2", "Azure region to provision the demo in.")
	rootCommand.Flags().String(flagPeeringName, "peering-demo", "Name shared by both directions of the virtual network peering.")
	rootCommand.Flags().String(flagSubscription, "", "ID of the Azure subscription.")
	rootCommand.Flags().String(flagTenantID, "", "ID of the Active Directory tenant.")

	err = v.BindPFlags(rootCommand.Flags())
	if err != nil {
		return microerror.Mask(err)
	}

	bindings := map[string]string{
		flagAdminPassword: "AZURE_ADMINPASSWORD",
		flagClientID:      "AZURE_CLIENTID",
		flagClientSecret:  "AZURE_CLIENTSECRET",
		flagLocation:      "AZURE_LOCATION",
		flagSubscription:  "AZURE_SUBSCRIPTIONID",
		flagTenantID:      "AZURE_TENANTID",
	}
	for flag, envVar := range bindings {
		err = v.BindEnv(flag, envVar)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	err = rootCommand.Execute()
	if err != nil {
		return microerror.Mask(err)
	}

	return nil
}
