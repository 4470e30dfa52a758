package client

import (
	"errors"

	"github.com/Azure/azure-sdk-for-go/services/compute/mgmt/2019-07-01/compute"
	"github.com/Azure/azure-sdk-for-go/services/network/mgmt/2019-11-01/network"
	"github.com/Azure/azure-sdk-for-go/services/resources/mgmt/2019-05-01/resources"
	"github.com/Azure/go-autorest/autorest"
	"github.com/Azure/go-autorest/autorest/azure/auth"
	"github.com/giantswarm/microerror"
)

// AzureClientSetConfig contains the common attributes to create the Azure API
// clients.
type AzureClientSetConfig struct {
	// ClientID is the ID of the Active Directory Service Principal.
	ClientID string
	// ClientSecret is the secret of the Active Directory Service Principal.
	ClientSecret string
	// SubscriptionID is the ID of the Azure subscription.
	SubscriptionID string
	// TenantID is the ID of the Active Directory tenant.
	TenantID string
}

func (c AzureClientSetConfig) Validate() error {
	if c.ClientID == "" {
		return errors.New("ClientID must not be empty")
	}
	if c.ClientSecret == "" {
		return errors.New("ClientSecret must not be empty")
	}
	if c.SubscriptionID == "" {
		return errors.New("SubscriptionID must not be empty")
	}
	if c.TenantID == "" {
		return errors.New("TenantID must not be empty")
	}

	return nil
}

// AzureClientSet is the collection of Azure API clients.
type AzureClientSet struct {
	// The subscription ID this client set is configured with.
	SubscriptionID string

	// GroupsClient manages ARM resource groups.
	GroupsClient *resources.GroupsClient
	// InterfacesClient manages virtual network interfaces.
	InterfacesClient *network.InterfacesClient
	// VirtualMachineExtensionsClient manages extensions installed on virtual
	// machines.
	VirtualMachineExtensionsClient *compute.VirtualMachineExtensionsClient
	// VirtualMachinesClient manages virtual machines.
	VirtualMachinesClient *compute.VirtualMachinesClient
	// VirtualNetworksClient manages virtual networks.
	VirtualNetworksClient *network.VirtualNetworksClient
	// VnetPeeringClient manages virtual network peerings.
	VnetPeeringClient *network.VirtualNetworkPeeringsClient
	// WatchersClient manages Network Watcher resources and connectivity
	// checks.
	WatchersClient *network.WatchersClient
}

// NewAzureClientSet returns the Azure API clients authenticated with the
// Service Principal credentials from the given config.
func NewAzureClientSet(config AzureClientSetConfig) (*AzureClientSet, error) {
	if err := config.Validate(); err != nil {
		return nil, microerror.Maskf(invalidConfigError, "config.%s", err)
	}

	credentials := auth.NewClientCredentialsConfig(config.ClientID, config.ClientSecret, config.TenantID)
	authorizer, err := credentials.Authorizer()
	if err != nil {
		return nil, microerror.Mask(err)
	}

	groupsClient := resources.NewGroupsClient(config.SubscriptionID)
	prepareClient(&groupsClient.Client, authorizer)

	interfacesClient := network.NewInterfacesClient(config.SubscriptionID)
	prepareClient(&interfacesClient.Client, authorizer)

	virtualMachineExtensionsClient := compute.NewVirtualMachineExtensionsClient(config.SubscriptionID)
	prepareClient(&virtualMachineExtensionsClient.Client, authorizer)

	virtualMachinesClient := compute.NewVirtualMachinesClient(config.SubscriptionID)
	prepareClient(&virtualMachinesClient.Client, authorizer)

	virtualNetworksClient := network.NewVirtualNetworksClient(config.SubscriptionID)
	prepareClient(&virtualNetworksClient.Client, authorizer)

	vnetPeeringClient := network.NewVirtualNetworkPeeringsClient(config.SubscriptionID)
	prepareClient(&vnetPeeringClient.Client, authorizer)

	watchersClient := network.NewWatchersClient(config.SubscriptionID)
	prepareClient(&watchersClient.Client, authorizer)

	clientSet := &AzureClientSet{
		SubscriptionID: config.SubscriptionID,

		GroupsClient:                   &groupsClient,
		InterfacesClient:               &interfacesClient,
		VirtualMachineExtensionsClient: &virtualMachineExtensionsClient,
		VirtualMachinesClient:          &virtualMachinesClient,
		VirtualNetworksClient:          &virtualNetworksClient,
		VnetPeeringClient:              &vnetPeeringClient,
		WatchersClient:                 &watchersClient,
	}

	return clientSet, nil
}

func prepareClient(client *autorest.Client, authorizer autorest.Authorizer) *autorest.Client {
	client.Authorizer = authorizer

	return client
}
