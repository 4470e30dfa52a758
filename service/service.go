package service

import (
	"context"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/giantswarm/azure-peering-demo/client"
	"github.com/giantswarm/azure-peering-demo/service/connectivity"
	"github.com/giantswarm/azure-peering-demo/service/instance"
	"github.com/giantswarm/azure-peering-demo/service/resourcegroup"
	"github.com/giantswarm/azure-peering-demo/service/virtualnetwork"
	"github.com/giantswarm/azure-peering-demo/service/vnetpeering"
	"github.com/giantswarm/azure-peering-demo/service/workflow"
)

// The two demo networks use disjoint /27 ranges so that peering them is
// meaningful. Each network has a single subnet covering its whole range.
var networkDefinitions = []virtualnetwork.Definition{
	{
		Name:          "vnet-a",
		AddressPrefix: "10.0.0.0/27",
		SubnetName:    "subnet-a",
		SubnetPrefix:  "10.0.0.0/27",
	},
	{
		Name:          "vnet-b",
		AddressPrefix: "10.1.0.0/27",
		SubnetName:    "subnet-b",
		SubnetPrefix:  "10.1.0.0/27",
	},
}

// Config represents the configuration used to create a new service.
type Config struct {
	Logger micrologger.Logger

	Azure client.AzureClientSetConfig

	AdminPassword string
	AdminUsername string
	GroupName     string
	Location      string
	PeeringName   string
}

// Service wires the Azure API clients and the demo steps into the workflow.
type Service struct {
	logger micrologger.Logger

	workflow *workflow.Workflow
}

func New(config Config) (*Service, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.GroupName == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.GroupName must not be empty", config)
	}
	if config.Location == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.Location must not be empty", config)
	}
	if config.PeeringName == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.PeeringName must not be empty", config)
	}

	var err error

	var azureClients *client.AzureClientSet
	{
		azureClients, err = client.NewAzureClientSet(config.Azure)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	var groupsResource *resourcegroup.Resource
	{
		c := resourcegroup.Config{
			GroupsClient: azureClients.GroupsClient,
			Logger:       config.Logger,

			GroupName: config.GroupName,
			Location:  config.Location,
		}

		groupsResource, err = resourcegroup.New(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	var networksResource *virtualnetwork.Resource
	{
		c := virtualnetwork.Config{
			Logger:                config.Logger,
			VirtualNetworksClient: azureClients.VirtualNetworksClient,

			Definitions: networkDefinitions,
		}

		networksResource, err = virtualnetwork.New(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	var computeResource *instance.Resource
	{
		c := instance.Config{
			InterfacesClient:               azureClients.InterfacesClient,
			Logger:                         config.Logger,
			VirtualMachineExtensionsClient: azureClients.VirtualMachineExtensionsClient,
			VirtualMachinesClient:          azureClients.VirtualMachinesClient,

			AdminPassword: config.AdminPassword,
			AdminUsername: config.AdminUsername,
		}

		computeResource, err = instance.New(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	var peeringResource *vnetpeering.Resource
	{
		c := vnetpeering.Config{
			Logger:            config.Logger,
			VnetPeeringClient: azureClients.VnetPeeringClient,

			PeeringName: config.PeeringName,
		}

		peeringResource, err = vnetpeering.New(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	var proberResource *connectivity.Resource
	{
		c := connectivity.Config{
			Logger:         config.Logger,
			WatchersClient: azureClients.WatchersClient,
		}

		proberResource, err = connectivity.New(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	var demoWorkflow *workflow.Workflow
	{
		c := workflow.Config{
			Compute:  computeResource,
			Groups:   groupsResource,
			Logger:   config.Logger,
			Networks: networksResource,
			Peerings: peeringResource,
			Prober:   proberResource,
		}

		demoWorkflow, err = workflow.New(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	s := &Service{
		logger: config.Logger,

		workflow: demoWorkflow,
	}

	return s, nil
}

// Run executes the demo workflow once.
func (s *Service) Run(ctx context.Context) error {
	err := s.workflow.Run(ctx)
	if err != nil {
		return microerror.Mask(err)
	}

	return nil
}
