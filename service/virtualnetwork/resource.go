package virtualnetwork

import (
	"context"
	"net"

	"github.com/Azure/azure-sdk-for-go/services/network/mgmt/2019-11-01/network"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/giantswarm/ipam"
	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/giantswarm/azure-peering-demo/service/workflow"
)

const (
	// Name is the identifier of the resource.
	Name = "virtualnetwork"
)

// Definition describes one of the isolated virtual networks to create, with
// its single subnet.
type Definition struct {
	Name          string
	AddressPrefix string
	SubnetName    string
	SubnetPrefix  string
}

type Config struct {
	Logger                micrologger.Logger
	VirtualNetworksClient *network.VirtualNetworksClient

	// Definitions are the virtual networks to create. Their address spaces
	// must be pairwise disjoint, otherwise peering them is meaningless.
	Definitions []Definition
}

// Resource creates the demo's isolated virtual networks.
type Resource struct {
	logger                micrologger.Logger
	virtualNetworksClient *network.VirtualNetworksClient

	definitions []Definition
}

func New(config Config) (*Resource, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.VirtualNetworksClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.VirtualNetworksClient must not be empty", config)
	}

	if len(config.Definitions) == 0 {
		return nil, microerror.Maskf(invalidConfigError, "%T.Definitions must not be empty", config)
	}
	err := validateDefinitions(config.Definitions)
	if err != nil {
		return nil, microerror.Mask(err)
	}

	r := &Resource{
		logger:                config.Logger,
		virtualNetworksClient: config.VirtualNetworksClient,

		definitions: config.Definitions,
	}

	return r, nil
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return Name
}

// EnsureCreated creates the configured virtual networks via the Azure API,
// blocking on each until it is fully provisioned. The returned handles are in
// configuration order.
func (r *Resource) EnsureCreated(ctx context.Context, group workflow.Group) ([]workflow.VirtualNetwork, error) {
	var networks []workflow.VirtualNetwork

	for _, d := range r.definitions {
		vnet, err := r.ensureVirtualNetwork(ctx, group, d)
		if err != nil {
			return nil, microerror.Mask(err)
		}

		networks = append(networks, vnet)
	}

	return networks, nil
}

func (r *Resource) ensureVirtualNetwork(ctx context.Context, group workflow.Group, d Definition) (workflow.VirtualNetwork, error) {
	r.logger.Debugf(ctx, "ensuring virtual network %#q with address space %#q is created", d.Name, d.AddressPrefix)

	parameters := network.VirtualNetwork{
		Location: to.StringPtr(group.Location),
		VirtualNetworkPropertiesFormat: &network.VirtualNetworkPropertiesFormat{
			AddressSpace: &network.AddressSpace{
				AddressPrefixes: &[]string{
					d.AddressPrefix,
				},
			},
			Subnets: &[]network.Subnet{
				{
					Name: to.StringPtr(d.SubnetName),
					SubnetPropertiesFormat: &network.SubnetPropertiesFormat{
						AddressPrefix: to.StringPtr(d.SubnetPrefix),
					},
				},
			},
		},
	}

	future, err := r.virtualNetworksClient.CreateOrUpdate(ctx, group.Name, d.Name, parameters)
	if err != nil {
		return workflow.VirtualNetwork{}, microerror.Mask(err)
	}
	err = future.WaitForCompletionRef(ctx, r.virtualNetworksClient.Client)
	if err != nil {
		return workflow.VirtualNetwork{}, microerror.Mask(err)
	}
	created, err := future.Result(*r.virtualNetworksClient)
	if err != nil {
		return workflow.VirtualNetwork{}, microerror.Mask(err)
	}

	subnetID, err := subnetIDFromVirtualNetwork(created, d.SubnetName)
	if err != nil {
		return workflow.VirtualNetwork{}, microerror.Mask(err)
	}

	r.logger.Debugf(ctx, "ensured virtual network %#q is created", d.Name)

	vnet := workflow.VirtualNetwork{
		ID:            to.String(created.ID),
		Name:          to.String(created.Name),
		AddressPrefix: d.AddressPrefix,
		SubnetID:      subnetID,
		SubnetName:    d.SubnetName,
		SubnetPrefix:  d.SubnetPrefix,
	}

	return vnet, nil
}

func subnetIDFromVirtualNetwork(vnet network.VirtualNetwork, subnetName string) (string, error) {
	if vnet.VirtualNetworkPropertiesFormat == nil || vnet.Subnets == nil {
		return "", microerror.Maskf(executionFailedError, "virtual network %#q has no subnets", to.String(vnet.Name))
	}

	for _, s := range *vnet.Subnets {
		if to.String(s.Name) == subnetName {
			return to.String(s.ID), nil
		}
	}

	return "", microerror.Maskf(executionFailedError, "subnet %#q not found in virtual network %#q", subnetName, to.String(vnet.Name))
}

func validateDefinitions(definitions []Definition) error {
	networks := make([]net.IPNet, 0, len(definitions))

	for _, d := range definitions {
		if d.Name == "" {
			return microerror.Maskf(invalidConfigError, "definition Name must not be empty")
		}
		if d.SubnetName == "" {
			return microerror.Maskf(invalidConfigError, "definition %#q SubnetName must not be empty", d.Name)
		}

		_, addressRange, err := net.ParseCIDR(d.AddressPrefix)
		if err != nil {
			return microerror.Maskf(invalidConfigError, "definition %#q AddressPrefix: %s", d.Name, err)
		}
		_, subnetRange, err := net.ParseCIDR(d.SubnetPrefix)
		if err != nil {
			return microerror.Maskf(invalidConfigError, "definition %#q SubnetPrefix: %s", d.Name, err)
		}
		if !ipam.Contains(*addressRange, *subnetRange) {
			return microerror.Maskf(invalidConfigError, "definition %#q subnet %#q is not contained in address space %#q", d.Name, d.SubnetPrefix, d.AddressPrefix)
		}

		networks = append(networks, *addressRange)
	}

	for i := range networks {
		for j := i + 1; j < len(networks); j++ {
			if ipam.Contains(networks[i], networks[j]) || ipam.Contains(networks[j], networks[i]) {
				return microerror.Maskf(invalidConfigError, "address spaces %#q and %#q overlap", definitions[i].AddressPrefix, definitions[j].AddressPrefix)
			}
		}
	}

	return nil
}
